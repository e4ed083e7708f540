/*
Copyright 2026 The Corvid Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package migrations

import (
	"context"
	"database/sql"
)

func posts(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		create table posts(
			id text not null primary key,
			account_id text not null references accounts(id) on delete cascade,
			in_reply_to_id text references posts(id) on delete set null,
			reposted_post_id text references posts(id) on delete cascade,
			is_sensitive integer not null default 0,
			subject text,
			content text not null,
			content_source text not null,
			content_language text,
			link_preview_url text,
			visibility text not null,
			is_local integer not null default 0,
			url text not null unique,
			created_at integer not null,
			updated_at integer not null
		)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `create index posts_account on posts(account_id, created_at)`); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `create index posts_in_reply_to on posts(in_reply_to_id)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		create table mentions(
			post_id text not null references posts(id) on delete cascade,
			account_id text not null references accounts(id) on delete cascade,
			mention_text text not null,
			primary key(post_id, account_id)
		)`); err != nil {
		return err
	}

	return nil
}
