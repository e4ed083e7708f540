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

func accounts(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		create table accounts(
			id text not null primary key,
			kind text not null,
			username text not null,
			domain text,
			url text not null unique,
			display_name text,
			note text,
			avatar_id text,
			header_id text,
			locked integer not null default 0,
			local integer not null default 0,
			inbox_url text,
			shared_inbox_url text,
			outbox_url text,
			followers_url text,
			following_url text,
			featured_collection_url text,
			created_at integer not null,
			updated_at integer not null
		)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `create unique index accounts_handle on accounts(lower(username), lower(coalesce(domain, '')))`); err != nil {
		return err
	}

	return nil
}
