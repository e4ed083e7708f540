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

func follows(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		create table follows(
			id text not null primary key,
			account_id text not null references accounts(id) on delete cascade,
			follower_id text not null references accounts(id) on delete cascade,
			approved_at integer,
			url text not null unique,
			notify integer not null default 0,
			created_at integer not null,
			updated_at integer not null,
			unique(account_id, follower_id)
		)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `create index follows_follower on follows(follower_id)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		create table favourites(
			id text not null primary key,
			account_id text not null references accounts(id) on delete cascade,
			post_id text not null references posts(id) on delete cascade,
			url text not null unique,
			created_at integer not null,
			unique(account_id, post_id)
		)`); err != nil {
		return err
	}

	return nil
}
