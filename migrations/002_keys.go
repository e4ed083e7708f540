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

func keys(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		create table cryptographic_keys(
			id text not null primary key,
			public_key text not null,
			private_key text,
			created_at integer not null
		)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		create table account_keys(
			account_id text not null references accounts(id) on delete cascade,
			key_id text not null references cryptographic_keys(id) on delete cascade,
			primary key(account_id, key_id)
		)`); err != nil {
		return err
	}

	return nil
}
