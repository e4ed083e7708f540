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

func notifications(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		create table notifications(
			id text not null primary key,
			receiving_account_id text not null references accounts(id) on delete cascade,
			triggering_account_id text references accounts(id) on delete cascade,
			post_id text references posts(id) on delete cascade,
			notification_type text not null,
			created_at integer not null,
			unique(receiving_account_id, triggering_account_id, post_id, notification_type)
		)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `create index notifications_receiver on notifications(receiving_account_id, created_at)`); err != nil {
		return err
	}

	return nil
}
