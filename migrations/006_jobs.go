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

func jobs(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		create table jobs(
			id text not null primary key,
			state text not null,
			fail_count integer not null default 0,
			run_at integer not null,
			created_at integer not null,
			updated_at integer not null
		)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `create index jobs_state_run_at on jobs(state, run_at)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		create table job_contexts(
			job_id text not null primary key references jobs(id) on delete cascade,
			kind text not null,
			meta text not null
		)`); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		create table delivery_attempts(
			job_id text not null references jobs(id) on delete cascade,
			inbox_url text not null,
			delivered_at integer,
			primary key(job_id, inbox_url)
		)`); err != nil {
		return err
	}

	return nil
}
