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

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/corvidnet/corvid/data"
)

// EnqueueJob inserts a JobContext and its owning Job row in state Queued.
func EnqueueJob(ctx context.Context, tx *sql.Tx, j *Job, jc *JobContext) error {
	if _, err := tx.ExecContext(ctx, `
		insert into job_contexts(job_id, kind, meta) values(?, ?, ?)`,
		jc.JobID, jc.Kind, jc.Meta,
	); err != nil {
		return fmt.Errorf("failed to insert job context %s: %w", j.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		insert into jobs(id, state, fail_count, run_at, created_at, updated_at)
		values(?, ?, ?, ?, ?, ?)`,
		j.ID, JobQueued, j.FailCount, j.RunAt, j.CreatedAt, j.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", j.ID, err)
	}

	return nil
}

// LeaseJobs claims up to n runnable jobs, atomically transitioning them to
// Running. A job is runnable if it's Queued or Failed and due (run_at in
// the past), or if it's Running but hasn't been touched in minIdleTime,
// meaning its previous lease holder is presumed dead.
//
// SQLite has no SELECT FOR UPDATE SKIP LOCKED; the claim instead relies
// on an UPDATE whose WHERE clause embeds the same selection as a
// subquery with RETURNING, which commits atomically under SQLite's
// single-writer locking and so never double-leases a row to two
// concurrent callers.
func LeaseJobs(ctx context.Context, db *sql.DB, n int, now time.Time, minIdleTime time.Duration) ([]Job, error) {
	cutoff := now.Add(-minIdleTime)

	rows, err := data.CollectRows[Job](ctx, db, `
		update jobs set state = ?, updated_at = ?
		where id in (
			select id from jobs
			where (state in (?, ?) and run_at <= ?)
			   or (state = ? and updated_at < ?)
			order by run_at
			limit ?
		)
		returning id, state, fail_count, run_at, created_at, updated_at`,
		JobRunning, now,
		JobQueued, JobFailed, now,
		JobRunning, cutoff,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to lease jobs: %w", err)
	}
	return rows, nil
}

// JobContextByJobID returns the payload a leased job resumes with.
func JobContextByJobID(ctx context.Context, db *sql.DB, jobID string) (*JobContext, error) {
	rows, err := data.CollectRows[JobContext](ctx, db, `select job_id, kind, meta from job_contexts where job_id = ?`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job context %s: %w", jobID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// TouchJob refreshes updated_at on a live lease so LeaseJobs doesn't
// treat it as stalled while a worker is still making progress on it.
func TouchJob(ctx context.Context, db *sql.DB, id string, now time.Time) error {
	if _, err := db.ExecContext(ctx, `update jobs set updated_at = ? where id = ? and state = ?`, now, id, JobRunning); err != nil {
		return fmt.Errorf("failed to touch job %s: %w", id, err)
	}
	return nil
}

// CompleteJobSuccess deletes a succeeded job and its context; Succeeded
// rows don't persist past completion.
func CompleteJobSuccess(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `delete from job_contexts where job_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete job context %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `delete from jobs where id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return nil
}

// RescheduleJobFailure records a failed attempt and reschedules the job
// for runAt, the caller's computed exponential-backoff-with-jitter
// deadline for failCount.
func RescheduleJobFailure(ctx context.Context, tx *sql.Tx, id string, failCount int, runAt, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `
		update jobs set state = ?, fail_count = ?, run_at = ?, updated_at = ? where id = ?`,
		JobFailed, failCount, runAt, now, id,
	); err != nil {
		return fmt.Errorf("failed to reschedule job %s: %w", id, err)
	}
	return nil
}

// DeadLetterJob discards a job whose retry budget is exhausted.
func DeadLetterJob(ctx context.Context, tx *sql.Tx, id string) error {
	return CompleteJobSuccess(ctx, tx, id)
}
