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
)

// DeliveryAttempted reports whether jobID has already recorded a
// confirmed delivery to inbox, so a retried job doesn't re-POST to
// recipients it already reached.
func DeliveryAttempted(ctx context.Context, db *sql.DB, jobID, inbox string) (bool, error) {
	var delivered int
	err := db.QueryRowContext(ctx,
		`select exists(select 1 from delivery_attempts where job_id = ? and inbox_url = ? and delivered_at is not null)`,
		jobID, inbox,
	).Scan(&delivered)
	if err != nil {
		return false, fmt.Errorf("failed to check delivery attempt for %s: %w", inbox, err)
	}
	return delivered == 1, nil
}

// RecordDelivery marks inbox as successfully delivered for jobID.
func RecordDelivery(ctx context.Context, db *sql.DB, jobID, inbox string, deliveredAt time.Time) error {
	_, err := db.ExecContext(ctx, `
		insert into delivery_attempts(job_id, inbox_url, delivered_at) values(?, ?, ?)
		on conflict(job_id, inbox_url) do update set delivered_at = excluded.delivered_at`,
		jobID, inbox, deliveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery to %s: %w", inbox, err)
	}
	return nil
}
