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

const followColumns = `id, account_id, follower_id, approved_at, url, notify, created_at, updated_at`

// FollowByURL returns the Follow whose activity IRI is url.
func FollowByURL(ctx context.Context, db *sql.DB, url string) (*Follow, error) {
	rows, err := data.CollectRows[Follow](ctx, db, `select `+followColumns+` from follows where url = ?`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow by url: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// InsertFollow inserts a pending or pre-approved Follow row.
func InsertFollow(ctx context.Context, tx *sql.Tx, f *Follow) error {
	if _, err := tx.ExecContext(ctx, `
		insert into follows(`+followColumns+`)
		values(?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.AccountID, f.FollowerID, f.ApprovedAt, f.URL, f.Notify, f.CreatedAt, f.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert follow %s: %w", f.URL, err)
	}
	return nil
}

// ApproveFollowByURL sets approved_at on the Follow whose url matches, the
// effect of an inbound Accept.
func ApproveFollowByURL(ctx context.Context, tx *sql.Tx, url string, approvedAt time.Time) error {
	if _, err := tx.ExecContext(ctx, `update follows set approved_at = ?, updated_at = ? where url = ?`, approvedAt, approvedAt, url); err != nil {
		return fmt.Errorf("failed to approve follow %s: %w", url, err)
	}
	return nil
}

// DeleteFollowByURLOwnedBy deletes the Follow whose url matches and whose
// follower_id is followerID, used when the follower undoes its own Follow.
func DeleteFollowByURLOwnedBy(ctx context.Context, tx *sql.Tx, url, followerID string) error {
	if _, err := tx.ExecContext(ctx, `delete from follows where url = ? and follower_id = ?`, url, followerID); err != nil {
		return fmt.Errorf("failed to delete follow %s: %w", url, err)
	}
	return nil
}

// DeleteFollowByURLAndAccount deletes the Follow whose url matches and
// whose account_id (followee) is accountID, the effect of an inbound
// Reject.
func DeleteFollowByURLAndAccount(ctx context.Context, tx *sql.Tx, url, accountID string) error {
	if _, err := tx.ExecContext(ctx, `delete from follows where url = ? and account_id = ?`, url, accountID); err != nil {
		return fmt.Errorf("failed to delete follow %s: %w", url, err)
	}
	return nil
}

// FollowerInboxes returns the delivery target for each approved remote
// follower of accountID: the shared inbox where advertised, else the
// follower's own inbox. Local followers are excluded, since delivery
// never needs the network for them.
func FollowerInboxes(ctx context.Context, db *sql.DB, accountID string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		select distinct coalesce(nullif(a.shared_inbox_url, ''), a.inbox_url)
		from follows f
		join accounts a on a.id = f.follower_id
		where f.account_id = ? and f.approved_at is not null and a.local = 0 and a.inbox_url is not null`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query follower inboxes for %s: %w", accountID, err)
	}
	defer rows.Close()

	var inboxes []string
	for rows.Next() {
		var inbox sql.NullString
		if err := rows.Scan(&inbox); err != nil {
			return nil, err
		}
		if inbox.Valid && inbox.String != "" {
			inboxes = append(inboxes, inbox.String)
		}
	}
	return inboxes, rows.Err()
}
