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
)

// InsertNotification inserts a Notification, deduplicating on the natural
// tuple (receiver, trigger, post, type).
func InsertNotification(ctx context.Context, tx *sql.Tx, n *Notification) error {
	if _, err := tx.ExecContext(ctx, `
		insert into notifications(id, receiving_account_id, triggering_account_id, post_id, notification_type, created_at)
		values(?, ?, ?, ?, ?, ?)
		on conflict(receiving_account_id, triggering_account_id, post_id, notification_type) do nothing`,
		n.ID, n.ReceivingAccountID, n.TriggeringAccountID, n.PostID, n.NotificationType, n.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}
