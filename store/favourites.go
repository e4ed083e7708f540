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

// InsertFavourite inserts a Favourite; (account_id, post_id) conflicts
// are ignored, matching repeated Like delivery being idempotent.
func InsertFavourite(ctx context.Context, tx *sql.Tx, f *Favourite) error {
	if _, err := tx.ExecContext(ctx, `
		insert into favourites(id, account_id, post_id, url, created_at)
		values(?, ?, ?, ?, ?)
		on conflict(account_id, post_id) do nothing`,
		f.ID, f.AccountID, f.PostID, f.URL, f.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert favourite %s: %w", f.URL, err)
	}
	return nil
}

// DeleteFavouriteByURLOwnedBy deletes the Favourite whose url matches and
// whose account_id is ownerID, the effect of an inbound Undo(Like).
func DeleteFavouriteByURLOwnedBy(ctx context.Context, tx *sql.Tx, url, ownerID string) error {
	if _, err := tx.ExecContext(ctx, `delete from favourites where url = ? and account_id = ?`, url, ownerID); err != nil {
		return fmt.Errorf("failed to delete favourite %s: %w", url, err)
	}
	return nil
}
