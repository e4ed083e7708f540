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

// LinkPreviewByURL returns a cached preview, or nil if absent or expired.
func LinkPreviewByURL(ctx context.Context, db *sql.DB, url string, now time.Time) (*LinkPreview, error) {
	rows, err := data.CollectRows[LinkPreview](
		ctx, db,
		`select url, payload, expires_at from link_previews where url = ? and expires_at > ?`,
		url, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query link preview %s: %w", url, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// PutLinkPreview stores or refreshes a rendered preview payload.
func PutLinkPreview(ctx context.Context, db *sql.DB, lp *LinkPreview) error {
	if _, err := db.ExecContext(ctx, `
		insert into link_previews(url, payload, expires_at) values(?, ?, ?)
		on conflict(url) do update set payload = excluded.payload, expires_at = excluded.expires_at`,
		lp.URL, lp.Payload, lp.ExpiresAt,
	); err != nil {
		return fmt.Errorf("failed to store link preview %s: %w", lp.URL, err)
	}
	return nil
}
