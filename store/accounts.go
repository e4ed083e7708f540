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

	"github.com/corvidnet/corvid/data"
)

const accountColumns = `id, kind, username, domain, url, display_name, note, avatar_id, header_id, locked, local, inbox_url, shared_inbox_url, outbox_url, followers_url, following_url, featured_collection_url, created_at, updated_at`

// AccountByURL returns the Account whose canonical IRI is url, or nil if
// none is known locally.
func AccountByURL(ctx context.Context, db *sql.DB, url string) (*Account, error) {
	rows, err := data.CollectRows[Account](ctx, db, `select `+accountColumns+` from accounts where url = ?`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query account by url: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// AccountByID returns the Account with the given surrogate key.
func AccountByID(ctx context.Context, db *sql.DB, id string) (*Account, error) {
	rows, err := data.CollectRows[Account](ctx, db, `select `+accountColumns+` from accounts where id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query account %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// AccountByHandle looks a local or remote account up by (username, domain);
// domain == "" means local.
func AccountByHandle(ctx context.Context, db *sql.DB, username, domain string) (*Account, error) {
	rows, err := data.CollectRows[Account](
		ctx, db,
		`select `+accountColumns+` from accounts where lower(username) = lower(?) and lower(coalesce(domain, '')) = lower(?)`,
		username, domain,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query account by handle: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// AnyLocalAccountWithKey returns one local account that carries a
// signing key, the identity used to authenticate outbound resolver
// fetches made on behalf of the shared inbox, which has no single
// addressee to sign as.
func AnyLocalAccountWithKey(ctx context.Context, db *sql.DB) (*Account, error) {
	rows, err := data.CollectRows[Account](
		ctx, db,
		`select `+accountColumns+` from accounts a
		 where a.local = 1 and exists(
			 select 1 from account_keys ak
			 join cryptographic_keys k on k.id = ak.key_id
			 where ak.account_id = a.id and k.private_key is not null
		 )
		 order by a.created_at
		 limit 1`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query a local signing account: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpsertAccount inserts account, or on url conflict updates the fields a
// re-fetch may have changed: display name, note, lock state and the
// inbox and collection endpoints a profile edit could touch. Either way
// a.ID is set to the stored row's ID, which on a conflict is the
// existing one.
func UpsertAccount(ctx context.Context, tx *sql.Tx, a *Account) error {
	err := tx.QueryRowContext(ctx, `
		insert into accounts(`+accountColumns+`)
		values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		on conflict(url) do update set
			display_name = excluded.display_name,
			note = excluded.note,
			locked = excluded.locked,
			inbox_url = excluded.inbox_url,
			shared_inbox_url = excluded.shared_inbox_url,
			outbox_url = excluded.outbox_url,
			followers_url = excluded.followers_url,
			following_url = excluded.following_url,
			updated_at = excluded.updated_at
		returning id`,
		a.ID, a.Kind, a.Username, a.Domain, a.URL, a.DisplayName, a.Note, a.AvatarID, a.HeaderID,
		a.Locked, a.Local, a.InboxURL, a.SharedInboxURL, a.OutboxURL, a.FollowersURL, a.FollowingURL,
		a.FeaturedCollectionURL, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert account %s: %w", a.URL, err)
	}
	return nil
}
