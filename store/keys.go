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

// KeyByID returns the CryptographicKey identified by its IRI.
func KeyByID(ctx context.Context, db *sql.DB, id string) (*CryptographicKey, error) {
	rows, err := data.CollectRows[CryptographicKey](
		ctx, db,
		`select id, public_key, private_key, created_at from cryptographic_keys where id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query key %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// LocalKeyForAccount returns the one key with a private_key an owning
// local account is expected to carry.
func LocalKeyForAccount(ctx context.Context, db *sql.DB, accountID string) (*CryptographicKey, error) {
	rows, err := data.CollectRows[CryptographicKey](
		ctx, db,
		`select k.id, k.public_key, k.private_key, k.created_at
		 from cryptographic_keys k
		 join account_keys ak on ak.key_id = k.id
		 where ak.account_id = ? and k.private_key is not null
		 limit 1`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query signing key for %s: %w", accountID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// AnyKeyForAccount returns one key bound to accountID, public or
// private; used to verify a remote signer's signature, where only the
// public half is ever populated.
func AnyKeyForAccount(ctx context.Context, db *sql.DB, accountID string) (*CryptographicKey, error) {
	rows, err := data.CollectRows[CryptographicKey](
		ctx, db,
		`select k.id, k.public_key, k.private_key, k.created_at
		 from cryptographic_keys k
		 join account_keys ak on ak.key_id = k.id
		 where ak.account_id = ?
		 limit 1`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query key for %s: %w", accountID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// AccountByKeyID returns the Account that owns the key identified by
// keyID, the lookup an inbound signature's keyId resolves to its signer.
func AccountByKeyID(ctx context.Context, db *sql.DB, keyID string) (*Account, error) {
	rows, err := data.CollectRows[Account](ctx, db, `
		select `+accountColumns+`
		from accounts a
		join account_keys ak on ak.account_id = a.id
		where ak.key_id = ?`,
		keyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query account for key %s: %w", keyID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// UpsertKey inserts key, or on id conflict updates public_key (re-key on
// rotation); accountID binds it to its owner via account_keys.
func UpsertKey(ctx context.Context, tx *sql.Tx, key *CryptographicKey, accountID string) error {
	if _, err := tx.ExecContext(ctx, `
		insert into cryptographic_keys(id, public_key, private_key, created_at)
		values(?, ?, ?, ?)
		on conflict(id) do update set public_key = excluded.public_key`,
		key.ID, key.PublicKey, key.PrivateKey, key.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert key %s: %w", key.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		insert into account_keys(account_id, key_id) values(?, ?)
		on conflict(account_id, key_id) do nothing`,
		accountID, key.ID,
	); err != nil {
		return fmt.Errorf("failed to bind key %s to account %s: %w", key.ID, accountID, err)
	}

	return nil
}
