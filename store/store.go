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

// Package store is the relational persistence layer: accounts, keys,
// posts, follows, favourites, mentions, notifications and the job queue
// tables backing the rest of the federation core.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/corvidnet/corvid/cfg"
)

// Store wraps a connection pool with the transaction-scoping convention
// this package follows: functions take either the *sql.DB pool or a
// short-lived *sql.Tx, never a bare connection. Multi-row writes take a
// *sql.Tx; single-statement writes such as RecordDelivery, LeaseJobs
// and PutLinkPreview run directly on the *sql.DB.
type Store struct {
	DB *sql.DB
}

// Open opens the SQLite database at path and bounds the pool per cfg.
func Open(path string, c *cfg.Config) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?"+c.DatabaseOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	db.SetMaxOpenConns(c.DatabasePoolSize)

	return &Store{DB: db}, nil
}

// Run executes f inside a transaction, committing on success and rolling
// back on error or panic.
func (s *Store) Run(ctx context.Context, f func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := f(tx); err != nil {
		return err
	}

	return tx.Commit()
}
