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

package delivery

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/migrations"
	"github.com/corvidnet/corvid/store"
)

func newTestStore(t *testing.T) *store.Store {
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(context.Background(), slog.Default(), db))
	return &store.Store{DB: db}
}

func insertAccount(t *testing.T, st *store.Store, a *store.Account) {
	err := st.Run(context.Background(), func(tx *sql.Tx) error {
		return store.UpsertAccount(context.Background(), tx, a)
	})
	require.NoError(t, err)
}

func newRemoteAccount(id, username, inbox, sharedInbox string) *store.Account {
	a := &store.Account{
		ID: id, Kind: store.KindPerson, Username: username,
		URL: "https://remote.example/users/" + username,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	a.Domain.Valid = true
	a.Domain.String = "remote.example"
	a.InboxURL.Valid = true
	a.InboxURL.String = inbox
	if sharedInbox != "" {
		a.SharedInboxURL.Valid = true
		a.SharedInboxURL.String = sharedInbox
	}
	return a
}

func TestRecipientsDirectMention(t *testing.T) {
	st := newTestStore(t)
	author := &store.Account{ID: "a1", Kind: store.KindPerson, Username: "alice", URL: "https://corvid.example/users/alice", Local: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	insertAccount(t, st, author)

	bob := newRemoteAccount("b1", "bob", "https://remote.example/users/bob/inbox", "")
	insertAccount(t, st, bob)

	var to ap.Audience
	to.Add(bob.URL)

	inboxes, err := Recipients(context.Background(), st, author, to, ap.Audience{})
	require.NoError(t, err)
	assert.Equal(t, []string{bob.URL + "/inbox"}, inboxes)
}

func TestRecipientsPublicPrefersSharedInbox(t *testing.T) {
	st := newTestStore(t)
	author := &store.Account{ID: "a1", Kind: store.KindPerson, Username: "alice", URL: "https://corvid.example/users/alice", Local: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	insertAccount(t, st, author)

	bob := newRemoteAccount("b1", "bob", "https://remote.example/users/bob/inbox", "https://remote.example/inbox")
	insertAccount(t, st, bob)

	var to ap.Audience
	to.Add(ap.Public)
	to.Add(bob.URL)

	inboxes, err := Recipients(context.Background(), st, author, to, ap.Audience{})
	require.NoError(t, err)
	assert.Contains(t, inboxes, "https://remote.example/inbox")
	assert.NotContains(t, inboxes, bob.URL+"/inbox")
}

func TestRecipientsSkipsLocalAndSelf(t *testing.T) {
	st := newTestStore(t)
	author := &store.Account{ID: "a1", Kind: store.KindPerson, Username: "alice", URL: "https://corvid.example/users/alice", Local: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	insertAccount(t, st, author)

	local2 := &store.Account{ID: "a2", Kind: store.KindPerson, Username: "carol", URL: "https://corvid.example/users/carol", Local: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	local2.InboxURL.Valid = true
	local2.InboxURL.String = "https://corvid.example/users/carol/inbox"
	insertAccount(t, st, local2)

	var to ap.Audience
	to.Add(author.URL)
	to.Add(local2.URL)

	inboxes, err := Recipients(context.Background(), st, author, to, ap.Audience{})
	require.NoError(t, err)
	assert.Empty(t, inboxes)
}
