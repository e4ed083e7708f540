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

package outbox

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

func TestCreateNoMentionsNoReply(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()

	author := &store.Account{
		ID: "a1", Kind: store.KindPerson, Username: "alice", URL: "https://corvid.example/users/alice",
		Local: true, CreatedAt: now, UpdatedAt: now,
	}
	author.FollowersURL.Valid = true
	author.FollowersURL.String = "https://corvid.example/users/alice/followers"
	insertAccount(t, st, author)

	post := &store.Post{
		ID: "p1", AccountID: author.ID, Content: "hello",
		Visibility: store.Public, URL: "https://corvid.example/posts/p1",
		CreatedAt: now, UpdatedAt: now,
	}

	activity, err := Create(context.Background(), st, post, author)
	require.NoError(t, err)
	assert.Equal(t, ap.Create, activity.Type)
	assert.Equal(t, post.URL+"/activity", activity.ID)
	assert.Equal(t, author.URL, activity.Actor)
	assert.True(t, activity.To.Contains(ap.Public))

	obj, ok := activity.Object.(*ap.Object)
	require.True(t, ok)
	assert.Equal(t, post.URL, obj.ID)
	assert.Equal(t, ap.Note, obj.Type)
	assert.Equal(t, "hello", obj.Content)
	assert.Empty(t, obj.InReplyTo)
}

func TestUpdateChangesIDAndType(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()

	author := &store.Account{
		ID: "a1", Kind: store.KindPerson, Username: "alice", URL: "https://corvid.example/users/alice",
		Local: true, CreatedAt: now, UpdatedAt: now,
	}
	insertAccount(t, st, author)

	post := &store.Post{
		ID: "p1", AccountID: author.ID, Content: "edited",
		Visibility: store.FollowerOnly, URL: "https://corvid.example/posts/p1",
		CreatedAt: now, UpdatedAt: now,
	}

	activity, err := Update(context.Background(), st, post, author)
	require.NoError(t, err)
	assert.Equal(t, ap.Update, activity.Type)
	assert.Equal(t, post.URL+"/update", activity.ID)
}

func TestDeleteBuildsTombstone(t *testing.T) {
	author := &store.Account{URL: "https://corvid.example/users/alice"}
	post := &store.Post{URL: "https://corvid.example/posts/p1", Visibility: store.Public}

	activity := Delete(post, author)
	assert.Equal(t, ap.Delete, activity.Type)
	assert.Equal(t, post.URL+"#delete", activity.ID)

	obj, ok := activity.Object.(*ap.Object)
	require.True(t, ok)
	assert.Equal(t, post.URL, obj.ID)
	assert.Equal(t, ap.Tombstone, obj.Type)
}

func TestAnnounceReferencesRepostedURL(t *testing.T) {
	author := &store.Account{URL: "https://corvid.example/users/alice"}
	reposted := &store.Post{URL: "https://remote.example/posts/1"}
	repost := &store.Post{URL: "https://corvid.example/posts/p2", Visibility: store.Public, CreatedAt: time.Now()}

	activity := Announce(repost, reposted, author)
	assert.Equal(t, ap.Announce, activity.Type)
	assert.Equal(t, reposted.URL, activity.Object)
}
