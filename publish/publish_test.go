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

package publish

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/migrations"
	"github.com/corvidnet/corvid/queue"
	"github.com/corvidnet/corvid/store"
)

func newTestPublisher(t *testing.T) (*Publisher, *store.Store) {
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(context.Background(), slog.Default(), db))

	st := &store.Store{DB: db}
	var c cfg.Config
	c.FillDefaults()
	return New(st, queue.New(st, &c)), st
}

func insertAccount(t *testing.T, st *store.Store, a *store.Account) {
	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		return store.UpsertAccount(context.Background(), tx, a)
	}))
}

func queuedJobCount(t *testing.T, st *store.Store, kind string) int {
	var count int
	require.NoError(t, st.DB.QueryRow(`
		select count(*) from jobs j
		join job_contexts jc on jc.job_id = j.id
		where jc.kind = ?`, kind).Scan(&count))
	return count
}

func newLocalAccount(id, username string) *store.Account {
	now := time.Now()
	a := &store.Account{ID: id, Kind: store.KindPerson, Username: username, URL: "https://corvid.example/users/" + username, Local: true, CreatedAt: now, UpdatedAt: now}
	a.FollowersURL = sql.NullString{String: a.URL + "/followers", Valid: true}
	return a
}

func newRemoteFollower(id, username string) *store.Account {
	now := time.Now()
	a := &store.Account{ID: id, Kind: store.KindPerson, Username: username, URL: "https://remote.example/users/" + username, Local: false, CreatedAt: now, UpdatedAt: now}
	a.Domain = sql.NullString{String: "remote.example", Valid: true}
	a.InboxURL = sql.NullString{String: a.URL + "/inbox", Valid: true}
	return a
}

func TestPostEnqueuesDeliverManyToFollowers(t *testing.T) {
	p, st := newTestPublisher(t)

	author := newLocalAccount("a1", "alice")
	follower := newRemoteFollower("a2", "bob")
	insertAccount(t, st, author)
	insertAccount(t, st, follower)

	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		follow := &store.Follow{ID: "f1", AccountID: author.ID, FollowerID: follower.ID, URL: "https://remote.example/follows/1", ApprovedAt: sql.NullTime{Time: time.Now(), Valid: true}, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		return store.InsertFollow(context.Background(), tx, follow)
	}))

	now := time.Now()
	post := &store.Post{ID: "p1", AccountID: author.ID, Content: "hello", Visibility: store.Public, URL: author.URL + "/posts/1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		return store.UpsertPost(context.Background(), tx, post)
	}))

	require.NoError(t, p.Post(context.Background(), post, author))
	assert.Equal(t, 1, queuedJobCount(t, st, queue.KindDeliverMany))
}

func TestDeletePostWithNoRecipientsIsNoop(t *testing.T) {
	p, st := newTestPublisher(t)

	author := newLocalAccount("a1", "alice")
	author.FollowersURL = sql.NullString{}
	insertAccount(t, st, author)

	now := time.Now()
	post := &store.Post{ID: "p1", AccountID: author.ID, Content: "hello", Visibility: store.MentionOnly, URL: author.URL + "/posts/1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		return store.UpsertPost(context.Background(), tx, post)
	}))

	require.NoError(t, p.DeletePost(context.Background(), post, author))
	assert.Equal(t, 0, queuedJobCount(t, st, queue.KindDeliverMany), "a post with no resolvable recipients enqueues nothing")
}

func TestFollowEnqueuesDeliverMany(t *testing.T) {
	p, st := newTestPublisher(t)

	follower := newLocalAccount("a1", "alice")
	followee := newRemoteFollower("a2", "bob")
	insertAccount(t, st, follower)
	insertAccount(t, st, followee)

	follow := &store.Follow{ID: "f1", AccountID: followee.ID, FollowerID: follower.ID, URL: "https://corvid.example/follows/1", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		return store.InsertFollow(context.Background(), tx, follow)
	}))

	require.NoError(t, p.Follow(context.Background(), follow, follower, followee))
	assert.Equal(t, 1, queuedJobCount(t, st, queue.KindDeliverMany))
}

func TestUnfollowEnqueuesDeliverMany(t *testing.T) {
	p, st := newTestPublisher(t)

	follower := newLocalAccount("a1", "alice")
	followee := newRemoteFollower("a2", "bob")
	insertAccount(t, st, follower)
	insertAccount(t, st, followee)

	follow := &store.Follow{ID: "f1", AccountID: followee.ID, FollowerID: follower.ID, URL: "https://corvid.example/follows/1", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		return store.InsertFollow(context.Background(), tx, follow)
	}))

	require.NoError(t, p.Unfollow(context.Background(), follow, follower, followee))
	assert.Equal(t, 1, queuedJobCount(t, st, queue.KindDeliverMany))
}

func TestLikeEnqueuesDeliverManyToPostAuthor(t *testing.T) {
	p, st := newTestPublisher(t)

	liker := newLocalAccount("a1", "alice")
	postAuthor := newRemoteFollower("a2", "bob")
	insertAccount(t, st, liker)
	insertAccount(t, st, postAuthor)

	now := time.Now()
	post := &store.Post{ID: "p1", AccountID: postAuthor.ID, Content: "hi", Visibility: store.Public, URL: postAuthor.URL + "/posts/1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		return store.UpsertPost(context.Background(), tx, post)
	}))

	fav := &store.Favourite{ID: "fav1", AccountID: liker.ID, PostID: post.ID, URL: "https://corvid.example/likes/1", CreatedAt: now}
	require.NoError(t, p.Like(context.Background(), fav, liker, post))
	assert.Equal(t, 1, queuedJobCount(t, st, queue.KindDeliverMany))
}

func TestEditAccountEnqueuesDeliverManyToFollowers(t *testing.T) {
	p, st := newTestPublisher(t)

	author := newLocalAccount("a1", "alice")
	follower := newRemoteFollower("a2", "bob")
	insertAccount(t, st, author)
	insertAccount(t, st, follower)

	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		follow := &store.Follow{ID: "f1", AccountID: author.ID, FollowerID: follower.ID, URL: "https://remote.example/follows/1", ApprovedAt: sql.NullTime{Time: time.Now(), Valid: true}, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		return store.InsertFollow(context.Background(), tx, follow)
	}))

	key := &store.CryptographicKey{ID: author.URL + "#main-key", PublicKey: "PEM", CreatedAt: time.Now()}
	require.NoError(t, p.EditAccount(context.Background(), author, key))
	assert.Equal(t, 1, queuedJobCount(t, st, queue.KindDeliverMany))
}
