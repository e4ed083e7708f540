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

package resolver

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/cache"
	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/filter"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/migrations"
	"github.com/corvidnet/corvid/store"
)

func newTestResolver(t *testing.T, domain string) *Resolver {
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(context.Background(), slog.Default(), db))

	var c cfg.Config
	c.FillDefaults()

	return New(domain, &c, nil, cache.NewCaches(&c), &store.Store{DB: db})
}

func TestResolveActorMissingHost(t *testing.T) {
	r := newTestResolver(t, "corvid.example")
	_, err := r.ResolveActor(context.Background(), httpsig.Key{}, "not-a-url", nil, false)
	assert.ErrorIs(t, err, ErrMissingHost)
}

func TestResolveActorBlockedInstance(t *testing.T) {
	r := newTestResolver(t, "corvid.example")

	path := filepath.Join(t.TempDir(), "deny.csv")
	require.NoError(t, os.WriteFile(path, []byte("domain\nblocked.example\n"), 0o644))
	f, err := filter.New(slog.Default(), filter.Deny, path)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	r.Filter = f

	_, err = r.ResolveActor(context.Background(), httpsig.Key{}, "https://blocked.example/users/eve", nil, false)
	assert.ErrorIs(t, err, ErrBlockedInstance)
}

func TestResolveActorNoLocalActorOnMiss(t *testing.T) {
	r := newTestResolver(t, "corvid.example")
	_, err := r.ResolveActor(context.Background(), httpsig.Key{}, "https://corvid.example/users/ghost", nil, false)
	assert.ErrorIs(t, err, ErrNoLocalActor)
}

func TestResolveActorCacheHit(t *testing.T) {
	r := newTestResolver(t, "corvid.example")
	cached := &store.Account{ID: "a1", URL: "https://remote.example/users/bob"}
	r.Caches.Accounts.Set(cached.URL, cached)

	a, err := r.ResolveActor(context.Background(), httpsig.Key{}, cached.URL, nil, false)
	require.NoError(t, err)
	assert.Same(t, cached, a)
}

func TestResolveActorStoreHit(t *testing.T) {
	r := newTestResolver(t, "corvid.example")
	now := time.Now()
	account := &store.Account{ID: "a1", Kind: store.KindPerson, Username: "bob", URL: "https://remote.example/users/bob", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, r.Store.Run(context.Background(), func(tx *sql.Tx) error {
		return store.UpsertAccount(context.Background(), tx, account)
	}))

	a, err := r.ResolveActor(context.Background(), httpsig.Key{}, account.URL, nil, false)
	require.NoError(t, err)
	assert.Equal(t, account.ID, a.ID)

	_, ok := r.Caches.Accounts.Get(account.URL)
	assert.True(t, ok, "a store hit should populate the cache")
}

func TestFetchPostDepthBoundStopsWithoutNetwork(t *testing.T) {
	r := newTestResolver(t, "corvid.example")
	r.Config.MaxFetchDepth = 2

	p, err := r.FetchPost(context.Background(), httpsig.Key{}, "https://remote.example/posts/deep", 3)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestFetchPostCacheHit(t *testing.T) {
	r := newTestResolver(t, "corvid.example")
	cached := &store.Post{ID: "p1", URL: "https://remote.example/posts/1"}
	r.Caches.Posts.Set(cached.URL, cached)

	p, err := r.FetchPost(context.Background(), httpsig.Key{}, cached.URL, 0)
	require.NoError(t, err)
	assert.Same(t, cached, p)
}

// TestResolveActorFetchesAndCanonicalizesOverNetwork exercises the full
// network path: fetching an unknown actor document, verifying it via a
// matching WebFinger self link, and persisting the result. Like inbox's
// lookupAccountID for a mention, it passes a non-nil *ap.Acct, so
// canonicalize's WebFinger lookup starts from the caller's expected
// handle. The resolver signs every GET, so it is given a real key.
func TestResolveActorFetchesAndCanonicalizesOverNetwork(t *testing.T) {
	var actorID string
	mux := http.NewServeMux()
	mux.HandleFunc("/users/carol", func(w http.ResponseWriter, req *http.Request) {
		actor := ap.Actor{ID: actorID, Type: ap.Person, PreferredUsername: "carol", Inbox: actorID + "/inbox"}
		json.NewEncoder(w).Encode(actor)
	})
	mux.HandleFunc("/.well-known/webfinger", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, `{"subject":"acct:carol@%s","links":[{"rel":"self","type":"application/activity+json","href":%q}]}`, req.Host, actorID)
	})
	ts := httptest.NewTLSServer(mux)
	defer ts.Close()

	actorID = ts.URL + "/users/carol"

	r := newTestResolver(t, "corvid.example")
	r.Client = ts.Client()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	key := httpsig.Key{ID: "https://corvid.example/users/alice#main-key", PrivateKey: priv}

	acct := &ap.Acct{Name: "carol", Host: ts.Listener.Addr().String()}
	account, err := r.ResolveActor(context.Background(), key, actorID, acct, false)
	require.NoError(t, err)
	assert.Equal(t, "carol", account.Username)
	assert.False(t, account.Local)

	stored, err := store.AccountByURL(context.Background(), r.Store.DB, actorID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, account.ID, stored.ID)
}
