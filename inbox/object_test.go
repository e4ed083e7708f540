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

package inbox

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/cache"
	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/resolver"
	"github.com/corvidnet/corvid/store"
)

func TestMentionAcctParsesHandleAndFallsBackWithoutHost(t *testing.T) {
	acct := mentionAcct("@carol@remote.example")
	require.NotNil(t, acct)
	assert.Equal(t, "carol", acct.Name)
	assert.Equal(t, "remote.example", acct.Host)

	assert.Nil(t, mentionAcct("carol"), "a bare name with no host yields no cross-check")
}

func TestReceptionVisibilityAddressingTable(t *testing.T) {
	public := &ap.Object{}
	public.To.Add(ap.Public)
	assert.Equal(t, store.Public, receptionVisibility(public))

	unlisted := &ap.Object{}
	unlisted.CC.Add(ap.Public)
	assert.Equal(t, store.Unlisted, receptionVisibility(unlisted))

	followerOnly := &ap.Object{}
	followerOnly.To.Add("https://corvid.example/users/alice/followers")
	assert.Equal(t, store.FollowerOnly, receptionVisibility(followerOnly))

	direct := &ap.Object{}
	assert.Equal(t, store.MentionOnly, receptionVisibility(direct))
}

func TestLookupAccountIDReturnsLocalStoreHitWithoutResolver(t *testing.T) {
	p, db := newTestPipeline(t)

	mentioned := newAccount("a1", "alice", "https://corvid.example/users/alice", true)
	mustInsertAccount(t, db, mentioned)

	// p.Resolver is left nil: a local hit must not reach it.
	id, err := p.lookupAccountID(context.Background(), httpsig.Key{}, mentioned.URL, "@alice")
	require.NoError(t, err)
	assert.Equal(t, mentioned.ID, id)
}

func TestLookupAccountIDFallsBackToResolverOnMiss(t *testing.T) {
	p, db := newTestPipeline(t)

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

	var c cfg.Config
	c.FillDefaults()
	r := resolver.New("corvid.example", &c, nil, cache.NewCaches(&c), &store.Store{DB: db})
	r.Client = ts.Client()
	p.Resolver = r

	// the resolver signs every GET, so it needs a real key.
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	key := httpsig.Key{ID: "https://corvid.example/users/alice#main-key", PrivateKey: priv}

	name := "@carol@" + ts.Listener.Addr().String()
	id, err := p.lookupAccountID(context.Background(), key, actorID, name)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	stored, err := store.AccountByURL(context.Background(), db, actorID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, id, stored.ID)
}

func TestLookupAccountIDDropsMentionOnUnresolvableHref(t *testing.T) {
	p, db := newTestPipeline(t)

	var c cfg.Config
	c.FillDefaults()
	r := resolver.New("corvid.example", &c, nil, cache.NewCaches(&c), &store.Store{DB: db})
	r.Client = &http.Client{Timeout: time.Millisecond}
	p.Resolver = r

	// No host in the bogus id, resolution fails, and the mention is
	// dropped rather than propagated as an ingestion error.
	id, err := p.lookupAccountID(context.Background(), httpsig.Key{}, "not-a-url", "@ghost")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestProcessObjectCreatesLocalPostWithoutMentions(t *testing.T) {
	p, db := newTestPipeline(t)

	author := newAccount("a1", "alice", "https://corvid.example/users/alice", true)
	mustInsertAccount(t, db, author)

	obj := &ap.Object{ID: "https://corvid.example/posts/1", AttributedTo: author.URL, Content: "hello"}
	obj.To.Add(ap.Public)

	require.NoError(t, p.processObject(context.Background(), httpsig.Key{}, author, obj))

	got, err := store.PostByURL(context.Background(), db, obj.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, author.ID, got.AccountID)
	assert.Equal(t, store.Public, got.Visibility)
}

func TestProcessObjectRecordsMentionOfKnownAccount(t *testing.T) {
	p, db := newTestPipeline(t)

	author := newAccount("a1", "alice", "https://corvid.example/users/alice", true)
	mentioned := newAccount("a2", "bob", "https://corvid.example/users/bob", true)
	mustInsertAccount(t, db, author)
	mustInsertAccount(t, db, mentioned)

	obj := &ap.Object{ID: "https://corvid.example/posts/2", AttributedTo: author.URL, Content: "hi @bob"}
	obj.Tag = append(obj.Tag, ap.Tag{Type: ap.MentionTag, Name: "@bob", Href: mentioned.URL})

	require.NoError(t, p.processObject(context.Background(), httpsig.Key{}, author, obj))

	post, err := store.PostByURL(context.Background(), db, obj.ID)
	require.NoError(t, err)
	require.NotNil(t, post)

	var count int
	require.NoError(t, db.QueryRow(`select count(*) from mentions where post_id = ? and account_id = ?`, post.ID, mentioned.ID).Scan(&count))
	assert.Equal(t, 1, count)
}
