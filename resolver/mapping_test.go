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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/store"
)

func TestActorToAccountMarksLocalByDomain(t *testing.T) {
	actor := &ap.Actor{
		ID:                "https://remote.example/users/bob",
		Type:              ap.Person,
		PreferredUsername: "bob",
		Inbox:             "https://remote.example/users/bob/inbox",
	}

	account, key := actorToAccount(actor, "corvid.example")
	assert.False(t, account.Local)
	assert.True(t, account.Domain.Valid)
	assert.Equal(t, "remote.example", account.Domain.String)
	assert.Equal(t, store.KindPerson, account.Kind)
	assert.Nil(t, key, "no key advertised means no CryptographicKey")
}

func TestActorToAccountCarriesKeyAndSharedInbox(t *testing.T) {
	actor := &ap.Actor{
		ID:                "https://corvid.example/users/alice",
		PreferredUsername: "alice",
		Endpoints:         ap.Endpoints{SharedInbox: "https://corvid.example/inbox"},
		PublicKey:         ap.PublicKey{ID: "https://corvid.example/users/alice#main-key", PublicKeyPem: "PEM"},
	}

	account, key := actorToAccount(actor, "corvid.example")
	assert.True(t, account.Local)
	assert.False(t, account.Domain.Valid, "a local account carries no domain")
	require.NotNil(t, key)
	assert.Equal(t, "https://corvid.example/users/alice#main-key", key.ID)
	assert.Equal(t, "PEM", key.PublicKey)
	assert.Equal(t, "https://corvid.example/inbox", account.SharedInboxURL.String)
}

func TestVisibilityOfFollowsAddressingTable(t *testing.T) {
	public := &ap.Object{}
	public.To.Add(ap.Public)
	assert.Equal(t, store.Public, visibilityOf(public))

	unlisted := &ap.Object{}
	unlisted.CC.Add(ap.Public)
	assert.Equal(t, store.Unlisted, visibilityOf(unlisted))

	followerOnly := &ap.Object{AttributedTo: "https://corvid.example/users/alice"}
	assert.Equal(t, store.FollowerOnly, visibilityOf(followerOnly))

	direct := &ap.Object{}
	assert.Equal(t, store.MentionOnly, visibilityOf(direct))
}

func TestObjectToPostCarriesAuthorParentAndLocality(t *testing.T) {
	obj := &ap.Object{ID: "https://remote.example/posts/1", Content: "hi"}
	post := objectToPost(obj, "author-1", "parent-1", false)
	assert.Equal(t, "author-1", post.AccountID)
	assert.True(t, post.InReplyToID.Valid)
	assert.Equal(t, "parent-1", post.InReplyToID.String)
	assert.False(t, post.IsLocal)
}
