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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/store"
)

func TestFollow(t *testing.T) {
	follow := &store.Follow{ID: "f1", URL: "https://corvid.example/follows/f1"}
	follower := &store.Account{URL: "https://corvid.example/users/alice"}
	followee := &store.Account{URL: "https://remote.example/users/bob"}

	a := Follow(follow, follower, followee)
	assert.Equal(t, ap.Follow, a.Type)
	assert.Equal(t, follow.URL, a.ID)
	assert.Equal(t, follower.URL, a.Actor)
	assert.Equal(t, followee.URL, a.Object)
	assert.True(t, a.To.Contains(followee.URL))
}

func TestAcceptReject(t *testing.T) {
	followee := &store.Account{URL: "https://corvid.example/users/alice"}
	follower := &store.Account{URL: "https://remote.example/users/bob"}
	followURL := "https://remote.example/follows/f1"

	accept := Accept(followURL, followee, follower)
	assert.Equal(t, ap.Accept, accept.Type)
	assert.Equal(t, followee.URL, accept.Actor)
	assert.True(t, accept.To.Contains(follower.URL))

	reject := Reject(followURL, followee, follower)
	assert.Equal(t, ap.Reject, reject.Type)
	assert.Equal(t, followee.URL, reject.Actor)
}

func TestLike(t *testing.T) {
	fav := &store.Favourite{ID: "fav1", URL: "https://corvid.example/favourites/fav1"}
	liker := &store.Account{URL: "https://corvid.example/users/alice"}
	postAuthor := &store.Account{URL: "https://remote.example/users/bob"}
	post := &store.Post{URL: "https://remote.example/posts/1", AccountID: "bob"}

	a := Like(fav, liker, post, postAuthor)
	assert.Equal(t, ap.Like, a.Type)
	assert.Equal(t, fav.URL, a.ID)
	assert.Equal(t, liker.URL, a.Actor)
	assert.Equal(t, post.URL, a.Object)
	assert.True(t, a.To.Contains(postAuthor.URL))
}

func TestUndoWrapsFollow(t *testing.T) {
	follow := &store.Follow{ID: "f1", URL: "https://corvid.example/follows/f1"}
	follower := &store.Account{URL: "https://corvid.example/users/alice"}
	followee := &store.Account{URL: "https://remote.example/users/bob"}

	wrapped := Undo(Follow(follow, follower, followee))
	assert.Equal(t, ap.Undo, wrapped.Type)
	assert.Equal(t, follow.URL+"#undo", wrapped.ID)
	assert.Equal(t, follower.URL, wrapped.Actor)

	inner, ok := wrapped.Object.(*ap.Activity)
	assert.True(t, ok)
	assert.Equal(t, ap.Follow, inner.Type)
}
