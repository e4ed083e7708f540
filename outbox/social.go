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
	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/store"
)

// Follow builds `Follow{id=follow.url, actor=follower.url, object=followee.url}`,
// addressed directly to followee per §4.8.1.
func Follow(follow *store.Follow, follower, followee *store.Account) *ap.Activity {
	return &ap.Activity{
		Context: ActivityContext,
		ID:      follow.URL,
		Type:    ap.Follow,
		Actor:   follower.URL,
		Object:  followee.URL,
		To:      singleton(followee.URL),
	}
}

// Accept builds the Accept{Follow} a followee sends back on approval,
// carrying the original Follow activity's id as the object per §4.8.1's
// object=IRI variant.
func Accept(followURL string, followee, follower *store.Account) *ap.Activity {
	return &ap.Activity{
		Context: ActivityContext,
		ID:      followURL + "#accept",
		Type:    ap.Accept,
		Actor:   followee.URL,
		Object:  followURL,
		To:      singleton(follower.URL),
	}
}

// Reject builds the symmetric Reject{Follow}.
func Reject(followURL string, followee, follower *store.Account) *ap.Activity {
	return &ap.Activity{
		Context: ActivityContext,
		ID:      followURL + "#reject",
		Type:    ap.Reject,
		Actor:   followee.URL,
		Object:  followURL,
		To:      singleton(follower.URL),
	}
}

// Like builds `Like{id=fav.url, object=post.url}`, addressed directly to
// the liked post's author.
func Like(fav *store.Favourite, liker *store.Account, post *store.Post, postAuthor *store.Account) *ap.Activity {
	return &ap.Activity{
		Context: ActivityContext,
		ID:      fav.URL,
		Type:    ap.Like,
		Actor:   liker.URL,
		Object:  post.URL,
		To:      singleton(postAuthor.URL),
	}
}

func singleton(iri string) ap.Audience {
	var a ap.Audience
	a.Add(iri)
	return a
}
