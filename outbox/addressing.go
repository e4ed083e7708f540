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

// Package outbox converts locally originated rows (post, follow,
// favourite, repost, undo) into the ActivityStreams JSON shapes C9
// delivers, per the visibility → addressing table.
package outbox

import (
	"context"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/store"
)

// ActivityContext is the fixed compact JSON-LD document every outgoing
// activity declares.
var ActivityContext = []string{"https://www.w3.org/ns/activitystreams"}

// addressing builds the to/cc pair for visibility per the table:
//
//	Public:       to=[Public, followers], cc=mentioned
//	Unlisted:     to=[followers],         cc=[Public]+mentioned
//	FollowerOnly: to=[followers],         cc=mentioned
//	MentionOnly:  to=mentioned,           cc=[]
func addressing(v store.Visibility, followersURL string, mentioned []string) (ap.Audience, ap.Audience) {
	var to, cc ap.Audience

	switch v {
	case store.Public:
		to.Add(ap.Public)
		if followersURL != "" {
			to.Add(followersURL)
		}
		for _, m := range mentioned {
			cc.Add(m)
		}
	case store.Unlisted:
		if followersURL != "" {
			to.Add(followersURL)
		}
		cc.Add(ap.Public)
		for _, m := range mentioned {
			cc.Add(m)
		}
	case store.FollowerOnly:
		if followersURL != "" {
			to.Add(followersURL)
		}
		for _, m := range mentioned {
			cc.Add(m)
		}
	default: // MentionOnly
		for _, m := range mentioned {
			to.Add(m)
		}
	}

	return to, cc
}

// mentionedURLs looks up the accounts tagged in postID's mention set.
func mentionedURLs(ctx context.Context, st *store.Store, postID string) ([]string, error) {
	return store.MentionedAccountURLs(ctx, st.DB, postID)
}
