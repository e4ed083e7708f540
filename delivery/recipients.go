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
	"fmt"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/store"
)

// Recipients resolves an outgoing activity's to/cc addressing into a
// deduplicated list of inbox URLs: the author's followers' shared
// inboxes when the activity is addressed to the followers collection
// or is public, plus an inbox for every individually-addressed remote
// actor: its shared inbox when the activity is wide in that sense and
// one is advertised, else its own inbox. Public, the author's followers
// collection and local accounts are never direct recipients.
func Recipients(ctx context.Context, st *store.Store, author *store.Account, to, cc ap.Audience) ([]string, error) {
	seen := make(map[string]struct{})
	var inboxes []string

	add := func(inbox string) {
		if inbox == "" {
			return
		}
		if _, ok := seen[inbox]; ok {
			return
		}
		seen[inbox] = struct{}{}
		inboxes = append(inboxes, inbox)
	}

	wide := to.Contains(ap.Public) || cc.Contains(ap.Public)
	if author.FollowersURL.Valid {
		if to.Contains(author.FollowersURL.String) || cc.Contains(author.FollowersURL.String) {
			wide = true
		}
	}

	if wide {
		followerInboxes, err := store.FollowerInboxes(ctx, st.DB, author.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list follower inboxes: %w", err)
		}
		for _, inbox := range followerInboxes {
			add(inbox)
		}
	}

	recipients := append(to.Keys(), cc.Keys()...)
	for _, recipient := range recipients {
		if recipient == "" || recipient == ap.Public || recipient == author.FollowersURL.String {
			continue
		}
		target, err := store.AccountByURL(ctx, st.DB, recipient)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve recipient %s: %w", recipient, err)
		}
		if target == nil || target.Local || !target.InboxURL.Valid {
			continue
		}
		if target.SharedInboxURL.Valid && target.SharedInboxURL.String != "" && wide {
			add(target.SharedInboxURL.String)
		} else {
			add(target.InboxURL.String)
		}
	}

	return inboxes, nil
}
