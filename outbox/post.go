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
	"fmt"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/store"
)

// Create builds the Create{Note} activity for a newly authored,
// non-repost post: `Create{id=post.url+"/activity", object=Note{...}}`.
func Create(ctx context.Context, st *store.Store, post *store.Post, author *store.Account) (*ap.Activity, error) {
	mentioned, err := mentionedURLs(ctx, st, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to build addressing for post %s: %w", post.URL, err)
	}

	to, cc := addressing(post.Visibility, author.FollowersURL.String, mentioned)

	obj := &ap.Object{
		Context:      ActivityContext,
		ID:           post.URL,
		Type:         ap.Note,
		AttributedTo: author.URL,
		Content:      post.Content,
		Sensitive:    post.IsSensitive,
		Published:    ap.Time{Time: post.CreatedAt},
		Updated:      ap.Time{Time: post.UpdatedAt},
		To:           to,
		CC:           cc,
	}
	if post.Subject.Valid {
		obj.Summary = post.Subject.String
	}
	if post.InReplyToID.Valid {
		if parent, err := store.PostByID(ctx, st.DB, post.InReplyToID.String); err == nil && parent != nil {
			obj.InReplyTo = parent.URL
		}
	}
	for _, m := range mentioned {
		obj.Tag = append(obj.Tag, ap.Tag{Type: ap.MentionTag, Href: m})
	}

	return &ap.Activity{
		Context:   ActivityContext,
		ID:        post.URL + "/activity",
		Type:      ap.Create,
		Actor:     author.URL,
		Object:    obj,
		To:        to,
		CC:        cc,
		Published: &ap.Time{Time: post.CreatedAt},
	}, nil
}

// Update builds the Update{Note} activity for an edited post: same
// shape as Create, published unchanged, with the new content.
func Update(ctx context.Context, st *store.Store, post *store.Post, author *store.Account) (*ap.Activity, error) {
	a, err := Create(ctx, st, post, author)
	if err != nil {
		return nil, err
	}
	a.ID = post.URL + "/update"
	a.Type = ap.Update
	return a, nil
}

// Delete builds `Delete{id=object.id+"#delete", object=Tombstone{id}}`.
func Delete(post *store.Post, author *store.Account) *ap.Activity {
	to, cc := addressing(post.Visibility, author.FollowersURL.String, nil)
	return &ap.Activity{
		Context: ActivityContext,
		ID:      post.URL + "#delete",
		Type:    ap.Delete,
		Actor:   author.URL,
		Object:  &ap.Object{ID: post.URL, Type: ap.Tombstone},
		To:      to,
		CC:      cc,
	}
}

// Announce builds `Announce{id=post.url+"/activity", object=reposted.url}`
// for a repost.
func Announce(post *store.Post, reposted *store.Post, author *store.Account) *ap.Activity {
	to, cc := addressing(post.Visibility, author.FollowersURL.String, nil)
	return &ap.Activity{
		Context:   ActivityContext,
		ID:        post.URL + "/activity",
		Type:      ap.Announce,
		Actor:     author.URL,
		Object:    reposted.URL,
		To:        to,
		CC:        cc,
		Published: &ap.Time{Time: post.CreatedAt},
	}
}
