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
	"database/sql"
	"time"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/store"
)

func actorKind(t ap.ActorType) store.AccountKind {
	switch t {
	case ap.Group:
		return store.KindGroup
	case ap.Service:
		return store.KindService
	default:
		return store.KindPerson
	}
}

// actorToAccount maps a fetched Actor onto the row upserted into the
// store, plus its public key if one was advertised. The row's
// surrogate ID is freshly generated; UpsertAccount only uses it on
// first insert; it keeps the existing ID on an update.
func actorToAccount(actor *ap.Actor, domain string) (*store.Account, *store.CryptographicKey) {
	host, _ := ap.Host(actor.ID)

	account := &store.Account{
		ID:           data.NewID(),
		Kind:         actorKind(actor.Type),
		Username:     actor.PreferredUsername,
		URL:          actor.ID,
		Locked:       actor.ManuallyApprovesFollowers,
		Local:        host == domain,
		InboxURL:     nullString(actor.Inbox),
		OutboxURL:    nullString(actor.Outbox),
		FollowersURL: nullString(actor.Followers),
		FollowingURL: nullString(actor.Following),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if host != domain {
		account.Domain = nullString(host)
	}
	if actor.Name != "" {
		account.DisplayName = nullString(actor.Name)
	}
	if actor.Summary != "" {
		account.Note = nullString(actor.Summary)
	}
	if actor.Endpoints.SharedInbox != "" {
		account.SharedInboxURL = nullString(actor.Endpoints.SharedInbox)
	}
	if actor.Featured != "" {
		account.FeaturedCollectionURL = nullString(actor.Featured)
	}

	var key *store.CryptographicKey
	if actor.PublicKey.ID != "" && actor.PublicKey.PublicKeyPem != "" {
		key = &store.CryptographicKey{
			ID:        actor.PublicKey.ID,
			PublicKey: actor.PublicKey.PublicKeyPem,
			CreatedAt: time.Now(),
		}
	}

	return account, key
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// objectToPost maps a fetched Note onto a Post row. accountID is the
// resolved author's surrogate ID; parentID is the resolved parent
// post's surrogate ID, if its in_reply_to chain was fetched.
func objectToPost(obj *ap.Object, accountID, parentID string, isLocal bool) *store.Post {
	p := &store.Post{
		ID:            data.NewID(),
		AccountID:     accountID,
		IsSensitive:   obj.Sensitive,
		Content:       obj.Content,
		ContentSource: obj.Content,
		Visibility:    visibilityOf(obj),
		IsLocal:       isLocal,
		URL:           obj.ID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if parentID != "" {
		p.InReplyToID = nullString(parentID)
	}
	if obj.Summary != "" {
		p.Subject = nullString(obj.Summary)
	}
	if !obj.Published.Time.IsZero() {
		p.CreatedAt = obj.Published.Time
	}
	if !obj.Updated.Time.IsZero() {
		p.UpdatedAt = obj.Updated.Time
	}
	return p
}

// visibilityOf computes I3's addressing-derived visibility: Public if
// addressed to the public collection, FollowerOnly if addressed only to
// the actor's followers collection, MentionOnly if addressed to neither
// (direct message), Unlisted if public is in cc rather than to.
func visibilityOf(obj *ap.Object) store.Visibility {
	if obj.To.Contains(ap.Public) {
		return store.Public
	}
	if obj.CC.Contains(ap.Public) {
		return store.Unlisted
	}
	if obj.AttributedTo != "" {
		return store.FollowerOnly
	}
	return store.MentionOnly
}
