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

// Actor builds the wire Actor document for a local account, the shape
// served at account.url and embedded in account Update activities.
func Actor(account *store.Account, key *store.CryptographicKey) *ap.Actor {
	actor := &ap.Actor{
		Context:                   ActivityContext,
		ID:                        account.URL,
		Type:                      accountActorType(account.Kind),
		Inbox:                     account.InboxURL.String,
		Outbox:                    account.OutboxURL.String,
		PreferredUsername:         account.Username,
		Followers:                 account.FollowersURL.String,
		Following:                 account.FollowingURL.String,
		ManuallyApprovesFollowers: account.Locked,
		Published:                 ap.Time{Time: account.CreatedAt},
		Updated:                   ap.Time{Time: account.UpdatedAt},
	}
	if account.DisplayName.Valid {
		actor.Name = account.DisplayName.String
	}
	if account.Note.Valid {
		actor.Summary = account.Note.String
	}
	if account.FeaturedCollectionURL.Valid {
		actor.Featured = account.FeaturedCollectionURL.String
	}
	if account.SharedInboxURL.Valid {
		actor.Endpoints.SharedInbox = account.SharedInboxURL.String
	}
	if key != nil {
		actor.PublicKey = ap.PublicKey{ID: key.ID, Owner: account.URL, PublicKeyPem: key.PublicKey}
	}
	return actor
}

func accountActorType(k store.AccountKind) ap.ActorType {
	switch k {
	case store.KindGroup:
		return ap.Group
	case store.KindService:
		return ap.Service
	default:
		return ap.Person
	}
}

// UpdateAccount builds `Update{id=account.url+"#update", object=Actor{...}}`
// for a local profile edit.
func UpdateAccount(account *store.Account, key *store.CryptographicKey) *ap.Activity {
	return &ap.Activity{
		Context: ActivityContext,
		ID:      account.URL + "#update",
		Type:    ap.Update,
		Actor:   account.URL,
		Object:  Actor(account, key),
		To:      singleton(ap.Public),
	}
}
