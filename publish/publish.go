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

// Package publish is the composition point between C8 (the outbound
// mapper, package outbox) and C10 (the durable job queue): it builds an
// activity, resolves its recipients' inboxes via the delivery package's
// shared-inbox-aware fanout, and hands the pair to the queue for async
// delivery.
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/delivery"
	"github.com/corvidnet/corvid/outbox"
	"github.com/corvidnet/corvid/queue"
	"github.com/corvidnet/corvid/store"
)

// Publisher enqueues outbound activities authored by local accounts.
type Publisher struct {
	Store *store.Store
	Queue *queue.Queue
}

func New(st *store.Store, q *queue.Queue) *Publisher {
	return &Publisher{Store: st, Queue: q}
}

// send resolves activity's recipients and enqueues a deliver_many job on
// behalf of author; a zero-recipient activity (e.g. a MentionOnly post
// addressed only to a since-deleted account) is a no-op, not an error.
func (p *Publisher) send(ctx context.Context, author *store.Account, activity *ap.Activity) error {
	inboxes, err := delivery.Recipients(ctx, p.Store, author, activity.To, activity.CC)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients for %s: %w", activity.ID, err)
	}

	body, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to encode activity %s: %w", activity.ID, err)
	}

	return p.Queue.EnqueueDeliverMany(ctx, author.ID, string(activity.Type), body, inboxes)
}

// Post delivers the Create{Note} for a newly authored post.
func (p *Publisher) Post(ctx context.Context, post *store.Post, author *store.Account) error {
	activity, err := outbox.Create(ctx, p.Store, post, author)
	if err != nil {
		return err
	}
	return p.send(ctx, author, activity)
}

// EditPost delivers the Update{Note} for an edited post.
func (p *Publisher) EditPost(ctx context.Context, post *store.Post, author *store.Account) error {
	activity, err := outbox.Update(ctx, p.Store, post, author)
	if err != nil {
		return err
	}
	return p.send(ctx, author, activity)
}

// DeletePost delivers the Delete{Tombstone} for a removed post.
func (p *Publisher) DeletePost(ctx context.Context, post *store.Post, author *store.Account) error {
	return p.send(ctx, author, outbox.Delete(post, author))
}

// Repost delivers the Announce for a repost of reposted by author.
func (p *Publisher) Repost(ctx context.Context, post, reposted *store.Post, author *store.Account) error {
	return p.send(ctx, author, outbox.Announce(post, reposted, author))
}

// Like delivers the Like for fav, addressed solely to the post's author.
func (p *Publisher) Like(ctx context.Context, fav *store.Favourite, liker *store.Account, post *store.Post) error {
	author, err := store.AccountByID(ctx, p.Store.DB, post.AccountID)
	if err != nil {
		return fmt.Errorf("failed to resolve post author %s: %w", post.AccountID, err)
	}
	if author == nil {
		return fmt.Errorf("post %s has no author on file", post.ID)
	}
	return p.send(ctx, liker, outbox.Like(fav, liker, post, author))
}

// Follow delivers a Follow request from follower to followee.
func (p *Publisher) Follow(ctx context.Context, follow *store.Follow, follower, followee *store.Account) error {
	return p.send(ctx, follower, outbox.Follow(follow, follower, followee))
}

// Unfollow delivers Undo{Follow}, withdrawing a previously sent Follow.
func (p *Publisher) Unfollow(ctx context.Context, follow *store.Follow, follower, followee *store.Account) error {
	return p.send(ctx, follower, outbox.Undo(outbox.Follow(follow, follower, followee)))
}

// EditAccount delivers the Update{Actor} for a local profile edit.
func (p *Publisher) EditAccount(ctx context.Context, account *store.Account, key *store.CryptographicKey) error {
	return p.send(ctx, account, outbox.UpdateAccount(account, key))
}
