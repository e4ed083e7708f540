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

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/delivery"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/outbox"
	"github.com/corvidnet/corvid/store"
)

// Handlers wires the job kinds this process knows how to run onto the
// delivery engine; Worker.Handlers is built from Handlers.Table().
type Handlers struct {
	Store    *store.Store
	Delivery *delivery.Engine
}

func (h *Handlers) Table() map[string]Handler {
	return map[string]Handler{
		KindDeliverAccept: h.deliverAccept,
		KindDeliverMany:   h.deliverMany,
	}
}

func (h *Handlers) deliverAccept(ctx context.Context, job LeasedJob) error {
	var payload deliverAcceptPayload
	if err := json.Unmarshal([]byte(job.Meta), &payload); err != nil {
		return fmt.Errorf("failed to decode deliver_accept payload: %w", err)
	}

	actor, err := store.AccountByID(ctx, h.Store.DB, payload.ActorID)
	if err != nil || actor == nil {
		return fmt.Errorf("failed to load actor %s: %w", payload.ActorID, err)
	}

	key, err := signingKey(ctx, h.Store, actor.ID)
	if err != nil {
		return err
	}

	follower := &store.Account{URL: payload.FollowerID}
	activity := outbox.Accept(payload.FollowURL, actor, follower)

	body, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to encode accept activity: %w", err)
	}

	return h.Delivery.Deliver(ctx, job.ID, key, string(ap.Accept), body, []string{payload.InboxURL})
}

// deliverManyPayload is the job context for fanning an already-built
// activity out to a recipient set computed at enqueue time.
type deliverManyPayload struct {
	ActorID      string   `json:"actor_id"`
	ActivityType string   `json:"activity_type"`
	Body         string   `json:"body"`
	Inboxes      []string `json:"inboxes"`
}

func (h *Handlers) deliverMany(ctx context.Context, job LeasedJob) error {
	var payload deliverManyPayload
	if err := json.Unmarshal([]byte(job.Meta), &payload); err != nil {
		return fmt.Errorf("failed to decode deliver_many payload: %w", err)
	}

	key, err := signingKey(ctx, h.Store, payload.ActorID)
	if err != nil {
		return err
	}

	return h.Delivery.Deliver(ctx, job.ID, key, payload.ActivityType, []byte(payload.Body), payload.Inboxes)
}

func signingKey(ctx context.Context, st *store.Store, accountID string) (httpsig.Key, error) {
	k, err := store.LocalKeyForAccount(ctx, st.DB, accountID)
	if err != nil {
		return httpsig.Key{}, fmt.Errorf("failed to load signing key for %s: %w", accountID, err)
	}
	if k == nil || !k.PrivateKey.Valid {
		return httpsig.Key{}, fmt.Errorf("no signing key for account %s", accountID)
	}
	priv, err := data.ParsePrivateKey(k.PrivateKey.String)
	if err != nil {
		return httpsig.Key{}, fmt.Errorf("failed to parse signing key for %s: %w", accountID, err)
	}
	return httpsig.Key{ID: k.ID, PrivateKey: priv}, nil
}
