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

package inbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/store"
)

func (p *Pipeline) onFollow(ctx context.Context, key httpsig.Key, signer *store.Account, a *ap.Activity) error {
	targetURL := objectIRI(a.Object)
	if targetURL == "" {
		return nil
	}

	target, err := p.Resolver.ResolveActor(ctx, key, targetURL, nil, false)
	if err != nil {
		return fmt.Errorf("failed to resolve follow target %s: %w", targetURL, err)
	}

	now := time.Now()
	follow := &store.Follow{
		ID:         data.NewID(),
		AccountID:  target.ID,
		FollowerID: signer.ID,
		URL:        a.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	autoApprove := target.IsLocal() && !target.Locked
	if autoApprove {
		follow.ApprovedAt = sql.NullTime{Time: now, Valid: true}
	}

	notifyType := store.NotifyFollowRequest
	if autoApprove {
		notifyType = store.NotifyFollow
	}
	notification := &store.Notification{
		ID:                   data.NewID(),
		ReceivingAccountID:   target.ID,
		TriggeringAccountID:  sql.NullString{String: signer.ID, Valid: true},
		NotificationType:     notifyType,
		CreatedAt:            now,
	}

	if err := p.Store.Run(ctx, func(tx *sql.Tx) error {
		if err := store.InsertFollow(ctx, tx, follow); err != nil {
			return err
		}
		return store.InsertNotification(ctx, tx, notification)
	}); err != nil {
		return err
	}

	if autoApprove && p.Queue != nil {
		return p.Queue.EnqueueDeliverAccept(ctx, target, signer, a.ID)
	}

	return nil
}
