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

// Package inbox implements C7, the inbound pipeline: federation-filter
// and MRF enforcement, actor resolution, and activity dispatch.
package inbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/filter"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/mrf"
	"github.com/corvidnet/corvid/queue"
	"github.com/corvidnet/corvid/resolver"
	"github.com/corvidnet/corvid/store"
)

var (
	ErrBlocked       = errors.New("inbox: federation filter rejected activity")
	ErrRejectedByMRF = errors.New("inbox: mrf rejected activity")
	ErrUnauthorized  = errors.New("inbox: signer does not match actor")
)

// Pipeline processes authenticated inbound activities.
type Pipeline struct {
	Domain   string
	Config   *cfg.Config
	Store    *store.Store
	Resolver *resolver.Resolver
	Filter   *filter.Filter
	MRF      mrf.Policy
	Queue    *queue.Queue
}

// Process runs an authenticated activity, whose signer resolved to
// signer, through the preconditions and dispatch table.
func (p *Pipeline) Process(ctx context.Context, key httpsig.Key, signer *store.Account, body []byte) error {
	var raw struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		Actor  any    `json:"actor"`
		Object any    `json:"object"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal activity: %w", err)
	}

	if p.Filter != nil {
		if host, err := ap.Host(raw.ID); err == nil && !p.Filter.Allowed(host) {
			return ErrBlocked
		}
	}

	policy := p.MRF
	if policy == nil {
		policy = mrf.Allow
	}
	verdict, err := policy(ctx, mrf.Incoming, raw.Type, body)
	if err != nil {
		return fmt.Errorf("mrf failed: %w", err)
	}
	if !verdict.Accepted {
		return ErrRejectedByMRF
	}
	body = verdict.Body

	var activity ap.Activity
	if err := json.Unmarshal(body, &activity); err != nil {
		return fmt.Errorf("failed to unmarshal mrf-accepted activity: %w", err)
	}

	if activity.Actor != signer.URL {
		actor, err := p.Resolver.ResolveActor(ctx, key, activity.Actor, nil, true)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUnauthorized, err)
		}
		signer = actor
	}

	return p.dispatch(ctx, key, signer, &activity)
}

func (p *Pipeline) dispatch(ctx context.Context, key httpsig.Key, signer *store.Account, a *ap.Activity) error {
	switch a.Type {
	case ap.Accept:
		return p.onAccept(ctx, a)
	case ap.Announce:
		return p.onAnnounce(ctx, key, signer, a)
	case ap.Create:
		return p.onCreate(ctx, key, signer, a)
	case ap.Delete:
		return p.onDelete(ctx, signer, a)
	case ap.Follow:
		return p.onFollow(ctx, key, signer, a)
	case ap.Like:
		return p.onLike(ctx, signer, a)
	case ap.Reject:
		return p.onReject(ctx, signer, a)
	case ap.Undo:
		return p.onUndo(ctx, signer, a)
	case ap.Update:
		return p.onUpdate(ctx, key, signer, a)
	case ap.Block:
		return nil
	default:
		return ap.ErrUnsupportedActivity
	}
}

func objectIRI(v any) string {
	switch o := v.(type) {
	case string:
		return o
	case *ap.Object:
		return o.ID
	}
	return ""
}

func (p *Pipeline) onAccept(ctx context.Context, a *ap.Activity) error {
	url := objectIRI(a.Object)
	if url == "" {
		return nil
	}
	return p.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.ApproveFollowByURL(ctx, tx, url, time.Now())
	})
}

func (p *Pipeline) onReject(ctx context.Context, signer *store.Account, a *ap.Activity) error {
	url := objectIRI(a.Object)
	if url == "" {
		return nil
	}
	return p.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.DeleteFollowByURLAndAccount(ctx, tx, url, signer.ID)
	})
}

func (p *Pipeline) onDelete(ctx context.Context, signer *store.Account, a *ap.Activity) error {
	url := objectIRI(a.Object)
	if url == "" {
		return nil
	}
	return p.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.DeletePostByURLOwnedBy(ctx, tx, url, signer.ID)
	})
}

func (p *Pipeline) onLike(ctx context.Context, signer *store.Account, a *ap.Activity) error {
	url := objectIRI(a.Object)
	if url == "" {
		return nil
	}
	post, err := store.PostByURL(ctx, p.Store.DB, url)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Warn("Cannot like unknown post", "url", url)
		return nil
	}
	fav := &store.Favourite{ID: data.NewID(), AccountID: signer.ID, PostID: post.ID, URL: a.ID, CreatedAt: time.Now()}
	return p.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.InsertFavourite(ctx, tx, fav)
	})
}

func (p *Pipeline) onUndo(ctx context.Context, signer *store.Account, a *ap.Activity) error {
	url := objectIRI(a.Object)
	if url == "" {
		return nil
	}
	return p.Store.Run(ctx, func(tx *sql.Tx) error {
		if err := store.DeleteFavouriteByURLOwnedBy(ctx, tx, url, signer.ID); err != nil {
			return err
		}
		if err := store.DeleteFollowByURLOwnedBy(ctx, tx, url, signer.ID); err != nil {
			return err
		}
		return store.DeletePostByURLOwnedBy(ctx, tx, url, signer.ID)
	})
}
