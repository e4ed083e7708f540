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

// Package resolver implements C6: actor and object resolution through a
// cache, the local store and, failing both, the network.
package resolver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/cache"
	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/filter"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/lock"
	"github.com/corvidnet/corvid/store"
)

var (
	ErrBlockedInstance = errors.New("resolver: instance is blocked")
	ErrMissingHost     = errors.New("resolver: id has no host")
	ErrInvalidHost     = errors.New("resolver: actor link host mismatch")
	ErrInvalidID       = errors.New("resolver: invalid id")
	ErrNoLocalActor    = errors.New("resolver: no such local actor")
	ErrOffline         = errors.New("resolver: actor not cached, offline")
)

const userAgent = "corvid/0 (+https://github.com/corvidnet/corvid)"

// Resolver resolves Actor and Post values by ID, caching hits in
// memory and persisting them to the store.
type Resolver struct {
	Domain string
	Config *cfg.Config
	Filter *filter.Filter
	Caches *cache.Caches
	Store  *store.Store
	Client *http.Client

	locks []lock.Lock
}

// New returns a Resolver. filt may be nil, disabling federation
// filtering.
func New(domain string, c *cfg.Config, filt *filter.Filter, caches *cache.Caches, st *store.Store) *Resolver {
	r := &Resolver{
		Domain: domain,
		Config: c,
		Filter: filt,
		Caches: caches,
		Store:  st,
		Client: &http.Client{Timeout: c.HTTPClientTimeout},
		locks:  make([]lock.Lock, 64),
	}
	for i := range r.locks {
		r.locks[i] = lock.New()
	}
	return r
}

func (r *Resolver) lockFor(key string) lock.Lock {
	return r.locks[crc32.ChecksumIEEE([]byte(key))%uint32(len(r.locks))]
}

// ResolveActor implements the fetch-actor flow: cache, then store, then
// network with WebFinger canonicalisation. refetch skips the cache and
// store and always fetches the actor document again. acct, if non-nil,
// is the caller's expected handle, used for canonicalisation on a
// network fetch only; a cache or store hit is returned without
// consulting it.
func (r *Resolver) ResolveActor(ctx context.Context, key httpsig.Key, id string, acct *ap.Acct, refetch bool) (*store.Account, error) {
	host, err := ap.Host(id)
	if err != nil || host == "" {
		return nil, ErrMissingHost
	}

	if r.Filter != nil && !r.Filter.Allowed(host) {
		return nil, ErrBlockedInstance
	}

	if !refetch {
		if a, ok := r.Caches.Accounts.Get(id); ok {
			return a, nil
		}
		if a, err := store.AccountByURL(ctx, r.Store.DB, id); err != nil {
			return nil, err
		} else if a != nil {
			r.Caches.Accounts.Set(id, a)
			return a, nil
		}
	}

	if host == r.Domain {
		return nil, ErrNoLocalActor
	}

	l := r.lockFor(id)
	if err := l.Lock(ctx); err != nil {
		return nil, err
	}
	defer l.Unlock()

	if refetch {
		r.Caches.AccountResource.Delete(id)
	}

	actor, err := r.fetchActorDocument(ctx, key, id)
	if err != nil {
		return nil, err
	}

	if err := r.canonicalize(ctx, key, actor, acct, host); err != nil {
		return nil, err
	}

	account, cryptoKey := actorToAccount(actor, r.Domain)

	if err := r.Store.Run(ctx, func(tx *sql.Tx) error {
		if err := store.UpsertAccount(ctx, tx, account); err != nil {
			return err
		}
		if cryptoKey != nil {
			return store.UpsertKey(ctx, tx, cryptoKey, account.ID)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to persist %s: %w", actor.ID, err)
	}

	r.Caches.Accounts.Set(id, account)
	r.Caches.AccountResource.Set(id, actor)

	return account, nil
}

func (r *Resolver) fetchActorDocument(ctx context.Context, key httpsig.Key, id string) (*ap.Actor, error) {
	if a, ok := r.Caches.AccountResource.Get(id); ok {
		return a, nil
	}

	body, err := r.get(ctx, key, id)
	if err != nil {
		return nil, err
	}

	var actor ap.Actor
	if err := json.Unmarshal(body, &actor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}
	if actor.ID != id {
		return nil, fmt.Errorf("%s does not match requested %s: %w", actor.ID, id, ErrInvalidID)
	}

	return &actor, nil
}

// get performs a signed GET capped at MaxResponseBodySize, the shape
// every network read in this package goes through.
func (r *Resolver) get(ctx context.Context, key httpsig.Key, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}
	if u.Scheme != "https" {
		return nil, ErrInvalidID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/activity+json")

	if err := httpsig.Sign(req, key, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to sign request to %s: %w", rawURL, err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", rawURL, resp.StatusCode)
	}

	return data.ReadLimited(resp.Body, r.Config.MaxResponseBodySize)
}

// FetchPost implements the fetch-object flow: depth bounds the
// in_reply_to recursion so a malicious or cyclic reply chain can't
// recurse forever. depth 0 is the initial call.
func (r *Resolver) FetchPost(ctx context.Context, key httpsig.Key, id string, depth int) (*store.Post, error) {
	if depth > r.Config.MaxFetchDepth {
		return nil, nil
	}

	if p, ok := r.Caches.Posts.Get(id); ok {
		return p, nil
	}
	if p, err := store.PostByURL(ctx, r.Store.DB, id); err != nil {
		return nil, err
	} else if p != nil {
		r.Caches.Posts.Set(id, p)
		return p, nil
	}

	host, err := ap.Host(id)
	if err != nil {
		return nil, ErrMissingHost
	}
	if r.Filter != nil && !r.Filter.Allowed(host) {
		return nil, ErrBlockedInstance
	}

	body, err := r.get(ctx, key, id)
	if err != nil {
		return nil, err
	}

	var obj ap.Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}

	author, err := r.ResolveActor(ctx, key, obj.AttributedTo, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author of %s: %w", id, err)
	}

	var parentID string
	if obj.InReplyTo != "" {
		if parent, err := r.FetchPost(ctx, key, obj.InReplyTo, depth+1); err != nil {
			slog.Warn("Failed to fetch parent post", "id", obj.InReplyTo, "error", err)
		} else if parent != nil {
			parentID = parent.ID
		}
	}

	post := objectToPost(&obj, author.ID, parentID, false)

	if err := r.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.UpsertPost(ctx, tx, post)
	}); err != nil {
		return nil, fmt.Errorf("failed to persist %s: %w", id, err)
	}

	r.Caches.Posts.Set(id, post)
	return post, nil
}
