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

// Package cache provides a TTL-bounded in-memory cache for resources
// that are otherwise fetched from the store or the network.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/corvidnet/corvid/lock"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache is a TTL cache keyed by string, safe for concurrent use. TTL is
// fixed at construction: every entry put into a given Cache expires
// after the same duration.
type Cache[V any] struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry[V]
	keys    []lock.Lock
}

// New returns a Cache whose entries expire ttl after being Set. stripes
// bounds the number of independent locks Load uses to serialize
// concurrent fills of the same key; 0 disables Load's populate-once
// behavior and callers must synchronize fills themselves.
func New[V any](ttl time.Duration, stripes int) *Cache[V] {
	c := &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
	}
	if stripes > 0 {
		c.keys = make([]lock.Lock, stripes)
		for i := range c.keys {
			c.keys[i] = lock.New()
		}
	}
	return c
}

// Get returns the cached value for key and whether it was present and
// unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok || time.Now().After(e.expires) {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, expiring it after the Cache's TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete evicts key, if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache[V]) stripe(key string) lock.Lock {
	var h uint32
	for i := 0; i < len(key); i++ {
		h = h*31 + uint32(key[i])
	}
	return c.keys[int(h)%len(c.keys)]
}

// Load returns the cached value for key, or calls fill to populate it on
// a miss. Concurrent Loads of the same key serialize on a striped lock
// so only one fill runs at a time; Load aborts if ctx is canceled while
// waiting for that lock or for fill to return.
func (c *Cache[V]) Load(ctx context.Context, key string, fill func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	var zero V
	if len(c.keys) == 0 {
		v, err := fill(ctx)
		if err != nil {
			return zero, err
		}
		c.Set(key, v)
		return v, nil
	}

	l := c.stripe(key)
	if err := l.Lock(ctx); err != nil {
		return zero, err
	}
	defer l.Unlock()

	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := fill(ctx)
	if err != nil {
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}
