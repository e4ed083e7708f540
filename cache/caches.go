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

package cache

import (
	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/store"
)

const fillStripes = 64

// Caches groups the named cache instances a resolver draws on:
// AccountResource holds WebFinger lookups and remote actor documents,
// which change rarely and carry the longer TTL; Posts and Accounts hold
// store rows that other local activity can invalidate sooner.
type Caches struct {
	AccountResource *Cache[*ap.Actor]
	Posts           *Cache[*store.Post]
	Accounts        *Cache[*store.Account]
}

// NewCaches builds the named caches with TTLs from c.
func NewCaches(c *cfg.Config) *Caches {
	return &Caches{
		AccountResource: New[*ap.Actor](c.AccountResourceCacheTTL, fillStripes),
		Posts:           New[*store.Post](c.ResourceCacheTTL, fillStripes),
		Accounts:        New[*store.Account](c.ResourceCacheTTL, fillStripes),
	}
}
