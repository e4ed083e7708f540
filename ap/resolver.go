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

package ap

import (
	"context"
	"net/http"

	"github.com/corvidnet/corvid/httpsig"
)

// ResolverFlag modifies a single Resolver call.
type ResolverFlag uint

const (
	// Offline forces use of a cached or locally-stored actor, never
	// touching the network.
	Offline ResolverFlag = 1 << iota
	// Refetch bypasses the cache and DB lookup and always re-fetches the
	// actor over the network, the flow WebFinger canonicalisation and
	// key-rotation refetch both drive.
	Refetch
)

// Acct is the caller's expected WebFinger handle for an actor being
// resolved, used to detect and correct a stale cached host.
type Acct struct {
	Name string
	Host string
}

// Resolver retrieves Actor and Object values, following the fetch-actor
// and fetch-object flows: cache and store lookup first, network fetch
// and WebFinger canonicalisation on a miss or explicit Refetch.
type Resolver interface {
	ResolveID(ctx context.Context, key httpsig.Key, id string, acct *Acct, flags ResolverFlag) (*Actor, error)
	Get(ctx context.Context, key httpsig.Key, url string) (*http.Response, error)
}
