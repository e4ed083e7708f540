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

package data

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
)

// NewID generates a time-ordered UUIDv7, the surrogate primary key for
// every entity in the store. Being time-ordered keeps btree/rowid indexes
// append-mostly instead of scattering inserts across the table.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// entropy source failure; uuid.NewV7 only errors if the system
		// clock or rand reader is broken, which leaves nothing sane to do
		panic(err)
	}
	return id.String()
}

// NewIDAt generates a UUIDv7 whose embedded timestamp is t rather than
// the current time, for entities (received posts) whose natural sort
// key is when they were created at origin, not when they were ingested.
// [uuid.NewV7] always stamps the current time, so the 48-bit timestamp
// field is packed by hand per RFC 9562 and the remaining bits are
// filled from crypto/rand.
func NewIDAt(t time.Time) string {
	var id uuid.UUID

	ms := uint64(t.UnixMilli())
	id[0] = byte(ms >> 40)
	id[1] = byte(ms >> 32)
	id[2] = byte(ms >> 24)
	id[3] = byte(ms >> 16)
	id[4] = byte(ms >> 8)
	id[5] = byte(ms)

	if _, err := rand.Read(id[6:]); err != nil {
		panic(err)
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // variant RFC 9562

	return id.String()
}
