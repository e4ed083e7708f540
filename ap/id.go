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
	"errors"
	"net/url"
	"strings"
)

// IsIDValid determines whether a string can be a valid actor, object or
// activity ID: an https URL without credentials, query string or path
// traversal.
func IsIDValid(raw string) bool {
	if raw == "" {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if u.Scheme != "https" {
		return false
	}

	if u.User != nil {
		return false
	}

	if u.RawQuery != "" {
		return false
	}

	if strings.Contains(u.Path, "/..") {
		return false
	}

	return true
}

// Host returns the host component of an ID, the unit the federation filter
// and resolver reason about.
func Host(id string) (string, error) {
	u, err := url.Parse(id)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("ap: id has no host")
	}
	return u.Host, nil
}

// SameOrigin reports whether two IDs share a host.
func SameOrigin(a, b string) bool {
	ah, aerr := Host(a)
	bh, berr := Host(b)
	return aerr == nil && berr == nil && ah == bh
}
