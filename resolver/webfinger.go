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

package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/httpsig"
)

var ErrTooManyRedirects = errors.New("resolver: too many webfinger redirects")

type jrd struct {
	Subject string `json:"subject"`
	Links   []struct {
		Rel  string `json:"rel"`
		Type string `json:"type"`
		Href string `json:"href"`
	} `json:"links"`
}

func (j *jrd) self() string {
	for _, l := range j.Links {
		if l.Rel != "self" {
			continue
		}
		if l.Type != "application/activity+json" && l.Type != `application/ld+json; profile="https://www.w3.org/ns/activitystreams"` {
			continue
		}
		if l.Href != "" {
			return l.Href
		}
	}
	return ""
}

// canonicalize looks actor up by WebFinger at acct@host, following
// subject redirects up to MaxWebfingerHops. When acct is nil (e.g.
// resolving an object's attributedTo by bare ID) the lookup starts from
// actor.preferredUsername at host, and is skipped if that is empty.
// canonicalize never rejects actor and always returns nil: a failed
// fetch, an unparsable response or no matching self link leaves the
// caller with {actor.preferredUsername, host(U)}, which is already how
// actor was looked up.
func (r *Resolver) canonicalize(ctx context.Context, key httpsig.Key, actor *ap.Actor, acct *ap.Acct, host string) error {
	name := actor.PreferredUsername
	if acct != nil {
		name = acct.Name
		host = acct.Host
	} else if name == "" {
		return nil
	}

	resource := fmt.Sprintf("acct:%s@%s", name, host)

	for hop := 0; hop < r.Config.MaxWebfingerHops; hop++ {
		finger := fmt.Sprintf("https://%s/.well-known/webfinger?resource=%s", host, url.QueryEscape(resource))

		body, err := r.get(ctx, key, finger)
		if err != nil {
			// a failed fetch doesn't invalidate the actor; it just means
			// canonicalisation couldn't run, so fall back silently.
			return nil
		}

		var doc jrd
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil
		}

		if doc.self() == actor.ID {
			return nil
		}

		if !strings.HasPrefix(doc.Subject, "acct:") || doc.Subject == resource {
			return nil
		}

		resource = doc.Subject
		rest, _ := strings.CutPrefix(resource, "acct:")
		at := strings.LastIndexByte(rest, '@')
		if at < 0 {
			return nil
		}
		name, host = rest[:at], rest[at+1:]
	}

	return nil
}
