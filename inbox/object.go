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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/corvidnet/corvid/ap"
	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/render"
	"github.com/corvidnet/corvid/store"
)

func (p *Pipeline) onCreate(ctx context.Context, key httpsig.Key, signer *store.Account, a *ap.Activity) error {
	return p.processObject(ctx, key, signer, a.Object)
}

func (p *Pipeline) onUpdate(ctx context.Context, key httpsig.Key, signer *store.Account, a *ap.Activity) error {
	return p.processObject(ctx, key, signer, a.Object)
}

// processObject implements the Create/Update object-processing flow:
// resolve the author, compute reception visibility, fetch the reply
// parent within the fetch-depth budget, render and sanitise content,
// and upsert the Post.
func (p *Pipeline) processObject(ctx context.Context, key httpsig.Key, signer *store.Account, raw any) error {
	obj, err := decodeObject(raw)
	if err != nil {
		return err
	}

	author := signer
	if obj.AttributedTo != "" && obj.AttributedTo != signer.URL {
		author, err = p.Resolver.ResolveActor(ctx, key, obj.AttributedTo, nil, false)
		if err != nil {
			return fmt.Errorf("failed to resolve author %s: %w", obj.AttributedTo, err)
		}
	}

	var parentID string
	if obj.InReplyTo != "" {
		if parent, err := p.Resolver.FetchPost(ctx, key, obj.InReplyTo, 1); err != nil {
			// reply-chain fetch failure doesn't abort ingestion; the
			// post is stored as a top-level reply to an unresolved parent.
		} else if parent != nil {
			parentID = parent.ID
		}
	}

	content := obj.Content
	if obj.MediaType == "text/markdown" {
		content = render.FromMarkdown(obj.Content, obj.Name, obj.ID)
	}
	content = render.Sanitize(content)

	post := &store.Post{
		ID:            postIDFromPublished(obj),
		AccountID:     author.ID,
		IsSensitive:   obj.Sensitive,
		Content:       content,
		ContentSource: obj.Content,
		Visibility:    receptionVisibility(obj),
		IsLocal:       false,
		URL:           obj.ID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if parentID != "" {
		post.InReplyToID = sql.NullString{String: parentID, Valid: true}
	}
	if obj.Summary != "" {
		post.Subject = sql.NullString{String: obj.Summary, Valid: true}
	}
	if !obj.Published.Time.IsZero() {
		post.CreatedAt = obj.Published.Time
	}
	if !obj.Updated.Time.IsZero() {
		post.UpdatedAt = obj.Updated.Time
	}

	return p.Store.Run(ctx, func(tx *sql.Tx) error {
		if err := store.UpsertPost(ctx, tx, post); err != nil {
			return err
		}
		for _, tag := range obj.Tag {
			if tag.Type != ap.MentionTag || tag.Href == "" {
				continue
			}
			mentioned, err := p.lookupAccountID(ctx, key, tag.Href, tag.Name)
			if err != nil {
				return err
			}
			if mentioned == "" {
				continue
			}
			if err := store.InsertMention(ctx, tx, &store.Mention{PostID: post.ID, AccountID: mentioned, MentionText: tag.Name}); err != nil {
				return err
			}
		}
		return nil
	})
}

// lookupAccountID resolves a Mention tag's href to a local account ID,
// falling through to the Resolver (C6) on a local store miss so a
// mention of a not-yet-seen remote account is still recorded rather than
// silently dropped. A resolution failure is logged and treated as a
// dropped mention, not an ingestion error.
func (p *Pipeline) lookupAccountID(ctx context.Context, key httpsig.Key, href, name string) (string, error) {
	a, err := store.AccountByURL(ctx, p.Store.DB, href)
	if err != nil {
		return "", err
	}
	if a != nil {
		return a.ID, nil
	}

	account, err := p.Resolver.ResolveActor(ctx, key, href, mentionAcct(name), false)
	if err != nil {
		slog.Warn("Failed to resolve mentioned account", "href", href, "error", err)
		return "", nil
	}
	return account.ID, nil
}

// mentionAcct parses a Mention tag's "@user@host" name into the handle
// ResolveActor cross-checks WebFinger against. It returns nil when name
// carries no host, leaving canonicalisation to fall back to href's own
// host.
func mentionAcct(name string) *ap.Acct {
	rest := strings.TrimPrefix(name, "@")
	at := strings.LastIndexByte(rest, '@')
	if at < 0 {
		return nil
	}
	return &ap.Acct{Name: rest[:at], Host: rest[at+1:]}
}

func (p *Pipeline) onAnnounce(ctx context.Context, key httpsig.Key, signer *store.Account, a *ap.Activity) error {
	targetURL := objectIRI(a.Object)
	if targetURL == "" {
		return nil
	}

	target, err := p.Resolver.FetchPost(ctx, key, targetURL, 0)
	if err != nil {
		return fmt.Errorf("failed to resolve announced post %s: %w", targetURL, err)
	}
	if target == nil {
		return nil
	}

	now := time.Now()
	repost := &store.Post{
		ID:             data.NewID(),
		AccountID:      signer.ID,
		RepostedPostID: sql.NullString{String: target.ID, Valid: true},
		Content:        "",
		ContentSource:  "",
		Visibility:     target.Visibility,
		IsLocal:        false,
		URL:            a.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return p.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.UpsertPost(ctx, tx, repost)
	})
}

func decodeObject(raw any) (*ap.Object, error) {
	switch v := raw.(type) {
	case *ap.Object:
		return v, nil
	case string:
		return nil, fmt.Errorf("expected embedded object, got bare id %s", v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var obj ap.Object
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil, err
		}
		return &obj, nil
	}
}

// postIDFromPublished derives the Post's surrogate key from the
// object's published timestamp where available, so posts naturally
// sort by origination time rather than ingestion time; it falls back to
// a fresh time-ordered ID when published is absent.
func postIDFromPublished(obj *ap.Object) string {
	if obj.Published.Time.IsZero() {
		return data.NewID()
	}
	return data.NewIDAt(obj.Published.Time)
}

// receptionVisibility computes I3's visibility from to/cc on receipt:
// Public if addressed to the public collection, Unlisted if public is
// only in cc, FollowerOnly if addressed to the author's followers
// collection, MentionOnly (direct) otherwise.
func receptionVisibility(obj *ap.Object) store.Visibility {
	if obj.To.Contains(ap.Public) {
		return store.Public
	}
	if obj.CC.Contains(ap.Public) {
		return store.Unlisted
	}
	for _, k := range obj.To.Keys() {
		if k != "" {
			return store.FollowerOnly
		}
	}
	return store.MentionOnly
}
