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

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/corvidnet/corvid/data"
)

const postColumns = `id, account_id, in_reply_to_id, reposted_post_id, is_sensitive, subject, content, content_source, content_language, link_preview_url, visibility, is_local, url, created_at, updated_at`

// PostByURL returns the Post whose canonical IRI is url.
func PostByURL(ctx context.Context, db *sql.DB, url string) (*Post, error) {
	rows, err := data.CollectRows[Post](ctx, db, `select `+postColumns+` from posts where url = ?`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query post by url: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// PostByID returns the Post with the given surrogate key.
func PostByID(ctx context.Context, db *sql.DB, id string) (*Post, error) {
	rows, err := data.CollectRows[Post](ctx, db, `select `+postColumns+` from posts where id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query post %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// mentionedAccountURL pairs a Mention with the IRI of the account it
// references, the outbound mapper's unit of addressing.
type mentionedAccountURL struct {
	URL         string
	MentionText string
}

// MentionedAccountURLs returns the IRIs of every account tagged in
// postID's tag set, for building outbound addressing; the mention text
// is read but not returned.
func MentionedAccountURLs(ctx context.Context, db *sql.DB, postID string) ([]string, error) {
	rows, err := data.CollectRows[mentionedAccountURL](ctx, db, `
		select a.url, m.mention_text
		from mentions m
		join accounts a on a.id = m.account_id
		where m.post_id = ?`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentions for %s: %w", postID, err)
	}
	urls := make([]string, 0, len(rows))
	for _, r := range rows {
		urls = append(urls, r.URL)
	}
	return urls, nil
}

// UpsertPost inserts post, or on url conflict updates the fields an
// Update activity is allowed to change.
func UpsertPost(ctx context.Context, tx *sql.Tx, p *Post) error {
	_, err := tx.ExecContext(ctx, `
		insert into posts(`+postColumns+`)
		values(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		on conflict(url) do update set
			subject = excluded.subject,
			content = excluded.content,
			content_source = excluded.content_source,
			updated_at = excluded.updated_at`,
		p.ID, p.AccountID, p.InReplyToID, p.RepostedPostID, p.IsSensitive, p.Subject, p.Content,
		p.ContentSource, p.ContentLanguage, p.LinkPreviewURL, p.Visibility, p.IsLocal, p.URL,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert post %s: %w", p.URL, err)
	}
	return nil
}

// DeletePostByURLOwnedBy deletes the Post whose url matches and whose
// account_id is ownerID, no-op if absent; Undo and Delete dispatch both
// rely on this owner check so a peer can't delete rows it doesn't own.
func DeletePostByURLOwnedBy(ctx context.Context, tx *sql.Tx, url, ownerID string) error {
	if _, err := tx.ExecContext(ctx, `delete from posts where url = ? and account_id = ?`, url, ownerID); err != nil {
		return fmt.Errorf("failed to delete post %s: %w", url, err)
	}
	return nil
}

// InsertMention records a tag-set entry for a post; natural-key conflicts
// are ignored.
func InsertMention(ctx context.Context, tx *sql.Tx, m *Mention) error {
	if _, err := tx.ExecContext(ctx, `
		insert into mentions(post_id, account_id, mention_text) values(?, ?, ?)
		on conflict(post_id, account_id) do nothing`,
		m.PostID, m.AccountID, m.MentionText,
	); err != nil {
		return fmt.Errorf("failed to insert mention: %w", err)
	}
	return nil
}
