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
	"database/sql"
	"time"
)

type AccountKind string

const (
	KindPerson  AccountKind = "Person"
	KindGroup   AccountKind = "Group"
	KindService AccountKind = "Service"
)

// Account row order must match every SELECT that scans into it with
// [github.com/corvidnet/corvid/data.CollectRows]: columns are read by
// position, not by name.
type Account struct {
	ID                     string
	Kind                   AccountKind
	Username               string
	Domain                 sql.NullString
	URL                    string
	DisplayName            sql.NullString
	Note                   sql.NullString
	AvatarID               sql.NullString
	HeaderID               sql.NullString
	Locked                 bool
	Local                  bool
	InboxURL               sql.NullString
	SharedInboxURL         sql.NullString
	OutboxURL              sql.NullString
	FollowersURL           sql.NullString
	FollowingURL           sql.NullString
	FeaturedCollectionURL  sql.NullString
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (a *Account) IsLocal() bool {
	return a.Local
}

type CryptographicKey struct {
	ID         string
	PublicKey  string
	PrivateKey sql.NullString
	CreatedAt  time.Time
}

type Visibility string

const (
	Public        Visibility = "Public"
	Unlisted      Visibility = "Unlisted"
	FollowerOnly  Visibility = "FollowerOnly"
	MentionOnly   Visibility = "MentionOnly"
)

// Rank orders visibilities from least to most restrictive, the ordering
// I3 and the parsing-monotonicity property are defined over.
func (v Visibility) Rank() int {
	switch v {
	case Public:
		return 0
	case Unlisted:
		return 1
	case FollowerOnly:
		return 2
	case MentionOnly:
		return 3
	default:
		return 3
	}
}

type Post struct {
	ID               string
	AccountID        string
	InReplyToID      sql.NullString
	RepostedPostID   sql.NullString
	IsSensitive      bool
	Subject          sql.NullString
	Content          string
	ContentSource    string
	ContentLanguage  sql.NullString
	LinkPreviewURL   sql.NullString
	Visibility       Visibility
	IsLocal          bool
	URL              string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p *Post) IsRepost() bool {
	return p.RepostedPostID.Valid
}

type Follow struct {
	ID         string
	AccountID  string
	FollowerID string
	ApprovedAt sql.NullTime
	URL        string
	Notify     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (f *Follow) Approved() bool {
	return f.ApprovedAt.Valid
}

type Favourite struct {
	ID        string
	AccountID string
	PostID    string
	URL       string
	CreatedAt time.Time
}

type Mention struct {
	PostID      string
	AccountID   string
	MentionText string
}

type NotificationType string

const (
	NotifyMention       NotificationType = "Mention"
	NotifyPost          NotificationType = "Post"
	NotifyRepost        NotificationType = "Repost"
	NotifyFollow        NotificationType = "Follow"
	NotifyFollowRequest NotificationType = "FollowRequest"
	NotifyFavourite     NotificationType = "Favourite"
	NotifyPostUpdate    NotificationType = "PostUpdate"
)

type Notification struct {
	ID                  string
	ReceivingAccountID  string
	TriggeringAccountID sql.NullString
	PostID              sql.NullString
	NotificationType    NotificationType
	CreatedAt           time.Time
}

type LinkPreview struct {
	URL       string
	Payload   string
	ExpiresAt time.Time
}

type JobState string

const (
	JobQueued    JobState = "Queued"
	JobRunning   JobState = "Running"
	JobFailed    JobState = "Failed"
	JobSucceeded JobState = "Succeeded"
)

// Job is the lease record C10 workers claim; JobContext carries the
// payload a worker needs to resume the job, addressed by the same ID.
type Job struct {
	ID        string
	State     JobState
	FailCount int
	RunAt     time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type JobContext struct {
	JobID string
	Kind  string
	Meta  string
}
