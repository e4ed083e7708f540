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

// Package queue implements C10: durable job storage, a lease-based
// worker pool, exponential backoff on failure and stalled-run reclaim.
package queue

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/store"
)

// Deliver-kind job payloads enqueued by the inbound and outbound
// pipelines; Queue itself is agnostic to kind, Handlers dispatches on it.
const (
	KindDeliverAccept = "deliver_accept"
	KindDeliverMany   = "deliver_many"
)

// Queue wraps the store's Job/JobContext tables with enqueue, lease and
// completion semantics.
type Queue struct {
	Store  *store.Store
	Config *cfg.Config
}

func New(st *store.Store, c *cfg.Config) *Queue {
	return &Queue{Store: st, Config: c}
}

// Enqueue inserts a new Queued job whose context carries kind and a
// JSON-encoded meta payload a worker's Handler decodes.
func (q *Queue) Enqueue(ctx context.Context, kind string, meta any) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode job payload: %w", err)
	}

	now := time.Now()
	id := data.NewID()

	job := &store.Job{ID: id, State: store.JobQueued, RunAt: now, CreatedAt: now, UpdatedAt: now}
	jc := &store.JobContext{JobID: id, Kind: kind, Meta: string(payload)}

	return q.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.EnqueueJob(ctx, tx, job, jc)
	})
}

// EnqueueDeliverAccept enqueues the Accept(Follow) a newly auto-approved
// Follow must deliver back to its follower.
func (q *Queue) EnqueueDeliverAccept(ctx context.Context, target, follower *store.Account, followURL string) error {
	return q.Enqueue(ctx, KindDeliverAccept, deliverAcceptPayload{
		ActorID:    target.ID,
		InboxURL:   follower.InboxURL.String,
		FollowURL:  followURL,
		FollowerID: follower.URL,
	})
}

type deliverAcceptPayload struct {
	ActorID    string `json:"actor_id"`
	InboxURL   string `json:"inbox_url"`
	FollowURL  string `json:"follow_url"`
	FollowerID string `json:"follower_id"`
}

// EnqueueDeliverMany enqueues fanout of an already-built, already-
// marshaled activity to every inbox in inboxes, on behalf of actorID.
func (q *Queue) EnqueueDeliverMany(ctx context.Context, actorID, activityType string, body []byte, inboxes []string) error {
	if len(inboxes) == 0 {
		return nil
	}
	return q.Enqueue(ctx, KindDeliverMany, deliverManyPayload{
		ActorID:      actorID,
		ActivityType: activityType,
		Body:         string(body),
		Inboxes:      inboxes,
	})
}

// LeasedJob pairs a leased Job row with its decoded context.
type LeasedJob struct {
	store.Job
	Kind string
	Meta string
}

// Lease claims up to n runnable jobs.
func (q *Queue) Lease(ctx context.Context, n int) ([]LeasedJob, error) {
	jobs, err := store.LeaseJobs(ctx, q.Store.DB, n, time.Now(), q.Config.JobMinIdleTime)
	if err != nil {
		return nil, err
	}

	leased := make([]LeasedJob, 0, len(jobs))
	for _, j := range jobs {
		jc, err := store.JobContextByJobID(ctx, q.Store.DB, j.ID)
		if err != nil || jc == nil {
			continue
		}
		leased = append(leased, LeasedJob{Job: j, Kind: jc.Kind, Meta: jc.Meta})
	}
	return leased, nil
}

// Touch refreshes a live lease so Lease doesn't reclaim it as stalled.
func (q *Queue) Touch(ctx context.Context, id string) error {
	return store.TouchJob(ctx, q.Store.DB, id, time.Now())
}

// Succeed completes id successfully, deleting its row.
func (q *Queue) Succeed(ctx context.Context, id string) error {
	return q.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.CompleteJobSuccess(ctx, tx, id)
	})
}

// Fail records a failed attempt: reschedules with exponential backoff
// and jitter if failCount is still within JobMaxRetries, else
// dead-letters the job.
func (q *Queue) Fail(ctx context.Context, id string, failCount int) error {
	failCount++
	now := time.Now()

	if failCount > q.Config.JobMaxRetries {
		return q.Store.Run(ctx, func(tx *sql.Tx) error {
			return store.DeadLetterJob(ctx, tx, id)
		})
	}

	runAt := now.Add(backoff(failCount, q.Config.JobBackoffBase, q.Config.JobBackoffJitter))
	return q.Store.Run(ctx, func(tx *sql.Tx) error {
		return store.RescheduleJobFailure(ctx, tx, id, failCount, runAt, now)
	})
}

// backoff computes 2^failCount * base, jittered by up to jitterFraction
// of that duration, the standard exponential-backoff-with-jitter shape.
func backoff(failCount int, base time.Duration, jitterFraction float64) time.Duration {
	exp := math.Pow(2, float64(failCount))
	d := time.Duration(exp) * base

	if jitterFraction <= 0 {
		return d
	}
	span := int64(float64(d) * jitterFraction)
	if span <= 0 {
		return d
	}
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return d
	}
	return d + time.Duration(n.Int64())
}
