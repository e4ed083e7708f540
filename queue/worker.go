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

package queue

import (
	"context"
	"log/slog"
	"time"
)

// Handler runs a leased job's payload to completion; a returned error
// triggers Fail's backoff/dead-letter decision, nil triggers Succeed.
type Handler func(ctx context.Context, job LeasedJob) error

// Worker polls Lease on Config.JobPollInterval and dispatches each
// leased job to handlers[job.Kind]. A job whose kind has no registered
// handler is dead-lettered immediately; there's nothing a retry would
// fix.
type Worker struct {
	Queue    *Queue
	Handlers map[string]Handler
}

// Run polls until ctx is canceled. Workers MUST check for cancellation
// between jobs in a batch, which the per-job select below does.
func (w *Worker) Run(ctx context.Context) error {
	t := time.NewTicker(w.Queue.Config.JobPollInterval)
	defer t.Stop()

	for {
		jobs, err := w.Queue.Lease(ctx, w.Queue.Config.JobLeaseSize)
		if err != nil {
			slog.Error("Failed to lease jobs", "error", err)
		}

		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			w.run(ctx, job)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (w *Worker) run(ctx context.Context, job LeasedJob) {
	handler, ok := w.Handlers[job.Kind]
	if !ok {
		slog.Error("No handler for job kind", "id", job.ID, "kind", job.Kind)
		if err := w.Queue.Fail(ctx, job.ID, w.Queue.Config.JobMaxRetries); err != nil {
			slog.Error("Failed to dead-letter job", "id", job.ID, "error", err)
		}
		return
	}

	if err := handler(ctx, job); err != nil {
		slog.Warn("Job failed", "id", job.ID, "kind", job.Kind, "error", err)
		if err := w.Queue.Fail(ctx, job.ID, job.FailCount); err != nil {
			slog.Error("Failed to reschedule job", "id", job.ID, "error", err)
		}
		return
	}

	if err := w.Queue.Succeed(ctx, job.ID); err != nil {
		slog.Error("Failed to complete job", "id", job.ID, "error", err)
	}
}

// Reclaimer periodically touches jobs this process still holds a lease
// on, so a slow job isn't mistaken for stalled and stolen by another
// worker mid-run. Callers track in-flight job IDs and feed them to Run.
type Reclaimer struct {
	Queue    *Queue
	Interval time.Duration
	InFlight func() []string
}

func (r *Reclaimer) Run(ctx context.Context) error {
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			for _, id := range r.InFlight() {
				if err := r.Queue.Touch(ctx, id); err != nil {
					slog.Warn("Failed to touch job lease", "id", id, "error", err)
				}
			}
		}
	}
}
