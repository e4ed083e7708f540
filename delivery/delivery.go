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

// Package delivery implements C9: signed, concurrent fanout of outgoing
// activities to remote inboxes, with per-recipient dedup so a retried
// job doesn't re-POST to peers it already reached.
package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/filter"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/mrf"
	"github.com/corvidnet/corvid/store"
)

const userAgent = "corvid/0 (+https://github.com/corvidnet/corvid)"

// Engine fans an activity out to a set of recipient inboxes.
type Engine struct {
	Domain string
	Config *cfg.Config
	Store  *store.Store
	Filter *filter.Filter
	MRF    mrf.Policy
	Client *http.Client
}

func New(domain string, c *cfg.Config, st *store.Store, filt *filter.Filter, policy mrf.Policy, client *http.Client) *Engine {
	if policy == nil {
		policy = mrf.Allow
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Engine{Domain: domain, Config: c, Store: st, Filter: filt, MRF: policy, Client: client}
}

// result of one inbox delivery attempt.
type result struct {
	inbox     string
	permanent bool // a 4xx: retrying would only repeat it
	err       error
}

// Deliver signs body once per inbox and POSTs it concurrently, bounded
// by Config.DeliveryWorkers. jobID scopes the delivery_attempts ledger
// so inboxes already confirmed for this job are skipped on a retry.
//
// A 4xx response, a federation-filter block, or an outbound MRF reject
// are all treated as resolved (recorded delivered, never retried): per
// spec, rejection is silent and retrying a client error changes
// nothing. A 5xx response or network/timeout error is transient and
// reported back so the caller's job-level backoff retries just the
// inboxes that haven't succeeded yet.
func (e *Engine) Deliver(ctx context.Context, jobID string, key httpsig.Key, activityType string, body []byte, inboxes []string) error {
	jobs := make(chan string)
	results := make(chan result)

	workers := e.Config.DeliveryWorkers
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for inbox := range jobs {
				results <- e.deliverOne(ctx, jobID, key, activityType, body, inbox)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, inbox := range inboxes {
			select {
			case jobs <- inbox:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var transient []error
	for r := range results {
		if r.err == nil {
			continue
		}
		if r.permanent {
			slog.Warn("Delivery permanently failed", "job", jobID, "inbox", r.inbox, "error", r.err)
			continue
		}
		slog.Warn("Delivery transiently failed", "job", jobID, "inbox", r.inbox, "error", r.err)
		transient = append(transient, fmt.Errorf("%s: %w", r.inbox, r.err))
	}

	if len(transient) > 0 {
		return errors.Join(transient...)
	}
	return nil
}

func (e *Engine) deliverOne(ctx context.Context, jobID string, key httpsig.Key, activityType string, body []byte, inbox string) result {
	u, err := url.Parse(inbox)
	if err != nil {
		return result{inbox: inbox, permanent: true, err: err}
	}
	if u.Host == e.Domain {
		return result{inbox: inbox}
	}

	if e.Filter != nil && !e.Filter.Allowed(u.Host) {
		slog.Debug("Skipping filtered recipient", "inbox", inbox)
		e.markDone(ctx, jobID, inbox)
		return result{inbox: inbox}
	}

	done, err := store.DeliveryAttempted(ctx, e.Store.DB, jobID, inbox)
	if err != nil {
		return result{inbox: inbox, err: err}
	}
	if done {
		slog.Debug("Already delivered", "job", jobID, "inbox", inbox)
		return result{inbox: inbox}
	}

	verdict, err := e.MRF(ctx, mrf.Outgoing, activityType, body)
	if err != nil {
		return result{inbox: inbox, err: err}
	}
	if !verdict.Accepted {
		slog.Debug("Outbound activity rejected by policy", "inbox", inbox, "type", activityType)
		e.markDone(ctx, jobID, inbox)
		return result{inbox: inbox}
	}

	if err := e.send(ctx, key, inbox, verdict.Body); err != nil {
		var perr *permanentError
		if errors.As(err, &perr) {
			e.markDone(ctx, jobID, inbox)
			return result{inbox: inbox, permanent: true, err: err}
		}
		return result{inbox: inbox, err: err}
	}

	e.markDone(ctx, jobID, inbox)
	return result{inbox: inbox}
}

func (e *Engine) markDone(ctx context.Context, jobID, inbox string) {
	if err := store.RecordDelivery(ctx, e.Store.DB, jobID, inbox, time.Now()); err != nil {
		slog.Error("Failed to record delivery", "job", jobID, "inbox", inbox, "error", err)
	}
}

// permanentError wraps a 4xx response: the request was well-formed but
// the recipient will never accept it, so retrying changes nothing.
type permanentError struct {
	status int
}

func (p *permanentError) Error() string {
	return fmt.Sprintf("recipient rejected delivery: %d", p.status)
}

func (e *Engine) send(parent context.Context, key httpsig.Key, inbox string, body []byte) error {
	ctx, cancel := context.WithTimeout(parent, e.Config.DeliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inbox, bytes.NewReader(body))
	if err != nil {
		return &permanentError{}
	}
	req.Header.Set("Accept", "application/activity+json")
	req.Header.Set("Content-Type", "application/activity+json")
	req.Header.Set("User-Agent", userAgent)

	if err := httpsig.Sign(req, key, time.Now()); err != nil {
		return fmt.Errorf("failed to sign request to %s: %w", inbox, err)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &permanentError{status: resp.StatusCode}
	default:
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, inbox)
	}
}
