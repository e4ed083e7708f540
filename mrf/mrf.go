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

// Package mrf defines the message rewrite facility: an operator-pluggable
// hook the inbound and outbound pipelines run every activity through.
package mrf

import "context"

// Direction is which side of the wire an activity crossed.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

// Verdict is an MRF policy's decision: Accept carries the (possibly
// rewritten) body forward, Reject drops it.
type Verdict struct {
	Accepted bool
	Body     []byte
}

// Accept returns a Verdict that forwards body unchanged or rewritten.
func Accept(body []byte) Verdict {
	return Verdict{Accepted: true, Body: body}
}

// Reject returns a Verdict that drops the activity silently.
func Reject() Verdict {
	return Verdict{Accepted: false}
}

// Policy is a pure function over an activity's wire body; the pipeline
// treats it opaquely and never inspects why it accepted or rejected.
type Policy func(ctx context.Context, dir Direction, activityType string, body []byte) (Verdict, error)

// Chain runs policies in order, short-circuiting on the first Reject or
// error, threading each Accept's body into the next policy.
func Chain(policies ...Policy) Policy {
	return func(ctx context.Context, dir Direction, activityType string, body []byte) (Verdict, error) {
		for _, p := range policies {
			v, err := p(ctx, dir, activityType, body)
			if err != nil {
				return Verdict{}, err
			}
			if !v.Accepted {
				return v, nil
			}
			body = v.Body
		}
		return Accept(body), nil
	}
}

// Allow is the no-op Policy: it accepts every activity unchanged.
func Allow(ctx context.Context, dir Direction, activityType string, body []byte) (Verdict, error) {
	return Accept(body), nil
}
