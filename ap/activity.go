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
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

type ActivityType string

const (
	Accept   ActivityType = "Accept"
	Announce ActivityType = "Announce"
	Create   ActivityType = "Create"
	Delete   ActivityType = "Delete"
	Follow   ActivityType = "Follow"
	Like     ActivityType = "Like"
	Reject   ActivityType = "Reject"
	Undo     ActivityType = "Undo"
	Update   ActivityType = "Update"
	Block    ActivityType = "Block"
)

// Public is the special actor ID that marks a to/cc recipient as public,
// per the ActivityStreams public addressing convention.
const Public = "https://www.w3.org/ns/activitystreams#Public"

// MaxActivityDepth bounds recursive descent into nested activities
// (e.g. Undo{Follow}) so a hostile or buggy peer can't force unbounded
// recursion. Reply chains are bounded separately, by cfg.MaxFetchDepth.
const MaxActivityDepth = 30

type anyActivity struct {
	Context any             `json:"@context"`
	ID      string          `json:"id"`
	Type    ActivityType    `json:"type"`
	Actor   string          `json:"actor"`
	Object  json.RawMessage `json:"object"`
	Target  string          `json:"target,omitempty"`
	To      Audience        `json:"to"`
	CC      Audience        `json:"cc"`
}

// Activity represents an ActivityPub activity. Object can point to
// another Activity, an [Object], a [Tombstone]-shaped Object, or a bare
// IRI string.
type Activity struct {
	Context   any          `json:"@context,omitempty"`
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Actor     string       `json:"actor"`
	Object    any          `json:"object"`
	Target    string       `json:"target,omitempty"`
	To        Audience     `json:"to,omitempty"`
	CC        Audience     `json:"cc,omitempty"`
	Published *Time        `json:"published,omitempty"`
}

var (
	ErrInvalidActivity     = errors.New("invalid activity")
	ErrUnsupportedActivity = errors.New("unsupported activity type")

	knownActivityTypes = map[ActivityType]struct{}{
		Accept:   {},
		Announce: {},
		Create:   {},
		Delete:   {},
		Follow:   {},
		Like:     {},
		Reject:   {},
		Undo:     {},
		Update:   {},
		Block:    {},
	}
)

func (a *Activity) IsPublic() bool {
	return a.To.Contains(Public) || a.CC.Contains(Public)
}

func (a *Activity) UnmarshalJSON(b []byte) error {
	var common anyActivity
	if err := json.Unmarshal(b, &common); err != nil {
		return err
	}

	if _, ok := knownActivityTypes[common.Type]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedActivity, common.Type)
	}

	a.Context = common.Context
	a.ID = common.ID
	a.Type = common.Type
	a.Actor = common.Actor
	a.Target = common.Target
	a.To = common.To
	a.CC = common.CC

	var activity Activity
	var object Object
	var link string
	if err := json.Unmarshal(common.Object, &activity); err == nil && activity.ID != "" && activity.Type != "" {
		a.Object = &activity
	} else if err := json.Unmarshal(common.Object, &object); err == nil && object.ID != "" {
		a.Object = &object
	} else if err := json.Unmarshal(common.Object, &link); err == nil {
		a.Object = link
	} else {
		return ErrInvalidActivity
	}

	return nil
}

func (a *Activity) Scan(src any) error {
	s, ok := src.(string)
	if !ok {
		return fmt.Errorf("unsupported conversion from %T to %T", src, a)
	}
	return json.Unmarshal([]byte(s), a)
}

func (a *Activity) Value() (driver.Value, error) {
	buf, err := json.Marshal(a)
	return string(buf), err
}

func (a *Activity) LogValue() slog.Value {
	if o, ok := a.Object.(*Object); ok {
		return slog.GroupValue(slog.String("id", a.ID), slog.String("type", string(a.Type)), slog.String("actor", a.Actor), slog.Group("object", "kind", "object", "id", o.ID, "type", string(o.Type), "attributed_to", o.AttributedTo))
	} else if inner, ok := a.Object.(*Activity); ok {
		return slog.GroupValue(slog.String("id", a.ID), slog.String("type", string(a.Type)), slog.String("actor", a.Actor), slog.Group("object", "kind", "activity", "id", inner.ID, "type", string(inner.Type), "actor", inner.Actor))
	} else if s, ok := a.Object.(string); ok {
		return slog.GroupValue(slog.String("id", a.ID), slog.String("type", string(a.Type)), slog.String("actor", a.Actor), slog.Group("object", "kind", "string", "id", s))
	}
	return slog.GroupValue(slog.String("id", a.ID), slog.String("type", string(a.Type)), slog.String("actor", a.Actor))
}
