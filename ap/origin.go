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
	"fmt"
)

// ValidateOrigin checks that an inbound activity's actor and object IDs are
// consistent with the host it was signed by, rejecting activities where a
// peer claims authority it doesn't have (e.g. S claiming to delete an
// object hosted elsewhere).
func ValidateOrigin(domain string, activity *Activity, origin string) error {
	return validateOrigin(domain, activity, origin, 0)
}

func validateOrigin(domain string, activity *Activity, origin string, depth uint) error {
	if depth == MaxActivityDepth {
		return errors.New("activity is too nested")
	}

	if activity.ID == "" {
		return errors.New("unspecified activity ID")
	}

	activityOrigin, err := Host(activity.ID)
	if err != nil {
		return err
	}

	if activityOrigin != origin {
		return fmt.Errorf("invalid activity host: %s", activityOrigin)
	}

	if activity.Actor == "" {
		return errors.New("unspecified actor")
	}

	actorOrigin, err := Host(activity.Actor)
	if err != nil {
		return err
	}

	if actorOrigin != origin {
		return fmt.Errorf("invalid actor host: %s", actorOrigin)
	}

	switch activity.Type {
	case Delete:
		// origin can only delete objects that belong to origin
		switch v := activity.Object.(type) {
		case *Object:
			if objectOrigin, err := Host(v.ID); err != nil {
				return err
			} else if objectOrigin != origin {
				return fmt.Errorf("invalid object host: %s", objectOrigin)
			}
		case string:
			if stringOrigin, err := Host(v); err != nil {
				return err
			} else if stringOrigin != origin {
				return fmt.Errorf("invalid object host: %s", stringOrigin)
			}
		default:
			return fmt.Errorf("invalid object: %T", v)
		}

	case Follow, Like:
		if inner, ok := activity.Object.(string); ok {
			if _, err := Host(inner); err != nil {
				return err
			}
		} else {
			return fmt.Errorf("invalid object: %T", activity.Object)
		}

	case Accept, Reject:
		// origin can only accept or reject Follow requests addressed to it
		switch v := activity.Object.(type) {
		case *Activity:
			if v.Type != Follow {
				return fmt.Errorf("invalid object type: %s", v.Type)
			}
			if innerOrigin, err := Host(v.ID); err != nil {
				return err
			} else if innerOrigin != domain {
				return fmt.Errorf("invalid object host: %s", innerOrigin)
			}
		case string:
			if innerOrigin, err := Host(v); err != nil {
				return err
			} else if innerOrigin != domain {
				return fmt.Errorf("invalid object host: %s", innerOrigin)
			}
		default:
			return fmt.Errorf("invalid object: %T", v)
		}

	case Undo:
		inner, ok := activity.Object.(*Activity)
		if !ok {
			return fmt.Errorf("invalid object: %T", activity.Object)
		}
		if inner.Type != Announce && inner.Type != Follow && inner.Type != Like {
			return fmt.Errorf("invalid inner activity: %w: %s", ErrUnsupportedActivity, inner.Type)
		}
		// origin can only undo actions performed by its own actors
		if err := validateOrigin(domain, inner, origin, depth+1); err != nil {
			return err
		}

	case Create, Update:
		// origin can only create or update objects attributed to origin
		switch v := activity.Object.(type) {
		case *Object:
			if objectOrigin, err := Host(v.ID); err != nil {
				return err
			} else if objectOrigin != origin {
				return fmt.Errorf("invalid object host: %s", objectOrigin)
			} else if v.AttributedTo != "" && v.AttributedTo != activity.Actor {
				authorOrigin, err := Host(v.AttributedTo)
				if err != nil {
					return err
				}
				if authorOrigin != origin {
					return fmt.Errorf("invalid author host: %s", authorOrigin)
				}
			}
		case string:
			if stringOrigin, err := Host(v); err != nil {
				return err
			} else if stringOrigin != origin {
				return fmt.Errorf("invalid object host: %s", stringOrigin)
			}
		default:
			return fmt.Errorf("invalid object: %T", v)
		}

	case Announce:
		// Announce must reference a bare IRI; we never accept a nested
		// embedded activity or object for a repost
		if _, ok := activity.Object.(*Activity); ok {
			return errors.New("announce must not be nested")
		} else if s, ok := activity.Object.(string); !ok {
			return fmt.Errorf("invalid object: %T", activity.Object)
		} else if s == "" {
			return errors.New("empty object ID")
		} else if _, err := Host(s); err != nil {
			return err
		}

	case Block:
		// reserved, no-op; accepted but not dispatched

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedActivity, activity.Type)
	}

	return nil
}
