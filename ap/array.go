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

import "encoding/json"

// Array accepts a JSON-LD container that is either a single value or an
// array of values, collapsing both into a Go slice. Elements that fail to
// unmarshal are skipped rather than aborting the whole array (FirstOk
// semantics extended to every element).
type Array[T any] []T

func (a *Array[T]) UnmarshalJSON(b []byte) error {
	var many []json.RawMessage
	if err := json.Unmarshal(b, &many); err != nil {
		// not an array: treat the whole value as a single element
		var one T
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*a = Array[T]{one}
		return nil
	}

	out := make(Array[T], 0, len(many))
	for _, raw := range many {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*a = out
	return nil
}

func (a Array[T]) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]T(a))
}

// First returns the single value a single-or-array-of-strings property
// reduces to, or "" if empty.
func First(b []byte) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, nil
	}

	var l []string
	if err := json.Unmarshal(b, &l); err != nil {
		return "", err
	}
	if len(l) == 0 {
		return "", nil
	}
	return l[0], nil
}
