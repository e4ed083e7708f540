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

package outbox

import "github.com/corvidnet/corvid/ap"

// Undo wraps a previously issued activity x (Follow, Like, or Announce)
// as `Undo{id=x.id+"#undo", object=x}`, per §4.8.3.
func Undo(x *ap.Activity) *ap.Activity {
	return &ap.Activity{
		Context: ActivityContext,
		ID:      x.ID + "#undo",
		Type:    ap.Undo,
		Actor:   x.Actor,
		Object:  x,
		To:      x.To,
		CC:      x.CC,
	}
}
