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

package migrations

// migrations runs in order; entries are never reordered or removed once
// released, only appended to.
var migrations = []migration{
	{ID: "001_accounts", Up: accounts},
	{ID: "002_keys", Up: keys},
	{ID: "003_posts", Up: posts},
	{ID: "004_follows", Up: follows},
	{ID: "005_notifications", Up: notifications},
	{ID: "006_jobs", Up: jobs},
	{ID: "007_linkpreviews", Up: linkPreviews},
}
