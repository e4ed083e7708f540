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

package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corvidnet/corvid/outbox"
	"github.com/corvidnet/corvid/store"
)

// handleActor implements §6.1's GET /users/{id} actor endpoint, serving
// the account's wire Actor document with its public key embedded.
func (s *Server) handleActor(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	account, err := store.AccountByHandle(r.Context(), s.Store.DB, username, "")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if account == nil || !account.Local {
		http.Error(w, "no such user", http.StatusNotFound)
		return
	}

	key, err := store.LocalKeyForAccount(r.Context(), s.Store.DB, account.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	body, err := json.Marshal(outbox.Actor(account, key))
	if err != nil {
		slog.Error("Failed to encode actor", "user", username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/activity+json; charset=utf-8")
	w.Write(body)
}
