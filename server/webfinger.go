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
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/corvidnet/corvid/store"
)

type jrdLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

type jrdResponse struct {
	Subject string    `json:"subject"`
	Aliases []string  `json:"aliases"`
	Links   []jrdLink `json:"links"`
}

// handleWebFinger implements §6.1's GET /.well-known/webfinger, resolving
// acct:{user}@{host} to the self link a remote resolver's
// canonicalisation step re-queries.
func (s *Server) handleWebFinger(w http.ResponseWriter, r *http.Request) {
	resource := r.URL.Query().Get("resource")
	if resource == "" {
		http.Error(w, "missing resource", http.StatusBadRequest)
		return
	}

	resource = strings.TrimPrefix(resource, "acct:")
	fields := strings.SplitN(resource, "@", 2)
	username := fields[0]
	if len(fields) == 2 && !strings.EqualFold(fields[1], s.Domain) {
		http.Error(w, "resource not hosted here", http.StatusNotFound)
		return
	}

	account, err := store.AccountByHandle(r.Context(), s.Store.DB, username, "")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if account == nil || !account.Local {
		http.Error(w, "no such user", http.StatusNotFound)
		return
	}

	resp := jrdResponse{
		Subject: fmt.Sprintf("acct:%s@%s", account.Username, s.Domain),
		Aliases: []string{account.URL},
		Links: []jrdLink{
			{Rel: "self", Type: "application/activity+json", Href: account.URL},
		},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to encode webfinger response", "user", username, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/jrd+json; charset=utf-8")
	w.Write(body)
}
