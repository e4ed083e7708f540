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
	"fmt"
	"log/slog"
	"net/http"

	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/store"
)

// handleInbox implements §6.1's POST /inbox and POST /users/{id}/inbox:
// 2xx on accept, 400 on malformed body or MRF reject, 401 on signature
// failure, 500 on internal error.
func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	body, err := data.ReadLimited(r.Body, s.Config.MaxRequestBodySize)
	if err != nil {
		http.Error(w, "request body too large", http.StatusBadRequest)
		return
	}

	sig, err := httpsig.Extract(r, body, s.Domain, s.Config.MaxRequestAge)
	if err != nil {
		slog.Warn("Failed to extract signature", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	key, err := store.KeyByID(r.Context(), s.Store.DB, sig.KeyID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ourKey, err := s.signingKeyForRequest(r)
	if err != nil {
		slog.Warn("Failed to resolve a local signing key", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	signer, pub, err := s.signerForKey(r, sig.KeyID, key, ourKey)
	if err != nil {
		slog.Warn("Failed to resolve signer", "keyId", sig.KeyID, "error", err)
		http.Error(w, "unknown signer", http.StatusUnauthorized)
		return
	}

	if err := sig.Verify(pub); err != nil {
		// the signer's key may have rotated since our last fetch; refetch
		// once and retry before giving up, per the teacher's inbox.go.
		signer, pub, err = s.refetchSigner(r, signer.URL, ourKey)
		if err != nil || sig.Verify(pub) != nil {
			http.Error(w, "signature verification failed", http.StatusUnauthorized)
			return
		}
	}

	if err := s.Pipeline.Process(r.Context(), ourKey, signer, body); err != nil {
		slog.Warn("Failed to process activity", "error", err)
		http.Error(w, fmt.Sprintf("rejected: %v", err), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
