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
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/corvidnet/corvid/data"
	"github.com/corvidnet/corvid/httpsig"
	"github.com/corvidnet/corvid/store"
)

// signerForKey resolves an inbound Signature's keyId to the account and
// public key to verify against, preferring what's already in the store
// and falling back to a fetch when the key is unknown. ourKey signs the
// fetch itself, since a refetch is a GET this server makes as a federated
// peer and is subject to the same authorized-fetch requirements it places
// on others.
func (s *Server) signerForKey(r *http.Request, keyID string, key *store.CryptographicKey, ourKey httpsig.Key) (*store.Account, *rsa.PublicKey, error) {
	if key != nil {
		account, err := store.AccountByKeyID(r.Context(), s.Store.DB, keyID)
		if err != nil {
			return nil, nil, err
		}
		if account != nil {
			pub, err := data.ParsePublicKey(key.PublicKey)
			if err != nil {
				return nil, nil, err
			}
			return account, pub, nil
		}
	}
	return s.refetchSigner(r, actorIDFromKeyID(keyID), ourKey)
}

// refetchSigner force-refetches the actor owning actorID and returns its
// current public key, used both for an unknown keyId and for the
// one-shot retry after a rotated-key verification failure.
func (s *Server) refetchSigner(r *http.Request, actorID string, ourKey httpsig.Key) (*store.Account, *rsa.PublicKey, error) {
	account, err := s.Resolver.ResolveActor(r.Context(), ourKey, actorID, nil, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve signer %s: %w", actorID, err)
	}

	key, err := store.AnyKeyForAccount(r.Context(), s.Store.DB, account.ID)
	if err != nil {
		return nil, nil, err
	}
	if key == nil {
		return nil, nil, fmt.Errorf("no key on file for %s", actorID)
	}

	pub, err := data.ParsePublicKey(key.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	return account, pub, nil
}

// signingKeyForRequest resolves the local identity this server signs its
// own outbound resolver fetches as while handling r: the addressed
// account for a per-user inbox POST, or any local account that carries a
// signing key for the shared inbox, which has no single addressee.
func (s *Server) signingKeyForRequest(r *http.Request) (httpsig.Key, error) {
	var account *store.Account
	var err error
	if username := r.PathValue("username"); username != "" {
		account, err = store.AccountByHandle(r.Context(), s.Store.DB, username, "")
		if err != nil {
			return httpsig.Key{}, err
		}
	}
	if account == nil {
		account, err = store.AnyLocalAccountWithKey(r.Context(), s.Store.DB)
		if err != nil {
			return httpsig.Key{}, err
		}
	}
	if account == nil {
		return httpsig.Key{}, fmt.Errorf("no local account available to sign outbound requests")
	}

	k, err := store.LocalKeyForAccount(r.Context(), s.Store.DB, account.ID)
	if err != nil {
		return httpsig.Key{}, err
	}
	if k == nil || !k.PrivateKey.Valid {
		return httpsig.Key{}, fmt.Errorf("no signing key for account %s", account.ID)
	}

	priv, err := data.ParsePrivateKey(k.PrivateKey.String)
	if err != nil {
		return httpsig.Key{}, err
	}
	return httpsig.Key{ID: k.ID, PrivateKey: priv}, nil
}

// actorIDFromKeyID strips a key fragment (e.g. "#main-key") to recover
// the actor IRI a keyId is minted under.
func actorIDFromKeyID(keyID string) string {
	if i := strings.Index(keyID, "#"); i >= 0 {
		return keyID[:i]
	}
	return keyID
}
