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
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/migrations"
	"github.com/corvidnet/corvid/store"
)

func newTestServer(t *testing.T) (*Server, *store.Account) {
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(context.Background(), slog.Default(), db))

	st := &store.Store{DB: db}
	now := time.Now()
	account := &store.Account{
		ID: "a1", Kind: store.KindPerson, Username: "alice",
		URL: "https://corvid.example/users/alice", Local: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, st.Run(context.Background(), func(tx *sql.Tx) error {
		return store.UpsertAccount(context.Background(), tx, account)
	}))

	var c cfg.Config
	c.FillDefaults()

	return &Server{Domain: "corvid.example", Config: &c, Store: st}, account
}

func TestHandleWebFingerKnownUser(t *testing.T) {
	srv, account := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/webfinger?resource=acct:alice@corvid.example", nil)
	w := httptest.NewRecorder()

	srv.handleWebFinger(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp jrdResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acct:alice@corvid.example", resp.Subject)
	assert.Contains(t, resp.Aliases, account.URL)
	require.Len(t, resp.Links, 1)
	assert.Equal(t, "self", resp.Links[0].Rel)
	assert.Equal(t, account.URL, resp.Links[0].Href)
}

func TestHandleWebFingerUnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/webfinger?resource=acct:nobody@corvid.example", nil)
	w := httptest.NewRecorder()

	srv.handleWebFinger(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleWebFingerMissingResource(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/webfinger", nil)
	w := httptest.NewRecorder()

	srv.handleWebFinger(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleActorServesActorDocument(t *testing.T) {
	srv, account := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	req.SetPathValue("username", "alice")
	w := httptest.NewRecorder()

	srv.handleActor(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/activity+json; charset=utf-8", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, account.URL, body["id"])
	assert.Equal(t, "alice", body["preferredUsername"])
}
