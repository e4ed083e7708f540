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

// Package server implements C6.1, the inbound HTTP surface: the shared
// and per-user inbox, the actor endpoint and WebFinger.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/inbox"
	"github.com/corvidnet/corvid/resolver"
	"github.com/corvidnet/corvid/store"
)

// Server wires the inbound HTTP surface onto the rest of the federation
// core. It holds no transport state of its own beyond an *http.Server,
// mirroring the teacher's Listener.
type Server struct {
	Domain   string
	Config   *cfg.Config
	Store    *store.Store
	Resolver *resolver.Resolver
	Pipeline *inbox.Pipeline
	Addr     string
}

// Handler builds the routed mux; Go 1.22's method+pattern ServeMux is
// enough here, same as the teacher's listener — no router dependency.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/webfinger", s.handleWebFinger)
	mux.HandleFunc("GET /users/{username}", s.handleActor)
	mux.HandleFunc("POST /users/{username}/inbox", s.handleInbox)
	mux.HandleFunc("POST /inbox", s.handleInbox)
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return mux
}

// ListenAndServe runs the HTTP server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.Addr,
		Handler:     http.TimeoutHandler(s.Handler(), 30*time.Second, ""),
		ReadTimeout: 30 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
