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

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/corvidnet/corvid/cache"
	"github.com/corvidnet/corvid/cfg"
	"github.com/corvidnet/corvid/delivery"
	"github.com/corvidnet/corvid/filter"
	"github.com/corvidnet/corvid/inbox"
	"github.com/corvidnet/corvid/migrations"
	"github.com/corvidnet/corvid/mrf"
	"github.com/corvidnet/corvid/queue"
	"github.com/corvidnet/corvid/resolver"
	"github.com/corvidnet/corvid/server"
	"github.com/corvidnet/corvid/store"
)

var (
	domain       = flag.String("domain", "localhost.localdomain", "domain name this node federates under")
	dbPath       = flag.String("db", "corvid.sqlite3", "database path")
	addr         = flag.String("addr", ":8443", "HTTP listening address")
	cfgPath      = flag.String("cfg", "", "YAML configuration file")
	blockListCSV = flag.String("blocklist", "", "federation filter CSV (host-per-line, '*.suffix' glob allowed)")
	filterMode   = flag.String("filtermode", "deny", "federation filter mode: allow or deny")
	logLevel     = flag.Int("loglevel", int(slog.LevelInfo), "logging verbosity")
	dumpCfg      = flag.Bool("dumpcfg", false, "print default configuration and exit")
)

func main() {
	flag.Parse()

	var c cfg.Config
	if *dumpCfg {
		c.FillDefaults()
		e := yaml.NewEncoder(os.Stdout)
		defer e.Close()
		if err := e.Encode(&c); err != nil {
			panic(err)
		}
		return
	}

	if *cfgPath != "" {
		f, err := os.Open(*cfgPath)
		if err != nil {
			panic(err)
		}
		err = yaml.NewDecoder(f).Decode(&c)
		f.Close()
		if err != nil {
			panic(err)
		}
	}
	c.FillDefaults()

	opts := slog.HandlerOptions{Level: slog.Level(*logLevel)}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &opts)))

	mode := filter.Deny
	if *filterMode == "allow" {
		mode = filter.Allow
	}
	feedFilter, err := filter.New(slog.Default(), mode, *blockListCSV)
	if err != nil {
		panic(fmt.Errorf("failed to load federation filter: %w", err))
	}

	st, err := store.Open(*dbPath, &c)
	if err != nil {
		panic(err)
	}
	defer st.DB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			slog.Info("Received termination signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := migrations.Run(ctx, slog.Default(), st.DB); err != nil {
		panic(fmt.Errorf("failed to run migrations: %w", err))
	}

	client := &http.Client{
		Timeout: c.HTTPClientTimeout,
		Transport: &http.Transport{
			MaxIdleConns:    c.HTTPClientMaxConns,
			IdleConnTimeout: c.HTTPIdleConnTimeout,
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	caches := cache.NewCaches(&c)
	res := resolver.New(*domain, &c, feedFilter, caches, st)
	q := queue.New(st, &c)
	engine := delivery.New(*domain, &c, st, feedFilter, mrf.Allow, client)

	pipeline := &inbox.Pipeline{
		Domain:   *domain,
		Config:   &c,
		Store:    st,
		Resolver: res,
		Filter:   feedFilter,
		MRF:      mrf.Allow,
		Queue:    q,
	}

	handlers := &queue.Handlers{Store: st, Delivery: engine}

	var mu sync.Mutex
	inFlight := make(map[string]struct{})
	wrapped := make(map[string]queue.Handler, len(handlers.Table()))
	for kind, h := range handlers.Table() {
		h := h
		wrapped[kind] = func(ctx context.Context, job queue.LeasedJob) error {
			mu.Lock()
			inFlight[job.ID] = struct{}{}
			mu.Unlock()
			defer func() {
				mu.Lock()
				delete(inFlight, job.ID)
				mu.Unlock()
			}()
			return h(ctx, job)
		}
	}

	worker := &queue.Worker{Queue: q, Handlers: wrapped}
	reclaimer := &queue.Reclaimer{
		Queue:    q,
		Interval: c.JobReclaimInterval,
		InFlight: func() []string {
			mu.Lock()
			defer mu.Unlock()
			ids := make([]string, 0, len(inFlight))
			for id := range inFlight {
				ids = append(ids, id)
			}
			return ids
		},
	}

	srv := &server.Server{
		Domain:   *domain,
		Config:   &c,
		Store:    st,
		Resolver: res,
		Pipeline: pipeline,
		Addr:     *addr,
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Worker loop exited", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := reclaimer.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Reclaimer loop exited", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(ctx); err != nil {
			slog.Error("HTTP server exited", "error", err)
		}
	}()

	wg.Wait()
}
