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

// Package filter evaluates synchronous allow/deny federation policy
// against a URL's host or an activity's id.
package filter

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Mode is which side of the list passes.
type Mode int

const (
	// Allow passes only hosts matching an entry.
	Allow Mode = iota
	// Deny rejects hosts matching an entry; everything else passes.
	Deny
)

// ErrMalformedInput is returned when the URL or activity id handed to
// Filter can't be parsed; filtering itself never errors.
var ErrMalformedInput = errors.New("filter: malformed input")

// Filter evaluates a Mode against a reloadable domain list. Entries are
// either literal domains or a "*.suffix" glob matching any subdomain of
// suffix, not suffix itself.
type Filter struct {
	mode Mode

	mu      sync.RWMutex
	wg      sync.WaitGroup
	w       *fsnotify.Watcher
	domains map[string]struct{}
	globs   []string
}

const reloadDelay = time.Second * 5

func split(domains map[string]struct{}) (map[string]struct{}, []string) {
	literals := make(map[string]struct{}, len(domains))
	var globs []string
	for d := range domains {
		if suffix, ok := strings.CutPrefix(d, "*."); ok {
			globs = append(globs, suffix)
		} else {
			literals[d] = struct{}{}
		}
	}
	return literals, globs
}

func load(path string) (map[string]struct{}, error) {
	domains := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := csv.NewReader(f)
	first := true
	for {
		r, err := c.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			continue
		}
		domains[strings.ToLower(r[0])] = struct{}{}
	}

	return domains, nil
}

// New loads a domain list from path and watches it for changes. mode
// selects whether the list is an allow-list or a deny-list.
func New(log *slog.Logger, mode Mode, path string) (*Filter, error) {
	domains, err := load(path)
	if err != nil {
		return nil, err
	}
	literals, globs := split(domains)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	absPath := filepath.Join(dir, filepath.Base(path))

	fl := &Filter{mode: mode, w: w, domains: literals, globs: globs}

	timer := time.NewTimer(math.MaxInt64)
	timer.Stop()

	fl.wg.Add(1)
	go func() {
		defer fl.wg.Done()
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					timer.Stop()
					return
				}
				if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && event.Name == absPath {
					timer.Reset(reloadDelay)
				}
			case <-timer.C:
				newDomains, err := load(path)
				if err != nil {
					log.Warn("Failed to reload federation filter", "path", path, "error", err)
					continue
				}
				literals, globs := split(newDomains)
				fl.mu.Lock()
				fl.domains = literals
				fl.globs = globs
				fl.mu.Unlock()
				log.Info("Reloaded federation filter", "path", path, "length", len(newDomains))
			}
		}
	}()

	return fl, nil
}

func (f *Filter) matches(host string) bool {
	host = strings.ToLower(host)

	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, ok := f.domains[host]; ok {
		return true
	}
	for _, suffix := range f.globs {
		if strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

// Allowed reports whether host passes the filter.
func (f *Filter) Allowed(host string) bool {
	matched := f.matches(host)
	if f.mode == Allow {
		return matched
	}
	return !matched
}

// AllowedURL reports whether u's host passes the filter.
func (f *Filter) AllowedURL(raw string) (bool, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false, ErrMalformedInput
	}
	return f.Allowed(u.Hostname()), nil
}

// Close frees resources.
func (f *Filter) Close() {
	f.w.Close()
	f.wg.Wait()
}
