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

// Package cfg defines the server configuration file format and defaults.
package cfg

import (
	"math"
	"time"
)

// Config holds every tunable of the federation core. Fields left at their
// zero value are replaced by [Config.FillDefaults].
type Config struct {
	DatabaseOptions     string
	DatabasePoolSize    int
	DatabaseAcquireWait time.Duration

	AccountResourceCacheTTL time.Duration
	ResourceCacheTTL        time.Duration

	MaxRequestBodySize  int64
	MaxResponseBodySize int64
	MaxRequestAge       time.Duration

	HTTPClientTimeout    time.Duration
	HTTPClientMaxConns   int
	HTTPIdleConnTimeout  time.Duration

	MaxFetchDepth      int
	MaxWebfingerHops   int
	ResolverRetries    int

	DeliveryWorkers      int
	DeliveryChunkSize    int
	DeliveryTimeout      time.Duration

	JobLeaseSize        int
	JobPollInterval     time.Duration
	JobMinIdleTime      time.Duration
	JobMaxRetries       int
	JobBackoffBase      time.Duration
	JobBackoffJitter    float64
	JobReclaimInterval  time.Duration

	PostContextDepth int
}

// FillDefaults replaces missing or invalid settings with defaults.
func (c *Config) FillDefaults() {
	if c.DatabaseOptions == "" {
		c.DatabaseOptions = "_journal_mode=WAL&_synchronous=1&_busy_timeout=5000"
	}

	if c.DatabasePoolSize <= 0 {
		c.DatabasePoolSize = 16
	}

	if c.DatabaseAcquireWait <= 0 {
		c.DatabaseAcquireWait = time.Second * 10
	}

	if c.AccountResourceCacheTTL <= 0 {
		c.AccountResourceCacheTTL = time.Minute * 10
	}

	if c.ResourceCacheTTL <= 0 {
		c.ResourceCacheTTL = time.Minute
	}

	if c.MaxRequestBodySize <= 0 {
		c.MaxRequestBodySize = 1024 * 1024
	}

	if c.MaxResponseBodySize <= 0 {
		c.MaxResponseBodySize = 1024 * 1024
	}

	if c.MaxRequestAge <= 0 {
		c.MaxRequestAge = time.Minute * 5
	}

	if c.HTTPClientTimeout <= 0 {
		c.HTTPClientTimeout = time.Second * 30
	}

	if c.HTTPClientMaxConns <= 0 {
		c.HTTPClientMaxConns = 128
	}

	if c.HTTPIdleConnTimeout <= 0 {
		c.HTTPIdleConnTimeout = time.Minute
	}

	if c.MaxFetchDepth <= 0 {
		c.MaxFetchDepth = 30
	}

	if c.MaxWebfingerHops <= 0 {
		c.MaxWebfingerHops = 3
	}

	if c.ResolverRetries <= 0 {
		c.ResolverRetries = 1
	}

	if c.DeliveryWorkers <= 0 || c.DeliveryWorkers > math.MaxInt {
		c.DeliveryWorkers = 4
	}

	if c.DeliveryChunkSize <= 0 {
		c.DeliveryChunkSize = 16
	}

	if c.DeliveryTimeout <= 0 {
		c.DeliveryTimeout = time.Minute * 5
	}

	if c.JobLeaseSize <= 0 {
		c.JobLeaseSize = 32
	}

	if c.JobPollInterval <= 0 {
		c.JobPollInterval = time.Second * 5
	}

	if c.JobMinIdleTime <= 0 {
		c.JobMinIdleTime = time.Hour
	}

	if c.JobMaxRetries <= 0 {
		c.JobMaxRetries = 10
	}

	if c.JobBackoffBase <= 0 {
		c.JobBackoffBase = time.Minute
	}

	if c.JobBackoffJitter <= 0 || c.JobBackoffJitter > 1 {
		c.JobBackoffJitter = 0.2
	}

	if c.JobReclaimInterval <= 0 {
		c.JobReclaimInterval = time.Second * 30
	}

	if c.PostContextDepth <= 0 {
		c.PostContextDepth = 5
	}
}
