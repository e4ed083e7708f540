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

package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingKey(t *testing.T) {
	c := New[string](time.Minute, 0)
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestSetThenGet(t *testing.T) {
	c := New[string](time.Minute, 0)
	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c := New[string](time.Millisecond, 0)
	c.Set("k", "v")
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDeleteEvicts(t *testing.T) {
	c := New[string](time.Minute, 0)
	c.Set("k", "v")
	c.Delete("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLoadFillsOnMiss(t *testing.T) {
	c := New[string](time.Minute, 4)
	var calls int32
	fill := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "filled", nil
	}

	v, err := c.Load(context.Background(), "k", fill)
	require.NoError(t, err)
	assert.Equal(t, "filled", v)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	v, err = c.Load(context.Background(), "k", fill)
	require.NoError(t, err)
	assert.Equal(t, "filled", v)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "second Load should hit the cache, not call fill again")
}

func TestLoadWithoutStripesStillFills(t *testing.T) {
	c := New[int](time.Minute, 0)
	v, err := c.Load(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestLoadPropagatesFillError(t *testing.T) {
	c := New[int](time.Minute, 4)
	wantErr := assert.AnError
	_, err := c.Load(context.Background(), "k", func(context.Context) (int, error) { return 0, wantErr })
	assert.ErrorIs(t, err, wantErr)

	_, ok := c.Get("k")
	assert.False(t, ok, "a failed fill must not poison the cache")
}
