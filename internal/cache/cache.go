// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cache memoises storage reads for the serving layer. Entries expire after a fixed
// TTL and every write through the cache drops all of them.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/0x0BSoD/aiNews/internal/model"
	"github.com/0x0BSoD/aiNews/internal/storage"
)

const DefaultTTL = 5 * time.Minute

type entry struct {
	value   any
	expires time.Time
}

// Store wraps a storage.Storage. It implements storage.Storage itself.
type Store struct {
	storage.Storage

	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	// generation changes on every invalidation so loads racing a write are not kept
	generation uint64
}

func New(s storage.Storage, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{
		Storage: s,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (c *Store) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.generation++
}

func (c *Store) Add(ctx context.Context, a model.Article) (bool, error) {
	defer c.Invalidate()
	return c.Storage.Add(ctx, a)
}

func (c *Store) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	defer c.Invalidate()
	return c.Storage.DeleteOlderThan(ctx, days)
}

func (c *Store) List(ctx context.Context, opts storage.ListOptions) ([]model.Article, error) {
	key := fmt.Sprintf("list:%d:%s:%t", opts.Limit, opts.Category, opts.SortByDate)
	return cached(c, key, func() ([]model.Article, error) { return c.Storage.List(ctx, opts) })
}

func (c *Store) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Article, error) {
	key := fmt.Sprintf("range:%d:%d", start.UnixNano(), end.UnixNano())
	return cached(c, key, func() ([]model.Article, error) { return c.Storage.ListByDateRange(ctx, start, end) })
}

func (c *Store) Count(ctx context.Context, category string) (int64, error) {
	return cached(c, "count:"+category, func() (int64, error) { return c.Storage.Count(ctx, category) })
}

func (c *Store) Categories(ctx context.Context) ([]model.Category, error) {
	return cached(c, "categories", func() ([]model.Category, error) { return c.Storage.Categories(ctx) })
}

func (c *Store) Latest(ctx context.Context) (*time.Time, error) {
	return cached(c, "latest", func() (*time.Time, error) { return c.Storage.Latest(ctx) })
}

// evictExpired drops stale entries. c.mu must be held.
func (c *Store) evictExpired(now time.Time) {
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, key)
		}
	}
}

// cached returns the live entry for key or calls load and remembers a successful result.
// Errors are never cached.
func cached[T any](c *Store, key string, load func() (T, error)) (T, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	generation := c.generation
	c.mu.Unlock()

	if ok && c.now().Before(e.expires) {
		return e.value.(T), nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	c.mu.Lock()
	if c.generation == generation {
		now := c.now()
		c.evictExpired(now)
		c.entries[key] = entry{value: v, expires: now.Add(c.ttl)}
	}
	c.mu.Unlock()

	return v, nil
}
