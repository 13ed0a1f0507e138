// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage persists article records with url-based deduplication. The same Storage
// contract is served by MongoDB and by SQL databases (PostgreSQL, SQLite).
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0x0BSoD/aiNews/internal/model"
)

type Storage interface {
	// Add inserts a; it reports false with a nil error when an article with the same URL
	// already exists.
	Add(ctx context.Context, a model.Article) (bool, error)
	List(ctx context.Context, opts ListOptions) ([]model.Article, error)
	// ListByDateRange returns articles scraped within [start, end], newest first.
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Article, error)
	Count(ctx context.Context, category string) (int64, error)
	Categories(ctx context.Context) ([]model.Category, error)
	// Latest returns the newest scraped_at, or nil when there are no articles.
	Latest(ctx context.Context) (*time.Time, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
	EnsureSchema(ctx context.Context) error
	Close(ctx context.Context) error
}

type ListOptions struct {
	// Limit <= 0 means no limit.
	Limit int
	// Category "" or model.AllCategories means every category.
	Category   string
	SortByDate bool
}

var ErrNegativeDays = errors.New("days must not be negative")

// prepare resolves the optional fields of a before it is written.
func prepare(a model.Article, now func() time.Time) (model.Article, error) {
	if err := a.Validate(); err != nil {
		return a, fmt.Errorf("invalid article: %w", err)
	}

	if a.ScrapedAt.IsZero() {
		a.ScrapedAt = now()
	}

	return model.NewArticle(a.Title, a.URL, a.Category, a.ScrapedAt), nil
}

func cutoff(now time.Time, days int) (time.Time, error) {
	if days < 0 {
		return time.Time{}, ErrNegativeDays
	}
	return now.AddDate(0, 0, -days).UTC(), nil
}
