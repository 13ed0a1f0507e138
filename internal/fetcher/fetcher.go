// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fetcher runs one scrape: search, extract and classify, then store.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/0x0BSoD/aiNews/internal/metrics"
	"github.com/0x0BSoD/aiNews/internal/model"
)

type URLSource interface {
	Run(ctx context.Context, max int) ([]string, error)
}

type ArticleExtractor interface {
	Extract(ctx context.Context, url string) *model.Article
}

type ArticleStorage interface {
	Add(ctx context.Context, article model.Article) (bool, error)
	Count(ctx context.Context, category string) (int64, error)
}

type Stage int

const (
	StageSearching Stage = iota
	StageExtracting
	StagePersisting
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageSearching:
		return "searching"
	case StageExtracting:
		return "extracting"
	case StagePersisting:
		return "persisting"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

type Summary struct {
	URLs       int
	Candidates int
	Added      int
	Existing   int
	Total      int64
	NoArticles bool
	Duration   time.Duration
}

func (s Summary) String() string {
	if s.NoArticles {
		return "no articles found"
	}
	return fmt.Sprintf(
		"found %d articles (%d urls searched), added %d new (%d already stored), %d articles in storage",
		s.Candidates, s.URLs, s.Added, s.Existing, s.Total,
	)
}

type Fetcher struct {
	urls      URLSource
	extractor ArticleExtractor
	articles  ArticleStorage
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func New(
	urls URLSource,
	extractor ArticleExtractor,
	articles ArticleStorage,
	m *metrics.Metrics,
	log *zap.Logger,
) *Fetcher {
	return &Fetcher{
		urls:      urls,
		extractor: extractor,
		articles:  articles,
		metrics:   m,
		log:       log.With(zap.String("component", "fetcher")),
	}
}

// RunOnce performs one full pass. Problems with a single query or URL are logged and
// skipped; a storage failure aborts the run.
func (f *Fetcher) RunOnce(ctx context.Context, max int) (summary Summary, err error) {
	start := time.Now()
	defer func() {
		summary.Duration = time.Since(start)

		outcome := metrics.OutcomeSuccess
		switch {
		case err != nil:
			outcome = metrics.OutcomeFailure
		case summary.NoArticles:
			outcome = metrics.OutcomeNoArticles
		}
		f.metrics.ObserveRun(outcome, summary.Candidates, summary.Added, summary.Existing, summary.Duration)
	}()

	f.stage(StageSearching)
	urls, err := f.urls.Run(ctx, max)
	if err != nil {
		return summary, fmt.Errorf("search: %w", err)
	}

	summary.URLs = len(urls)
	if len(urls) == 0 {
		summary.NoArticles = true
		f.stage(StageDone)
		return summary, nil
	}

	f.stage(StageExtracting)
	candidates := make([]model.Article, 0, len(urls))
	for _, link := range urls {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if article := f.extractor.Extract(ctx, link); article != nil {
			candidates = append(candidates, *article)
		}
	}
	summary.Candidates = len(candidates)

	f.stage(StagePersisting)
	for _, article := range candidates {
		added, err := f.articles.Add(ctx, article)
		if err != nil {
			return summary, fmt.Errorf("store %s: %w", article.URL, err)
		}

		if added {
			summary.Added++
			f.log.Info("added article", zap.String("title", article.Title), zap.String("url", article.URL))
		} else {
			summary.Existing++
			f.log.Debug("article already exists", zap.String("url", article.URL))
		}
	}

	total, err := f.articles.Count(ctx, "")
	if err != nil {
		return summary, fmt.Errorf("count articles: %w", err)
	}
	summary.Total = total

	f.stage(StageDone)
	f.log.Info("scrape finished",
		zap.Int("urls", summary.URLs),
		zap.Int("candidates", summary.Candidates),
		zap.Int("added", summary.Added),
		zap.Int("existing", summary.Existing),
		zap.Int64("total", summary.Total),
	)

	return summary, nil
}

func (f *Fetcher) stage(s Stage) {
	f.log.Debug("stage", zap.Stringer("stage", s))
}
