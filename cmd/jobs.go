// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/0x0BSoD/aiNews/internal/fetcher"
	"github.com/0x0BSoD/aiNews/internal/reporter"
)

type scraper interface {
	RunOnce(ctx context.Context, max int) (fetcher.Summary, error)
}

type pruner interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type pruned int64

func (p pruned) String() string { return fmt.Sprintf("deleted %d articles", int64(p)) }

func scrapeJob(ctx context.Context, s scraper, max int, rep *reporter.Reporter, log *zap.Logger) (fetcher.Summary, error) {
	summary, err := s.RunOnce(ctx, max)
	if err != nil {
		log.Error("scrape failed", zap.Error(err))
	} else {
		log.Info(summary.String(), zap.Duration("took", summary.Duration))
	}
	rep.RunFinished("scrape", summary, summary.Added > 0, err)

	return summary, err
}

func pruneJob(ctx context.Context, p pruner, days int, rep *reporter.Reporter, log *zap.Logger) (int64, error) {
	n, err := p.DeleteOlderThan(ctx, days)
	if err != nil {
		log.Error("prune failed", zap.Int("days", days), zap.Error(err))
	} else {
		log.Info("pruned old articles", zap.Int("days", days), zap.Int64("deleted", n))
	}
	rep.RunFinished("prune", pruned(n), n > 0, err)

	return n, err
}
