// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0x0BSoD/aiNews/internal/api"
	"github.com/0x0BSoD/aiNews/internal/cache"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Scrape and prune on a schedule and serve the read API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	st, closeStorage, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage()

	// The fetcher writes through the cache so every insert drops stale reads.
	articles := cache.New(st, a.cfg.CacheTTL)
	f := a.newFetcher(articles)

	c, err := a.scheduler(ctx, f, articles)
	if err != nil {
		return err
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	router := api.NewRouter(api.NewHandler(articles, a.log), a.registry)

	return api.ListenAndServe(ctx, a.cfg.HTTPAddr, router, a.log)
}

func (a *app) scheduler(ctx context.Context, s scraper, p pruner) (*cron.Cron, error) {
	cl := cronLogger{a.log.With(zap.String("component", "cron")).Sugar()}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	if _, err := c.AddFunc(a.cfg.Schedule, func() {
		_, _ = scrapeJob(ctx, s, a.cfg.MaxResults, a.reporter, a.log)
	}); err != nil {
		return nil, fmt.Errorf("schedule scrape %q: %w", a.cfg.Schedule, err)
	}

	if _, err := c.AddFunc(a.cfg.RetentionSchedule, func() {
		_, _ = pruneJob(ctx, p, a.cfg.RetentionDays, a.reporter, a.log)
	}); err != nil {
		return nil, fmt.Errorf("schedule prune %q: %w", a.cfg.RetentionSchedule, err)
	}

	a.log.Info("jobs scheduled",
		zap.String("scrape", a.cfg.Schedule),
		zap.String("prune", a.cfg.RetentionSchedule),
	)

	return c, nil
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
