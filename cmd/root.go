// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0x0BSoD/aiNews/internal/classifier"
	"github.com/0x0BSoD/aiNews/internal/config"
	"github.com/0x0BSoD/aiNews/internal/extractor"
	"github.com/0x0BSoD/aiNews/internal/fetcher"
	"github.com/0x0BSoD/aiNews/internal/logger"
	"github.com/0x0BSoD/aiNews/internal/metrics"
	"github.com/0x0BSoD/aiNews/internal/reporter"
	"github.com/0x0BSoD/aiNews/internal/search"
	"github.com/0x0BSoD/aiNews/internal/storage"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	reporter *reporter.Reporter
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		a       = &app{}
	)

	root := &cobra.Command{
		Use:           "ainews",
		Short:         "Collects AI news articles and keeps them in a database",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var files []string
			if cfgFile != "" {
				files = []string{cfgFile}
			}

			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}

			return a.init(cfg)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "HCL config file (default ./config.hcl)")

	root.AddCommand(
		newScrapeCmd(a),
		newServeCmd(a),
		newPruneCmd(a),
		newListCmd(a),
		newStatsCmd(a),
	)

	return root
}

func (a *app) init(cfg config.Config) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	if a.reporter, err = reporter.FromToken(cfg.TelegramBotToken, cfg.TelegramAdminChatID, log); err != nil {
		log.Warn("telegram reporting disabled", zap.Error(err))
	}

	return nil
}

func (a *app) openStorage(ctx context.Context) (storage.Storage, func(), error) {
	st, err := storage.Open(ctx, a.cfg.StorageOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	closeFn := func() {
		if err := st.Close(context.Background()); err != nil {
			a.log.Warn("failed to close storage", zap.Error(err))
		}
	}

	return st, closeFn, nil
}

func (a *app) newFetcher(articles fetcher.ArticleStorage) *fetcher.Fetcher {
	userAgent := a.cfg.UserAgent
	if userAgent == "" {
		userAgent = extractor.DefaultUserAgent
	}

	runner := search.NewRunner(
		search.RSSSearcher{
			Endpoint:  a.cfg.SearchEndpoint,
			UserAgent: userAgent,
			Timeout:   a.cfg.FetchTimeout,
		},
		search.Options{
			Queries:  a.cfg.Queries,
			Domains:  a.cfg.Domains,
			PerQuery: a.cfg.ResultsPerQuery,
			Delay:    a.cfg.QueryDelay,
		},
		a.log,
	)

	ex := extractor.New(
		classifier.New(classifier.DefaultTable),
		extractor.Options{Timeout: a.cfg.FetchTimeout, UserAgent: userAgent},
		a.log,
	)

	return fetcher.New(runner, ex, articles, a.metrics, a.log)
}
