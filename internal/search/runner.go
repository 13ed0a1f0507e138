// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package search runs the fixed set of topic queries against a search engine and collects
// candidate article URLs from trusted publishers.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPerQuery = 5
	DefaultDelay    = 2 * time.Second
)

var (
	DefaultQueries = []string{
		"AI news today",
		"artificial intelligence latest news",
		"AI breakthrough 2024",
		"machine learning news",
		"ChatGPT OpenAI news",
		"AI technology updates",
	}

	DefaultDomains = []string{
		"techcrunch.com",
		"venturebeat.com",
		"theverge.com",
		"arstechnica.com",
		"wired.com",
	}
)

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type Runner struct {
	searcher Searcher
	queries  []string
	domains  []string
	perQuery int
	delay    time.Duration
	log      *zap.Logger
}

type Options struct {
	Queries  []string
	Domains  []string
	PerQuery int
	// Delay is the pause between the end of one query and the start of the next.
	Delay time.Duration
}

func NewRunner(searcher Searcher, opts Options, log *zap.Logger) *Runner {
	if len(opts.Queries) == 0 {
		opts.Queries = DefaultQueries
	}
	if len(opts.Domains) == 0 {
		opts.Domains = DefaultDomains
	}
	if opts.PerQuery <= 0 {
		opts.PerQuery = DefaultPerQuery
	}

	return &Runner{
		searcher: searcher,
		queries:  opts.Queries,
		domains:  opts.Domains,
		perQuery: opts.PerQuery,
		delay:    opts.Delay,
		log:      log.With(zap.String("component", "search")),
	}
}

// BuildQuery restricts topic to the given publishers with site: clauses.
func BuildQuery(topic string, domains []string) string {
	if len(domains) == 0 {
		return topic
	}

	clauses := make([]string, 0, len(domains))
	for _, d := range domains {
		clauses = append(clauses, "site:"+d)
	}

	return topic + " " + strings.Join(clauses, " OR ")
}

// Run returns at most max unique candidate URLs in discovery order. A failing query is
// logged and skipped; only context cancellation stops the run early with an error, in which
// case the URLs collected so far are returned as well.
func (r *Runner) Run(ctx context.Context, max int) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}

	var (
		urls = make([]string, 0, max)
		seen = make(map[string]struct{})
	)

	for i, topic := range r.queries {
		if len(urls) >= max {
			break
		}

		if err := ctx.Err(); err != nil {
			return urls, err
		}
		if i > 0 {
			if err := r.pause(ctx); err != nil {
				return urls, err
			}
		}

		query := BuildQuery(topic, r.domains)
		r.log.Info("searching", zap.String("query", topic))

		results, err := r.searcher.Search(ctx, query, r.perQuery)
		if err != nil {
			if ctx.Err() != nil {
				return urls, ctx.Err()
			}
			r.log.Warn("search failed", zap.String("query", topic), zap.Error(err))
			continue
		}

		if len(results) > r.perQuery {
			results = results[:r.perQuery]
		}

		for _, link := range results {
			if len(urls) >= max {
				break
			}
			if link == "" {
				continue
			}
			if _, ok := seen[link]; ok {
				continue
			}

			seen[link] = struct{}{}
			urls = append(urls, link)
		}
	}

	r.log.Info("search finished", zap.Int("urls", len(urls)))

	return urls, nil
}

// pause sleeps for the configured delay unless ctx ends first.
func (r *Runner) pause(ctx context.Context) error {
	if r.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
