// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics exposes prometheus counters for scrape runs. A nil *Metrics records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ainews"

const (
	OutcomeSuccess    = "success"
	OutcomeNoArticles = "no_articles"
	OutcomeFailure    = "failure"
)

type Metrics struct {
	runs       *prometheus.CounterVec
	candidates prometheus.Counter
	added      prometheus.Counter
	existing   prometheus.Counter
	duration   prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Scrape runs by outcome.",
		}, []string{"outcome"}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Articles extracted from search results.",
		}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_added_total",
			Help:      "Articles newly stored.",
		}),
		existing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_existing_total",
			Help:      "Articles skipped because their URL was already stored.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of scrape runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}

	reg.MustRegister(m.runs, m.candidates, m.added, m.existing, m.duration)

	return m
}

func (m *Metrics) ObserveRun(outcome string, candidates, added, existing int, took time.Duration) {
	if m == nil {
		return
	}

	m.runs.WithLabelValues(outcome).Inc()
	m.candidates.Add(float64(candidates))
	m.added.Add(float64(added))
	m.existing.Add(float64(existing))
	m.duration.Observe(took.Seconds())
}
