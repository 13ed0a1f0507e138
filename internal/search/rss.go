// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/samber/lo"
)

const DefaultEndpoint = "https://www.bing.com/search?format=rss"

// contextTransport injects a context into every outgoing request so that
// context cancellation and deadlines propagate through the rss library.
type contextTransport struct {
	ctx       context.Context
	base      http.RoundTripper
	userAgent string
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.WithContext(t.ctx)
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// RSSSearcher queries a web search engine that can render its result page as RSS.
// Every result item becomes one URL.
type RSSSearcher struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	Transport http.RoundTripper
}

func (s RSSSearcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	endpoint, err := s.queryURL(query, limit)
	if err != nil {
		return nil, err
	}

	base := s.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: base, userAgent: s.UserAgent},
		Timeout:   timeout,
	}

	feed, err := rss.FetchByClient(endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("fetch results for %q: %w", query, err)
	}

	links := lo.FilterMap(feed.Items, func(item *rss.Item, _ int) (string, bool) {
		link := strings.TrimSpace(item.Link)
		return link, link != ""
	})
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}

	return links, nil
}

func (s RSSSearcher) queryURL(query string, limit int) (string, error) {
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse search endpoint: %w", err)
	}

	q := u.Query()
	q.Set("q", query)
	if limit > 0 {
		q.Set("count", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
