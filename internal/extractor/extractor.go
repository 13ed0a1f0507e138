// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package extractor turns a candidate URL into a classified article, or nothing.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/0x0BSoD/aiNews/internal/model"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// ExcerptLength bounds how much article text is fed to the classifier.
	ExcerptLength = 1000

	maxBodySize = 5 << 20
)

type Classifier interface {
	Classify(text string) model.Category
	Related(texts ...string) bool
}

type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

type Extractor struct {
	client     *http.Client
	userAgent  string
	classifier Classifier
	log        *zap.Logger
	now        func() time.Time
}

func New(classifier Classifier, opts Options, log *zap.Logger) *Extractor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &Extractor{
		client:     client,
		userAgent:  opts.UserAgent,
		classifier: classifier,
		log:        log.With(zap.String("component", "extractor")),
		now:        time.Now,
	}
}

// Extract returns the article behind link, or nil when link is not an AI article or could
// not be fetched. Failures are logged, never returned.
func (e *Extractor) Extract(ctx context.Context, link string) *model.Article {
	log := e.log.With(zap.String("url", link))

	if !IsArticleURL(link) {
		log.Debug("skipping non-article url")
		return nil
	}

	page, err := e.fetch(ctx, link)
	if err != nil {
		log.Warn("failed to fetch page", zap.Error(err))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		log.Warn("failed to parse page", zap.Error(err))
		return nil
	}

	title := pageTitle(doc)
	switch {
	case title == "":
		log.Debug("page has no title")
		return nil
	case utf8.RuneCountInString(title) < MinTitleLength:
		log.Debug("title too short", zap.String("title", title))
		return nil
	case IsListingTitle(title):
		log.Debug("looks like a listing page", zap.String("title", title))
		return nil
	}

	doc.Find("script, style, noscript").Remove()
	pageText := normalizeSpace(doc.Text())

	if !e.classifier.Related(title, pageText) {
		log.Debug("page is not AI related", zap.String("title", title))
		return nil
	}

	text := e.articleText(page, link)
	if text == "" {
		text = pageText
	}

	category := e.classifier.Classify(title + " " + truncateRunes(text, ExcerptLength))
	article := model.NewArticle(title, link, category, e.now())

	log.Info("extracted article", zap.String("title", title), zap.String("category", category.String()))

	return &article
}

func (e *Extractor) fetch(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// articleText is the readability main content of page, empty when it cannot be found.
func (e *Extractor) articleText(page []byte, link string) string {
	pageURL, err := url.Parse(link)
	if err != nil {
		return ""
	}

	doc, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		e.log.Debug("readability failed", zap.String("url", link), zap.Error(err))
		return ""
	}

	return normalizeSpace(doc.TextContent)
}

func pageTitle(doc *goquery.Document) string {
	if title := normalizeSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	return normalizeSpace(doc.Find("h1").First().Text())
}
