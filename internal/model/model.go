// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the data structures used in the aiNews application: the Category
// labels articles are classified into and the Article record stored for every collected link.
package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Category string

const (
	LLM             Category = "LLM"
	ComputerVision  Category = "Computer Vision"
	Robotics        Category = "Robotics"
	MachineLearning Category = "Machine Learning"
	AITools         Category = "AI Tools"
	GeneralAI       Category = "General AI"

	DefaultCategory = GeneralAI

	// AllCategories is the filter value the dashboard sends for "no filter".
	AllCategories = "All"
)

var categories = []Category{LLM, ComputerVision, Robotics, MachineLearning, AITools, GeneralAI}

// Categories returns the fixed label set in table order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// IsFilter reports whether a category query value restricts results at all.
func IsFilter(category string) bool {
	return category != "" && category != AllCategories
}

type Article struct {
	Title     string    `json:"title" bson:"title" db:"title"`
	URL       string    `json:"url" bson:"url" db:"url"`
	Category  Category  `json:"category" bson:"category" db:"category"`
	ScrapedAt time.Time `json:"scraped_at" bson:"scraped_at" db:"scraped_at"`
}

// NewArticle builds a record, resolving the optional timestamp and category once.
// A zero scrapedAt means "now"; an unknown category falls back to DefaultCategory.
func NewArticle(title, link string, category Category, scrapedAt time.Time) Article {
	if !category.Valid() {
		category = DefaultCategory
	}
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	return Article{
		Title:     title,
		URL:       link,
		Category:  category,
		ScrapedAt: scrapedAt.UTC(),
	}
}

var (
	ErrEmptyTitle = errors.New("article title is empty")
	ErrBadURL     = errors.New("article url must be an absolute http(s) url")
)

func (a Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}

	u, err := url.Parse(a.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrBadURL
	}

	return nil
}

// TimeFormat is the single textual representation used for scraped_at outside storage.
const TimeFormat = time.RFC3339Nano

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
