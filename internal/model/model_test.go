// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArticle_DefaultsTimestamp(t *testing.T) {
	before := time.Now()
	a := NewArticle("Some title", "https://example.com/a", LLM, time.Time{})

	assert.False(t, a.ScrapedAt.IsZero())
	assert.False(t, a.ScrapedAt.Before(before.Add(-time.Second)))
	assert.Equal(t, time.UTC, a.ScrapedAt.Location())
}

func TestNewArticle_KeepsTimestampInUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)

	a := NewArticle("Some title", "https://example.com/a", Robotics, at)

	assert.True(t, at.Equal(a.ScrapedAt))
	assert.Equal(t, time.UTC, a.ScrapedAt.Location())
}

func TestNewArticle_UnknownCategoryFallsBack(t *testing.T) {
	a := NewArticle("Some title", "https://example.com/a", Category("Quantum"), time.Time{})
	assert.Equal(t, DefaultCategory, a.Category)

	a = NewArticle("Some title", "https://example.com/a", "", time.Time{})
	assert.Equal(t, GeneralAI, a.Category)
}

func TestArticle_Validate(t *testing.T) {
	ok := NewArticle("Title", "https://example.com/x", LLM, time.Time{})
	require.NoError(t, ok.Validate())

	noTitle := ok
	noTitle.Title = "   "
	assert.ErrorIs(t, noTitle.Validate(), ErrEmptyTitle)

	relative := ok
	relative.URL = "/x"
	assert.ErrorIs(t, relative.Validate(), ErrBadURL)

	ftp := ok
	ftp.URL = "ftp://example.com/x"
	assert.ErrorIs(t, ftp.Validate(), ErrBadURL)
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 6)
	assert.Equal(t, LLM, cats[0])
	assert.Equal(t, GeneralAI, cats[5])

	cats[0] = "mutated"
	assert.Equal(t, LLM, Categories()[0], "returned slice must be a copy")

	for _, c := range Categories() {
		assert.True(t, c.Valid())
	}
	assert.False(t, Category("nope").Valid())
}

func TestIsFilter(t *testing.T) {
	assert.False(t, IsFilter(""))
	assert.False(t, IsFilter(AllCategories))
	assert.True(t, IsFilter("LLM"))
}

func TestFormatTime(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 600, time.FixedZone("x", -2*60*60))
	assert.Equal(t, "2024-01-02T05:04:05.0000006Z", FormatTime(at))
}
