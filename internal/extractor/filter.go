// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extractor

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPathSegments = 1
	MinTitleLength  = 10
)

var (
	nonArticlePath = regexp.MustCompile(
		`(?i)/(tags?|categor(y|ies)|topics?|authors?|search|feed|rss|archives?)(/|$)|/page/\d+(/|$)`,
	)
	nonArticleExt   = regexp.MustCompile(`(?i)\.(pdf|jpe?g|png|gif|svg|zip|mp3|mp4|xml|json)$`)
	nonArticleQuery = []string{"s", "q", "page"}

	listingTitle = regexp.MustCompile(`(?i)\b(latest news|all posts|archives?|categor(y|ies)|tags?)\b`)
)

// IsArticleURL reports whether link is shaped like a single article page. It never touches
// the network.
func IsArticleURL(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if nonArticlePath.MatchString(u.Path) || nonArticleExt.MatchString(u.Path) {
		return false
	}

	query := u.Query()
	for _, key := range nonArticleQuery {
		if query.Has(key) {
			return false
		}
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	return len(segments) >= MinPathSegments
}

// IsListingTitle reports whether title reads like an index, archive or tag page.
func IsListingTitle(title string) bool {
	return listingTitle.MatchString(title)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)
	return string(runes[:n])
}
