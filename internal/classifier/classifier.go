// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classifier maps article text to a category label by counting keyword occurrences.
package classifier

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/samber/lo"

	"github.com/0x0BSoD/aiNews/internal/model"
)

type Rule struct {
	Category model.Category
	Keywords []string
}

// Table is ordered: on equal scores the earlier rule wins.
type Table []Rule

var DefaultTable = Table{
	{model.LLM, []string{"gpt", "chatgpt", "claude", "gemini", "llama", "language model", "large language model", "llm"}},
	{model.ComputerVision, []string{"computer vision", "image recognition", "opencv", "yolo", "object detection", "image ai"}},
	{model.Robotics, []string{"robot", "robotics", "autonomous", "drone", "self-driving", "automation"}},
	{model.MachineLearning, []string{"machine learning", "ml", "neural network", "deep learning", "tensorflow", "pytorch"}},
	{model.AITools, []string{"midjourney", "dall-e", "stable diffusion", "copilot", "ai assistant", "ai tool"}},
	{model.GeneralAI, []string{"artificial intelligence", "ai news", "ai breakthrough", "ai research"}},
}

type Classifier struct {
	table    Table
	keywords []string
	matcher  *ahocorasick.Matcher
}

func New(table Table) *Classifier {
	rules := make(Table, 0, len(table))
	for _, r := range table {
		rules = append(rules, Rule{
			Category: r.Category,
			Keywords: lo.Map(r.Keywords, func(kw string, _ int) string { return strings.ToLower(kw) }),
		})
	}

	keywords := lo.Uniq(lo.FlatMap(rules, func(r Rule, _ int) []string { return r.Keywords }))
	keywords = lo.Filter(keywords, func(kw string, _ int) bool { return kw != "" })

	c := &Classifier{table: rules, keywords: keywords}
	if len(keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(keywords)
	}

	return c
}

// Classify returns the category with the highest keyword count in text. Each keyword is
// counted on its own, so keywords nested in each other ("robot", "robotics") both score.
func (c *Classifier) Classify(text string) model.Category {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return model.DefaultCategory
	}

	best, bestScore := model.DefaultCategory, 0
	for _, rule := range c.table {
		score := 0
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			score += strings.Count(text, kw)
		}

		if score > bestScore {
			best, bestScore = rule.Category, score
		}
	}

	return best
}

// Keywords returns the union of all keywords in table order.
func (c *Classifier) Keywords() []string {
	out := make([]string, len(c.keywords))
	copy(out, c.keywords)
	return out
}

// Related reports whether any keyword occurs in any of texts.
func (c *Classifier) Related(texts ...string) bool {
	if c.matcher == nil {
		return false
	}

	for _, text := range texts {
		if text == "" {
			continue
		}
		if len(c.matcher.MatchThreadSafe([]byte(strings.ToLower(text)))) > 0 {
			return true
		}
	}

	return false
}
