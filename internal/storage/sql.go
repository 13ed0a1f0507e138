// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/0x0BSoD/aiNews/internal/model"
)

var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS articles (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL,
			scraped_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS articles_scraped_at_idx ON articles (scraped_at)`,
		`CREATE INDEX IF NOT EXISTS articles_category_idx ON articles (category)`,
	},
	// scraped_at must be declared TIMESTAMP for go-sqlite3 to scan it back into time.Time.
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL,
			scraped_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS articles_scraped_at_idx ON articles (scraped_at)`,
		`CREATE INDEX IF NOT EXISTS articles_category_idx ON articles (category)`,
	},
}

type SQLStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLStorage(db *sqlx.DB) *SQLStorage {
	return &SQLStorage{db: db, now: time.Now}
}

type dbArticle struct {
	Title     string    `db:"title"`
	URL       string    `db:"url"`
	Category  string    `db:"category"`
	ScrapedAt time.Time `db:"scraped_at"`
}

func (a dbArticle) toModel() model.Article {
	return model.Article{
		Title:     a.Title,
		URL:       a.URL,
		Category:  model.Category(a.Category),
		ScrapedAt: a.ScrapedAt.UTC(),
	}
}

func (s *SQLStorage) EnsureSchema(ctx context.Context) error {
	stmts, ok := schemas[s.db.DriverName()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDriver, s.db.DriverName())
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return nil
}

func (s *SQLStorage) Add(ctx context.Context, article model.Article) (bool, error) {
	article, err := prepare(article, s.now)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(
		ctx,
		s.db.Rebind(`INSERT INTO articles (title, url, category, scraped_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (url) DO NOTHING`),
		article.Title,
		article.URL,
		string(article.Category),
		article.ScrapedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}

	return affected > 0, nil
}

func (s *SQLStorage) List(ctx context.Context, opts ListOptions) ([]model.Article, error) {
	var (
		query strings.Builder
		args  []any
	)

	query.WriteString(`SELECT title, url, category, scraped_at FROM articles`)
	if model.IsFilter(opts.Category) {
		query.WriteString(` WHERE category = ?`)
		args = append(args, opts.Category)
	}
	if opts.SortByDate {
		query.WriteString(` ORDER BY scraped_at DESC, id DESC`)
	} else {
		query.WriteString(` ORDER BY id`)
	}
	if opts.Limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	return s.selectArticles(ctx, query.String(), args...)
}

func (s *SQLStorage) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Article, error) {
	return s.selectArticles(
		ctx,
		`SELECT title, url, category, scraped_at FROM articles
			WHERE scraped_at >= ? AND scraped_at <= ?
			ORDER BY scraped_at DESC, id DESC`,
		start.UTC(),
		end.UTC(),
	)
}

func (s *SQLStorage) selectArticles(ctx context.Context, query string, args ...any) ([]model.Article, error) {
	var rows []dbArticle
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select articles: %w", err)
	}

	return lo.Map(rows, func(a dbArticle, _ int) model.Article { return a.toModel() }), nil
}

func (s *SQLStorage) Count(ctx context.Context, category string) (int64, error) {
	var (
		count int64
		query = `SELECT COUNT(*) FROM articles`
		args  []any
	)

	if model.IsFilter(category) {
		query += ` WHERE category = ?`
		args = append(args, category)
	}

	if err := s.db.GetContext(ctx, &count, s.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}

	return count, nil
}

func (s *SQLStorage) Categories(ctx context.Context) ([]model.Category, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT DISTINCT category FROM articles ORDER BY category`); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}

	return lo.Map(names, func(n string, _ int) model.Category { return model.Category(n) }), nil
}

func (s *SQLStorage) Latest(ctx context.Context) (*time.Time, error) {
	var latest time.Time
	err := s.db.GetContext(ctx, &latest, `SELECT scraped_at FROM articles ORDER BY scraped_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select latest: %w", err)
	}

	latest = latest.UTC()
	return &latest, nil
}

func (s *SQLStorage) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	before, err := cutoff(s.now(), days)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM articles WHERE scraped_at < ?`), before)
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}

	return res.RowsAffected()
}

func (s *SQLStorage) Close(context.Context) error {
	return s.db.Close()
}
