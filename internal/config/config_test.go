// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/aiNews/internal/search"
	"github.com/0x0BSoD/aiNews/internal/storage"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFiles_Defaults(t *testing.T) {
	t.Setenv("AINEWS_DATABASE_DSN", "mongodb://localhost:27017")

	c, err := LoadFiles(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)

	assert.Equal(t, storage.DriverMongo, c.DatabaseDriver)
	assert.Equal(t, "ai_news", c.DatabaseName)
	assert.Equal(t, 10, c.MaxResults)
	assert.Equal(t, 5, c.ResultsPerQuery)
	assert.Equal(t, 2*time.Second, c.QueryDelay)
	assert.Equal(t, 10*time.Second, c.FetchTimeout)
	assert.Equal(t, "@daily", c.Schedule)
	assert.Equal(t, 30, c.RetentionDays)
	assert.Equal(t, 5*time.Minute, c.CacheTTL)
	assert.Equal(t, search.DefaultQueries, c.Queries)
	assert.Equal(t, search.DefaultDomains, c.Domains)
	assert.Equal(t, search.DefaultEndpoint, c.SearchEndpoint)
}

func TestLoadFiles_FileThenEnv(t *testing.T) {
	path := writeFile(t, "config.hcl", `
database_driver = "sqlite3"
database_dsn    = "file:news.db"
max_results     = 25
query_delay     = "500ms"
retention_days  = 7
`)
	t.Setenv("AINEWS_MAX_RESULTS", "3")

	c, err := LoadFiles(path)
	require.NoError(t, err)

	assert.Equal(t, storage.DriverSQLite, c.DatabaseDriver)
	assert.Equal(t, "file:news.db", c.DatabaseDSN)
	assert.Equal(t, 3, c.MaxResults, "environment wins over the file")
	assert.Equal(t, 500*time.Millisecond, c.QueryDelay)
	assert.Equal(t, 7, c.RetentionDays)

	opts := c.StorageOptions()
	assert.Equal(t, storage.Options{Driver: storage.DriverSQLite, DSN: "file:news.db", Database: "ai_news"}, opts)
}

func TestLoadFiles_MissingDSN(t *testing.T) {
	t.Setenv("AINEWS_DATABASE_DSN", "")

	_, err := LoadFiles(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorIs(t, err, ErrMissingDSN)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DatabaseDriver:    storage.DriverPostgres,
		DatabaseDSN:       "postgres://localhost/news",
		MaxResults:        10,
		ResultsPerQuery:   5,
		Schedule:          "@daily",
		RetentionSchedule: "0 3 * * 0",
		RetentionDays:     30,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "redis" }},
		{"zero max results", func(c *Config) { c.MaxResults = 0 }},
		{"zero per query", func(c *Config) { c.ResultsPerQuery = 0 }},
		{"negative retention", func(c *Config) { c.RetentionDays = -1 }},
		{"bad schedule", func(c *Config) { c.Schedule = "every day" }},
		{"bad retention schedule", func(c *Config) { c.RetentionSchedule = "* *" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := valid
	c.DatabaseDriver = "redis"
	assert.ErrorIs(t, c.Validate(), storage.ErrUnknownDriver)
}

func TestLoadEnvFiles(t *testing.T) {
	const key = "AINEWS_TEST_DOTENV"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	path := writeFile(t, ".env", key+"=from-file\n")

	require.NoError(t, loadEnvFiles(filepath.Join(t.TempDir(), "absent.env"), path))
	assert.Equal(t, "from-file", os.Getenv(key))

	t.Setenv(key, "from-env")
	require.NoError(t, loadEnvFiles(path))
	assert.Equal(t, "from-env", os.Getenv(key), "existing variables are kept")
}
