// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"

	"github.com/0x0BSoD/aiNews/internal/search"
	"github.com/0x0BSoD/aiNews/internal/storage"
)

const EnvPrefix = "AINEWS"

var ErrMissingDSN = errors.New("database_dsn is required")

type Config struct {
	DatabaseDriver string `hcl:"database_driver" env:"DATABASE_DRIVER" default:"mongo"`
	DatabaseDSN    string `hcl:"database_dsn" env:"DATABASE_DSN"`
	DatabaseName   string `hcl:"database_name" env:"DATABASE_NAME" default:"ai_news"`

	MaxResults      int           `hcl:"max_results" env:"MAX_RESULTS" default:"10"`
	ResultsPerQuery int           `hcl:"results_per_query" env:"RESULTS_PER_QUERY" default:"5"`
	QueryDelay      time.Duration `hcl:"query_delay" env:"QUERY_DELAY" default:"2s"`
	FetchTimeout    time.Duration `hcl:"fetch_timeout" env:"FETCH_TIMEOUT" default:"10s"`
	SearchEndpoint  string        `hcl:"search_endpoint" env:"SEARCH_ENDPOINT"`
	UserAgent       string        `hcl:"user_agent" env:"USER_AGENT"`
	Queries         []string      `hcl:"queries" env:"QUERIES"`
	Domains         []string      `hcl:"domains" env:"DOMAINS"`

	Schedule          string `hcl:"schedule" env:"SCHEDULE" default:"@daily"`
	RetentionSchedule string `hcl:"retention_schedule" env:"RETENTION_SCHEDULE" default:"@weekly"`
	RetentionDays     int    `hcl:"retention_days" env:"RETENTION_DAYS" default:"30"`

	HTTPAddr string        `hcl:"http_addr" env:"HTTP_ADDR" default:"127.0.0.1:8088"`
	CacheTTL time.Duration `hcl:"cache_ttl" env:"CACHE_TTL" default:"5m"`

	TelegramBotToken    string `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatID int64  `hcl:"telegram_admin_chat_id" env:"TELEGRAM_ADMIN_CHAT_ID"`

	LogLevel       string `hcl:"log_level" env:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `hcl:"log_development" env:"LOG_DEVELOPMENT"`
}

var (
	DefaultFiles   = []string{"./config.hcl", "./config.local.hcl", "$HOME/.config/ainews/config.hcl"}
	DefaultEnvFile = []string{"config/.env", ".env"}
)

// Load reads dotenv files and then the given HCL files, or DefaultFiles when none are given.
func Load(files ...string) (Config, error) {
	if err := loadEnvFiles(DefaultEnvFile...); err != nil {
		return Config{}, err
	}
	if len(files) == 0 {
		files = DefaultFiles
	}

	return LoadFiles(files...)
}

// LoadFiles applies defaults, then the first of the given HCL files that exists, then
// AINEWS_* variables, and validates the result.
func LoadFiles(files ...string) (Config, error) {
	var c Config

	loader := aconfig.LoaderFor(&c, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: EnvPrefix,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if len(c.Queries) == 0 {
		c.Queries = search.DefaultQueries
	}
	if len(c.Domains) == 0 {
		c.Domains = search.DefaultDomains
	}
	if c.SearchEndpoint == "" {
		c.SearchEndpoint = search.DefaultEndpoint
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Validate() error {
	if c.DatabaseDSN == "" {
		return ErrMissingDSN
	}

	drivers := []string{storage.DriverMongo, storage.DriverPostgres, storage.DriverSQLite}
	if !lo.Contains(drivers, c.DatabaseDriver) {
		return fmt.Errorf("%w: %q", storage.ErrUnknownDriver, c.DatabaseDriver)
	}

	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.ResultsPerQuery <= 0 {
		return fmt.Errorf("results_per_query must be positive, got %d", c.ResultsPerQuery)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative, got %d", c.RetentionDays)
	}

	for name, spec := range map[string]string{"schedule": c.Schedule, "retention_schedule": c.RetentionSchedule} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s %q: %w", name, spec, err)
		}
	}

	return nil
}

// StorageOptions returns what storage.Open needs.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:   c.DatabaseDriver,
		DSN:      c.DatabaseDSN,
		Database: c.DatabaseName,
	}
}

// loadEnvFiles exports variables from the given dotenv files without overriding ones
// already set. Missing files are skipped.
func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	return nil
}
