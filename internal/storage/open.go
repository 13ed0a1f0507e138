// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	DefaultDatabase = "ai_news"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

type Options struct {
	Driver string
	DSN    string
	// Database is the MongoDB database name; SQL drivers take it from the DSN.
	Database string
}

// Open connects to the configured backend, checks it is reachable and makes sure the schema
// exists. There is exactly one connection attempt.
func Open(ctx context.Context, opts Options) (Storage, error) {
	var (
		s   Storage
		err error
	)

	switch opts.Driver {
	case DriverMongo:
		s, err = openMongo(ctx, opts)
	case DriverPostgres, DriverSQLite:
		s, err = openSQL(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.EnsureSchema(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	return s, nil
}

func openMongo(ctx context.Context, opts Options) (Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.DSN))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	database := opts.Database
	if database == "" {
		database = DefaultDatabase
	}

	return NewMongoStorage(client.Database(database).Collection(CollectionName)), nil
}

func openSQL(ctx context.Context, opts Options) (Storage, error) {
	db, err := sqlx.ConnectContext(ctx, opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.Driver, err)
	}

	if opts.Driver == DriverSQLite {
		// every new connection to ":memory:" would be a fresh, empty database
		db.SetMaxOpenConns(1)
	}

	return NewSQLStorage(db), nil
}
