// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/0x0BSoD/aiNews/internal/model"
)

const CollectionName = "articles"

type MongoStorage struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStorage(coll *mongo.Collection) *MongoStorage {
	return &MongoStorage{coll: coll, now: time.Now}
}

var newestFirst = bson.D{{Key: "scraped_at", Value: -1}, {Key: "_id", Value: -1}}

func (s *MongoStorage) EnsureSchema(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "scraped_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	return nil
}

func (s *MongoStorage) Add(ctx context.Context, article model.Article) (bool, error) {
	article, err := prepare(article, s.now)
	if err != nil {
		return false, err
	}
	// BSON dates carry millisecond precision.
	article.ScrapedAt = article.ScrapedAt.Truncate(time.Millisecond)

	if _, err := s.coll.InsertOne(ctx, article); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert article: %w", err)
	}

	return true, nil
}

func (s *MongoStorage) List(ctx context.Context, opts ListOptions) ([]model.Article, error) {
	filter := categoryFilter(opts.Category)

	findOpts := options.Find()
	if opts.SortByDate {
		findOpts.SetSort(newestFirst)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	return s.find(ctx, filter, findOpts)
}

func (s *MongoStorage) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Article, error) {
	filter := bson.M{"scraped_at": bson.M{"$gte": start.UTC(), "$lte": end.UTC()}}
	return s.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (s *MongoStorage) find(ctx context.Context, filter any, opts *options.FindOptions) ([]model.Article, error) {
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}

	articles := []model.Article{}
	if err := cur.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	for i := range articles {
		articles[i].ScrapedAt = articles[i].ScrapedAt.UTC()
	}

	return articles, nil
}

func (s *MongoStorage) Count(ctx context.Context, category string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, categoryFilter(category))
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

func (s *MongoStorage) Categories(ctx context.Context) ([]model.Category, error) {
	values, err := s.coll.Distinct(ctx, "category", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	out := make([]model.Category, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			out = append(out, model.Category(name))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out, nil
}

func (s *MongoStorage) Latest(ctx context.Context) (*time.Time, error) {
	var doc struct {
		ScrapedAt time.Time `bson:"scraped_at"`
	}

	err := s.coll.FindOne(
		ctx,
		bson.D{},
		options.FindOne().SetSort(newestFirst).SetProjection(bson.M{"scraped_at": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest: %w", err)
	}

	latest := doc.ScrapedAt.UTC()
	return &latest, nil
}

func (s *MongoStorage) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	before, err := cutoff(s.now(), days)
	if err != nil {
		return 0, err
	}

	res, err := s.coll.DeleteMany(ctx, bson.M{"scraped_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}

	return res.DeletedCount, nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}

func categoryFilter(category string) bson.M {
	if !model.IsFilter(category) {
		return bson.M{}
	}
	return bson.M{"category": category}
}
