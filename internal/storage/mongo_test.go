// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/0x0BSoD/aiNews/internal/model"
)

func newMongo(mt *mtest.T) *MongoStorage {
	s := NewMongoStorage(mt.Coll)
	s.now = func() time.Time { return baseTime }
	return s
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoStorage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("add inserts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		added, err := newMongo(mt).Add(ctx, article("https://x.com/a", model.LLM, time.Time{}))
		require.NoError(mt, err)
		assert.True(mt, added)
	})

	mt.Run("add duplicate reports already exists", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: ai_news.articles index: url_1",
		}))

		added, err := newMongo(mt).Add(ctx, article("https://x.com/a", model.LLM, time.Time{}))
		require.NoError(mt, err)
		assert.False(mt, added)
	})

	mt.Run("add other failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))

		_, err := newMongo(mt).Add(ctx, article("https://x.com/a", model.LLM, time.Time{}))
		assert.Error(mt, err)
	})

	mt.Run("list decodes documents", func(mt *mtest.T) {
		ns := namespace(mt)
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bson.D{
				{Key: "title", Value: "Robots everywhere"},
				{Key: "url", Value: "https://x.com/r"},
				{Key: "category", Value: "Robotics"},
				{Key: "scraped_at", Value: baseTime},
			},
		)
		last := mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
			bson.D{
				{Key: "title", Value: "LLM news"},
				{Key: "url", Value: "https://x.com/l"},
				{Key: "category", Value: "LLM"},
				{Key: "scraped_at", Value: baseTime.Add(-time.Hour)},
			},
		)
		mt.AddMockResponses(first, last)

		items, err := newMongo(mt).List(ctx, ListOptions{SortByDate: true, Limit: 10})
		require.NoError(mt, err)
		require.Len(mt, items, 2)
		assert.Equal(mt, model.Robotics, items[0].Category)
		assert.True(mt, baseTime.Equal(items[0].ScrapedAt))
		assert.Equal(mt, "https://x.com/l", items[1].URL)
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}},
		))

		n, err := newMongo(mt).Count(ctx, string(model.LLM))
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})

	mt.Run("categories are sorted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "values", Value: bson.A{"Robotics", "LLM"}},
		))

		cats, err := newMongo(mt).Categories(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, []model.Category{model.LLM, model.Robotics}, cats)
	})

	mt.Run("latest on empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		latest, err := newMongo(mt).Latest(ctx)
		require.NoError(mt, err)
		assert.Nil(mt, latest)
	})

	mt.Run("latest", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "scraped_at", Value: baseTime}},
		))

		latest, err := newMongo(mt).Latest(ctx)
		require.NoError(mt, err)
		require.NotNil(mt, latest)
		assert.True(mt, baseTime.Equal(*latest))
	})

	mt.Run("delete older than", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))

		deleted, err := newMongo(mt).DeleteOlderThan(ctx, 30)
		require.NoError(mt, err)
		assert.EqualValues(mt, 1, deleted)
	})

	mt.Run("ensure schema", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, newMongo(mt).EnsureSchema(ctx))
	})
}

func TestCategoryFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, categoryFilter(""))
	assert.Equal(t, bson.M{}, categoryFilter(model.AllCategories))
	assert.Equal(t, bson.M{"category": "LLM"}, categoryFilter("LLM"))
}
