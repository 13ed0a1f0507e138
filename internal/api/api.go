// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package api serves stored articles as JSON for the dashboard.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/0x0BSoD/aiNews/internal/model"
	"github.com/0x0BSoD/aiNews/internal/storage"
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000

	shutdownTimeout = 5 * time.Second
)

type Reader interface {
	List(ctx context.Context, opts storage.ListOptions) ([]model.Article, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.Article, error)
	Count(ctx context.Context, category string) (int64, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Latest(ctx context.Context) (*time.Time, error)
}

type Handler struct {
	articles Reader
	log      *zap.Logger
}

func NewHandler(articles Reader, log *zap.Logger) *Handler {
	return &Handler{articles: articles, log: log.With(zap.String("component", "api"))}
}

// NewRouter builds the engine. A nil gatherer leaves /metrics unregistered.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(h.log), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	articles := router.Group("/api/articles")
	articles.GET("", h.List)
	articles.GET("/range", h.Range)
	articles.GET("/count", h.Count)
	articles.GET("/latest", h.Latest)
	router.GET("/api/categories", h.Categories)

	return router
}

func (h *Handler) List(c *gin.Context) {
	limit := DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", MaxLimit)})
			return
		}
		limit = n
	}

	list, err := h.articles.List(c.Request.Context(), storage.ListOptions{
		Limit:      limit,
		Category:   c.Query("category"),
		SortByDate: true,
	})
	if err != nil {
		h.fail(c, "list articles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": nonNil(list), "count": len(list)})
}

func (h *Handler) Range(c *gin.Context) {
	start, err := parseTimestamp(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be a URL-encoded RFC 3339 timestamp"})
		return
	}
	end, err := parseTimestamp(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be a URL-encoded RFC 3339 timestamp"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end is before start"})
		return
	}

	list, err := h.articles.ListByDateRange(c.Request.Context(), start, end)
	if err != nil {
		h.fail(c, "list articles by date", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": nonNil(list), "count": len(list)})
}

func (h *Handler) Count(c *gin.Context) {
	category := c.Query("category")

	n, err := h.articles.Count(c.Request.Context(), category)
	if err != nil {
		h.fail(c, "count articles", err)
		return
	}

	if !model.IsFilter(category) {
		category = model.AllCategories
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "count": n})
}

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.articles.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, "list categories", err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) Latest(c *gin.Context) {
	latest, err := h.articles.Latest(c.Request.Context())
	if err != nil {
		h.fail(c, "latest article", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"latest": latest})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.log.Error("request failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}

// parseTimestamp accepts RFC 3339. An unencoded "+" in an offset arrives as a space after
// query decoding and is restored.
func parseTimestamp(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.ReplaceAll(raw, " ", "+"))
}

func nonNil(list []model.Article) []model.Article {
	if list == nil {
		return []model.Article{}
	}
	return list
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// ListenAndServe serves handler on addr until ctx is done, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("http server listening", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	log.Info("http server stopped")

	return nil
}
