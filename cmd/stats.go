// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/0x0BSoD/aiNews/internal/model"
	"github.com/0x0BSoD/aiNews/internal/storage"
)

type categoryCount struct {
	Category model.Category
	Count    int64
}

type stats struct {
	Total      int64
	Categories []categoryCount
	Latest     *time.Time
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show article counts per category and the latest scrape time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, closeStorage, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage()

			s, err := collectStats(cmd.Context(), st)
			if err != nil {
				return err
			}

			renderStats(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func collectStats(ctx context.Context, st storage.Storage) (stats, error) {
	var (
		s   stats
		err error
	)

	if s.Total, err = st.Count(ctx, ""); err != nil {
		return s, err
	}

	categories, err := st.Categories(ctx)
	if err != nil {
		return s, err
	}
	for _, c := range categories {
		n, err := st.Count(ctx, c.String())
		if err != nil {
			return s, err
		}
		s.Categories = append(s.Categories, categoryCount{Category: c, Count: n})
	}

	if s.Latest, err = st.Latest(ctx); err != nil {
		return s, err
	}

	return s, nil
}

func renderStats(w io.Writer, s stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Category", "Articles"})

	for _, c := range s.Categories {
		t.AppendRow(table.Row{c.Category, c.Count})
	}

	latest := "never"
	if s.Latest != nil {
		latest = model.FormatTime(*s.Latest)
	}
	t.AppendFooter(table.Row{"Total", s.Total})
	t.AppendFooter(table.Row{"Latest", latest})

	t.Render()
}
