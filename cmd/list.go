// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/0x0BSoD/aiNews/internal/model"
	"github.com/0x0BSoD/aiNews/internal/storage"
)

const titleWidth = 60

func newListCmd(a *app) *cobra.Command {
	var (
		limit    int
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the newest stored articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, closeStorage, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage()

			articles, err := st.List(cmd.Context(), storage.ListOptions{
				Limit:      limit,
				Category:   category,
				SortByDate: true,
			})
			if err != nil {
				return err
			}

			renderArticles(cmd.OutOrStdout(), articles)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of articles to show, 0 for all")
	cmd.Flags().StringVar(&category, "category", model.AllCategories, "only show this category")

	return cmd
}

func renderArticles(w io.Writer, articles []model.Article) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Scraped", "Category", "Title", "URL"})

	for _, a := range articles {
		t.AppendRow(table.Row{
			a.ScrapedAt.Format("2006-01-02 15:04"),
			a.Category,
			text.Trim(a.Title, titleWidth),
			a.URL,
		})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(articles)})

	t.Render()
}
