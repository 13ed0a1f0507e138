// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScrapeCmd(a *app) *cobra.Command {
	var max int

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one collection pass and print the summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if max <= 0 {
				max = a.cfg.MaxResults
			}

			st, closeStorage, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage()

			summary, err := scrapeJob(cmd.Context(), a.newFetcher(st), max, a.reporter, a.log)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), summary)
			return err
		},
	}
	cmd.Flags().IntVar(&max, "max", 0, "maximum number of URLs to search for (default from config)")

	return cmd
}
