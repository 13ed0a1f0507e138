// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPruneCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete articles older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.RetentionDays
			}

			st, closeStorage, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage()

			n, err := pruneJob(cmd.Context(), st, days, a.reporter, a.log)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), pruned(n))
			return err
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "delete articles scraped more than this many days ago")

	return cmd
}
