package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchlist/internal/cli"
)

func overviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show a per-building project overview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			overview, err := store.GetProjectOverview(ctx)
			if err != nil {
				return err
			}
			if len(overview) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No buildings yet"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Project Overview"))
			return cli.WriteOverview(cmd.OutOrStdout(), overview)
		},
	}
}
