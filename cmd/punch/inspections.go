package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchlist/internal/cli"
	"github.com/Veraticus/punchlist/internal/service"
	"github.com/Veraticus/punchlist/internal/tui"
	"github.com/Veraticus/punchlist/internal/tui/themes"
)

func inspectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspections",
		Aliases: []string{"inspection"},
		Short:   "Browse processed inspections",
	}

	cmd.AddCommand(listInspectionsCmd())
	cmd.AddCommand(showInspectionCmd())

	return cmd
}

func listInspectionsCmd() *cobra.Command {
	var filter service.InspectionFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inspections, latest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			inspections, err := store.ListInspections(ctx, filter)
			if err != nil {
				return err
			}
			if len(inspections) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No inspections found"))
				return nil
			}
			return cli.WriteInspections(cmd.OutOrStdout(), inspections)
		},
	}

	cmd.Flags().StringVar(&filter.BuildingName, "building", "", "only inspections of this building")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "maximum number of inspections")

	return cmd
}

func showInspectionCmd() *cobra.Command {
	var dashboard bool
	var theme string

	cmd := &cobra.Command{
		Use:   "show <inspection-id>",
		Short: "Show the metrics of one inspection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			eng, err := newEngine(store)
			if err != nil {
				return err
			}
			r, err := eng.Load(ctx, args[0])
			if err != nil {
				return err
			}

			if dashboard {
				return tui.Run(ctx, r, tui.WithTheme(themes.ByName(theme)))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderBox("Inspection "+r.Inspection.ID, cli.MetricsSummary(r.Metrics)))
			if len(r.WorkOrders) > 0 {
				fmt.Fprintln(out)
				return cli.WriteWorkOrders(out, r.WorkOrders)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "open the interactive dashboard")
	cmd.Flags().StringVar(&theme, "theme", "default", "dashboard theme (default, catppuccin)")

	return cmd
}
