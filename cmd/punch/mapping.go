package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchlist/internal/cli"
	"github.com/Veraticus/punchlist/internal/config"
)

func mappingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Manage the master trade mapping",
		Long: `Manage the Room,Component to Trade mapping used to assign defects to trades.

Each run uses the first mapping available from: the --mapping flag of
'punch process', the master mapping stored in the database, the file named by
mapping.path in the config, and finally the built-in default.`,
	}

	cmd.AddCommand(importMappingCmd())
	cmd.AddCommand(showMappingCmd())

	return cmd
}

func importMappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <mapping.csv>",
		Short: "Replace the master mapping stored in the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(config.ExpandPath(args[0])) // #nosec G304 - user-supplied mapping file
			if err != nil {
				return fmt.Errorf("failed to open mapping: %w", err)
			}
			defer func() { _ = f.Close() }()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			eng, err := newEngine(store)
			if err != nil {
				return err
			}
			table, err := eng.ImportMapping(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d trade mappings", table.Len())))
			return nil
		},
	}
}

func showMappingCmd() *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the mapping a run would use",
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			table, source := eng.MasterMapping(ctx)

			out := cmd.OutOrStdout()
			if asCSV {
				return table.WriteCSV(out)
			}
			fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d mappings from %s", table.Len(), source)))
			return cli.WriteTradeMappings(out, table.Mappings())
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "print as Room,Component,Trade CSV")

	return cmd
}
