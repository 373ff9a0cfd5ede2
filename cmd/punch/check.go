package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchlist/internal/cli"
	"github.com/Veraticus/punchlist/internal/engine"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <export.csv>",
		Short: "Check whether an export was already processed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			data, err := readInput(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			eng, err := newEngine(store)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Checksum: %s\n", engine.Checksum(data))
			if notice := cli.DuplicateNotice(eng.CheckDuplicate(ctx, data, filepath.Base(args[0]))); notice != "" {
				fmt.Fprintln(out, notice)
				return nil
			}
			fmt.Fprintln(out, cli.FormatSuccess("New export: not processed before"))
			return nil
		},
	}
}
