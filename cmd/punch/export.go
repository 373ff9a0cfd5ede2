package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchlist/internal/cli"
	"github.com/Veraticus/punchlist/internal/config"
	"github.com/Veraticus/punchlist/internal/report"
	"github.com/Veraticus/punchlist/internal/sheets"
)

func exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <inspection-id>",
		Short: "Export an inspection to Excel or Google Sheets",
		Example: `  # Write an Excel workbook to the current directory
  punch export 3f1c... --format xlsx

  # Push every tab to Google Sheets
  punch export 3f1c... --format sheets`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

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

			switch format {
			case "xlsx":
				writer := report.NewFileWriter(output)
				if err := writer.Write(ctx, r); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess("Workbook written to "+writer.LastPath))
			case "sheets":
				sheetsConfig, err := config.LoadSheetsConfig()
				if err != nil {
					return fmt.Errorf("google sheets is not configured (run 'punch auth sheets'): %w", err)
				}
				writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
				if err != nil {
					return err
				}
				if err := writer.Write(ctx, r); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
					"Exported to https://docs.google.com/spreadsheets/d/%s", writer.SpreadsheetID)))
			default:
				return fmt.Errorf("unknown format %q: use xlsx or sheets", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "xlsx", "export format (xlsx, sheets)")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "directory for xlsx exports")

	return cmd
}
