package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchlist/internal/cli"
	"github.com/Veraticus/punchlist/internal/engine"
	"github.com/Veraticus/punchlist/internal/model"
	"github.com/Veraticus/punchlist/internal/report"
	"github.com/Veraticus/punchlist/internal/service"
	"github.com/Veraticus/punchlist/internal/tui"
)

type processOptions struct {
	building    string
	address     string
	date        string
	inspector   string
	mappingPath string
	xlsxDir     string
	force       bool
	dryRun      bool
	dashboard   bool
	quiet       bool
}

func processCmd() *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process <export.csv>",
		Short: "Process an inspection export",
		Long: `Classify every checklist cell of an inspection export, map defects to trades,
compute building metrics and create work orders for every defect.

Exports that were already processed are skipped unless --force is given.`,
		Example: `  # Process an export for a building
  punch process harbour.csv --building "Harbour View" --inspector "Sam"

  # Preview metrics without saving anything
  punch process harbour.csv --dry-run

  # Use a one-off trade mapping and write an Excel workbook
  punch process harbour.csv --mapping trades.csv --xlsx ./reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.building, "building", "", "building name used when the export has none")
	cmd.Flags().StringVar(&opts.address, "address", "", "building address used when the export has none")
	cmd.Flags().StringVar(&opts.date, "date", "", "inspection date (YYYY-MM-DD) used when the export has none")
	cmd.Flags().StringVar(&opts.inspector, "inspector", "", "inspector name")
	cmd.Flags().StringVar(&opts.mappingPath, "mapping", "", "trade mapping CSV for this run only")
	cmd.Flags().StringVar(&opts.xlsxDir, "xlsx", "", "write an Excel workbook to this directory")
	cmd.Flags().BoolVar(&opts.force, "force", false, "process even if the export was already processed")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "compute results without saving them")
	cmd.Flags().BoolVar(&opts.dashboard, "dashboard", false, "open the interactive dashboard when done")
	cmd.Flags().BoolVar(&opts.quiet, "no-progress", false, "hide the progress bar")

	return cmd
}

func runProcess(cmd *cobra.Command, path string, opts processOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	data, err := readInput(path)
	if err != nil {
		return err
	}
	mapping, err := loadMappingFlag(opts.mappingPath)
	if err != nil {
		return err
	}

	var eng *engine.Engine
	if opts.dryRun {
		eng, err = newEngine(nil)
	} else {
		store, storeErr := initStorage(ctx)
		if storeErr != nil {
			return storeErr
		}
		defer closeStorage(store)
		eng, err = newEngine(store)
	}
	if err != nil {
		return err
	}

	up := engine.Upload{
		Data:          data,
		Filename:      filepath.Base(path),
		InspectorName: opts.inspector,
		Building:      model.BuildingInfo{Name: opts.building, Address: opts.address, Date: opts.date},
		Mapping:       mapping,
		Force:         opts.force,
		DryRun:        opts.dryRun,
	}

	var progress *cli.Progress
	if !opts.quiet {
		progress = cli.NewProgress(cmd.ErrOrStderr(), "Reshaping export...")
		up.Progress = progress.Update
	}

	result, err := eng.Process(ctx, up)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}

	if notice := cli.DuplicateNotice(result.Duplicate); notice != "" {
		fmt.Fprintln(out, notice)
	}
	if result.Skipped {
		fmt.Fprintln(out, cli.FormatInfo("Skipped. Use --force to process it again."))
		return nil
	}

	fmt.Fprintln(out, cli.RenderBox("Inspection Processed", cli.MetricsSummary(result.Metrics)))
	fmt.Fprintf(out, "Items: %d  Mapped: %.1f%% (%s mapping)\n",
		len(result.Items), result.MappingSuccessRate, result.MappingSource)

	switch {
	case opts.dryRun:
		fmt.Fprintln(out, cli.FormatInfo("Dry run: nothing was saved"))
	case result.SaveErr != nil:
		fmt.Fprintln(out, cli.FormatError("Results could not be saved: "+result.SaveErr.Error()))
	default:
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved inspection %s with %d work orders",
			result.InspectionID, result.WorkOrdersCreated)))
	}

	r := &service.InspectionReport{Metrics: result.Metrics, Items: result.Items}
	if result.Saved() {
		if loaded, err := eng.Load(ctx, result.InspectionID); err == nil {
			r = loaded
		} else {
			slog.Warn("Failed to reload saved inspection", "error", err)
		}
	}

	if opts.xlsxDir != "" {
		writer := report.NewFileWriter(opts.xlsxDir)
		if err := writer.Write(ctx, r); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("Workbook written to "+writer.LastPath))
	}

	if opts.dashboard {
		return tui.Run(ctx, r)
	}
	return nil
}
