package main

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchlist/internal/cli"
	"github.com/Veraticus/punchlist/internal/config"
	"github.com/Veraticus/punchlist/internal/storage"
)

func migrateCmd() *cobra.Command {
	var status, backup bool
	var tag string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

SQLite databases can be copied to a tagged backup first with --backup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			opts, err := config.LoadDatabaseConfig()
			if err != nil {
				return err
			}
			if err := config.EnsureDatabaseDir(opts); err != nil {
				return err
			}

			slog.Info("Starting database migration",
				"driver", opts.Driver,
				"path", opts.Path,
				"status_only", status)

			switch opts.Driver {
			case storage.DriverPostgres:
				store, err := storage.NewPostgresStorage(opts.URL)
				if err != nil {
					return err
				}
				defer closeStorage(store)

				if status {
					return printSchemaStatus(cmd, store.SchemaVersion)
				}
				if backup {
					return fmt.Errorf("--backup is only supported for sqlite databases")
				}
				if err := store.Migrate(ctx); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
			default:
				store, err := storage.NewSQLiteStorage(opts.Path)
				if err != nil {
					return err
				}
				defer closeStorage(store)

				if status {
					return printSchemaStatus(cmd, store.SchemaVersion)
				}
				if backup {
					info, err := store.Backup(ctx, tag)
					if err != nil {
						return fmt.Errorf("backup failed: %w", err)
					}
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Backup %s written to %s", info.ID, info.Path)))
				}
				if err := store.Migrate(ctx); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show the current schema version without migrating")
	cmd.Flags().BoolVar(&backup, "backup", false, "back up the sqlite database before migrating")
	cmd.Flags().StringVar(&tag, "tag", "", "backup name (default: timestamp)")

	cmd.AddCommand(listBackupsCmd())

	return cmd
}

func printSchemaStatus(cmd *cobra.Command, version func(ctx context.Context) (int, error)) error {
	current, err := version(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %d\nLatest version:  %d\n", current, storage.ExpectedSchemaVersion)
	if current < storage.ExpectedSchemaVersion {
		fmt.Fprintln(out, cli.FormatWarning("Migrations pending: run 'punch migrate'"))
	}
	return nil
}

func listBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List sqlite backups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := config.LoadDatabaseConfig()
			if err != nil {
				return err
			}
			if opts.Driver != storage.DriverSQLite {
				return fmt.Errorf("backups are only supported for sqlite databases")
			}

			store, err := storage.NewSQLiteStorage(opts.Path)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			backups, err := store.ListBackups()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No backups found"))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tVERSION\tSIZE\tPATH")
			for _, b := range backups {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					b.ID, b.CreatedAt.Format("2006-01-02 15:04"), b.SchemaVersion, b.FileSize, b.Path)
			}
			return w.Flush()
		},
	}
}
