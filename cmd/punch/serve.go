package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/punchlist/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspection API over HTTP",
		Long: `Start a JSON API for uploading exports, browsing inspections, exporting
workbooks and updating work orders. The server stops on Ctrl+C.`,
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

			return server.Start(ctx, server.Options{
				Engine:  eng,
				Storage: store,
				Port:    viper.GetInt("server.port"),
				Out:     cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().Int("port", server.DefaultPort, "port to listen on")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}
