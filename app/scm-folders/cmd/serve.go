package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cchalm/scm-folders/internal/api"
	"github.com/cchalm/scm-folders/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the folder API over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	telemetryProvider, err := createTelemetryProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(telemetryProvider)

	c, err := createComponents(cfg)
	if err != nil {
		return err
	}

	log.Info().Str("version", version).Msg("Starting scm-folders")
	router := api.NewRouter(c.folders, c.preconditions, logging.Get("api"))
	return api.NewServer(cfg.ListenAddr, router, logging.Get("server")).ListenAndServe(ctx)
}
