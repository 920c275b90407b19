package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cchalm/scm-folders/internal/config"
	"github.com/cchalm/scm-folders/internal/logging"
)

var (
	configPath string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scm-folders",
	Short: "Create and delete folders in GitHub repositories",
	Long: `scm-folders creates and deletes folders in repositories whose version control only tracks files.
Empty folders are kept alive by a placeholder file, and every change is a single commit.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(_ *cobra.Command, _ []string) error {
	// Load .env file
	envErr := godotenv.Load()

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Initialize(level, cfg.LogConsole)
	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return cfg.Validate()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON configuration file")
}
