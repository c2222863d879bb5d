package cmd

import (
	"log/slog"

	"github.com/coinchrono/coinchrono/internal/config"
	"github.com/coinchrono/coinchrono/internal/logger"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file syntax and values without running the analysis.`,
	RunE:  validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	// Setup logger
	logger.Setup(logLevel)

	// Load config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("Configuration validation failed", "error", err)
		return err
	}

	slog.Info("✓ Configuration valid",
		"addresses", len(cfg.Addresses),
		"api_url", cfg.APIURL,
		"interval", cfg.Interval,
		"log_level", cfg.LogLevel,
		"timezone", cfg.Timezone,
		"api_key_set", cfg.APIKey != "",
	)

	return nil
}
