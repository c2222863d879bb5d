package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "coinchrono",
	Short: "Coin holding age analyzer for Ethereum addresses",
	Long: `coinchrono estimates how long the coins held by an Ethereum address have
been sitting there. It retrieves the address's incoming ETH and ERC-20
transfer history from the Etherscan API and reports, per asset, the total
received amount and its value-weighted average age in days.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
