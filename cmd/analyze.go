package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/coinchrono/coinchrono/internal/config"
	"github.com/coinchrono/coinchrono/internal/etherscan"
	"github.com/coinchrono/coinchrono/internal/holdings"
	"github.com/coinchrono/coinchrono/internal/logger"
	"github.com/coinchrono/coinchrono/internal/report"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	address      string
	apiKey       string
	outputFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Estimate average holding age for one address",
	Long: `Fetch the address's incoming transfer history from Etherscan and print one
row per asset: total received amount and value-weighted average holding age
in days.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&address, "address", "a", "", "Ethereum address to analyze (default: first configured address)")
	analyzeCmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "Etherscan API key (default: ETHERSCAN_API_KEY)")
	analyzeCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Setup logger (log-level from global flag)
	logger.Setup(logLevel)

	if outputFormat != "table" && outputFormat != "json" {
		return fmt.Errorf("unknown output format %q (want table or json)", outputFormat)
	}

	// Load config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("Configuration error", "error", err)
		return err
	}

	// Override log level if set in config
	if cfg.LogLevel != "" {
		logger.Setup(cfg.LogLevel)
	}

	addr, err := resolveAddress(cfg)
	if err != nil {
		return err
	}
	key, err := resolveAPIKey(cfg)
	if err != nil {
		return err
	}

	client := etherscan.NewClient(cfg.APIURL, key)

	slog.Info("Analyzing address", "address", addr)

	rep, err := analyzeAddress(context.Background(), client, addr)
	if err != nil {
		slog.Error("Analysis failed", "address", addr, "error", err)
		return err
	}

	for _, f := range rep.Failures {
		slog.Warn("Asset skipped due to bad transfer data", "asset", f.Asset, "error", f.Err)
	}

	if outputFormat == "json" {
		return report.WriteJSON(os.Stdout, rep)
	}
	report.WriteTable(os.Stdout, rep)
	return nil
}

// analyzeAddress runs one full pass: fetch both histories, classify, and
// aggregate against the current instant.
func analyzeAddress(ctx context.Context, client *etherscan.Client, addr string) (holdings.Report, error) {
	nativeTxs, tokenTxs, err := fetchHistory(ctx, client, addr)
	if err != nil {
		return holdings.Report{}, err
	}

	slog.Info("Transfer history retrieved",
		"address", addr,
		"native_txs", len(nativeTxs),
		"token_txs", len(tokenTxs),
	)

	native := etherscan.NativeRecords(nativeTxs)
	tokens := etherscan.TokenRecords(tokenTxs)
	return holdings.Build(addr, native, tokens, time.Now().UTC()), nil
}

// fetchHistory retrieves the native and token transfer histories in parallel.
func fetchHistory(ctx context.Context, client *etherscan.Client, addr string) ([]etherscan.NativeTx, []etherscan.TokenTx, error) {
	var (
		wg        sync.WaitGroup
		nativeTxs []etherscan.NativeTx
		tokenTxs  []etherscan.TokenTx
		nativeErr error
		tokenErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		nativeTxs, nativeErr = client.NativeTransactions(ctx, addr)
	}()
	go func() {
		defer wg.Done()
		tokenTxs, tokenErr = client.TokenTransfers(ctx, addr)
	}()
	wg.Wait()

	if nativeErr != nil {
		return nil, nil, nativeErr
	}
	if tokenErr != nil {
		return nil, nil, tokenErr
	}
	return nativeTxs, tokenTxs, nil
}

// resolveAddress picks the address from the flag, falling back to the first
// configured one.
func resolveAddress(cfg *config.Config) (string, error) {
	addr := address
	if addr == "" && len(cfg.Addresses) > 0 {
		addr = cfg.Addresses[0]
	}
	if addr == "" {
		return "", errors.New("no address given: use --address or set addresses in the config")
	}
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("invalid Ethereum address: %s", addr)
	}
	return addr, nil
}

// resolveAPIKey picks the API key from the flag, falling back to the config
// (which itself reads ETHERSCAN_API_KEY).
func resolveAPIKey(cfg *config.Config) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	return "", errors.New("etherscan API key missing: use --api-key, ETHERSCAN_API_KEY, or api_key in the config")
}
