package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coinchrono/coinchrono/internal/config"
	"github.com/coinchrono/coinchrono/internal/etherscan"
	"github.com/coinchrono/coinchrono/internal/health"
	"github.com/coinchrono/coinchrono/internal/logger"
	"github.com/coinchrono/coinchrono/internal/report"
	"github.com/coinchrono/coinchrono/internal/scheduler"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var interval string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the analysis on a schedule",
	Long: `Run the holding age analysis for the configured addresses on a schedule and
expose a /health endpoint. Every tick performs the same standalone pass as
the analyze command; nothing is carried over between runs.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&interval, "interval", "", "run interval - duration (30m, 1h) or cron (\"*/30 * * * *\")")
	watchCmd.Flags().StringVarP(&address, "address", "a", "", "watch a single address instead of the configured list")
	watchCmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "Etherscan API key (default: ETHERSCAN_API_KEY)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Setup logger (log-level from global flag)
	logger.Setup(logLevel)

	// Context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		slog.Info("Signal received, graceful shutdown", "signal", sig)
		cancel()
	}()

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

	// Use interval from flag if provided, otherwise from config
	runInterval := interval
	if runInterval == "" && cfg.Interval != "" {
		runInterval = cfg.Interval
	}
	if runInterval == "" {
		return fmt.Errorf("no interval given: use --interval or set interval in the config")
	}

	addresses := cfg.Addresses
	if address != "" {
		addresses = []string{address}
	}
	if len(addresses) == 0 {
		return fmt.Errorf("no addresses to watch: use --address or set addresses in the config")
	}
	for _, addr := range addresses {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid Ethereum address: %s", addr)
		}
	}

	key, err := resolveAPIKey(cfg)
	if err != nil {
		return err
	}

	client := etherscan.NewClient(cfg.APIURL, key)

	slog.Info("Configuration loaded",
		"config_path", cfgFile,
		"addresses", len(addresses),
		"schedule", scheduler.DescribeSchedule(runInterval, cfg.GetTimezone()),
	)

	// Create job function that tracks execution status
	var healthChecker *health.Checker
	jobFunc := func(jobCtx context.Context) error {
		err := analyzeAll(jobCtx, client, addresses)
		if healthChecker != nil {
			healthChecker.UpdateLastRun(err == nil)
		}
		return err
	}

	schedulerCfg := scheduler.Config{
		Interval:       runInterval,
		Timezone:       cfg.GetTimezone(),
		RunImmediately: cfg.ShouldRunImmediately(),
		Logger:         slog.Default(),
	}

	sched, err := scheduler.New(ctx, schedulerCfg, jobFunc)
	if err != nil {
		slog.Error("Failed to create scheduler", "error", err)
		return fmt.Errorf("scheduler creation failed: %w", err)
	}
	defer sched.Stop()

	// Determine expected interval for the health checker
	expectedInterval, err := sched.ExpectedInterval()
	if err != nil {
		expectedInterval = 5 * time.Minute
		slog.Warn("Could not determine exact interval, using conservative estimate",
			"interval", expectedInterval)
	}

	healthChecker = health.NewChecker(client, expectedInterval)

	// Health check server
	httpPort := cfg.HTTPPort
	if httpPort == 0 {
		httpPort = 8080
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", httpPort),
		Handler: healthChecker.Router(),
	}

	go func() {
		slog.Info("Health check server starting", "port", httpPort, "endpoint", "/health")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Health server error", "error", err)
		}
	}()

	// Ensure HTTP server shutdown on exit
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Health server shutdown error", "error", err)
		}
	}()

	// Start the scheduler
	if err := sched.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		return fmt.Errorf("scheduler start failed: %w", err)
	}

	slog.Info("Watch mode started with clock-aligned scheduling")

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("Shutdown requested, stopping watch mode")
	return nil
}

// analyzeAll runs one analysis pass per address. A failing address does not
// stop the others; the first error is reported so the tick counts as failed.
func analyzeAll(ctx context.Context, client *etherscan.Client, addresses []string) error {
	var firstErr error

	for _, addr := range addresses {
		// Check for cancellation
		select {
		case <-ctx.Done():
			slog.Info("Shutdown requested, stopping processing")
			return ctx.Err()
		default:
		}

		slog.Info("Analyzing address", "address", addr)

		rep, err := analyzeAddress(ctx, client, addr)
		if err != nil {
			slog.Error("Analysis failed", "address", addr, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, f := range rep.Failures {
			slog.Warn("Asset skipped due to bad transfer data",
				"address", addr,
				"asset", f.Asset,
				"error", f.Err,
			)
		}

		report.WriteTable(os.Stdout, rep)
	}

	if firstErr == nil {
		slog.Info("Analysis pass completed")
	}
	return firstErr
}
