// Command refresher re-prices stale market snapshots outside the API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pazaryeri/internal/config"
	"pazaryeri/internal/database"
	"pazaryeri/internal/logging"
	"pazaryeri/internal/refresher"
	"pazaryeri/internal/repository"
	"pazaryeri/internal/services/perplexity"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg       *config.Config
	logger    *zap.Logger
	snapshots *repository.SnapshotRepository
)

var rootCmd = &cobra.Command{
	Use:   "refresher",
	Short: "Market price snapshot maintenance",
	Long: `Maintains the market_price_snapshots cache.

Available subcommands:
  run    - Run one refresh sweep and print the report
  daemon - Run a sweep every day at a fixed time
  export - Write all snapshots to an xlsx workbook`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found")
		}

		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if logger, err = logging.New(cfg.Environment); err != nil {
			return err
		}
		if err := cfg.RequireStore(); err != nil {
			return err
		}
		db, err := database.Initialize(cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		snapshots = repository.NewSnapshotRepository(db)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newRefresher(progress func(done, total int, key string, err error)) *refresher.Refresher {
	fetcher := perplexity.NewPriceFetcher(
		perplexity.NewClient(cfg.PerplexityAPIKey, cfg.HTTPTimeout),
		cfg.PerplexityModel, cfg.PerplexityRefreshModel, cfg.Pricing.RefreshDomains,
	)
	return refresher.New(cfg.Pricing, refresher.Deps{
		Store:      snapshots,
		Searcher:   fetcher,
		Credential: cfg.RequireSearch,
		Logger:     logger.Named("refresher"),
		Progress:   progress,
	})
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
