package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pazaryeri/internal/api"
	"pazaryeri/internal/assistant"
	"pazaryeri/internal/auth"
	"pazaryeri/internal/config"
	"pazaryeri/internal/database"
	"pazaryeri/internal/logging"
	"pazaryeri/internal/pricing"
	"pazaryeri/internal/refresher"
	"pazaryeri/internal/repository"
	"pazaryeri/internal/services/gemini"
	"pazaryeri/internal/services/openai"
	"pazaryeri/internal/services/perplexity"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireStore(); err != nil {
		logger.Fatal("store not configured", zap.Error(err))
	}
	db, err := database.Initialize(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	listings := repository.NewListingRepository(db)
	snapshots := repository.NewSnapshotRepository(db)
	users := repository.NewUserRepository(db)
	limits := repository.NewRateLimitRepository(db)

	completer := newCompleter(cfg, logger)
	if err := cfg.RequireSearch(); err != nil {
		logger.Warn("web price search disabled", zap.Error(err))
	}
	fetcher := perplexity.NewPriceFetcher(
		perplexity.NewClient(cfg.PerplexityAPIKey, cfg.HTTPTimeout),
		cfg.PerplexityModel, cfg.PerplexityRefreshModel, cfg.Pricing.RefreshDomains,
	)

	estimator := pricing.NewEstimator(cfg.Pricing, pricing.EstimatorDeps{
		Listings:  listings,
		Snapshots: snapshots,
		Web:       fetcher,
		AI:        assistant.NewAIPriceEstimator(completer),
		Logger:    logger,
		// web search and AI fallback run one after the other
		Timeout: 2 * cfg.HTTPTimeout,
	})
	helper := assistant.NewService(completer, estimator, logger)
	accounts := auth.NewService(users, auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL), logger)
	sweeper := refresher.New(cfg.Pricing, refresher.Deps{
		Store:      snapshots,
		Searcher:   fetcher,
		Credential: cfg.RequireSearch,
		Logger:     logger.Named("refresher"),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logging.GinLogger(logger), logging.GinRecovery(logger), api.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	apiGroup := r.Group("/api/v1")
	api.SetupRoutes(apiGroup, api.Deps{
		Listings:         listings,
		Snapshots:        snapshots,
		Accounts:         accounts,
		Assistant:        helper,
		Limiter:          limits,
		Sweeper:          sweeper,
		StoragePublicURL: cfg.StoragePublicURL,
		AIDailyLimit:     cfg.AIDailyLimit,
		CronSecret:       cfg.CronSecret,
		Logger:           logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newCompleter picks the completion backend. It returns nil when the
// backend has no key; the assistant then answers with a configuration error.
func newCompleter(cfg *config.Config, logger *zap.Logger) assistant.Completer {
	if err := cfg.RequireCompletion(); err != nil {
		logger.Warn("completion backend disabled", zap.Error(err))
		return nil
	}

	switch cfg.AIProvider {
	case "gemini":
		c, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, "", cfg.HTTPTimeout)
		if err != nil {
			logger.Error("gemini client init failed", zap.Error(err))
			return nil
		}
		logger.Info("completion backend", zap.String("provider", "gemini"), zap.String("model", cfg.GeminiModel))
		return c
	default:
		logger.Info("completion backend", zap.String("provider", "openai"), zap.String("model", cfg.OpenAIModel))
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.HTTPTimeout)
	}
}
