package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/EcoPack/internal/api"
	"github.com/MikeSquared-Agency/EcoPack/internal/catalog"
	"github.com/MikeSquared-Agency/EcoPack/internal/config"
	"github.com/MikeSquared-Agency/EcoPack/internal/hermes"
	"github.com/MikeSquared-Agency/EcoPack/internal/metrics"
	"github.com/MikeSquared-Agency/EcoPack/internal/predictor"
	"github.com/MikeSquared-Agency/EcoPack/internal/recommender"
	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
	"github.com/MikeSquared-Agency/EcoPack/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Result store: Postgres when configured, in-memory otherwise
	var results store.ResultStore
	var db *store.PostgresStore
	var health api.Pinger
	if cfg.Database.URL != "" {
		if err := store.RunMigrations(ctx, cfg.Database.URL); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		db, err = store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		results = db
		health = db
		logger.Info("connected to database")
	} else {
		results = store.NewMemoryStore()
		logger.Warn("no database configured, history is kept in memory")
	}

	// Catalog
	src, err := newCatalogSource(cfg, db, logger)
	if err != nil {
		logger.Error("failed to configure catalog", "error", err)
		os.Exit(1)
	}
	cached := catalog.NewCached(src, cfg.CatalogCacheTTL())

	// Predictors and engine
	costPredictor, impactPredictor, err := predictor.FromConfig(cfg, logger)
	if err != nil {
		logger.Error("failed to configure predictors", "error", err)
		os.Exit(1)
	}
	engineOpts, err := scoring.EngineOptionsFromConfig(cfg.Engine, cfg.PredictorTimeout())
	if err != nil {
		logger.Error("failed to configure engine", "error", err)
		os.Exit(1)
	}
	engine := scoring.NewEngine(costPredictor, impactPredictor, engineOpts, logger)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
		}
	}

	svc := recommender.New(cached, results, hermesClient, engine, recommender.OptionsFromConfig(cfg.Engine), logger)
	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectCatalogUpdated, svc.HandleCatalogUpdated); err != nil {
			logger.Warn("failed to subscribe to catalog updates", "error", err)
		}
	}

	// API server
	router := api.NewRouter(svc, api.RouterConfig{
		AdminToken:         cfg.Server.AdminToken,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(health),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newCatalogSource(cfg *config.Config, db *store.PostgresStore, logger *slog.Logger) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case "file":
		return catalog.NewFileSource(cfg.Catalog.Path, logger), nil
	case "http":
		return catalog.NewHTTPSource(cfg.Catalog.URL, logger), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres catalog source needs database.url")
		}
		return catalog.NewPostgresSource(db.Pool(), logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
