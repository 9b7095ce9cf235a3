// Command service runs the wellness HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/wellness-service/internal/adapters/cache"
	"github.com/jsamuelsen/wellness-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/wellness-service/internal/adapters/flags"
	"github.com/jsamuelsen/wellness-service/internal/adapters/http"
	"github.com/jsamuelsen/wellness-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/wellness-service/internal/adapters/storage"
	"github.com/jsamuelsen/wellness-service/internal/app"
	"github.com/jsamuelsen/wellness-service/internal/platform/config"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
	"github.com/jsamuelsen/wellness-service/internal/platform/telemetry"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting wellness service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
		Headers:      cfg.Telemetry.Headers,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if err := telProvider.Shutdown(ctx); err != nil {
			logger.Error("telemetry shutdown", slog.Any("error", err))
		}
	}()

	db, err := storage.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close", slog.Any("error", err))
		}
	}()

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(db); err != nil {
		return fmt.Errorf("registering database health check: %w", err)
	}

	classifier, err := acl.NewClassifierFromConfig(&cfg.Classifier, &cfg.Client, logger)
	if err != nil {
		return err
	}

	metrics := telemetry.NewDomainMetrics(prometheus.DefaultRegisterer)
	featureFlags := flags.NewStatic(cfg.Features)

	recCfg := app.RecommendationServiceConfig{
		Profiles:          db.Profiles(),
		Posts:             db.Posts(),
		Flags:             featureFlags,
		Metrics:           metrics,
		ClassifierTimeout: cfg.Classifier.Timeout,
		CandidateLimit:    cfg.Recommendations.CandidateLimit,
	}

	if classifier != nil {
		if err := healthRegistry.RegisterOptional(classifier); err != nil {
			return fmt.Errorf("registering classifier health check: %w", err)
		}

		recCfg.Classifier = classifier

		if cfg.Classifier.CacheSize > 0 {
			recCfg.Cache = cache.NewLRU(cfg.Classifier.CacheSize, cfg.Classifier.CacheTTL)
		}
	} else {
		logger.Warn("category classifier disabled, recommendations will be empty")
	}

	postService := app.NewPostService(app.PostServiceConfig{Posts: db.Posts(), Comments: db.Comments()})
	voteService := app.NewVoteService(app.VoteServiceConfig{
		Posts:             db.Posts(),
		Comments:          db.Comments(),
		Metrics:           metrics,
		OptimisticLocking: cfg.Votes.OptimisticLocking,
		MaxRetries:        cfg.Votes.MaxRetries,
	})
	profileService := app.NewProfileService(db.Profiles())
	recommendationService := app.NewRecommendationService(recCfg)

	server := http.New(&cfg.Server, cfg.App.Environment, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		ServiceName: cfg.App.Name,
		Auth:        &cfg.Auth,
		CORS:        &cfg.CORS,
		Timeout:     cfg.Server.RequestTimeout,
		Health:      handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime), prometheus.DefaultGatherer),
		Posts:       handlers.NewPostHandler(postService, voteService),
		Wellness:    handlers.NewWellnessHandler(profileService, recommendationService),
	})

	return waitForShutdown(ctx, logger, server, server.Start(), cfg.Server.ShutdownTimeout)
}

// waitForShutdown blocks until SIGINT/SIGTERM or a server failure, then
// drains the server within shutdownTimeout.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
