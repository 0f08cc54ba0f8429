package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/rewards_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/core/services"
	"github.com/SscSPs/rewards_ledger/internal/handlers"
	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/SscSPs/rewards_ledger/internal/platform/config"
	"github.com/SscSPs/rewards_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/rewards_ledger/internal/repositories/graph"
	"github.com/SscSPs/rewards_ledger/internal/repositories/memory"
	rediscache "github.com/SscSPs/rewards_ledger/internal/repositories/redis"
	"github.com/SscSPs/rewards_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Rewards Ledger API
// @version 1.0
// @description Account balances, earning events and multi-level referral commissions.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger = newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var containerOpts services.ContainerOptions

	// --- Referral graph projection ---
	var graphLinks *graph.ReferralLinkRepository
	if cfg.GraphURI != "" {
		client, err := graph.NewNeo4jClient(ctx, graph.Options{
			URI:            cfg.GraphURI,
			Database:       cfg.GraphDatabase,
			Username:       cfg.GraphUsername,
			Password:       cfg.GraphPassword,
			MaxConnections: cfg.GraphMaxConnections,
		})
		if err != nil {
			return fmt.Errorf("connect to graph database: %w", err)
		}
		defer func() {
			if cerr := client.Close(context.Background()); cerr != nil {
				logger.Error("Error closing graph client", slog.String("error", cerr.Error()))
			}
		}()
		graphLinks = graph.NewReferralLinkRepository(client)
		containerOpts.ReferralLinkWriter = graphLinks
		logger.Info("Referral graph projection enabled", slog.String("uri", cfg.GraphURI))
	}

	// --- Storage ---
	repos, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()
	if graphLinks != nil {
		repos.ReferralLinks = graph.NewProjectedReferralLinks(graphLinks, repos.ReferralLinks, logger)
	}

	// --- Redis: rate limit counters and schedule notifications ---
	var redisClient *goredis.Client
	var notifier *rediscache.ScheduleNotifier
	if cfg.RedisAddr != "" {
		redisClient, err = rediscache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.Error("Error closing redis client", slog.String("error", cerr.Error()))
			}
		}()
		notifier = rediscache.NewScheduleNotifier(redisClient, rediscache.DefaultScheduleChannel, logger)
		containerOpts.SchedulePublisher = notifier
	}

	rateLimiter, err := middleware.NewLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}

	container := services.NewServiceContainer(services.LedgerSettingsFromConfig(cfg), repos, containerOpts)
	if _, err := container.Schedule.Snapshot(ctx); err != nil {
		logger.Warn("Commission schedule not loaded at startup", slog.String("error", err.Error()))
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, metrics, CORS, rate limiting)
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.Metrics(),
		cors.New(corsConfig(cfg)),
		middleware.RateLimit(rateLimiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	if notifier != nil {
		g.Go(func() error {
			return notifier.Listen(gctx, reloadSchedule(container.Schedule, logger))
		})
	}
	return g.Wait()
}

// openStorage connects the configured ledger store.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage; balances are lost on restart")
		return memory.NewStore().Provider(), func() {}, nil
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	repos, err := pgsql.NewRepositoryProvider(dbPool)
	if err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}
	return repos, func() { database.ClosePgxPool(dbPool) }, nil
}

func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
	// Open a temporary standard sql.DB connection for migrations
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres driver instance for migrations: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		return fmt.Errorf("close migrations: source=%v database=%v", sourceErr, dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return corsCfg
}

// reloadSchedule refreshes the local snapshot when another replica stores a newer version.
func reloadSchedule(schedule portssvc.CommissionScheduleReaderSvc, logger *slog.Logger) func(context.Context, int64) {
	return func(ctx context.Context, version int64) {
		if current, err := schedule.Snapshot(ctx); err == nil && current.Version >= version {
			return
		}
		snapshot, err := schedule.Reload(ctx)
		if err != nil {
			logger.Error("Failed to reload commission schedule", slog.Int64("announced_version", version), slog.String("error", err.Error()))
			return
		}
		logger.Info("Commission schedule reloaded", slog.Int64("version", snapshot.Version))
	}
}
