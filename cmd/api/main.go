// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/researchhub/internal/admin"
	"github.com/angelamos/researchhub/internal/auth"
	"github.com/angelamos/researchhub/internal/config"
	"github.com/angelamos/researchhub/internal/core"
	"github.com/angelamos/researchhub/internal/health"
	"github.com/angelamos/researchhub/internal/middleware"
	"github.com/angelamos/researchhub/internal/migrate"
	"github.com/angelamos/researchhub/internal/notification"
	"github.com/angelamos/researchhub/internal/policy"
	"github.com/angelamos/researchhub/internal/research"
	"github.com/angelamos/researchhub/internal/server"
	"github.com/angelamos/researchhub/internal/tag"
	"github.com/angelamos/researchhub/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.Bool(
		"generate-keys", false, "generate an ES256 key pair and exit",
	)
	flag.Parse()

	if *generateKeys {
		if err := generateKeyPair(*configPath); err != nil {
			slog.Error("key generation error", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func generateKeyPair(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	return auth.GenerateKeyPair(
		cfg.JWT.PrivateKeyPath,
		cfg.JWT.PublicKeyPath,
	)
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	if cfg.Database.Migrate {
		if migErr := migrate.Up(ctx, cfg.Database.URL); migErr != nil {
			return migErr
		}
		logger.Info("migrations applied")
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	loginLimiter := auth.NewLoginLimiter(
		redis.Client,
		cfg.RateLimit.LoginAttempts,
		cfg.RateLimit.LoginWindow,
	)
	mailer := auth.NewLogMailer(logger)
	authSvc := auth.NewService(
		userRepo,
		jwtManager,
		loginLimiter,
		mailer,
		cfg.App,
		cfg.JWT,
		cfg.Mail,
		logger,
	)
	authHandler := auth.NewHandler(authSvc)

	notificationRepo := notification.NewRepository(db.DB)
	notificationSvc := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationSvc)

	researchRepo := research.NewRepository(db.DB)
	researchSvc := research.NewService(
		researchRepo, db.DB, notificationSvc, logger,
	)
	researchHandler := research.NewHandler(researchSvc)

	tagRepo := tag.NewRepository(db.DB)
	tagSvc := tag.NewService(tagRepo)
	tagHandler := tag.NewHandler(tagSvc)

	healthHandler := health.NewHandler()
	healthHandler.AddChecker("postgres", db)
	healthHandler.AddChecker("redis", redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Stats:      admin.NewStatsRepository(db.DB),
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin
	reviewerOnly := middleware.RequireCapability(policy.CapReviewSubmissions)
	tagManagerOnly := middleware.RequireCapability(policy.CapManageTags)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		researchHandler.RegisterRoutes(r, authenticator, reviewerOnly)
		tagHandler.RegisterRoutes(r, authenticator, tagManagerOnly)
		notificationHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
