package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/HammerMeetNail/barberbook/internal/config"
	"github.com/HammerMeetNail/barberbook/internal/database"
	"github.com/HammerMeetNail/barberbook/internal/handlers"
	"github.com/HammerMeetNail/barberbook/internal/logging"
	"github.com/HammerMeetNail/barberbook/internal/middleware"
	"github.com/HammerMeetNail/barberbook/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})
	}

	logger.Info("Starting BarberBook store...")

	ctx := context.Background()

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	if version, _, err := migrator.Version(); err == nil {
		logger.Info("Migrations completed", map[string]interface{}{"version": version})
	}
	_ = migrator.Close()

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	store := services.NewPgxDB(db.Pool)
	kv := services.NewRedisKV(redisDB.Client)

	oauthProviders := map[services.Provider]services.OAuthProvider{}
	if cfg.OAuth.Google.Enabled {
		googleProvider, err := services.NewOIDCProvider(ctx, services.OIDCProviderConfig{
			Provider:     services.ProviderGoogle,
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
			RedirectURL:  cfg.OAuth.Google.RedirectURL,
			IssuerURL:    cfg.OAuth.Google.IssuerURL,
			Scopes:       cfg.OAuth.Google.Scopes,
		})
		if err != nil {
			return fmt.Errorf("initializing google oidc provider: %w", err)
		}
		oauthProviders[services.ProviderGoogle] = googleProvider
	}

	deps := routerDeps{
		users:        services.NewUserService(store),
		sessions:     services.NewSessionService(kv, cfg.Server.SessionTTL),
		providerAuth: services.NewProviderAuthService(store),
		reviews:      services.NewReviewService(store),
		likes:        services.NewLikeService(store),
		providers:    oauthProviders,
		health:       handlers.NewHealthHandler(db, redisDB),
		writeLimiter: middleware.NewRateLimiter(
			redisDB.Client,
			resolveWriteRateLimit(cfg, logger, os.LookupEnv),
			cfg.RateLimit.Window,
			"ratelimit:writes:",
			middleware.UserOrIPKey,
			true,
		),
		logger: logger,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      newRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

type routerDeps struct {
	users        services.UserServiceInterface
	sessions     services.SessionServiceInterface
	providerAuth services.ProviderAuthServiceInterface
	reviews      services.ReviewServiceInterface
	likes        services.LikeServiceInterface
	providers    map[services.Provider]services.OAuthProvider
	health       *handlers.HealthHandler
	writeLimiter *middleware.RateLimiter
	logger       *logging.Logger
}

func newRouter(d routerDeps) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(d.sessions, d.users)
	authHandler := handlers.NewAuthHandler(d.users, d.sessions)
	providerAuthHandler := handlers.NewProviderAuthHandler(d.providerAuth, d.sessions, d.providers)
	reviewHandler := handlers.NewReviewHandler(d.reviews)
	likeHandler := handlers.NewLikeHandler(d.likes)

	requireAuth := authMiddleware.RequireAuth
	write := func(h http.HandlerFunc) http.Handler {
		var next http.Handler = h
		if d.writeLimiter != nil {
			next = d.writeLimiter.Middleware(next)
		}
		return requireAuth(next)
	}

	mux := http.NewServeMux()

	if d.health != nil {
		mux.HandleFunc("GET /health", d.health.Health)
		mux.HandleFunc("GET /ready", d.health.Ready)
	}

	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))
	mux.HandleFunc("GET /api/auth/{provider}/start", providerAuthHandler.Start)
	mux.HandleFunc("GET /api/auth/{provider}/callback", providerAuthHandler.Callback)

	mux.HandleFunc("GET /api/reviews", reviewHandler.List)
	mux.HandleFunc("GET /api/reviews/count", reviewHandler.Count)
	mux.Handle("POST /api/reviews", write(reviewHandler.Create))
	mux.Handle("PUT /api/reviews/{id}", write(reviewHandler.Update))
	mux.Handle("DELETE /api/reviews/{id}", write(reviewHandler.Delete))

	mux.HandleFunc("GET /api/likes", likeHandler.List)
	mux.Handle("POST /api/likes/{itemId}", write(likeHandler.Add))
	mux.Handle("DELETE /api/likes/{itemId}", write(likeHandler.Remove))

	mux.HandleFunc("GET /api/catalogue", handlers.Catalogue)

	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = middleware.NewRequestLogger(d.logger).Apply(handler)
	return handler
}

// resolveWriteRateLimit loosens the per-user write limit in development
// unless WRITE_RATE_LIMIT pins it.
func resolveWriteRateLimit(cfg *config.Config, logger *logging.Logger, lookupEnv func(string) (string, bool)) int64 {
	limit := cfg.RateLimit.Writes
	if v, ok := lookupEnv("WRITE_RATE_LIMIT"); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			logger.Info("Using write rate limit from env", map[string]interface{}{"limit": parsed})
			return parsed
		}
		logger.Warn("Invalid WRITE_RATE_LIMIT; using default", map[string]interface{}{
			"value": v,
			"limit": limit,
		})
	}
	if cfg.Server.Environment == "development" {
		limit *= 10
		logger.Info("Using development write rate limit", map[string]interface{}{"limit": limit})
	}
	return limit
}
