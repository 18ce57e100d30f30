package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/orgvault/internal/handler"
	"github.com/yourorg/orgvault/internal/infrastructure/logger"
	"github.com/yourorg/orgvault/internal/infrastructure/mongodb"
	"github.com/yourorg/orgvault/internal/infrastructure/redis"
	"github.com/yourorg/orgvault/internal/observability/metrics"
	"github.com/yourorg/orgvault/internal/observability/tracing"
	"github.com/yourorg/orgvault/internal/repository"
	"github.com/yourorg/orgvault/internal/security/audit"
	"github.com/yourorg/orgvault/internal/security/auth"
	"github.com/yourorg/orgvault/internal/security/middleware"
	"github.com/yourorg/orgvault/internal/security/password"
	"github.com/yourorg/orgvault/internal/security/ratelimit"
	"github.com/yourorg/orgvault/internal/service"
	"github.com/yourorg/orgvault/pkg/config"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting orgvault server", slog.String("environment", cfg.Environment))

	ctx := context.Background()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, "orgvault", cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	// 4. Initialize the document store client
	store, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MasterDB, log)
	if err != nil {
		log.Error("failed to connect to document store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("store close error", slog.String("error", err.Error()))
		}
	}()

	// 5. Initialize Redis for the login attempt limiter
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Initialize repositories
	directory := repository.NewMongoDirectory(store.Master(), log)
	partitions := repository.NewMongoPartitionStore(store.Master(), log)

	// Concurrent creates rely on these unique indexes, not on pre-checks.
	if err := directory.EnsureIndexes(ctx); err != nil {
		log.Error("failed to ensure directory indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Initialize services
	codec := password.NewCodec(cfg.BcryptCost)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpire)
	limiter := ratelimit.NewLimiter(redisClient, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow, log)
	auditLogger := audit.NewLogger(log)

	orgService := service.NewOrgService(directory, partitions, codec, auditLogger, log)
	authService := service.NewAuthService(directory, codec, tokenManager, limiter, log)

	// 8. Initialize handlers and routes
	orgHandler := handler.NewOrgHandler(orgService, log)
	loginHandler := handler.NewLoginHandler(authService, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/org", orgHandler.Create)
	mux.HandleFunc("GET /api/org", orgHandler.Get)
	mux.HandleFunc("PUT /api/org", orgHandler.Update)
	mux.HandleFunc("DELETE /api/org", orgHandler.Delete)
	mux.Handle("POST /api/login", loginHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handler.Healthz)
	mux.HandleFunc("/readyz", handler.Readyz(store))

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> CORS -> routes
	rootHandler := middleware.RequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(authService, log)(handlerWithCORS),
		),
		log,
	)

	// 9. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "orgvault"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.String("master_db", cfg.MasterDB),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
