package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"codearchive/internal/auth"
	"codearchive/internal/cache"
	"codearchive/internal/config"
	"codearchive/internal/domain/services"
	"codearchive/internal/handler"
	"codearchive/internal/middleware"
	"codearchive/internal/repository"
	serviceArchive "codearchive/internal/service/archive"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging
	logger, closeLog, err := cfg.NewLogger("server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Open document store (PostgreSQL or SQLite)
	store, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer store.Close()

	// Result cache: Redis when shared across instances, otherwise in-process
	var resultCache services.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		resultCache = redisCache
	} else {
		memoryCache, err := cache.NewMemoryCache(cfg.CacheMaxEntries, logger)
		if err != nil {
			log.Fatalf("Failed to create memory cache: %v", err)
		}
		resultCache = memoryCache
	}

	// Create services
	searchService := serviceArchive.NewCodeSearchService(
		store.Documents,
		resultCache,
		serviceArchive.SearchOptionsFromConfig(cfg),
		logger,
	)
	indexService := serviceArchive.NewIndexService(store.Documents, searchService, logger)

	// Create handlers
	searchHandler := handler.NewSearchHandler(searchService, logger)
	documentHandler := handler.NewDocumentHandler(indexService, logger)

	logger.Info("services initialized", "backend", store.Backend, "redis", cfg.RedisURL != "")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, searchHandler, documentHandler)

	// Tenant resolution: JWT in normal operation, header in local dev
	var tenantMiddleware func(http.Handler) http.Handler
	if cfg.JWKSURL != "" {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		tenantMiddleware = middleware.AuthMiddleware(jwtVerifier, logger)
	} else {
		tenantMiddleware = middleware.DevTenantMiddleware(logger)
	}

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestID → Recovery → Auth → Routes
	h = tenantMiddleware(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestID(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Tenant-ID", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shut down gracefully on SIGINT/SIGTERM
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-sigCtx.Done()

		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	<-shutdownDone
}
