package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/danangwn/vote-app-backend/internal/config"
	"github.com/danangwn/vote-app-backend/internal/handler"
	"github.com/danangwn/vote-app-backend/internal/middleware"
	"github.com/danangwn/vote-app-backend/internal/repository"
	"github.com/danangwn/vote-app-backend/internal/service"
	"github.com/danangwn/vote-app-backend/pkg/database"
	"github.com/danangwn/vote-app-backend/pkg/logger"
	"github.com/danangwn/vote-app-backend/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db          *database.PostgresDB
	redisClient *redis.Client
	server      *http.Server
	log         *logger.Logger
	mu          sync.Mutex
	closed      bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Stop accepting new requests first
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		}
	}

	if r.db != nil {
		r.db.Close()
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting vote-app-backend")

	// Initialize database connection
	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	// Initialize Redis connection; the app runs without caching when Redis
	// is not configured or unreachable
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to connect to Redis, proceeding without caching")
			redisClient = nil
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	// Initialize repositories and services
	optionRepo := repository.NewOptionRepository(db)
	ballotRepo := repository.NewBallotRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	cacheService := service.NewCacheService(redisClient, log.Logger)
	votingService := service.NewVotingService(optionRepo, ballotRepo, userRepo, cacheService, log.Logger)
	authService := service.NewAuthService(userRepo, tokenRepo, cacheService, cfg.JWTSecret, cfg.JWTExpiry, log.Logger)
	userService := service.NewUserService(userRepo, ballotRepo, log.Logger)

	// Seed the fixed main options; a failure is logged but never blocks
	// startup
	seedCtx, seedCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := votingService.EnsureMainOptions(seedCtx); err != nil {
		log.WithError(err).Warn("Main option seeding incomplete")
	}
	seedCancel()

	// Setup router
	router := setupRouter(cfg, log, db, authService, votingService, userService)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resources := &Resources{
		db:          db,
		redisClient: redisClient,
		server:      server,
		log:         log,
	}

	// Setup graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server listening on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	// Wait for interrupt signal or server error
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}
}

// setupRouter configures and returns the HTTP router
func setupRouter(
	cfg *config.Config,
	log *logger.Logger,
	db *database.PostgresDB,
	authService *service.AuthService,
	votingService *service.VotingService,
	userService *service.UserService,
) *chi.Mux {
	r := chi.NewRouter()

	corsConfig := &middleware.CORSConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(db, log)
	authHandler := handler.NewAuthHandler(authService, log)
	votingHandler := handler.NewVotingHandler(votingService, log)
	userHandler := handler.NewUserHandler(userService, log)

	// Health check (no auth required)
	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(authService, log))
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Everything below requires an authenticated caller
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService, log))

			r.Route("/votes", func(r chi.Router) {
				r.Get("/options/main", votingHandler.ListMainOptions)
				r.Post("/submit", votingHandler.SubmitVote)
				r.Get("/results", votingHandler.GetResults)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Endpoint not found"}`))
	})

	log.Info("Router configured successfully")
	return r
}
