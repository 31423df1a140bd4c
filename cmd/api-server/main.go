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

	"github.com/gin-gonic/gin"

	"bookwise/database"
	"bookwise/internal/ai"
	"bookwise/internal/cache"
	"bookwise/internal/config"
	"bookwise/internal/http-api/handler"
	"bookwise/internal/http-api/middleware"
	"bookwise/internal/http-api/models"
	"bookwise/internal/http-api/repository"
	"bookwise/internal/http-api/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Health probes ping through pgx; GORM owns the ORM work.
	if err := database.Connect(cfg.DatabaseURL, logger); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	db, err := database.OpenGorm(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open gorm connection", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Author{},
		&models.Book{},
		&models.BookAuthor{},
		&models.UserBook{},
		&models.Recommendation{},
		&models.UserPreferences{},
	); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Redis is optional. A nil cache degrades to no-op pending tracking
	// and no generation lock.
	var recCache *cache.RecommendationCache
	if cfg.RedisAddr != "" {
		recCache, err = cache.NewRecommendationCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, running without recommendation cache", "error", err)
			recCache = nil
		} else {
			defer recCache.Close()
		}
	}

	aiClient := ai.NewClient(ai.ClientConfig{
		BaseURL:     cfg.OpenRouterAPIURL,
		APIKey:      cfg.OpenRouterAPIKey,
		Model:       cfg.OpenRouterModel,
		MaxTokens:   cfg.OpenRouterMaxTokens,
		Temperature: cfg.OpenRouterTemperature,
		SiteURL:     cfg.SiteURL,
		SiteTitle:   cfg.SiteTitle,
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	authorRepo := repository.NewAuthorRepository(db)
	bookRepo := repository.NewBookRepository(db)
	userBookRepo := repository.NewUserBookRepository(db)
	recRepo := repository.NewRecommendationRepository(db)
	prefsRepo := repository.NewPreferencesRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userBookService := service.NewUserBookService(userBookRepo, bookRepo, authorRepo)
	prefsService := service.NewPreferencesService(prefsRepo)
	recService := service.NewRecommendationService(
		recRepo, authorRepo, bookRepo, userBookRepo, prefsRepo,
		aiClient, recCache, logger, cfg.GenerationTimeout,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userBookHandler := handler.NewUserBookHandler(userBookService)
	prefsHandler := handler.NewPreferencesHandler(prefsService)
	recHandler := handler.NewRecommendationHandler(recService)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authHandler.RegisterRoutes(api.Group("/auth"))

	authed := api.Group("/")
	authed.Use(middleware.AuthMiddleware(authService))
	recHandler.RegisterRoutes(authed.Group("/recommendations"))
	userBookHandler.RegisterRoutes(authed.Group("/user-books"))
	prefsHandler.RegisterRoutes(authed.Group("/preferences"))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
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
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
