package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mrjordantanner/trnkt-backend/internal/auth"
	"github.com/mrjordantanner/trnkt-backend/internal/config"
	"github.com/mrjordantanner/trnkt-backend/internal/db"
	"github.com/mrjordantanner/trnkt-backend/internal/favorites"
	"github.com/mrjordantanner/trnkt-backend/internal/middleware"
	"github.com/mrjordantanner/trnkt-backend/internal/opensea"
)

func main() {
	// Load .env (absent in production)
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.JWTKey == "" {
		slog.Error("JWT_KEY is not configured")
		os.Exit(1)
	}
	if cfg.OpenseaAPIKey == "" {
		slog.Error("OPENSEA_API_KEY is not configured")
		os.Exit(1)
	}

	// Structured logger: text in dev, JSON in prod
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	// DynamoDB
	dynamo := db.Connect(cfg)

	// Favorites engine: store behind cache, repository on top
	favStore := favorites.NewDynamoStore(dynamo, cfg.FavoritesTable)
	favCache := favorites.NewCache(cfg.CacheMaxEntries)
	favRepo := favorites.NewRepository(favStore, favCache)

	userStore := auth.NewUserStore(dynamo, cfg.UsersTable)
	openseaClient := opensea.NewClient(cfg.OpenseaAPIKey)

	// Gin setup
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.GlobalRateLimit())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400 * time.Second,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	authMiddleware := middleware.NewAuth(cfg)

	auth.NewHandler(cfg, userStore, favRepo).RegisterRoutes(r, authMiddleware)
	favorites.NewHandler(favRepo).RegisterRoutes(r, authMiddleware)
	opensea.NewHandler(openseaClient).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutdown signal received, draining connections...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	slog.Info("server stopped cleanly")
}
