package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"blog-ingest/cmd/api/router"
	"blog-ingest/cmd/api/services"
	"blog-ingest/config"
	"blog-ingest/db"
	"blog-ingest/ingestion"
	"blog-ingest/internal/logger"
	"blog-ingest/repositories"
	"blog-ingest/storage"
)

// @title           Blog Ingest API
// @version         1.0
// @description     Blog back office API. Inline editor media is uploaded to object storage before posts are saved.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.InitFromEnv("LOG_LEVEL", cfg.Logging.Level)

	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Errorf("failed to initialize media storage: %v", err)
		os.Exit(1)
	}

	extractor, err := ingestion.ExtractorByName(cfg.Ingestion.DefaultExtractor)
	if err != nil {
		logger.Log.Errorf("invalid ingestion.default_extractor: %v", err)
		os.Exit(1)
	}
	pipeline := ingestion.NewPipeline(extractor, store, storage.IngestionConfig(cfg.Storage))

	postRepo := repositories.NewPostRepository(db.Database())
	userRepo := repositories.NewUserRepository(db.Database())

	authSvc, err := services.NewAuthServiceFromEnv(userRepo)
	if err != nil {
		logger.Log.Errorf("failed to initialize auth: %v", err)
		os.Exit(1)
	}

	r := router.New(router.Deps{
		Posts: services.NewPostService(postRepo, pipeline, services.PostServiceOptions{
			WordsPerMinute: cfg.Ingestion.WordsPerMinute,
		}),
		Users: services.NewUserService(userRepo),
		Auth:  authSvc,
		Health: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoWithFields("starting api server", logger.Fields{
			"addr":      cfg.Server.Addr,
			"storage":   cfg.Storage.Driver,
			"extractor": extractor.Name(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("api server error: %v", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Log.Info("received shutdown signal, shutting down api server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("api server shutdown error: %v", err)
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		logger.Log.Errorf("mongo disconnect error: %v", err)
	}
	logger.Log.Info("api server stopped")
}
