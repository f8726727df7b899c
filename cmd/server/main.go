package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ar-viewer-backend/internal/auth"
	"ar-viewer-backend/internal/config"
	"ar-viewer-backend/internal/conversion"
	"ar-viewer-backend/internal/handlers"
	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/services"
	"ar-viewer-backend/internal/storage"
	"ar-viewer-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	files, err := storage.NewFileStore(cfg.UploadsDir, logg)
	if err != nil {
		logg.Fatal("failed to initialize file store", "error", err)
	}
	converter := conversion.NewConverter(files)

	users := store.NewUserStore()
	if _, err := users.Create(cfg.AdminUsername, cfg.AdminPassword, true); err != nil {
		logg.Fatal("failed to seed admin user", "error", err)
	}

	catalog := store.NewCatalogStore(files, logg)
	if err := catalog.LoadFromDisk(); err != nil {
		logg.Fatal("failed to load catalog from disk", "error", err)
	}
	sessions := store.NewSessionStore()

	issuer := auth.NewTokenIssuer(cfg.SessionSecret, cfg.TokenTTL)

	authHandler := handlers.NewAuthHandler(users, issuer, logg)
	uploadHandler := handlers.NewUploadHandler(sessions, files, converter, cfg.MaxUploadBytes, logg)
	publicHandler := handlers.NewPublicModelsHandler(catalog)
	adminHandler := handlers.NewAdminModelsHandler(catalog, files, cfg.MaxUploadBytes, logg)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
	}))
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	// The uploads tree is served verbatim; visibility is enforced on the
	// metadata endpoints only.
	router.Static(storage.PublicMount, files.Root())

	handlers.RegisterRoutes(router, handlers.RouterDeps{
		Auth:   authHandler,
		Upload: uploadHandler,
		Public: publicHandler,
		Admin:  adminHandler,
		Issuer: issuer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := services.NewSweeper(sessions, files, cfg.TempMaxAge, cfg.CleanupInterval, logg)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logg.Info("server starting", "port", cfg.Port, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", "error", err)
	}
}
