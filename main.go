package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"formatrack_backend/config"
	"formatrack_backend/db"
	"formatrack_backend/middleware"
	"formatrack_backend/receipt"
	"formatrack_backend/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found") // Non-fatal in production
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	dbCfg := cfg.DB()
	database, err := db.Open(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer database.Close()

	// Initialize database schema
	if err := db.Migrate(dbCfg.DSN()); err != nil {
		return err
	}

	st := db.NewStore(database, cfg.DBQueryTimeout)
	created, err := st.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, middleware.HashPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Warn("default administrator created, change its password", "username", cfg.AdminUsername)
	}

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger))

	// Setup CORS for the admin SPA
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
		middleware.RequestIDHeader,
	}
	corsConfig.AllowMethods = []string{
		"GET",
		"POST",
		"PUT",
		"DELETE",
	}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupRoutes(r, routes.Options{
		Store:     st,
		Tokens:    middleware.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL).WithClock(now),
		Receipts:  receipt.NewPDFRenderer("FormaTrack - Centre de Formation", loc),
		Now:       now,
		StaticDir: cfg.StaticDir,
	})

	// Run server
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal to gracefully shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
