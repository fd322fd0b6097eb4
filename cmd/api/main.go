package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/export"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	exportHandler "github.com/MrJamesThe3rd/tally/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tally/internal/http/middleware"
	txHandler "github.com/MrJamesThe3rd/tally/internal/http/transaction"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/metrics"
	"github.com/MrJamesThe3rd/tally/internal/session"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	txStore "github.com/MrJamesThe3rd/tally/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		version, err := database.Migrate(db)
		if err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		slog.Info("database schema ready", "version", version)
	}

	sessions := session.NewResolver(
		session.WithCookieName(cfg.Session.CookieName),
		session.WithMaxAge(cfg.Session.MaxAge),
		session.WithSecure(cfg.Session.Secure),
		session.WithOnMint(metrics.RecordSessionMinted),
	)

	var (
		transactionService = transaction.NewService(txStore.New(db))
		importService      = importer.NewService()
		exportService      = export.NewService(transactionService)
	)

	var (
		transactionH = txHandler.NewHandler(transactionService, sessions)
		importH      = importHandler.NewHandler(importService, transactionService, sessions)
		exportH      = exportHandler.NewHandler(exportService, sessions)
	)

	stop := make(chan struct{})
	defer close(stop)

	opts := tallyHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Health:         db.PingContext,
	}

	if cfg.RateLimit.RPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, middleware.ClientIP)
		go limiter.RunCleanup(time.Minute, 10*time.Minute, stop)

		opts.RateLimiter = limiter
	}

	router := tallyHttp.New(opts, transactionH, importH, exportH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
