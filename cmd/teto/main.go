package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teto/internal/auth"
	"teto/internal/backend"
	"teto/internal/config"
	"teto/internal/extract"
	apphttp "teto/internal/http"
	"teto/internal/log"
	"teto/internal/services"
	"teto/internal/snapshot"
)

func main() {
	logger := log.Setup(log.ComponentApp)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	hub := snapshot.NewHub(result.Store)

	// The event stream is optional: without a broker, writes still land and
	// the sheet export simply never runs.
	var ledger *services.Ledger
	if events := factory.CreateEventClient(backendCfg); events != nil {
		defer events.Close()
		ledger = services.NewLedger(result.Store, hub, events)
	} else {
		ledger = services.NewLedger(result.Store, hub, nil)
	}

	authSvc := auth.NewService(result.Store, []byte(cfg.JWTSecret))
	extractor := extract.NewOCRExtractor(extract.NewParser(), cfg.OCRLanguage)

	srv := apphttp.NewServer(cfg.Addr(), ledger, authSvc, extractor)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 0 // the event stream holds connections open
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting teto server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
