// main is the entry point of the tax API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the record store (CSV table or embedded SQLite)
//  4. Register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/tax-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/tax-api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirulhm/tax-api/internal/config"
	"github.com/amirulhm/tax-api/internal/http/handlers/taxpayer"
	"github.com/amirulhm/tax-api/internal/storage"
	"github.com/amirulhm/tax-api/internal/storage/csvfile"
	"github.com/amirulhm/tax-api/internal/storage/sqlite"
)

func main() {
	// MustLoad reads the YAML config and exits if anything is wrong.
	// If this returns, config is guaranteed valid.
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting tax-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// The rest of the code only knows the storage.Storage interface —
	// the backend is decided here and nowhere else.
	var store storage.Storage
	switch cfg.StorageBackend {
	case "sqlite":
		db, err := sqlite.New(cfg.StoragePath)
		if err != nil {
			log.Error("failed to initialise storage",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = db
	default: // "csv"
		store = csvfile.New(cfg.StoragePath)
	}

	log.Info("storage initialised",
		slog.String("backend", cfg.StorageBackend),
		slog.String("path", cfg.StoragePath))

	// Route table:
	//   POST /api/taxpayers            → register + first assessment
	//   GET  /api/taxpayers            → list all tax records
	//   GET  /api/taxpayers/{id}       → get one tax record
	//   PUT  /api/taxpayers/{id}       → recalculate (full refiling)
	//   POST /api/taxpayers/{id}/login → verify password, return record
	router := http.NewServeMux()

	router.HandleFunc("POST /api/taxpayers", taxpayer.Register(store))
	router.HandleFunc("GET /api/taxpayers", taxpayer.GetList(store))
	router.HandleFunc("GET /api/taxpayers/{id}", taxpayer.GetByID(store))
	router.HandleFunc("PUT /api/taxpayers/{id}", taxpayer.Recalculate(store))
	router.HandleFunc("POST /api/taxpayers/{id}/login", taxpayer.Login(store))

	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		// Timeouts guard against slow-client connections pinning the
		// server; record operations themselves are local file I/O.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ListenAndServe blocks, so it runs in its own goroutine and the
	// main goroutine waits for the shutdown signal below.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// http.ErrServerClosed is the expected result of Shutdown().
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// Give in-flight requests five seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
