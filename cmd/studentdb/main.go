// main is the entry point of the studentdb service.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the record store (flat file by default, SQLite optional)
//  4. Seed the sample records if the store is empty and seeding is on
//  5. Register all HTTP routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block until an OS signal (Ctrl+C / kill) arrives
//  8. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/studentdb --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/studentdb
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anikitin/studentdb/internal/config"
	"github.com/anikitin/studentdb/internal/http/handlers/student"
	"github.com/anikitin/studentdb/internal/storage"
	"github.com/anikitin/studentdb/internal/storage/flatfile"
	"github.com/anikitin/studentdb/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)

	log.Info("starting studentdb",
		slog.String("env", cfg.Env),
		slog.String("driver", cfg.Storage.Driver),
	)

	// ── 3. Open the Record Store ──────────────────────────────────────────
	// The rest of the code only knows the storage.Storage interface;
	// the driver choice is confined to this switch.
	st, err := openStorage(cfg, log)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("storage initialised",
		slog.String("path", cfg.Storage.Path))

	// ── 4. Seed Defaults ──────────────────────────────────────────────────
	// Seeding is an explicit startup decision, not a store side effect.
	// Only the flat-file driver carries sample data; an empty SQLite
	// database stays empty.
	if cfg.SeedDefaults {
		if err := seedIfEmpty(st, log); err != nil {
			log.Error("failed to seed defaults",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// ── 5. Register HTTP Routes ───────────────────────────────────────────
	// Handler factories receive the storage once at startup and return
	// the actual per-request handlers.
	//
	// The literal /search and /report routes must be registered before
	// Go 1.22's ServeMux would otherwise swallow them into {id}.
	router := http.NewServeMux()

	router.HandleFunc("POST /api/students", student.New(st))
	router.HandleFunc("GET /api/students", student.GetList(st))
	router.HandleFunc("GET /api/students/search", student.Search(st))
	router.HandleFunc("GET /api/students/report", student.Report(st, cfg.ReportPath))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(st))

	// ── 6. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 7. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks, so it runs in its own goroutine and the
	// main goroutine waits for the shutdown signal below.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 8. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// openStorage constructs the backend named by cfg.Storage.Driver.
func openStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Storage.Path)
	default:
		return flatfile.New(cfg.Storage.Path, log)
	}
}

// seedIfEmpty installs the sample records when the store loaded empty.
// Seeding only applies to the flat-file driver.
func seedIfEmpty(st storage.Storage, log *slog.Logger) error {
	ff, ok := st.(*flatfile.Store)
	if !ok {
		return nil
	}

	n, err := ff.Count()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if err := ff.SeedDefaults(); err != nil {
		return err
	}

	n, _ = ff.Count()
	log.Info("seeded default records", slog.Int64("count", n))
	return nil
}

// setupLogger returns a *slog.Logger configured for the given
// environment.
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
