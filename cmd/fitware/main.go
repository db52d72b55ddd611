package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tailscale.com/tsnet"

	"github.com/claude/fitware/internal/config"
	"github.com/claude/fitware/internal/server"
	"github.com/claude/fitware/internal/storage"
	"github.com/claude/fitware/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	seed := flag.Bool("seed", false, "seed the global exercise catalog")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Fitware starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var store server.Store
	switch cfg.Database.Driver {
	case "memory":
		store = storage.NewMemStore()
		log.Info("using in-memory store", "mode", "dev (no persistence)")
	default:
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")
		store = db
	}

	if *seed {
		if err := seedCatalog(ctx, store, log); err != nil {
			log.Error("catalog seed failed", "error", err)
			os.Exit(1)
		}
	}

	srv := server.New(store, cfg.Auth.JWTSecret, log)
	if cfg.Auth.JWTSecret == "" {
		log.Warn("no jwt secret configured, running in dev mode as user 1")
	}

	// Start server, tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr)
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// seedCatalog inserts the global exercise catalog. Inserts are
// name-deduplicated, so re-running is a no-op.
func seedCatalog(ctx context.Context, store server.Store, log *slog.Logger) error {
	inserted := 0
	for _, def := range workout.DefaultExercises {
		ex, err := workout.NewExercise(def.Name, def.Category, def.MetricType)
		if err != nil {
			return fmt.Errorf("seed %q: %w", def.Name, err)
		}
		ok, err := store.CreateExercise(ctx, ex)
		if err != nil {
			return fmt.Errorf("seed %q: %w", def.Name, err)
		}
		if ok {
			inserted++
		}
	}
	log.Info("exercise catalog seeded", "inserted", inserted, "total", len(workout.DefaultExercises))
	return nil
}
