package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/fitware/internal/client"
	"github.com/claude/fitware/internal/config"
	"github.com/claude/fitware/internal/mcp"
	"github.com/claude/fitware/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Serves MCP over stdio. Two modes: -server points at a remote Fitware
// instance and reads through its REST API; without it the local config's
// database is opened directly.
func main() {
	serverURL := flag.String("server", "", "remote Fitware server URL (omit for local database access)")
	token := flag.String("token", "", "bearer token for remote mode")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitware-mcp", Version)
		return
	}

	// Logs go to stderr; stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewRemoteSource(client.New(*serverURL, client.StaticToken(*token)))
		log.Info("mcp server starting", "mode", "remote", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = mcp.NewLocalSource(db)
		log.Info("mcp server starting", "mode", "local")
	}

	srv := mcp.New(ds, Version, log)
	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
