package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/fitware/internal/client"
	"github.com/claude/fitware/internal/importer"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "Fitware server URL (e.g. https://fitware.tail1234.ts.net)")
	token := flag.String("token", "", "bearer token (empty for a dev-mode server)")
	historyPath := flag.String("path", "", "path to directory of history CSV files (required)")
	stateDir := flag.String("state-dir", "", "state database directory (default ~/.fitware-import)")
	dryRun := flag.Bool("dry-run", false, "parse and count without sending to the server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitware-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *historyPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitware-import -server <URL> -path <history dir> [-token T] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	info, err := os.Stat(*historyPath)
	if err != nil || !info.IsDir() {
		log.Error("history path does not exist or is not a directory", "path", *historyPath)
		os.Exit(1)
	}

	var state *importer.StateDB
	if !*dryRun {
		dir := *stateDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Error("failed to get home directory", "error", err)
				os.Exit(1)
			}
			dir = filepath.Join(home, ".fitware-import")
		}
		state, err = importer.OpenStateDB(dir)
		if err != nil {
			log.Error("failed to open state db", "error", err)
			os.Exit(1)
		}
		defer state.Close()
	} else {
		log.Info("DRY RUN mode, nothing will be sent to the server")
	}

	api := client.New(*serverURL, client.StaticToken(*token))
	imp := importer.New(api, state, log, *dryRun)

	stats, err := imp.Import(context.Background(), *historyPath)
	printStats(log, stats)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	if stats.FilesErrored > 0 {
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_created", stats.SessionsCreated,
		"sets_created", stats.SetsCreated,
		"exercises_created", stats.ExercisesCreated,
	)
}
