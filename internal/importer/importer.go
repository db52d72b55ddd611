// Package importer replays workout history exports (CSV) into a Fitware
// server through the REST API. Each history row becomes a logged set; a
// finished replay completes the session so it counts toward account stats.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/client"
	"github.com/claude/fitware/internal/models"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsCreated  int
	SetsCreated      int
	ExercisesCreated int
}

// Importer reads history CSVs from a directory and replays them against
// the API.
type Importer struct {
	api    *client.Client
	state  *StateDB
	log    *slog.Logger
	dryRun bool
	stats  Stats

	// catalog caches lowercased exercise name -> ID for the run.
	catalog map[string]uuid.UUID
}

// New creates a new Importer. A nil state disables dedup tracking, which
// dry runs use.
func New(api *client.Client, state *StateDB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{api: api, state: state, log: log, dryRun: dryRun}
}

// Import replays every .csv file under dir, skipping files the state
// database has already seen unchanged.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &imp.stats, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := imp.importFile(ctx, name, path); err != nil {
			imp.stats.FilesErrored++
			imp.log.Error("import failed", "file", name, "error", err)
			continue
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return err
	}

	if imp.state != nil {
		done, err := imp.state.IsImported(name, info.Size(), hash)
		if err != nil {
			return fmt.Errorf("checking state: %w", err)
		}
		if done {
			imp.stats.FilesSkipped++
			imp.log.Debug("already imported", "file", name)
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	sessions, err := ParseHistoryCSV(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	for i := range sessions {
		if err := imp.replaySession(ctx, &sessions[i]); err != nil {
			return fmt.Errorf("session %q (%s): %w",
				sessions[i].Title, sessions[i].Date.Format("2006-01-02"), err)
		}
	}

	imp.stats.FilesProcessed++
	imp.log.Info("imported file", "file", name, "sessions", len(sessions))

	if imp.state != nil && !imp.dryRun {
		if err := imp.state.MarkImported(name, info.Size(), hash); err != nil {
			return fmt.Errorf("recording state: %w", err)
		}
	}
	return nil
}

// replaySession creates the session, logs every set, and completes it.
func (imp *Importer) replaySession(ctx context.Context, hs *HistorySession) error {
	if imp.dryRun {
		imp.stats.SessionsCreated++
		imp.stats.SetsCreated += len(hs.Sets)
		return nil
	}

	date := hs.Date
	session, err := imp.api.CreateSession(ctx, hs.Title, hs.Notes, &date)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	imp.stats.SessionsCreated++

	for _, set := range hs.Sets {
		exerciseID, err := imp.resolveExercise(ctx, set.Exercise)
		if err != nil {
			return err
		}
		if _, err := imp.api.AddSet(ctx, session.ID, exerciseID, set.WeightKg, set.Reps, set.RPE); err != nil {
			return fmt.Errorf("adding set for %q: %w", set.Exercise, err)
		}
		imp.stats.SetsCreated++
	}

	if _, err := imp.api.Complete(ctx, session.ID, hs.DurationMinutes, hs.Mood, hs.Notes); err != nil {
		return fmt.Errorf("completing session: %w", err)
	}
	return nil
}

// resolveExercise maps a history exercise name to a catalog ID, creating
// a custom strength exercise when the name is unknown.
func (imp *Importer) resolveExercise(ctx context.Context, name string) (uuid.UUID, error) {
	if imp.catalog == nil {
		exercises, err := imp.api.ListExercises(ctx, "")
		if err != nil {
			return uuid.Nil, fmt.Errorf("loading catalog: %w", err)
		}
		imp.catalog = make(map[string]uuid.UUID, len(exercises))
		for _, ex := range exercises {
			imp.catalog[strings.ToLower(ex.Name)] = ex.ID
		}
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := imp.catalog[key]; ok {
		return id, nil
	}

	ex, err := imp.api.CreateExercise(ctx, name, models.CategoryStrength, models.MetricWeight)
	if err != nil {
		return uuid.Nil, fmt.Errorf("creating exercise %q: %w", name, err)
	}
	imp.catalog[key] = ex.ID
	imp.stats.ExercisesCreated++
	imp.log.Info("created custom exercise", "name", name)
	return ex.ID, nil
}
