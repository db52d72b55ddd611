package importer

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/fitware/internal/client"
	"github.com/claude/fitware/internal/server"
	"github.com/claude/fitware/internal/storage"
)

func writeHistory(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// TestImportReplay verifies the full replay: sessions land completed with
// their historical dates, unknown exercises are created as customs, and a
// second run over the same file is skipped by the state database.
func TestImportReplay(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.New(storage.NewMemStore(), "", log))
	defer ts.Close()

	dir := t.TempDir()
	writeHistory(t, dir, "2025-03.csv", sampleCSV)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()

	api := client.New(ts.URL, nil)
	imp := New(api, state, log, false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesProcessed != 1 || stats.FilesErrored != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.SessionsCreated != 2 || stats.SetsCreated != 4 {
		t.Errorf("created %d sessions / %d sets, want 2/4", stats.SessionsCreated, stats.SetsCreated)
	}
	if stats.ExercisesCreated != 3 {
		t.Errorf("exercises created = %d, want 3 (empty catalog)", stats.ExercisesCreated)
	}

	sessions, err := api.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions on server = %d, want 2", len(sessions))
	}
	// Newest first: Leg Day (03-03) before Push Day (03-01).
	if sessions[0].Title != "Leg Day" || sessions[1].Title != "Push Day" {
		t.Errorf("order = %q, %q", sessions[0].Title, sessions[1].Title)
	}
	for _, s := range sessions {
		if !s.IsCompleted {
			t.Errorf("session %q not completed", s.Title)
		}
	}
	if sessions[1].TotalVolume != 1360 {
		t.Errorf("push day volume = %v, want 1360", sessions[1].TotalVolume)
	}
	if sessions[1].DurationMinutes != 45 {
		t.Errorf("push day duration = %d, want 45", sessions[1].DurationMinutes)
	}

	// Second run: nothing new.
	imp2 := New(api, state, log, false)
	stats, err = imp2.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if stats.FilesSkipped != 1 || stats.SessionsCreated != 0 {
		t.Errorf("second run stats = %+v, want 1 skipped, 0 created", stats)
	}
}

// TestImportDryRun verifies a dry run counts without touching the server
// or the state database.
func TestImportDryRun(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.New(storage.NewMemStore(), "", log))
	defer ts.Close()

	dir := t.TempDir()
	writeHistory(t, dir, "2025-03.csv", sampleCSV)

	api := client.New(ts.URL, nil)
	imp := New(api, nil, log, true)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsCreated != 2 || stats.SetsCreated != 4 {
		t.Errorf("dry run stats = %+v, want 2 sessions / 4 sets counted", stats)
	}

	sessions, err := api.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("server has %d sessions after dry run, want 0", len(sessions))
	}
}
