package workout

import (
	"testing"
	"time"

	"github.com/claude/fitware/internal/models"
)

// TestComputeSessionStats walks through the canonical volume example:
// three sets of bench at 60kg x 8 is 1440kg, an empty exercise still
// counts toward the exercise total, and zero-weight sets contribute reps
// but no volume.
func TestComputeSessionStats(t *testing.T) {
	session, _ := NewSession("Push Day", "", time.Now())
	bench := testExercise(t, "Bench Press (Barbell)")
	pushup := testExercise(t, "Push Up")

	AddSet(session, bench, 60, 8, nil)
	AddSet(session, bench, 60, 8, nil)
	AddSet(session, bench, 60, 8, nil)
	AddSet(session, pushup, 0, 20, nil)

	// An added-then-empty container: delete its only set.
	dips := testExercise(t, "Dips")
	set, _ := AddSet(session, dips, 0, 12, nil)
	DeleteSet(session, set.ID)

	stats := ComputeSessionStats(session)
	if stats.TotalExercises != 3 {
		t.Errorf("total_exercises = %d, want 3 (empty container still counts)", stats.TotalExercises)
	}
	if stats.TotalSets != 4 {
		t.Errorf("total_sets = %d, want 4", stats.TotalSets)
	}
	if stats.TotalReps != 44 {
		t.Errorf("total_reps = %d, want 44", stats.TotalReps)
	}
	if stats.TotalVolume != 1440 {
		t.Errorf("total_volume = %v, want 1440", stats.TotalVolume)
	}
}

// TestComputeAccountStats verifies the split rollup: workout count and
// duration come from completed sessions only, sets and volume from every
// session including in-progress ones.
func TestComputeAccountStats(t *testing.T) {
	bench := testExercise(t, "Bench Press (Barbell)")

	done, _ := NewSession("Done", "", time.Now())
	AddSet(done, bench, 100, 5, nil)
	AddSet(done, bench, 100, 5, nil)
	if err := Complete(done, 60, "good", ""); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	open, _ := NewSession("In Progress", "", time.Now())
	open.DurationMinutes = 30 // not completed, must not count
	AddSet(open, bench, 80, 10, nil)

	stats := ComputeAccountStats([]models.WorkoutSession{*done, *open})
	if stats.TotalWorkouts != 1 {
		t.Errorf("total_workouts = %d, want 1", stats.TotalWorkouts)
	}
	if stats.TotalDurationMinutes != 60 {
		t.Errorf("total_duration_minutes = %d, want 60", stats.TotalDurationMinutes)
	}
	if stats.TotalSets != 3 {
		t.Errorf("total_sets = %d, want 3", stats.TotalSets)
	}
	if stats.TotalVolumeKg != 1800 {
		t.Errorf("total_volume_kg = %v, want 1800", stats.TotalVolumeKg)
	}
}

// TestComputeAccountStatsEmpty verifies the zero-value rollup for a user
// with no sessions.
func TestComputeAccountStatsEmpty(t *testing.T) {
	stats := ComputeAccountStats(nil)
	if stats.TotalWorkouts != 0 || stats.TotalSets != 0 || stats.TotalVolumeKg != 0 {
		t.Errorf("empty rollup = %+v, want zeros", stats)
	}
}
