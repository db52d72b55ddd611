package workout

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/models"
)

func testExercise(t *testing.T, name string) *models.Exercise {
	t.Helper()
	ex, err := NewExercise(name, models.CategoryStrength, models.MetricWeight)
	if err != nil {
		t.Fatalf("NewExercise(%q): %v", name, err)
	}
	return ex
}

func intPtr(v int) *int { return &v }

// TestAddSetCreatesContainer verifies that logging a set against an
// exercise the session has no container for creates one at the end of the
// ordering, and that set numbers count up per exercise.
func TestAddSetCreatesContainer(t *testing.T) {
	session, err := NewSession("Push Day", "", time.Now())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	bench := testExercise(t, "Bench Press (Barbell)")
	squat := testExercise(t, "Squat (Barbell)")

	set, err := AddSet(session, bench, 60, 8, nil)
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if set.SetNumber != 1 {
		t.Errorf("first set number = %d, want 1", set.SetNumber)
	}
	if len(session.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(session.Exercises))
	}
	if session.Exercises[0].Order != 1 {
		t.Errorf("first container order = %d, want 1", session.Exercises[0].Order)
	}

	set, err = AddSet(session, bench, 60, 8, intPtr(7))
	if err != nil {
		t.Fatalf("AddSet second: %v", err)
	}
	if set.SetNumber != 2 {
		t.Errorf("second set number = %d, want 2", set.SetNumber)
	}
	if len(session.Exercises) != 1 {
		t.Errorf("exercises after same-exercise set = %d, want 1", len(session.Exercises))
	}

	if _, err = AddSet(session, squat, 100, 5, nil); err != nil {
		t.Fatalf("AddSet squat: %v", err)
	}
	if len(session.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(session.Exercises))
	}
	if session.Exercises[1].Order != 2 {
		t.Errorf("second container order = %d, want 2", session.Exercises[1].Order)
	}
	if session.Exercises[1].Sets[0].SetNumber != 1 {
		t.Errorf("squat set number = %d, want 1 (numbering is per exercise)",
			session.Exercises[1].Sets[0].SetNumber)
	}
}

// TestAddSetValidation verifies the field ranges: non-negative weight and
// reps, RPE within 0..10 when present.
func TestAddSetValidation(t *testing.T) {
	session, _ := NewSession("Legs", "", time.Now())
	ex := testExercise(t, "Leg Press")

	cases := []struct {
		name   string
		weight float64
		reps   int
		rpe    *int
	}{
		{"negative weight", -1, 5, nil},
		{"negative reps", 50, -1, nil},
		{"rpe too high", 50, 5, intPtr(11)},
		{"rpe negative", 50, 5, intPtr(-1)},
	}
	for _, tc := range cases {
		if _, err := AddSet(session, ex, tc.weight, tc.reps, tc.rpe); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}

	// Zero weight and zero reps are legal (bodyweight work, logging form).
	if _, err := AddSet(session, ex, 0, 0, intPtr(0)); err != nil {
		t.Errorf("zero values: %v, want nil", err)
	}
}

// TestDeleteSetKeepsNumbers verifies that deleting a middle set leaves the
// survivors' numbers untouched and that the next added set continues from
// the present count.
func TestDeleteSetKeepsNumbers(t *testing.T) {
	session, _ := NewSession("Push Day", "", time.Now())
	ex := testExercise(t, "Overhead Press")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		set, err := AddSet(session, ex, 40, 10, nil)
		if err != nil {
			t.Fatalf("AddSet %d: %v", i, err)
		}
		ids = append(ids, set.ID)
	}

	if err := DeleteSet(session, ids[1]); err != nil {
		t.Fatalf("DeleteSet: %v", err)
	}

	sets := session.Exercises[0].Sets
	if len(sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(sets))
	}
	if sets[0].SetNumber != 1 || sets[1].SetNumber != 3 {
		t.Errorf("surviving numbers = %d,%d, want 1,3", sets[0].SetNumber, sets[1].SetNumber)
	}

	// Count of present sets is 2, so the next set gets number 3 again.
	set, err := AddSet(session, ex, 40, 10, nil)
	if err != nil {
		t.Fatalf("AddSet after delete: %v", err)
	}
	if set.SetNumber != 3 {
		t.Errorf("new set number = %d, want 3", set.SetNumber)
	}
}

// TestDeleteSetUnknown verifies that a missing set ID is reported as not
// found.
func TestDeleteSetUnknown(t *testing.T) {
	session, _ := NewSession("Push Day", "", time.Now())
	if err := DeleteSet(session, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestUpdateSetPartial verifies that nil patch fields leave values alone
// and that updates re-validate the merged result.
func TestUpdateSetPartial(t *testing.T) {
	session, _ := NewSession("Pull Day", "", time.Now())
	ex := testExercise(t, "Bent Over Row (Barbell)")
	set, _ := AddSet(session, ex, 70, 8, intPtr(8))

	w := 75.0
	if err := UpdateSet(session, set.ID, SetPatch{WeightKg: &w}); err != nil {
		t.Fatalf("UpdateSet: %v", err)
	}
	got := session.Exercises[0].Sets[0]
	if got.WeightKg != 75 {
		t.Errorf("weight = %v, want 75", got.WeightKg)
	}
	if got.Reps != 8 {
		t.Errorf("reps = %d, want 8 (untouched)", got.Reps)
	}
	if got.RPE == nil || *got.RPE != 8 {
		t.Errorf("rpe = %v, want 8 (untouched)", got.RPE)
	}

	bad := -5
	if err := UpdateSet(session, set.ID, SetPatch{Reps: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative reps: err = %v, want ErrValidation", err)
	}
	if session.Exercises[0].Sets[0].Reps != 8 {
		t.Errorf("reps after rejected patch = %d, want 8", session.Exercises[0].Sets[0].Reps)
	}
}

// TestDeleteExerciseCascades verifies that removing a session exercise
// takes all its sets with it and leaves other exercises alone.
func TestDeleteExerciseCascades(t *testing.T) {
	session, _ := NewSession("Full Body", "", time.Now())
	bench := testExercise(t, "Bench Press (Barbell)")
	squat := testExercise(t, "Squat (Barbell)")

	AddSet(session, bench, 60, 8, nil)
	AddSet(session, bench, 60, 8, nil)
	AddSet(session, squat, 100, 5, nil)

	removed, err := DeleteExercise(session, session.Exercises[0].ID)
	if err != nil {
		t.Fatalf("DeleteExercise: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed sets = %d, want 2", removed)
	}
	if len(session.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(session.Exercises))
	}
	if session.Exercises[0].ExerciseName != "Squat (Barbell)" {
		t.Errorf("surviving exercise = %q, want squat", session.Exercises[0].ExerciseName)
	}

	stats := ComputeSessionStats(session)
	if stats.TotalSets != 1 {
		t.Errorf("total sets after cascade = %d, want 1", stats.TotalSets)
	}
}

// TestCompleteLocksSession verifies the one-way completion transition:
// after complete, every mutation including a second complete fails with
// ErrSessionLocked, and reads still work.
func TestCompleteLocksSession(t *testing.T) {
	session, _ := NewSession("Push Day", "", time.Now())
	ex := testExercise(t, "Bench Press (Barbell)")
	set, _ := AddSet(session, ex, 60, 8, nil)

	if err := Complete(session, 45, "great", "solid work"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !session.IsCompleted {
		t.Fatal("IsCompleted = false, want true")
	}
	if session.DurationMinutes != 45 || session.Mood != "great" || session.Notes != "solid work" {
		t.Errorf("closing fields not applied: %+v", session)
	}

	if _, err := AddSet(session, ex, 60, 8, nil); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("AddSet after complete: err = %v, want ErrSessionLocked", err)
	}
	w := 65.0
	if err := UpdateSet(session, set.ID, SetPatch{WeightKg: &w}); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("UpdateSet after complete: err = %v, want ErrSessionLocked", err)
	}
	if err := DeleteSet(session, set.ID); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("DeleteSet after complete: err = %v, want ErrSessionLocked", err)
	}
	if _, err := DeleteExercise(session, session.Exercises[0].ID); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("DeleteExercise after complete: err = %v, want ErrSessionLocked", err)
	}
	title := "renamed"
	if err := UpdateSession(session, SessionPatch{Title: &title}); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("UpdateSession after complete: err = %v, want ErrSessionLocked", err)
	}
	if err := Complete(session, 50, "", ""); !errors.Is(err, ErrSessionLocked) {
		t.Errorf("second Complete: err = %v, want ErrSessionLocked", err)
	}

	// Aggregation stays available on a locked session.
	stats := ComputeSessionStats(session)
	if stats.TotalSets != 1 {
		t.Errorf("stats after complete: sets = %d, want 1", stats.TotalSets)
	}
}

// TestUpdateExercise verifies notes and order patches and their validation.
func TestUpdateExercise(t *testing.T) {
	session, _ := NewSession("Pull Day", "", time.Now())
	ex := testExercise(t, "Lat Pulldown")
	AddSet(session, ex, 50, 10, nil)

	notes := "slow negatives"
	order := 3
	if err := UpdateExercise(session, session.Exercises[0].ID, ExercisePatch{Notes: &notes, Order: &order}); err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if session.Exercises[0].Notes != "slow negatives" {
		t.Errorf("notes = %q", session.Exercises[0].Notes)
	}
	if session.Exercises[0].Order != 3 {
		t.Errorf("order = %d, want 3", session.Exercises[0].Order)
	}

	bad := 0
	if err := UpdateExercise(session, session.Exercises[0].ID, ExercisePatch{Order: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("order 0: err = %v, want ErrValidation", err)
	}
	if err := UpdateExercise(session, uuid.New(), ExercisePatch{Notes: &notes}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown exercise: err = %v, want ErrNotFound", err)
	}
}

// TestUpdateSessionMetadata verifies title/duration/notes patches and the
// non-empty title rule.
func TestUpdateSessionMetadata(t *testing.T) {
	session, _ := NewSession("Morning", "first", time.Now())

	title := "Evening"
	dur := 50
	if err := UpdateSession(session, SessionPatch{Title: &title, DurationMinutes: &dur}); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if session.Title != "Evening" || session.DurationMinutes != 50 {
		t.Errorf("after patch: title=%q duration=%d", session.Title, session.DurationMinutes)
	}
	if session.Notes != "first" {
		t.Errorf("notes = %q, want untouched", session.Notes)
	}

	empty := ""
	if err := UpdateSession(session, SessionPatch{Title: &empty}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty title: err = %v, want ErrValidation", err)
	}
	negative := -1
	if err := UpdateSession(session, SessionPatch{DurationMinutes: &negative}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative duration: err = %v, want ErrValidation", err)
	}
}
