package workout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/models"
)

// The session engine: every mutation below validates its input, checks the
// completion lock, and applies the change to the in-memory entity graph.
// The caller persists the resulting graph as one transaction per mutation.

func checkUnlocked(s *models.WorkoutSession) error {
	if s.IsCompleted {
		return fmt.Errorf("%w: %s", ErrSessionLocked, s.ID)
	}
	return nil
}

func validateSetFields(weightKg float64, reps int, rpe *int) error {
	if weightKg < 0 {
		return fmt.Errorf("%w: weight_kg must not be negative", ErrValidation)
	}
	if reps < 0 {
		return fmt.Errorf("%w: reps must not be negative", ErrValidation)
	}
	if rpe != nil && (*rpe < 0 || *rpe > 10) {
		return fmt.Errorf("%w: rpe must be between 0 and 10", ErrValidation)
	}
	return nil
}

// AddSet appends a set for the given catalog exercise. If the session has
// no container for that exercise yet, one is created with order = current
// max order + 1. The set number is the count of sets currently present for
// the exercise plus one; deleted numbers are not reused retroactively
// because survivors keep their numbers.
func AddSet(s *models.WorkoutSession, exercise *models.Exercise, weightKg float64, reps int, rpe *int) (*models.SetEntry, error) {
	if err := checkUnlocked(s); err != nil {
		return nil, err
	}
	if err := validateSetFields(weightKg, reps, rpe); err != nil {
		return nil, err
	}

	container := s.ExerciseFor(exercise.ID)
	if container == nil {
		maxOrder := 0
		for i := range s.Exercises {
			if s.Exercises[i].Order > maxOrder {
				maxOrder = s.Exercises[i].Order
			}
		}
		s.Exercises = append(s.Exercises, models.SessionExercise{
			ID:           uuid.New(),
			ExerciseID:   exercise.ID,
			ExerciseName: exercise.Name,
			Category:     exercise.Category,
			MetricType:   exercise.MetricType,
			Order:        maxOrder + 1,
			Sets:         []models.SetEntry{},
		})
		container = &s.Exercises[len(s.Exercises)-1]
	}

	entry := models.SetEntry{
		ID:        uuid.New(),
		SetNumber: len(container.Sets) + 1,
		WeightKg:  weightKg,
		Reps:      reps,
	}
	if rpe != nil {
		v := *rpe
		entry.RPE = &v
	}
	container.Sets = append(container.Sets, entry)
	return &container.Sets[len(container.Sets)-1], nil
}

// SetPatch is a partial update of a set entry. Nil fields are left as is.
type SetPatch struct {
	WeightKg *float64
	Reps     *int
	RPE      *int
}

// UpdateSet applies a partial field update to the set with the given ID.
func UpdateSet(s *models.WorkoutSession, setID uuid.UUID, patch SetPatch) error {
	if err := checkUnlocked(s); err != nil {
		return err
	}
	entry := findSet(s, setID)
	if entry == nil {
		return fmt.Errorf("%w: set %s", ErrNotFound, setID)
	}

	weight := entry.WeightKg
	if patch.WeightKg != nil {
		weight = *patch.WeightKg
	}
	reps := entry.Reps
	if patch.Reps != nil {
		reps = *patch.Reps
	}
	rpe := entry.RPE
	if patch.RPE != nil {
		rpe = patch.RPE
	}
	if err := validateSetFields(weight, reps, rpe); err != nil {
		return err
	}

	entry.WeightKg = weight
	entry.Reps = reps
	if patch.RPE != nil {
		v := *patch.RPE
		entry.RPE = &v
	}
	return nil
}

// DeleteSet removes the set with the given ID. Remaining sets of the same
// exercise keep their numbers, so numbering may become non-contiguous
// (deleting set 2 of 1,2,3 leaves 1,3).
func DeleteSet(s *models.WorkoutSession, setID uuid.UUID) error {
	if err := checkUnlocked(s); err != nil {
		return err
	}
	for i := range s.Exercises {
		ex := &s.Exercises[i]
		for j := range ex.Sets {
			if ex.Sets[j].ID == setID {
				ex.Sets = append(ex.Sets[:j], ex.Sets[j+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: set %s", ErrNotFound, setID)
}

// ExercisePatch is a partial update of a session exercise container.
type ExercisePatch struct {
	Notes *string
	Order *int
}

// UpdateExercise patches a session exercise's notes and/or order,
// independent of its sets.
func UpdateExercise(s *models.WorkoutSession, sessionExerciseID uuid.UUID, patch ExercisePatch) error {
	if err := checkUnlocked(s); err != nil {
		return err
	}
	ex := s.Exercise(sessionExerciseID)
	if ex == nil {
		return fmt.Errorf("%w: session exercise %s", ErrNotFound, sessionExerciseID)
	}
	if patch.Order != nil {
		if *patch.Order < 1 {
			return fmt.Errorf("%w: order must be >= 1", ErrValidation)
		}
		ex.Order = *patch.Order
	}
	if patch.Notes != nil {
		ex.Notes = *patch.Notes
	}
	return nil
}

// DeleteExercise removes a session exercise and cascades to every set it
// owns. Returns the number of sets removed with the container.
func DeleteExercise(s *models.WorkoutSession, sessionExerciseID uuid.UUID) (int, error) {
	if err := checkUnlocked(s); err != nil {
		return 0, err
	}
	for i := range s.Exercises {
		if s.Exercises[i].ID == sessionExerciseID {
			removed := len(s.Exercises[i].Sets)
			s.Exercises = append(s.Exercises[:i], s.Exercises[i+1:]...)
			return removed, nil
		}
	}
	return 0, fmt.Errorf("%w: session exercise %s", ErrNotFound, sessionExerciseID)
}

// SessionPatch is a metadata-only update of a session.
type SessionPatch struct {
	Title           *string
	DurationMinutes *int
	Notes           *string
}

// UpdateSession patches session metadata. Legal only pre-completion.
func UpdateSession(s *models.WorkoutSession, patch SessionPatch) error {
	if err := checkUnlocked(s); err != nil {
		return err
	}
	if patch.Title != nil {
		if *patch.Title == "" {
			return fmt.Errorf("%w: session title must not be empty", ErrValidation)
		}
		s.Title = *patch.Title
	}
	if patch.DurationMinutes != nil {
		if *patch.DurationMinutes < 0 {
			return fmt.Errorf("%w: duration_minutes must not be negative", ErrValidation)
		}
		s.DurationMinutes = *patch.DurationMinutes
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	return nil
}

// Complete applies the closing fields and flips the session to completed.
// The transition is one-way: every later mutation fails with
// ErrSessionLocked, and completing twice is rejected the same way.
func Complete(s *models.WorkoutSession, durationMinutes int, mood, notes string) error {
	if err := checkUnlocked(s); err != nil {
		return err
	}
	if durationMinutes < 0 {
		return fmt.Errorf("%w: duration_minutes must not be negative", ErrValidation)
	}
	s.DurationMinutes = durationMinutes
	s.Mood = mood
	s.Notes = notes
	s.IsCompleted = true
	return nil
}

func findSet(s *models.WorkoutSession, setID uuid.UUID) *models.SetEntry {
	for i := range s.Exercises {
		sets := s.Exercises[i].Sets
		for j := range sets {
			if sets[j].ID == setID {
				return &sets[j]
			}
		}
	}
	return nil
}
