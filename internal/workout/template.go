package workout

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/models"
)

// NewTemplate validates and builds a workout template. A template needs a
// non-empty title and at least one exercise entry.
func NewTemplate(title, description string, exercises []models.TemplateExercise) (*models.WorkoutTemplate, error) {
	t := &models.WorkoutTemplate{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		CreatedAt:   time.Now().UTC(),
		Exercises:   exercises,
	}
	if err := ValidateTemplate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// ValidateTemplate enforces the template invariants: non-empty title,
// at least one exercise, target_sets >= 1, and unique 1-based order values.
// Entries get fresh IDs and are sorted by order. Used by create and by the
// full-replace update, which resubmits the entire exercise list.
func ValidateTemplate(t *models.WorkoutTemplate) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: template title must not be empty", ErrValidation)
	}
	if len(t.Exercises) == 0 {
		return fmt.Errorf("%w: template needs at least one exercise", ErrValidation)
	}
	seen := make(map[int]bool, len(t.Exercises))
	for i := range t.Exercises {
		e := &t.Exercises[i]
		if e.ExerciseID == uuid.Nil {
			return fmt.Errorf("%w: exercise entry %d has no exercise_id", ErrValidation, i+1)
		}
		if e.Order < 1 {
			return fmt.Errorf("%w: exercise order must be >= 1", ErrValidation)
		}
		if seen[e.Order] {
			return fmt.Errorf("%w: duplicate exercise order %d", ErrValidation, e.Order)
		}
		seen[e.Order] = true
		if e.TargetSets < 1 {
			return fmt.Errorf("%w: target_sets must be >= 1", ErrValidation)
		}
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
	}
	sort.SliceStable(t.Exercises, func(i, j int) bool {
		return t.Exercises[i].Order < t.Exercises[j].Order
	})
	return nil
}

// TemplateStats holds the derived display counts of a template. Computed
// on every read, never stored.
type TemplateStats struct {
	ExerciseCount int `json:"exercise_count"`
	TotalSets     int `json:"total_sets"`
}

// ComputeTemplateStats derives exercise_count and total_sets (the sum of
// target_sets across entries).
func ComputeTemplateStats(t *models.WorkoutTemplate) TemplateStats {
	s := TemplateStats{ExerciseCount: len(t.Exercises)}
	for _, e := range t.Exercises {
		s.TotalSets += e.TargetSets
	}
	return s
}

// Instantiate snapshots a template into a new, independent session. Each
// template entry becomes a session exercise with its own ID, preserved
// order, and an empty set list: target_sets and target_reps are advisory
// metadata and never pre-populate sets. Later edits to the template do not
// propagate to the session.
func Instantiate(t *models.WorkoutTemplate, now time.Time) *models.WorkoutSession {
	templateID := t.ID
	s := &models.WorkoutSession{
		ID:            uuid.New(),
		UserID:        t.UserID,
		TemplateID:    &templateID,
		TemplateTitle: t.Title,
		Title:         t.Title,
		CreatedDate:   now,
		Exercises:     make([]models.SessionExercise, 0, len(t.Exercises)),
	}
	for _, te := range t.Exercises {
		s.Exercises = append(s.Exercises, models.SessionExercise{
			ID:           uuid.New(),
			ExerciseID:   te.ExerciseID,
			ExerciseName: te.ExerciseName,
			Category:     te.Category,
			MetricType:   te.MetricType,
			Order:        te.Order,
			Sets:         []models.SetEntry{},
		})
	}
	return s
}

// NewSession builds a blank session with no exercises. Exercises are added
// ad hoc by the first add_set against a catalog exercise.
func NewSession(title, notes string, now time.Time) (*models.WorkoutSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: session title must not be empty", ErrValidation)
	}
	return &models.WorkoutSession{
		ID:          uuid.New(),
		Title:       title,
		CreatedDate: now,
		Notes:       notes,
		Exercises:   []models.SessionExercise{},
	}, nil
}
