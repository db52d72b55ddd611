package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseCategory classifies a catalog exercise.
type ExerciseCategory string

const (
	CategoryStrength    ExerciseCategory = "strength"
	CategoryCardio      ExerciseCategory = "cardio"
	CategoryFlexibility ExerciseCategory = "flexibility"
)

// Valid reports whether the category is one of the known values.
func (c ExerciseCategory) Valid() bool {
	switch c {
	case CategoryStrength, CategoryCardio, CategoryFlexibility:
		return true
	}
	return false
}

// MetricType describes how an exercise is measured.
type MetricType string

const (
	MetricWeight   MetricType = "weight"
	MetricDistance MetricType = "distance"
	MetricTime     MetricType = "time"
	MetricReps     MetricType = "reps"
)

// Valid reports whether the metric type is one of the known values.
func (m MetricType) Valid() bool {
	switch m {
	case MetricWeight, MetricDistance, MetricTime, MetricReps:
		return true
	}
	return false
}

// Exercise is a catalog entry. CreatedBy is nil for global (seeded)
// exercises and set to the owning user for custom ones.
type Exercise struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Category   ExerciseCategory `json:"category"`
	MetricType MetricType       `json:"metric_type"`
	CreatedBy  *int64           `json:"-"`
}

// TemplateExercise is one ordered entry of a template's plan.
// ExerciseName, Category and MetricType are denormalized from the catalog
// for display; they are never stored on the entry itself.
type TemplateExercise struct {
	ID           uuid.UUID        `json:"id"`
	ExerciseID   uuid.UUID        `json:"exercise_id"`
	ExerciseName string           `json:"exercise_name,omitempty"`
	Category     ExerciseCategory `json:"category,omitempty"`
	MetricType   MetricType       `json:"metric_type,omitempty"`
	Order        int              `json:"order"`
	TargetSets   int              `json:"target_sets"`
	TargetReps   RepTarget        `json:"target_reps"`
}

// WorkoutTemplate is a reusable, ordered exercise plan.
type WorkoutTemplate struct {
	ID          uuid.UUID          `json:"id"`
	UserID      int64              `json:"-"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	Exercises   []TemplateExercise `json:"exercises"`
}

// Clone returns a deep copy of the template.
func (t *WorkoutTemplate) Clone() *WorkoutTemplate {
	c := *t
	c.Exercises = make([]TemplateExercise, len(t.Exercises))
	copy(c.Exercises, t.Exercises)
	return &c
}

// WorkoutSession is one concrete workout occurrence. Once IsCompleted is
// true the session is terminal and rejects every further mutation.
type WorkoutSession struct {
	ID              uuid.UUID         `json:"id"`
	UserID          int64             `json:"-"`
	TemplateID      *uuid.UUID        `json:"template_id,omitempty"`
	TemplateTitle   string            `json:"template_title,omitempty"`
	Title           string            `json:"title"`
	CreatedDate     time.Time         `json:"created_date"`
	DurationMinutes int               `json:"duration_minutes"`
	Mood            string            `json:"mood,omitempty"`
	Notes           string            `json:"notes"`
	IsCompleted     bool              `json:"is_completed"`
	Exercises       []SessionExercise `json:"exercises"`
}

// Clone returns a deep copy of the session and its full exercise/set graph.
func (s *WorkoutSession) Clone() *WorkoutSession {
	c := *s
	if s.TemplateID != nil {
		id := *s.TemplateID
		c.TemplateID = &id
	}
	c.Exercises = make([]SessionExercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		c.Exercises[i] = *ex.Clone()
	}
	return &c
}

// Exercise returns the session exercise with the given ID, or nil.
func (s *WorkoutSession) Exercise(id uuid.UUID) *SessionExercise {
	for i := range s.Exercises {
		if s.Exercises[i].ID == id {
			return &s.Exercises[i]
		}
	}
	return nil
}

// ExerciseFor returns the session exercise referencing the given catalog
// exercise, or nil if the session has no container for it yet.
func (s *WorkoutSession) ExerciseFor(exerciseID uuid.UUID) *SessionExercise {
	for i := range s.Exercises {
		if s.Exercises[i].ExerciseID == exerciseID {
			return &s.Exercises[i]
		}
	}
	return nil
}

// SessionExercise is the per-session container for one catalog exercise
// and the sets logged against it.
type SessionExercise struct {
	ID           uuid.UUID        `json:"id"`
	ExerciseID   uuid.UUID        `json:"exercise_id"`
	ExerciseName string           `json:"exercise_name,omitempty"`
	Category     ExerciseCategory `json:"category,omitempty"`
	MetricType   MetricType       `json:"metric_type,omitempty"`
	Order        int              `json:"order"`
	Notes        string           `json:"notes"`
	Sets         []SetEntry       `json:"sets"`
}

// Clone returns a deep copy of the exercise container and its sets.
func (e *SessionExercise) Clone() *SessionExercise {
	c := *e
	c.Sets = make([]SetEntry, len(e.Sets))
	for i, set := range e.Sets {
		c.Sets[i] = *set.Clone()
	}
	return &c
}

// SetEntry is one logged unit of work. SetNumber is assigned by the
// session engine and never supplied by callers; deleting a set does not
// renumber the survivors.
type SetEntry struct {
	ID        uuid.UUID `json:"id"`
	SetNumber int       `json:"set_number"`
	WeightKg  float64   `json:"weight_kg"`
	Reps      int       `json:"reps"`
	RPE       *int      `json:"rpe,omitempty"`
}

// Clone returns a copy of the set entry.
func (e *SetEntry) Clone() *SetEntry {
	c := *e
	if e.RPE != nil {
		v := *e.RPE
		c.RPE = &v
	}
	return &c
}
