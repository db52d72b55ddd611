package workout

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/models"
)

// NewExercise validates and builds a catalog exercise. The name is
// trimmed; an empty or whitespace-only name is rejected.
func NewExercise(name string, category models.ExerciseCategory, metric models.MetricType) (*models.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: exercise name must not be empty", ErrValidation)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("%w: unknown metric type %q", ErrValidation, metric)
	}
	return &models.Exercise{
		ID:         uuid.New(),
		Name:       name,
		Category:   category,
		MetricType: metric,
	}, nil
}

// MatchesSearch reports whether an exercise name matches a search query:
// case-insensitive substring match, empty query matches everything.
func MatchesSearch(name, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

// DefaultExercises is the seeded global catalog.
var DefaultExercises = []models.Exercise{
	// Strength: chest
	{Name: "Bench Press (Barbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Bench Press (Dumbbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Incline Bench Press", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Chest Fly (Dumbbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Push Up", Category: models.CategoryStrength, MetricType: models.MetricReps},
	{Name: "Dips", Category: models.CategoryStrength, MetricType: models.MetricReps},
	// Strength: back
	{Name: "Deadlift (Barbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Pull Up", Category: models.CategoryStrength, MetricType: models.MetricReps},
	{Name: "Chin Up", Category: models.CategoryStrength, MetricType: models.MetricReps},
	{Name: "Bent Over Row (Barbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Bent Over Row (Dumbbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Lat Pulldown", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Seated Cable Row", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	// Strength: legs
	{Name: "Squat (Barbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Squat (Dumbbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Leg Press", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Lunges", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Leg Extension", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Leg Curl", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Calf Raise", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Romanian Deadlift", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	// Strength: shoulders
	{Name: "Overhead Press (Barbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Shoulder Press (Dumbbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Lateral Raise", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Front Raise", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Face Pull", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Shrugs", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	// Strength: arms
	{Name: "Bicep Curl (Barbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Bicep Curl (Dumbbell)", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Hammer Curl", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Tricep Pushdown", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Tricep Extension", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	{Name: "Skull Crushers", Category: models.CategoryStrength, MetricType: models.MetricWeight},
	// Strength: core
	{Name: "Plank", Category: models.CategoryStrength, MetricType: models.MetricTime},
	{Name: "Sit Up", Category: models.CategoryStrength, MetricType: models.MetricReps},
	{Name: "Crunches", Category: models.CategoryStrength, MetricType: models.MetricReps},
	{Name: "Russian Twist", Category: models.CategoryStrength, MetricType: models.MetricReps},
	{Name: "Leg Raise", Category: models.CategoryStrength, MetricType: models.MetricReps},
	{Name: "Mountain Climbers", Category: models.CategoryStrength, MetricType: models.MetricReps},
	// Cardio
	{Name: "Running", Category: models.CategoryCardio, MetricType: models.MetricDistance},
	{Name: "Cycling", Category: models.CategoryCardio, MetricType: models.MetricDistance},
	{Name: "Swimming", Category: models.CategoryCardio, MetricType: models.MetricDistance},
	{Name: "Rowing Machine", Category: models.CategoryCardio, MetricType: models.MetricDistance},
	{Name: "Jump Rope", Category: models.CategoryCardio, MetricType: models.MetricTime},
	{Name: "Burpees", Category: models.CategoryCardio, MetricType: models.MetricReps},
	{Name: "Jumping Jacks", Category: models.CategoryCardio, MetricType: models.MetricReps},
	{Name: "Treadmill Walking", Category: models.CategoryCardio, MetricType: models.MetricDistance},
	{Name: "Elliptical", Category: models.CategoryCardio, MetricType: models.MetricTime},
	{Name: "Stair Climber", Category: models.CategoryCardio, MetricType: models.MetricTime},
	// Flexibility
	{Name: "Stretching", Category: models.CategoryFlexibility, MetricType: models.MetricTime},
	{Name: "Yoga", Category: models.CategoryFlexibility, MetricType: models.MetricTime},
	{Name: "Foam Rolling", Category: models.CategoryFlexibility, MetricType: models.MetricTime},
	{Name: "Hip Flexor Stretch", Category: models.CategoryFlexibility, MetricType: models.MetricTime},
	{Name: "Hamstring Stretch", Category: models.CategoryFlexibility, MetricType: models.MetricTime},
	{Name: "Shoulder Stretch", Category: models.CategoryFlexibility, MetricType: models.MetricTime},
}
