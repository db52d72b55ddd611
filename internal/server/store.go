package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/models"
	"github.com/claude/fitware/internal/storage"
	"github.com/claude/fitware/internal/workout"
)

// Store abstracts persistence for the handlers. Both the Postgres store
// and the in-memory store satisfy it; the semantics the handlers rely on
// (user scoping, newest-first ordering, template/session decoupling) must
// hold for every implementation.
type Store interface {
	ListExercises(ctx context.Context, userID int64, search string) ([]models.Exercise, error)
	CreateExercise(ctx context.Context, ex *models.Exercise) (bool, error)
	GetExercise(ctx context.Context, userID int64, id uuid.UUID) (*models.Exercise, error)

	CreateTemplate(ctx context.Context, t *models.WorkoutTemplate) error
	ReplaceTemplate(ctx context.Context, t *models.WorkoutTemplate) error
	DeleteTemplate(ctx context.Context, userID int64, id uuid.UUID) error
	GetTemplate(ctx context.Context, userID int64, id uuid.UUID) (*models.WorkoutTemplate, error)
	ListTemplates(ctx context.Context, userID int64) ([]models.WorkoutTemplate, error)

	CreateSession(ctx context.Context, s *models.WorkoutSession) error
	// MutateSession runs the load, apply, save cycle for one session as a
	// single serialized unit. Implementations must guarantee that two
	// concurrent mutations on the same session never act on the same
	// snapshot, or an acknowledged write could be lost when the later
	// save replaces the graph.
	MutateSession(ctx context.Context, userID int64, id uuid.UUID, apply func(*models.WorkoutSession) error) (*models.WorkoutSession, error)
	DeleteSession(ctx context.Context, userID int64, id uuid.UUID) error
	GetSession(ctx context.Context, userID int64, id uuid.UUID) (*models.WorkoutSession, error)
	ListSessions(ctx context.Context, userID int64) ([]models.WorkoutSession, error)

	AccountStats(ctx context.Context, userID int64) (*workout.AccountStats, error)
}

// Compile-time checks: both stores satisfy Store.
var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*storage.MemStore)(nil)
)
