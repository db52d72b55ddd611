package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/client"
	"github.com/claude/fitware/internal/models"
	"github.com/claude/fitware/internal/storage"
	"github.com/claude/fitware/internal/workout"
)

// DataSource abstracts the data layer for MCP tools. LocalSource (direct
// store access) and RemoteSource (via the REST API) both satisfy it.
// Remote mode ignores the userID parameter; the server scopes by token.
type DataSource interface {
	ListExercises(ctx context.Context, userID int64, search string) ([]models.Exercise, error)
	ListTemplates(ctx context.Context, userID int64) ([]client.Template, error)
	ListSessions(ctx context.Context, userID int64) ([]client.Session, error)
	GetSession(ctx context.Context, userID int64, id uuid.UUID) (*client.Session, error)
	AccountStats(ctx context.Context, userID int64) (*workout.AccountStats, error)
}

// Store is the storage subset the local data source reads from.
type Store interface {
	ListExercises(ctx context.Context, userID int64, search string) ([]models.Exercise, error)
	ListTemplates(ctx context.Context, userID int64) ([]models.WorkoutTemplate, error)
	ListSessions(ctx context.Context, userID int64) ([]models.WorkoutSession, error)
	GetSession(ctx context.Context, userID int64, id uuid.UUID) (*models.WorkoutSession, error)
	AccountStats(ctx context.Context, userID int64) (*workout.AccountStats, error)
}

// Compile-time checks.
var (
	_ Store = (*storage.DB)(nil)
	_ Store = (*storage.MemStore)(nil)

	_ DataSource = (*LocalSource)(nil)
	_ DataSource = (*RemoteSource)(nil)
)

// LocalSource reads straight from a store and attaches the derived totals
// the REST API would have computed.
type LocalSource struct {
	store Store
}

// NewLocalSource creates a DataSource over direct store access.
func NewLocalSource(store Store) *LocalSource {
	return &LocalSource{store: store}
}

func (s *LocalSource) ListExercises(ctx context.Context, userID int64, search string) ([]models.Exercise, error) {
	return s.store.ListExercises(ctx, userID, search)
}

func (s *LocalSource) ListTemplates(ctx context.Context, userID int64) ([]client.Template, error) {
	templates, err := s.store.ListTemplates(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]client.Template, len(templates))
	for i := range templates {
		out[i] = client.Template{
			WorkoutTemplate: templates[i],
			TemplateStats:   workout.ComputeTemplateStats(&templates[i]),
		}
	}
	return out, nil
}

func (s *LocalSource) ListSessions(ctx context.Context, userID int64) ([]client.Session, error) {
	sessions, err := s.store.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]client.Session, len(sessions))
	for i := range sessions {
		out[i] = client.Session{
			WorkoutSession: sessions[i],
			SessionStats:   workout.ComputeSessionStats(&sessions[i]),
		}
	}
	return out, nil
}

func (s *LocalSource) GetSession(ctx context.Context, userID int64, id uuid.UUID) (*client.Session, error) {
	session, err := s.store.GetSession(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &client.Session{
		WorkoutSession: *session,
		SessionStats:   workout.ComputeSessionStats(session),
	}, nil
}

func (s *LocalSource) AccountStats(ctx context.Context, userID int64) (*workout.AccountStats, error) {
	return s.store.AccountStats(ctx, userID)
}

// RemoteSource reads through the REST API. Used when the MCP binary runs
// locally (stdio) but data lives on the remote server.
type RemoteSource struct {
	api *client.Client
}

// NewRemoteSource creates a DataSource backed by the given API client.
func NewRemoteSource(api *client.Client) *RemoteSource {
	return &RemoteSource{api: api}
}

func (s *RemoteSource) ListExercises(ctx context.Context, _ int64, search string) ([]models.Exercise, error) {
	return s.api.ListExercises(ctx, search)
}

func (s *RemoteSource) ListTemplates(ctx context.Context, _ int64) ([]client.Template, error) {
	return s.api.ListTemplates(ctx)
}

func (s *RemoteSource) ListSessions(ctx context.Context, _ int64) ([]client.Session, error) {
	return s.api.ListSessions(ctx)
}

func (s *RemoteSource) GetSession(ctx context.Context, _ int64, id uuid.UUID) (*client.Session, error) {
	return s.api.GetSession(ctx, id)
}

func (s *RemoteSource) AccountStats(ctx context.Context, _ int64) (*workout.AccountStats, error) {
	return s.api.AccountStats(ctx)
}
