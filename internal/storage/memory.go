package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/models"
	"github.com/claude/fitware/internal/workout"
)

// MemStore is an in-memory store with the same semantics as the Postgres
// store. It backs the dev driver and the test suite; every read hands out
// deep copies so callers never alias stored state.
type MemStore struct {
	mu        sync.RWMutex
	exercises map[uuid.UUID]models.Exercise
	templates map[uuid.UUID]models.WorkoutTemplate
	sessions  map[uuid.UUID]models.WorkoutSession
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		exercises: make(map[uuid.UUID]models.Exercise),
		templates: make(map[uuid.UUID]models.WorkoutTemplate),
		sessions:  make(map[uuid.UUID]models.WorkoutSession),
	}
}

func visibleTo(ex *models.Exercise, userID int64) bool {
	return ex.CreatedBy == nil || *ex.CreatedBy == userID
}

// ListExercises returns global plus user-owned exercises matching the
// search query, sorted by name.
func (m *MemStore) ListExercises(_ context.Context, userID int64, search string) ([]models.Exercise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []models.Exercise{}
	for _, ex := range m.exercises {
		if visibleTo(&ex, userID) && workout.MatchesSearch(ex.Name, search) {
			result = append(result, ex)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// CreateExercise stores an exercise. Returns false without storing when
// the owner already has one with the same name.
func (m *MemStore) CreateExercise(_ context.Context, ex *models.Exercise) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.exercises {
		if existing.Name == ex.Name && sameOwner(existing.CreatedBy, ex.CreatedBy) {
			return false, nil
		}
	}
	m.exercises[ex.ID] = *ex
	return true, nil
}

func sameOwner(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// GetExercise retrieves an exercise visible to the user.
func (m *MemStore) GetExercise(_ context.Context, userID int64, id uuid.UUID) (*models.Exercise, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ex, ok := m.exercises[id]
	if !ok || !visibleTo(&ex, userID) {
		return nil, fmt.Errorf("%w: exercise %s", workout.ErrNotFound, id)
	}
	return &ex, nil
}

// CreateTemplate stores a template.
func (m *MemStore) CreateTemplate(_ context.Context, t *models.WorkoutTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = *m.enrichTemplate(t.Clone())
	return nil
}

// ReplaceTemplate overwrites a template's fields and full exercise list.
func (m *MemStore) ReplaceTemplate(_ context.Context, t *models.WorkoutTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.templates[t.ID]
	if !ok || existing.UserID != t.UserID {
		return fmt.Errorf("%w: template %s", workout.ErrNotFound, t.ID)
	}
	stored := t.Clone()
	stored.CreatedAt = existing.CreatedAt
	m.templates[t.ID] = *m.enrichTemplate(stored)
	return nil
}

// DeleteTemplate removes a template. Sessions instantiated from it are
// detached (template reference cleared), never altered otherwise.
func (m *MemStore) DeleteTemplate(_ context.Context, userID int64, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.templates[id]
	if !ok || t.UserID != userID {
		return fmt.Errorf("%w: template %s", workout.ErrNotFound, id)
	}
	delete(m.templates, id)
	for sid, s := range m.sessions {
		if s.TemplateID != nil && *s.TemplateID == id {
			s.TemplateID = nil
			s.TemplateTitle = ""
			m.sessions[sid] = s
		}
	}
	return nil
}

// GetTemplate retrieves a template with denormalized exercise details.
func (m *MemStore) GetTemplate(_ context.Context, userID int64, id uuid.UUID) (*models.WorkoutTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("%w: template %s", workout.ErrNotFound, id)
	}
	return t.Clone(), nil
}

// ListTemplates retrieves a user's templates, newest first.
func (m *MemStore) ListTemplates(_ context.Context, userID int64) ([]models.WorkoutTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []models.WorkoutTemplate{}
	for _, t := range m.templates {
		if t.UserID == userID {
			result = append(result, *t.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// enrichTemplate fills denormalized exercise fields from the catalog.
// Caller must hold the lock.
func (m *MemStore) enrichTemplate(t *models.WorkoutTemplate) *models.WorkoutTemplate {
	for i := range t.Exercises {
		if ex, ok := m.exercises[t.Exercises[i].ExerciseID]; ok {
			t.Exercises[i].ExerciseName = ex.Name
			t.Exercises[i].Category = ex.Category
			t.Exercises[i].MetricType = ex.MetricType
		}
	}
	return t
}

// CreateSession stores a session graph.
func (m *MemStore) CreateSession(_ context.Context, s *models.WorkoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *m.enrichSession(s.Clone())
	return nil
}

// MutateSession applies a mutation to the stored session and swaps in the
// result, all under one lock. Holding the lock across load, apply, and
// save serializes concurrent mutations on the same session: each one acts
// on the graph its predecessor produced, never on a shared stale snapshot.
// This is the in-memory equivalent of the Postgres row-locked transaction.
func (m *MemStore) MutateSession(_ context.Context, userID int64, id uuid.UUID, apply func(*models.WorkoutSession) error) (*models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[id]
	if !ok || existing.UserID != userID {
		return nil, fmt.Errorf("%w: session %s", workout.ErrNotFound, id)
	}
	s := sortGraph(existing.Clone())
	if err := apply(s); err != nil {
		return nil, err
	}
	stored := s.Clone()
	stored.CreatedDate = existing.CreatedDate
	m.sessions[id] = *m.enrichSession(stored)
	return s, nil
}

// DeleteSession removes a session and, implicitly, its whole graph.
func (m *MemStore) DeleteSession(_ context.Context, userID int64, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return fmt.Errorf("%w: session %s", workout.ErrNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// GetSession retrieves a session with its full nested graph.
func (m *MemStore) GetSession(_ context.Context, userID int64, id uuid.UUID) (*models.WorkoutSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("%w: session %s", workout.ErrNotFound, id)
	}
	return sortGraph(s.Clone()), nil
}

// ListSessions retrieves a user's sessions, newest first.
func (m *MemStore) ListSessions(_ context.Context, userID int64) ([]models.WorkoutSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []models.WorkoutSession{}
	for _, s := range m.sessions {
		if s.UserID == userID {
			result = append(result, *sortGraph(s.Clone()))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedDate.After(result[j].CreatedDate)
	})
	return result, nil
}

// AccountStats computes the rollup from the stored sessions using the
// reference aggregation.
func (m *MemStore) AccountStats(_ context.Context, userID int64) (*workout.AccountStats, error) {
	sessions, err := m.ListSessions(context.Background(), userID)
	if err != nil {
		return nil, err
	}
	stats := workout.ComputeAccountStats(sessions)
	return &stats, nil
}

// enrichSession fills denormalized exercise fields from the catalog.
// Caller must hold the lock.
func (m *MemStore) enrichSession(s *models.WorkoutSession) *models.WorkoutSession {
	for i := range s.Exercises {
		if ex, ok := m.exercises[s.Exercises[i].ExerciseID]; ok {
			s.Exercises[i].ExerciseName = ex.Name
			s.Exercises[i].Category = ex.Category
			s.Exercises[i].MetricType = ex.MetricType
		}
	}
	return s
}

// sortGraph orders exercises by their order field and sets by number,
// matching what the SQL store returns.
func sortGraph(s *models.WorkoutSession) *models.WorkoutSession {
	sort.SliceStable(s.Exercises, func(i, j int) bool {
		return s.Exercises[i].Order < s.Exercises[j].Order
	})
	for i := range s.Exercises {
		sets := s.Exercises[i].Sets
		sort.SliceStable(sets, func(a, b int) bool {
			return sets[a].SetNumber < sets[b].SetNumber
		})
	}
	return s
}
