package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/fitware/internal/models"
	"github.com/claude/fitware/internal/workout"
)

// CreateSession inserts a session and its full exercise/set graph in one
// transaction.
func (db *DB) CreateSession(ctx context.Context, s *models.WorkoutSession) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_sessions
		 (id, user_id, template_id, title, created_date, duration_minutes, mood, notes, is_completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.UserID, s.TemplateID, s.Title, s.CreatedDate,
		s.DurationMinutes, s.Mood, s.Notes, s.IsCompleted)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	if err := insertSessionGraph(ctx, tx, s); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// MutateSession loads a session, applies the mutation, and writes the
// replaced graph back, all inside one transaction that first locks the
// session row with SELECT FOR UPDATE. Concurrent mutations on the same
// session queue on that lock, so each one reads the graph its predecessor
// committed; set numbering and exercise cascades never act on a stale
// snapshot.
func (db *DB) MutateSession(ctx context.Context, userID int64, id uuid.UUID, apply func(*models.WorkoutSession) error) (*models.WorkoutSession, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM workout_sessions WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID,
	).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", workout.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("locking session: %w", err)
	}

	s, err := getSession(ctx, tx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(s); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE workout_sessions
		 SET title = $1, duration_minutes = $2, mood = $3, notes = $4, is_completed = $5
		 WHERE id = $6`,
		s.Title, s.DurationMinutes, s.Mood, s.Notes, s.IsCompleted, s.ID)
	if err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	// Sets cascade with their containers.
	if _, err := tx.Exec(ctx,
		`DELETE FROM session_exercises WHERE session_id = $1`, s.ID); err != nil {
		return nil, fmt.Errorf("clearing session exercises: %w", err)
	}
	if err := insertSessionGraph(ctx, tx, s); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing session mutation: %w", err)
	}
	return s, nil
}

func insertSessionGraph(ctx context.Context, tx pgx.Tx, s *models.WorkoutSession) error {
	for i := range s.Exercises {
		ex := &s.Exercises[i]
		_, err := tx.Exec(ctx,
			`INSERT INTO session_exercises (id, session_id, exercise_id, ord, notes)
			 VALUES ($1, $2, $3, $4, $5)`,
			ex.ID, s.ID, ex.ExerciseID, ex.Order, ex.Notes)
		if err != nil {
			return fmt.Errorf("inserting session exercise: %w", err)
		}
		for _, set := range ex.Sets {
			_, err := tx.Exec(ctx,
				`INSERT INTO set_entries (id, session_exercise_id, set_number, weight_kg, reps, rpe)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				set.ID, ex.ID, set.SetNumber, set.WeightKg, set.Reps, set.RPE)
			if err != nil {
				return fmt.Errorf("inserting set entry: %w", err)
			}
		}
	}
	return nil
}

// DeleteSession removes a session; exercises and sets cascade via FK.
func (db *DB) DeleteSession(ctx context.Context, userID int64, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %s", workout.ErrNotFound, id)
	}
	return nil
}

// querier is the subset of pgxpool.Pool and pgx.Tx the session readers
// need, so the same loading code serves plain reads and locked mutations.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetSession retrieves a session with its full nested exercise/set graph.
func (db *DB) GetSession(ctx context.Context, userID int64, id uuid.UUID) (*models.WorkoutSession, error) {
	return getSession(ctx, db.Pool, userID, id)
}

func getSession(ctx context.Context, q querier, userID int64, id uuid.UUID) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	err := q.QueryRow(ctx,
		`SELECT ws.id, ws.user_id, ws.template_id, COALESCE(wt.title, ''), ws.title,
		        ws.created_date, ws.duration_minutes, ws.mood, ws.notes, ws.is_completed
		 FROM workout_sessions ws
		 LEFT JOIN workout_templates wt ON wt.id = ws.template_id
		 WHERE ws.id = $1 AND ws.user_id = $2`,
		id, userID,
	).Scan(&s.ID, &s.UserID, &s.TemplateID, &s.TemplateTitle, &s.Title,
		&s.CreatedDate, &s.DurationMinutes, &s.Mood, &s.Notes, &s.IsCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", workout.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	graphs, err := sessionGraphs(ctx, q, []uuid.UUID{s.ID})
	if err != nil {
		return nil, err
	}
	s.Exercises = graphs[s.ID]
	if s.Exercises == nil {
		s.Exercises = []models.SessionExercise{}
	}
	return &s, nil
}

// ListSessions retrieves all of a user's sessions with their graphs,
// newest first.
func (db *DB) ListSessions(ctx context.Context, userID int64) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT ws.id, ws.user_id, ws.template_id, COALESCE(wt.title, ''), ws.title,
		        ws.created_date, ws.duration_minutes, ws.mood, ws.notes, ws.is_completed
		 FROM workout_sessions ws
		 LEFT JOIN workout_templates wt ON wt.id = ws.template_id
		 WHERE ws.user_id = $1
		 ORDER BY ws.created_date DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	result := []models.WorkoutSession{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var s models.WorkoutSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.TemplateID, &s.TemplateTitle, &s.Title,
			&s.CreatedDate, &s.DurationMinutes, &s.Mood, &s.Notes, &s.IsCompleted); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.Exercises = []models.SessionExercise{}
		result = append(result, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	graphs, err := sessionGraphs(ctx, db.Pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		if g := graphs[result[i].ID]; g != nil {
			result[i].Exercises = g
		}
	}
	return result, nil
}

// sessionGraphs loads the exercise containers and sets for the given
// sessions in two queries and assembles them in memory.
func sessionGraphs(ctx context.Context, q querier, sessionIDs []uuid.UUID) (map[uuid.UUID][]models.SessionExercise, error) {
	rows, err := q.Query(ctx,
		`SELECT se.id, se.session_id, se.exercise_id, e.name, e.category, e.metric_type,
		        se.ord, se.notes
		 FROM session_exercises se
		 JOIN exercises e ON e.id = se.exercise_id
		 WHERE se.session_id = ANY($1)
		 ORDER BY se.ord ASC`,
		sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("querying session exercises: %w", err)
	}
	defer rows.Close()

	bySession := make(map[uuid.UUID][]models.SessionExercise)
	for rows.Next() {
		var ex models.SessionExercise
		var sessionID uuid.UUID
		if err := rows.Scan(&ex.ID, &sessionID, &ex.ExerciseID, &ex.ExerciseName,
			&ex.Category, &ex.MetricType, &ex.Order, &ex.Notes); err != nil {
			return nil, fmt.Errorf("scanning session exercise: %w", err)
		}
		ex.Sets = []models.SetEntry{}
		bySession[sessionID] = append(bySession[sessionID], ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exerciseIndex := make(map[uuid.UUID]*models.SessionExercise)
	for sid := range bySession {
		list := bySession[sid]
		for i := range list {
			exerciseIndex[list[i].ID] = &list[i]
		}
	}

	setRows, err := q.Query(ctx,
		`SELECT st.id, st.session_exercise_id, st.set_number, st.weight_kg, st.reps, st.rpe
		 FROM set_entries st
		 JOIN session_exercises se ON se.id = st.session_exercise_id
		 WHERE se.session_id = ANY($1)
		 ORDER BY st.set_number ASC`,
		sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("querying set entries: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var set models.SetEntry
		var exID uuid.UUID
		if err := setRows.Scan(&set.ID, &exID, &set.SetNumber, &set.WeightKg, &set.Reps, &set.RPE); err != nil {
			return nil, fmt.Errorf("scanning set entry: %w", err)
		}
		if ex := exerciseIndex[exID]; ex != nil {
			ex.Sets = append(ex.Sets, set)
		}
	}
	return bySession, setRows.Err()
}
