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

// CreateTemplate inserts a template and its exercise entries in one
// transaction.
func (db *DB) CreateTemplate(ctx context.Context, t *models.WorkoutTemplate) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_templates (id, user_id, title, description, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.Title, t.Description, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}

	if err := insertTemplateExercises(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReplaceTemplate overwrites a template's title, description, and entire
// exercise list in one transaction. The prior list is discarded; there are
// no partial patch semantics.
func (db *DB) ReplaceTemplate(ctx context.Context, t *models.WorkoutTemplate) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE workout_templates SET title = $1, description = $2
		 WHERE id = $3 AND user_id = $4`,
		t.Title, t.Description, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("updating template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: template %s", workout.ErrNotFound, t.ID)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM template_exercises WHERE template_id = $1`, t.ID); err != nil {
		return fmt.Errorf("clearing template exercises: %w", err)
	}
	if err := insertTemplateExercises(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertTemplateExercises(ctx context.Context, tx pgx.Tx, t *models.WorkoutTemplate) error {
	for _, e := range t.Exercises {
		_, err := tx.Exec(ctx,
			`INSERT INTO template_exercises (id, template_id, exercise_id, ord, target_sets, target_reps)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, t.ID, e.ExerciseID, e.Order, e.TargetSets, string(e.TargetReps))
		if err != nil {
			return fmt.Errorf("inserting template exercise: %w", err)
		}
	}
	return nil
}

// DeleteTemplate removes a template; entries cascade via FK. Sessions
// already instantiated from it are untouched (their template_id is set to
// NULL by the FK).
func (db *DB) DeleteTemplate(ctx context.Context, userID int64, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: template %s", workout.ErrNotFound, id)
	}
	return nil
}

// GetTemplate retrieves a template with its ordered exercise entries,
// denormalizing exercise names and categories from the catalog.
func (db *DB) GetTemplate(ctx context.Context, userID int64, id uuid.UUID) (*models.WorkoutTemplate, error) {
	var t models.WorkoutTemplate
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, title, description, created_at
		 FROM workout_templates
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: template %s", workout.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}

	exercises, err := db.templateExercises(ctx, []uuid.UUID{t.ID})
	if err != nil {
		return nil, err
	}
	t.Exercises = exercises[t.ID]
	if t.Exercises == nil {
		t.Exercises = []models.TemplateExercise{}
	}
	return &t, nil
}

// ListTemplates retrieves all of a user's templates with their entries,
// newest first.
func (db *DB) ListTemplates(ctx context.Context, userID int64) ([]models.WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, title, description, created_at
		 FROM workout_templates
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	result := []models.WorkoutTemplate{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var t models.WorkoutTemplate
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		t.Exercises = []models.TemplateExercise{}
		result = append(result, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	exercises, err := db.templateExercises(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		if list := exercises[result[i].ID]; list != nil {
			result[i].Exercises = list
		}
	}
	return result, nil
}

func (db *DB) templateExercises(ctx context.Context, templateIDs []uuid.UUID) (map[uuid.UUID][]models.TemplateExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT te.id, te.template_id, te.exercise_id, e.name, e.category, e.metric_type,
		        te.ord, te.target_sets, te.target_reps
		 FROM template_exercises te
		 JOIN exercises e ON e.id = te.exercise_id
		 WHERE te.template_id = ANY($1)
		 ORDER BY te.ord ASC`,
		templateIDs)
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]models.TemplateExercise)
	for rows.Next() {
		var te models.TemplateExercise
		var templateID uuid.UUID
		var reps string
		if err := rows.Scan(&te.ID, &templateID, &te.ExerciseID, &te.ExerciseName,
			&te.Category, &te.MetricType, &te.Order, &te.TargetSets, &reps); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		te.TargetReps = models.RepTarget(reps)
		result[templateID] = append(result[templateID], te)
	}
	return result, rows.Err()
}
