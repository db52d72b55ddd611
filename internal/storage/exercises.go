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

// ListExercises returns global exercises plus the user's custom ones,
// optionally filtered by a case-insensitive substring match on name.
func (db *DB) ListExercises(ctx context.Context, userID int64, search string) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, category, metric_type, created_by
		 FROM exercises
		 WHERE (created_by IS NULL OR created_by = $1)
		   AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		 ORDER BY name ASC`,
		userID, search)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	result := []models.Exercise{}
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.MetricType, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// CreateExercise inserts a catalog exercise. Returns true if inserted,
// false if an exercise with the same name already exists for the owner.
func (db *DB) CreateExercise(ctx context.Context, ex *models.Exercise) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, name, category, metric_type, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT DO NOTHING`,
		ex.ID, ex.Name, ex.Category, ex.MetricType, ex.CreatedBy)
	if err != nil {
		return false, fmt.Errorf("inserting exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetExercise retrieves a single exercise visible to the user.
func (db *DB) GetExercise(ctx context.Context, userID int64, id uuid.UUID) (*models.Exercise, error) {
	var e models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, category, metric_type, created_by
		 FROM exercises
		 WHERE id = $1 AND (created_by IS NULL OR created_by = $2)`,
		id, userID,
	).Scan(&e.ID, &e.Name, &e.Category, &e.MetricType, &e.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: exercise %s", workout.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}
