package storage

import (
	"context"
	"fmt"

	"github.com/claude/fitware/internal/workout"
)

// AccountStats returns the dashboard rollup for a user. Workout count and
// duration cover completed sessions only; set count and volume cover every
// session. The SQL must agree with workout.ComputeAccountStats, which is
// the reference definition.
func (db *DB) AccountStats(ctx context.Context, userID int64) (*workout.AccountStats, error) {
	stats := &workout.AccountStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE is_completed),
		        COALESCE(SUM(duration_minutes) FILTER (WHERE is_completed), 0)
		 FROM workout_sessions
		 WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.TotalDurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(st.id), COALESCE(SUM(st.weight_kg * st.reps), 0)
		 FROM set_entries st
		 JOIN session_exercises se ON se.id = st.session_exercise_id
		 JOIN workout_sessions ws ON ws.id = se.session_id
		 WHERE ws.user_id = $1`, userID,
	).Scan(&stats.TotalSets, &stats.TotalVolumeKg)
	if err != nil {
		return nil, fmt.Errorf("summing sets: %w", err)
	}

	return stats, nil
}
