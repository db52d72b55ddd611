package workout

import "github.com/claude/fitware/internal/models"

// SessionStats are the derived totals of one session. They are recomputed
// from the entity graph on every read; nothing here is ever stored.
type SessionStats struct {
	TotalExercises int     `json:"total_exercises"`
	TotalSets      int     `json:"total_sets"`
	TotalReps      int     `json:"total_reps"`
	TotalVolume    float64 `json:"total_volume"`
}

// ComputeSessionStats derives a session's totals. An exercise with zero
// sets contributes nothing to the sums but still counts toward
// TotalExercises; a weight of zero contributes zero volume but its reps
// still count.
func ComputeSessionStats(s *models.WorkoutSession) SessionStats {
	stats := SessionStats{TotalExercises: len(s.Exercises)}
	for i := range s.Exercises {
		for _, set := range s.Exercises[i].Sets {
			stats.TotalSets++
			stats.TotalReps += set.Reps
			stats.TotalVolume += set.WeightKg * float64(set.Reps)
		}
	}
	return stats
}

// AccountStats is the account-level rollup shown on the dashboard.
// TotalWorkouts and TotalDurationMinutes cover completed sessions only;
// TotalSets and TotalVolumeKg cover every session, in progress included.
type AccountStats struct {
	TotalWorkouts        int     `json:"total_workouts"`
	TotalDurationMinutes int     `json:"total_duration_minutes"`
	TotalSets            int     `json:"total_sets"`
	TotalVolumeKg        float64 `json:"total_volume_kg"`
}

// ComputeAccountStats folds per-session stats into the account rollup.
func ComputeAccountStats(sessions []models.WorkoutSession) AccountStats {
	var stats AccountStats
	for i := range sessions {
		s := &sessions[i]
		if s.IsCompleted {
			stats.TotalWorkouts++
			stats.TotalDurationMinutes += s.DurationMinutes
		}
		ss := ComputeSessionStats(s)
		stats.TotalSets += ss.TotalSets
		stats.TotalVolumeKg += ss.TotalVolume
	}
	return stats
}
