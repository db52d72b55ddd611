package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/auth"
	"github.com/claude/fitware/internal/models"
	"github.com/claude/fitware/internal/workout"
)

// sessionPayload is a session plus its derived totals. Every endpoint that
// returns a session returns this shape, so clients always see totals that
// agree with the entity graph they were computed from.
type sessionPayload struct {
	*models.WorkoutSession
	workout.SessionStats
}

func newSessionPayload(s *models.WorkoutSession) sessionPayload {
	return sessionPayload{WorkoutSession: s, SessionStats: workout.ComputeSessionStats(s)}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	sessions, err := s.store.ListSessions(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	payloads := make([]sessionPayload, len(sessions))
	for i := range sessions {
		payloads[i] = newSessionPayload(&sessions[i])
	}
	writeJSON(w, http.StatusOK, payloads)
}

type createSessionRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
	// CreatedDate backdates the session, used by history imports.
	CreatedDate *time.Time `json:"created_date"`
}

// handleCreateSession starts a blank ad hoc session, no template involved.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}

	createdAt := time.Now().UTC()
	if req.CreatedDate != nil {
		createdAt = req.CreatedDate.UTC()
	}
	session, err := workout.NewSession(req.Title, req.Notes, createdAt)
	if err != nil {
		s.writeError(w, err)
		return
	}
	session.UserID = userID

	if err := s.store.CreateSession(r.Context(), session); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionPayload(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionPayload(session))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.DeleteSession(r.Context(), userID, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateSessionRequest struct {
	Title           *string `json:"title"`
	DurationMinutes *int    `json:"duration_minutes"`
	Notes           *string `json:"notes"`
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}

	s.mutateSession(w, r, http.StatusOK, func(session *models.WorkoutSession) error {
		return workout.UpdateSession(session, workout.SessionPatch{
			Title:           req.Title,
			DurationMinutes: req.DurationMinutes,
			Notes:           req.Notes,
		})
	})
}

type addSetRequest struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	WeightKg   float64   `json:"weight_kg"`
	Reps       int       `json:"reps"`
	RPE        *int      `json:"rpe"`
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req addSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}
	if req.ExerciseID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorBody("exercise_id is required"))
		return
	}

	exercise, err := s.store.GetExercise(r.Context(), userID, req.ExerciseID)
	if err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			err = fmt.Errorf("%w: unknown exercise %s", workout.ErrValidation, req.ExerciseID)
		}
		s.writeError(w, err)
		return
	}

	s.mutateSession(w, r, http.StatusCreated, func(session *models.WorkoutSession) error {
		_, err := workout.AddSet(session, exercise, req.WeightKg, req.Reps, req.RPE)
		return err
	})
}

type updateSetRequest struct {
	SetID    uuid.UUID `json:"set_id"`
	WeightKg *float64  `json:"weight_kg"`
	Reps     *int      `json:"reps"`
	RPE      *int      `json:"rpe"`
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req updateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}
	if req.SetID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorBody("set_id is required"))
		return
	}

	s.mutateSession(w, r, http.StatusOK, func(session *models.WorkoutSession) error {
		return workout.UpdateSet(session, req.SetID, workout.SetPatch{
			WeightKg: req.WeightKg,
			Reps:     req.Reps,
			RPE:      req.RPE,
		})
	})
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	setID, err := queryID(r, "set_id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mutateSession(w, r, http.StatusOK, func(session *models.WorkoutSession) error {
		return workout.DeleteSet(session, setID)
	})
}

type updateExerciseRequest struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	Notes      *string   `json:"notes"`
	Order      *int      `json:"order"`
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var req updateExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}
	if req.ExerciseID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorBody("exercise_id is required"))
		return
	}

	s.mutateSession(w, r, http.StatusOK, func(session *models.WorkoutSession) error {
		return workout.UpdateExercise(session, req.ExerciseID, workout.ExercisePatch{
			Notes: req.Notes,
			Order: req.Order,
		})
	})
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	exerciseID, err := queryID(r, "exercise_id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mutateSession(w, r, http.StatusOK, func(session *models.WorkoutSession) error {
		_, err := workout.DeleteExercise(session, exerciseID)
		return err
	})
}

type completeRequest struct {
	DurationMinutes int    `json:"duration_minutes"`
	Mood            string `json:"mood"`
	Notes           string `json:"notes"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	// A bare POST completes with defaults; only a malformed body is an error.
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}

	s.mutateSession(w, r, http.StatusOK, func(session *models.WorkoutSession) error {
		return workout.Complete(session, req.DurationMinutes, req.Mood, req.Notes)
	})
}

// loadSession fetches the session named by the route, writing the error
// response itself on failure.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*models.WorkoutSession, bool) {
	userID := auth.UserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	session, err := s.store.GetSession(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return session, true
}

// mutateSession runs the store's serialized load, apply, save cycle for
// the session named by the route and echoes the full updated session on
// success.
func (s *Server) mutateSession(w http.ResponseWriter, r *http.Request, status int, apply func(*models.WorkoutSession) error) {
	userID := auth.UserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	session, err := s.store.MutateSession(r.Context(), userID, id, apply)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, newSessionPayload(session))
}

// queryID parses a required UUID query parameter.
func queryID(r *http.Request, param string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", workout.ErrValidation, param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", workout.ErrValidation, param)
	}
	return id, nil
}
