package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/fitware/internal/auth"
	"github.com/claude/fitware/internal/models"
	"github.com/claude/fitware/internal/workout"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{"user_id": auth.UserIDFromContext(r.Context())})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	search := r.URL.Query().Get("search")

	exercises, err := s.store.ListExercises(r.Context(), userID, search)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

type createExerciseRequest struct {
	Name       string                  `json:"name"`
	Category   models.ExerciseCategory `json:"category"`
	MetricType models.MetricType       `json:"metric_type"`
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}

	ex, err := workout.NewExercise(req.Name, req.Category, req.MetricType)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ex.CreatedBy = &userID

	inserted, err := s.store.CreateExercise(r.Context(), ex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !inserted {
		writeJSON(w, http.StatusBadRequest, errorBody("an exercise with that name already exists"))
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleAccountStats(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	stats, err := s.store.AccountStats(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeError maps domain errors to status codes: validation 400, missing
// entities 404, completed-session mutations 409. Anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workout.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, workout.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, workout.ErrSessionLocked):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		s.log.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// urlID parses the {id} route parameter as a UUID.
func urlID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", workout.ErrValidation, param)
	}
	return id, nil
}
