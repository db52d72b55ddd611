package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/claude/fitware/internal/auth"
	"github.com/claude/fitware/internal/models"
	"github.com/claude/fitware/internal/workout"
)

// templatePayload is a template plus its derived counts.
type templatePayload struct {
	*models.WorkoutTemplate
	workout.TemplateStats
}

func newTemplatePayload(t *models.WorkoutTemplate) templatePayload {
	return templatePayload{WorkoutTemplate: t, TemplateStats: workout.ComputeTemplateStats(t)}
}

type templateRequest struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Exercises   []models.TemplateExercise `json:"exercises"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	templates, err := s.store.ListTemplates(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	payloads := make([]templatePayload, len(templates))
	for i := range templates {
		payloads[i] = newTemplatePayload(&templates[i])
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}

	t, err := workout.NewTemplate(req.Title, req.Description, req.Exercises)
	if err != nil {
		s.writeError(w, err)
		return
	}
	t.UserID = userID

	if err := s.checkCatalogRefs(r, userID, t); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.CreateTemplate(r.Context(), t); err != nil {
		s.writeError(w, err)
		return
	}

	// Re-read for the denormalized exercise names.
	stored, err := s.store.GetTemplate(r.Context(), userID, t.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTemplatePayload(stored))
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	t, err := s.store.GetTemplate(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTemplatePayload(t))
}

// handleReplaceTemplate is a full replace: the submitted exercise list
// becomes the template's entire plan.
func (s *Server) handleReplaceTemplate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON: "+err.Error()))
		return
	}

	t := &models.WorkoutTemplate{
		ID:          id,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Exercises:   req.Exercises,
	}
	if err := workout.ValidateTemplate(t); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.checkCatalogRefs(r, userID, t); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.ReplaceTemplate(r.Context(), t); err != nil {
		s.writeError(w, err)
		return
	}

	stored, err := s.store.GetTemplate(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTemplatePayload(stored))
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.DeleteTemplate(r.Context(), userID, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStartSession instantiates the template into a new in-progress
// session owned by the caller.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id, err := urlID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	t, err := s.store.GetTemplate(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	session := workout.Instantiate(t, time.Now().UTC())
	if err := s.store.CreateSession(r.Context(), session); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionPayload(session))
}

// checkCatalogRefs verifies every entry points at a catalog exercise the
// user can see. A dangling reference is a client error, not a 404.
func (s *Server) checkCatalogRefs(r *http.Request, userID int64, t *models.WorkoutTemplate) error {
	for _, e := range t.Exercises {
		if _, err := s.store.GetExercise(r.Context(), userID, e.ExerciseID); err != nil {
			if errors.Is(err, workout.ErrNotFound) {
				return fmt.Errorf("%w: unknown exercise %s", workout.ErrValidation, e.ExerciseID)
			}
			return err
		}
	}
	return nil
}
