package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/claude/fitware/internal/auth"
	"github.com/claude/fitware/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(storage.NewMemStore(), "", log)
}

// doJSON performs a request against the full router (dev auth, user 1)
// and decodes the JSON response into a generic map.
func doJSON(t *testing.T, srv *Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func doJSONList(t *testing.T, srv *Server, path string) (int, []map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("GET %s: decode body %q: %v", path, rec.Body.String(), err)
	}
	return rec.Code, out
}

// TestWorkoutLifecycle walks the whole flow: create an exercise, build a
// template, start a session from it, log sets and watch the volume total
// grow, complete, and verify the session is locked afterwards.
func TestWorkoutLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Create the catalog exercise.
	code, ex := doJSON(t, srv, http.MethodPost, "/api/exercises", map[string]any{
		"name": "Bench Press", "category": "strength", "metric_type": "weight",
	})
	if code != http.StatusCreated {
		t.Fatalf("create exercise: status = %d, want 201", code)
	}
	exerciseID := ex["id"].(string)

	// Create the template.
	code, tpl := doJSON(t, srv, http.MethodPost, "/api/workouts/templates", map[string]any{
		"title": "Push Day",
		"exercises": []map[string]any{
			{"exercise_id": exerciseID, "order": 1, "target_sets": 4, "target_reps": 8},
		},
	})
	if code != http.StatusCreated {
		t.Fatalf("create template: status = %d, body = %v", code, tpl)
	}
	if tpl["exercise_count"].(float64) != 1 || tpl["total_sets"].(float64) != 4 {
		t.Errorf("template stats = %v/%v, want 1/4", tpl["exercise_count"], tpl["total_sets"])
	}
	entries := tpl["exercises"].([]any)
	if entries[0].(map[string]any)["exercise_name"] != "Bench Press" {
		t.Errorf("template entry missing denormalized name: %v", entries[0])
	}
	if entries[0].(map[string]any)["target_reps"] != "8" {
		t.Errorf("target_reps = %v, want normalized string \"8\"", entries[0].(map[string]any)["target_reps"])
	}
	templateID := tpl["id"].(string)

	// Start a session from it.
	code, session := doJSON(t, srv, http.MethodPost, "/api/workouts/templates/"+templateID+"/start_session", map[string]any{})
	if code != http.StatusCreated {
		t.Fatalf("start session: status = %d, body = %v", code, session)
	}
	sessionID := session["id"].(string)
	if session["template_id"] != templateID {
		t.Errorf("template_id = %v, want %s", session["template_id"], templateID)
	}
	sexs := session["exercises"].([]any)
	if len(sexs) != 1 {
		t.Fatalf("session exercises = %d, want 1", len(sexs))
	}
	if sets := sexs[0].(map[string]any)["sets"].([]any); len(sets) != 0 {
		t.Fatalf("new session has %d sets, want 0", len(sets))
	}

	// First set: volume 60*8 = 480.
	code, session = doJSON(t, srv, http.MethodPost, "/api/workouts/sessions/"+sessionID+"/add_set", map[string]any{
		"exercise_id": exerciseID, "weight_kg": 60, "reps": 8,
	})
	if code != http.StatusCreated {
		t.Fatalf("add_set: status = %d, body = %v", code, session)
	}
	if session["total_volume"].(float64) != 480 {
		t.Errorf("total_volume after one set = %v, want 480", session["total_volume"])
	}
	set := session["exercises"].([]any)[0].(map[string]any)["sets"].([]any)[0].(map[string]any)
	if set["set_number"].(float64) != 1 {
		t.Errorf("set_number = %v, want 1", set["set_number"])
	}

	// Second set doubles it.
	code, session = doJSON(t, srv, http.MethodPost, "/api/workouts/sessions/"+sessionID+"/add_set", map[string]any{
		"exercise_id": exerciseID, "weight_kg": 60, "reps": 8, "rpe": 7,
	})
	if code != http.StatusCreated {
		t.Fatalf("add_set 2: status = %d", code)
	}
	if session["total_volume"].(float64) != 960 {
		t.Errorf("total_volume after two sets = %v, want 960", session["total_volume"])
	}

	// Complete the session.
	code, session = doJSON(t, srv, http.MethodPost, "/api/workouts/sessions/"+sessionID+"/complete", map[string]any{
		"duration_minutes": 45, "mood": "💪", "notes": "good",
	})
	if code != http.StatusOK {
		t.Fatalf("complete: status = %d, body = %v", code, session)
	}
	if session["is_completed"] != true {
		t.Error("is_completed = false after complete")
	}
	if session["duration_minutes"].(float64) != 45 {
		t.Errorf("duration_minutes = %v, want 45", session["duration_minutes"])
	}

	// Locked: further mutations conflict.
	code, body := doJSON(t, srv, http.MethodPost, "/api/workouts/sessions/"+sessionID+"/add_set", map[string]any{
		"exercise_id": exerciseID, "weight_kg": 60, "reps": 8,
	})
	if code != http.StatusConflict {
		t.Errorf("add_set on completed: status = %d, want 409 (%v)", code, body)
	}
	code, _ = doJSON(t, srv, http.MethodPost, "/api/workouts/sessions/"+sessionID+"/complete", map[string]any{
		"duration_minutes": 50,
	})
	if code != http.StatusConflict {
		t.Errorf("double complete: status = %d, want 409", code)
	}

	// Stats reflect the completed workout.
	code, stats := doJSON(t, srv, http.MethodGet, "/api/workouts/sessions/stats", nil)
	if code != http.StatusOK {
		t.Fatalf("stats: status = %d", code)
	}
	if stats["total_workouts"].(float64) != 1 || stats["total_volume_kg"].(float64) != 960 {
		t.Errorf("account stats = %v, want 1 workout, 960 volume", stats)
	}
}

// TestSetMutations exercises update_set, delete_set, update_exercise and
// delete_exercise against an ad hoc session.
func TestSetMutations(t *testing.T) {
	srv := newTestServer(t)

	_, ex := doJSON(t, srv, http.MethodPost, "/api/exercises", map[string]any{
		"name": "Squat", "category": "strength", "metric_type": "weight",
	})
	exerciseID := ex["id"].(string)

	code, session := doJSON(t, srv, http.MethodPost, "/api/workouts/sessions", map[string]any{
		"title": "Leg Day",
	})
	if code != http.StatusCreated {
		t.Fatalf("create session: status = %d", code)
	}
	sessionID := session["id"].(string)

	for i := 0; i < 3; i++ {
		code, session = doJSON(t, srv, http.MethodPost, "/api/workouts/sessions/"+sessionID+"/add_set", map[string]any{
			"exercise_id": exerciseID, "weight_kg": 100, "reps": 5,
		})
		if code != http.StatusCreated {
			t.Fatalf("add_set %d: status = %d", i, code)
		}
	}
	container := session["exercises"].([]any)[0].(map[string]any)
	sets := container["sets"].([]any)
	secondSetID := sets[1].(map[string]any)["id"].(string)

	// Patch the second set's weight.
	code, session = doJSON(t, srv, http.MethodPatch, "/api/workouts/sessions/"+sessionID+"/update_set", map[string]any{
		"set_id": secondSetID, "weight_kg": 110,
	})
	if code != http.StatusOK {
		t.Fatalf("update_set: status = %d, body = %v", code, session)
	}
	if session["total_volume"].(float64) != 1550 {
		t.Errorf("volume after update = %v, want 1550", session["total_volume"])
	}

	// Delete it; survivors keep their numbers.
	code, session = doJSON(t, srv, http.MethodDelete, "/api/workouts/sessions/"+sessionID+"/delete_set?set_id="+secondSetID, nil)
	if code != http.StatusOK {
		t.Fatalf("delete_set: status = %d", code)
	}
	sets = session["exercises"].([]any)[0].(map[string]any)["sets"].([]any)
	if len(sets) != 2 {
		t.Fatalf("sets after delete = %d, want 2", len(sets))
	}
	if n := sets[1].(map[string]any)["set_number"].(float64); n != 3 {
		t.Errorf("surviving set number = %v, want 3 (no renumbering)", n)
	}

	// Deleting it again is a 404.
	code, _ = doJSON(t, srv, http.MethodDelete, "/api/workouts/sessions/"+sessionID+"/delete_set?set_id="+secondSetID, nil)
	if code != http.StatusNotFound {
		t.Errorf("repeat delete_set: status = %d, want 404", code)
	}

	// Update then delete the exercise container.
	containerID := session["exercises"].([]any)[0].(map[string]any)["id"].(string)
	code, session = doJSON(t, srv, http.MethodPatch, "/api/workouts/sessions/"+sessionID+"/update_exercise", map[string]any{
		"exercise_id": containerID, "notes": "felt heavy",
	})
	if code != http.StatusOK {
		t.Fatalf("update_exercise: status = %d", code)
	}
	if session["exercises"].([]any)[0].(map[string]any)["notes"] != "felt heavy" {
		t.Errorf("exercise notes not applied: %v", session["exercises"])
	}

	code, session = doJSON(t, srv, http.MethodDelete, "/api/workouts/sessions/"+sessionID+"/delete_exercise?exercise_id="+containerID, nil)
	if code != http.StatusOK {
		t.Fatalf("delete_exercise: status = %d", code)
	}
	if session["total_sets"].(float64) != 0 || session["total_exercises"].(float64) != 0 {
		t.Errorf("totals after cascade = %v sets / %v exercises, want 0/0", session["total_sets"], session["total_exercises"])
	}
}

// TestValidationAndNotFound verifies the status mapping: malformed input
// and broken invariants are 400, unknown entities 404.
func TestValidationAndNotFound(t *testing.T) {
	srv := newTestServer(t)

	code, _ := doJSON(t, srv, http.MethodPost, "/api/workouts/sessions", map[string]any{"title": "   "})
	if code != http.StatusBadRequest {
		t.Errorf("blank title: status = %d, want 400", code)
	}

	code, _ = doJSON(t, srv, http.MethodPost, "/api/workouts/templates", map[string]any{
		"title": "Empty", "exercises": []any{},
	})
	if code != http.StatusBadRequest {
		t.Errorf("template without exercises: status = %d, want 400", code)
	}

	code, _ = doJSON(t, srv, http.MethodGet, "/api/workouts/sessions/8e7c9f9e-08a6-4f2a-9a57-111111111111", nil)
	if code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", code)
	}

	code, _ = doJSON(t, srv, http.MethodGet, "/api/workouts/sessions/not-a-uuid", nil)
	if code != http.StatusBadRequest {
		t.Errorf("malformed id: status = %d, want 400", code)
	}

	// An add_set referencing an unknown catalog exercise is a client error.
	_, session := doJSON(t, srv, http.MethodPost, "/api/workouts/sessions", map[string]any{"title": "Solo"})
	code, _ = doJSON(t, srv, http.MethodPost, "/api/workouts/sessions/"+session["id"].(string)+"/add_set", map[string]any{
		"exercise_id": "8e7c9f9e-08a6-4f2a-9a57-222222222222", "reps": 5,
	})
	if code != http.StatusBadRequest {
		t.Errorf("unknown exercise ref: status = %d, want 400", code)
	}
}

// TestTemplateReplaceAndDelete verifies the full-replace update and that
// deleting a template detaches, but does not touch, derived sessions.
func TestTemplateReplaceAndDelete(t *testing.T) {
	srv := newTestServer(t)

	_, ex := doJSON(t, srv, http.MethodPost, "/api/exercises", map[string]any{
		"name": "Deadlift", "category": "strength", "metric_type": "weight",
	})
	exerciseID := ex["id"].(string)

	_, tpl := doJSON(t, srv, http.MethodPost, "/api/workouts/templates", map[string]any{
		"title": "Pull Day",
		"exercises": []map[string]any{
			{"exercise_id": exerciseID, "order": 1, "target_sets": 3, "target_reps": "5"},
		},
	})
	templateID := tpl["id"].(string)

	_, session := doJSON(t, srv, http.MethodPost, "/api/workouts/templates/"+templateID+"/start_session", map[string]any{})
	sessionID := session["id"].(string)

	// Replace the plan entirely.
	code, tpl := doJSON(t, srv, http.MethodPut, "/api/workouts/templates/"+templateID, map[string]any{
		"title": "Pull Day",
		"exercises": []map[string]any{
			{"exercise_id": exerciseID, "order": 1, "target_sets": 5, "target_reps": "3"},
			{"exercise_id": exerciseID, "order": 2, "target_sets": 2, "target_reps": "10"},
		},
	})
	if code != http.StatusOK {
		t.Fatalf("replace template: status = %d, body = %v", code, tpl)
	}
	if tpl["total_sets"].(float64) != 7 {
		t.Errorf("total_sets after replace = %v, want 7", tpl["total_sets"])
	}

	// The already-started session is untouched by the template edit.
	_, session = doJSON(t, srv, http.MethodGet, "/api/workouts/sessions/"+sessionID, nil)
	if n := len(session["exercises"].([]any)); n != 1 {
		t.Errorf("session exercises after template edit = %d, want 1", n)
	}

	// Delete the template; the session survives, detached.
	req := httptest.NewRequest(http.MethodDelete, "/api/workouts/templates/"+templateID, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete template: status = %d, want 204", rec.Code)
	}

	code, session = doJSON(t, srv, http.MethodGet, "/api/workouts/sessions/"+sessionID, nil)
	if code != http.StatusOK {
		t.Fatalf("get session after template delete: status = %d", code)
	}
	if _, hasRef := session["template_id"]; hasRef {
		t.Errorf("template_id still present after delete: %v", session["template_id"])
	}

	code, list := doJSONList(t, srv, "/api/workouts/templates")
	if code != http.StatusOK || len(list) != 0 {
		t.Errorf("templates after delete = %d entries, want 0", len(list))
	}
}

// TestBearerAuthScoping verifies that with a JWT secret configured,
// missing or bad tokens are rejected and each user only sees their own
// data.
func TestBearerAuthScoping(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(storage.NewMemStore(), "test-secret", log)

	code := func(method, path, token string, body any) (int, map[string]any) {
		var reader io.Reader
		if body != nil {
			payload, _ := json.Marshal(body)
			reader = bytes.NewReader(payload)
		}
		req := httptest.NewRequest(method, path, reader)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		var out map[string]any
		if rec.Body.Len() > 0 {
			json.Unmarshal(rec.Body.Bytes(), &out)
		}
		return rec.Code, out
	}

	if status, _ := code(http.MethodGet, "/api/me", "", nil); status != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", status)
	}
	if status, _ := code(http.MethodGet, "/api/me", "garbage", nil); status != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", status)
	}

	aliceToken, err := auth.Sign("test-secret", 10, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	bobToken, err := auth.Sign("test-secret", 20, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	status, me := code(http.MethodGet, "/api/me", aliceToken, nil)
	if status != http.StatusOK || me["user_id"].(float64) != 10 {
		t.Fatalf("me = %d %v, want 200 user 10", status, me)
	}

	status, session := code(http.MethodPost, "/api/workouts/sessions", aliceToken, map[string]any{"title": "Alice Day"})
	if status != http.StatusCreated {
		t.Fatalf("alice create: status = %d", status)
	}
	sessionID := session["id"].(string)

	if status, _ := code(http.MethodGet, "/api/workouts/sessions/"+sessionID, bobToken, nil); status != http.StatusNotFound {
		t.Errorf("bob reading alice's session: status = %d, want 404", status)
	}
	if status, _ := code(http.MethodGet, "/api/workouts/sessions/"+sessionID, aliceToken, nil); status != http.StatusOK {
		t.Errorf("alice reading own session: status = %d, want 200", status)
	}
}

// TestSessionUpdateAndDelete verifies metadata patches and the delete
// endpoint.
func TestSessionUpdateAndDelete(t *testing.T) {
	srv := newTestServer(t)

	_, session := doJSON(t, srv, http.MethodPost, "/api/workouts/sessions", map[string]any{
		"title": "Morning", "notes": "quick one",
	})
	sessionID := session["id"].(string)

	code, session := doJSON(t, srv, http.MethodPatch, "/api/workouts/sessions/"+sessionID+"/update_session", map[string]any{
		"title": "Morning v2", "duration_minutes": 30,
	})
	if code != http.StatusOK {
		t.Fatalf("update_session: status = %d", code)
	}
	if session["title"] != "Morning v2" || session["duration_minutes"].(float64) != 30 {
		t.Errorf("after patch: %v", session)
	}
	if session["notes"] != "quick one" {
		t.Errorf("notes = %v, want untouched", session["notes"])
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/workouts/sessions/"+sessionID, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete session: status = %d, want 204", rec.Code)
	}

	code, _ = doJSON(t, srv, http.MethodGet, "/api/workouts/sessions/"+sessionID, nil)
	if code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", code)
	}
}

// TestConcurrentAddSets fires overlapping add_set requests at one session
// and verifies no acknowledged set is lost and no set number is handed
// out twice.
func TestConcurrentAddSets(t *testing.T) {
	srv := newTestServer(t)

	_, ex := doJSON(t, srv, http.MethodPost, "/api/exercises", map[string]any{
		"name": "Deadlift", "category": "strength", "metric_type": "weight",
	})
	exerciseID := ex["id"].(string)
	_, session := doJSON(t, srv, http.MethodPost, "/api/workouts/sessions", map[string]any{
		"title": "Pull Day",
	})
	sessionID := session["id"].(string)

	body, _ := json.Marshal(map[string]any{
		"exercise_id": exerciseID, "weight_kg": 100, "reps": 5,
	})
	const writers = 12
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost,
				"/api/workouts/sessions/"+sessionID+"/add_set", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusCreated {
				t.Errorf("add_set: status = %d, want 201", rec.Code)
			}
		}()
	}
	wg.Wait()

	code, got := doJSON(t, srv, http.MethodGet, "/api/workouts/sessions/"+sessionID, nil)
	if code != http.StatusOK {
		t.Fatalf("get session: status = %d", code)
	}
	if got["total_sets"].(float64) != writers {
		t.Fatalf("total_sets = %v, want %d: a concurrent write was lost", got["total_sets"], writers)
	}
	sets := got["exercises"].([]any)[0].(map[string]any)["sets"].([]any)
	seen := make(map[float64]bool)
	for _, raw := range sets {
		n := raw.(map[string]any)["set_number"].(float64)
		if seen[n] {
			t.Errorf("set_number %v assigned twice", n)
		}
		seen[n] = true
	}
}

// TestCompleteWithEmptyBody verifies that a bare POST to complete closes
// the session with default duration, mood, and notes.
func TestCompleteWithEmptyBody(t *testing.T) {
	srv := newTestServer(t)

	_, session := doJSON(t, srv, http.MethodPost, "/api/workouts/sessions", map[string]any{
		"title": "Quick One",
	})
	sessionID := session["id"].(string)

	code, got := doJSON(t, srv, http.MethodPost, "/api/workouts/sessions/"+sessionID+"/complete", nil)
	if code != http.StatusOK {
		t.Fatalf("complete without body: status = %d, want 200", code)
	}
	if got["is_completed"] != true {
		t.Errorf("is_completed = %v, want true", got["is_completed"])
	}
	if got["duration_minutes"].(float64) != 0 {
		t.Errorf("duration_minutes = %v, want 0", got["duration_minutes"])
	}
}
