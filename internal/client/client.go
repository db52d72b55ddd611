// Package client is a typed Go client for the Fitware REST API. It is the
// transport behind the remote MCP mode and the history importer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/fitware/internal/models"
	"github.com/claude/fitware/internal/workout"
)

// CredentialsProvider supplies the bearer token for each request. The
// indirection lets callers plug in rotating tokens without the client
// knowing where they come from.
type CredentialsProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialsProvider wrapping a fixed token string.
// An empty token sends no Authorization header, which a dev-mode server
// accepts as user 1.
type StaticToken string

// Token implements CredentialsProvider.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client calls the Fitware REST API.
type Client struct {
	baseURL    string
	creds      CredentialsProvider
	httpClient *http.Client
}

// New creates a Client targeting the given base URL.
func New(baseURL string, creds CredentialsProvider) *Client {
	if creds == nil {
		creds = StaticToken("")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Session is a workout session as returned by the API, with the derived
// totals the server attaches.
type Session struct {
	models.WorkoutSession
	workout.SessionStats
}

// Template is a workout template as returned by the API.
type Template struct {
	models.WorkoutTemplate
	workout.TemplateStats
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("client: credentials: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(method, path, resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("client: decode %s: %w", path, err)
		}
	}
	return nil
}

// apiError converts an error response back into the sentinel the server
// derived it from, so callers can use errors.Is across the wire.
func apiError(method, path string, status int, raw []byte) error {
	msg := strings.TrimSpace(string(raw))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}

	var sentinel error
	switch status {
	case http.StatusNotFound:
		sentinel = workout.ErrNotFound
	case http.StatusBadRequest:
		sentinel = workout.ErrValidation
	case http.StatusConflict:
		sentinel = workout.ErrSessionLocked
	default:
		return fmt.Errorf("client: %s %s returned %d: %s", method, path, status, msg)
	}
	return fmt.Errorf("%w: %s %s: %s", sentinel, method, path, msg)
}

// ListExercises fetches the visible exercise catalog, optionally filtered
// by a case-insensitive name substring.
func (c *Client) ListExercises(ctx context.Context, search string) ([]models.Exercise, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	var exercises []models.Exercise
	if err := c.do(ctx, http.MethodGet, "/api/exercises", params, nil, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// CreateExercise adds a custom exercise to the caller's catalog.
func (c *Client) CreateExercise(ctx context.Context, name string, category models.ExerciseCategory, metric models.MetricType) (*models.Exercise, error) {
	in := map[string]any{"name": name, "category": category, "metric_type": metric}
	var ex models.Exercise
	if err := c.do(ctx, http.MethodPost, "/api/exercises", nil, in, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}

// ListTemplates fetches the caller's templates, newest first.
func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var templates []Template
	if err := c.do(ctx, http.MethodGet, "/api/workouts/templates", nil, nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// StartSession instantiates the template into a new in-progress session.
func (c *Client) StartSession(ctx context.Context, templateID uuid.UUID) (*Session, error) {
	var s Session
	path := fmt.Sprintf("/api/workouts/templates/%s/start_session", templateID)
	if err := c.do(ctx, http.MethodPost, path, nil, struct{}{}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions fetches the caller's sessions, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.do(ctx, http.MethodGet, "/api/workouts/sessions", nil, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession fetches one session with its full exercise and set graph.
func (c *Client) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodGet, "/api/workouts/sessions/"+id.String(), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession starts a blank ad hoc session. A non-nil createdDate
// backdates it, used when replaying history.
func (c *Client) CreateSession(ctx context.Context, title, notes string, createdDate *time.Time) (*Session, error) {
	in := map[string]any{"title": title, "notes": notes}
	if createdDate != nil {
		in["created_date"] = createdDate.UTC()
	}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/workouts/sessions", nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AddSet logs a set against a catalog exercise and returns the updated
// session.
func (c *Client) AddSet(ctx context.Context, sessionID, exerciseID uuid.UUID, weightKg float64, reps int, rpe *int) (*Session, error) {
	in := map[string]any{"exercise_id": exerciseID, "weight_kg": weightKg, "reps": reps}
	if rpe != nil {
		in["rpe"] = *rpe
	}
	var s Session
	path := fmt.Sprintf("/api/workouts/sessions/%s/add_set", sessionID)
	if err := c.do(ctx, http.MethodPost, path, nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Complete closes the session. The transition is one-way; completing an
// already completed session fails with ErrSessionLocked.
func (c *Client) Complete(ctx context.Context, sessionID uuid.UUID, durationMinutes int, mood, notes string) (*Session, error) {
	in := map[string]any{"duration_minutes": durationMinutes, "mood": mood, "notes": notes}
	var s Session
	path := fmt.Sprintf("/api/workouts/sessions/%s/complete", sessionID)
	if err := c.do(ctx, http.MethodPost, path, nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AccountStats fetches the account-level rollup.
func (c *Client) AccountStats(ctx context.Context) (*workout.AccountStats, error) {
	var stats workout.AccountStats
	if err := c.do(ctx, http.MethodGet, "/api/workouts/sessions/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
