package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/fitware/internal/client"
)

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog visible to the user: global seeded exercises plus their custom ones. Each entry has a category (strength/cardio/flexibility) and metric type (weight/distance/time/reps)."),
	mcp.WithString("search", mcp.Description("Case-insensitive name substring filter (e.g. 'bench')")),
)

var toolGetTemplates = mcp.NewTool("get_templates",
	mcp.WithDescription("List the user's workout templates, newest first. Each template is an ordered exercise plan with target sets/reps plus derived exercise and set counts."),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("List the user's workout sessions, newest first, with full exercise/set detail and derived totals (sets, reps, volume). Use completed_only to restrict to finished workouts."),
	mcp.WithBoolean("completed_only", mcp.Description("Return only completed sessions. Defaults to false.")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get one workout session by ID with its full exercise and set graph and derived totals."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session UUID")),
)

var toolGetAccountStats = mcp.NewTool("get_account_stats",
	mcp.WithDescription("Account-level training totals: completed workout count, total duration, and set/volume totals across all sessions."),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	exercises, err := h.ds.ListExercises(ctx, uid, req.GetString("search", ""))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	templates, err := h.ds.ListTemplates(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.ListSessions(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if req.GetBool("completed_only", false) {
		completed := make([]client.Session, 0, len(sessions))
		for _, s := range sessions {
			if s.IsCompleted {
				completed = append(completed, s)
			}
		}
		sessions = completed
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid session id: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	session, err := h.ds.GetSession(ctx, uid, id)
	if err != nil {
		h.log.Error("mcp get_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(session)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAccountStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	stats, err := h.ds.AccountStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_account_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
