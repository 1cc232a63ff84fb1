// Package http implements the REST API for BotCamp Hub.
package http

import (
	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/pkg/logger"
	"github.com/c4t-hub/botcamp-hub/pkg/timeutil"
	"context"
	"errors"
	"net/http"
	"strconv"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "BotCamp Hub API",
		"version":     "v1",
		"description": "REST API for BotCamp Hub - cohort progression and session state",
		"endpoints": map[string]string{
			"health":      "/health",
			"leaderboard": "/api/v1/leaderboard",
			"evals":       "/api/v1/evals",
			"stats":       "/api/v1/stats",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// GUILD RESOLUTION
// ══════════════════════════════════════════════════════════════════════════════

// resolveGuild resolves the guild of the active cohort. Every public read
// endpoint serves the active cohort; without one the API has nothing to show.
func (s *Server) resolveGuild(ctx context.Context, w http.ResponseWriter) (shared.GuildID, bool) {
	if s.deps.Registry == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Cohort registry not configured")
		return 0, false
	}

	guildID, err := s.deps.Registry.ActiveGuild(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNoActiveCohort) {
			writeJSONError(w, http.StatusNotFound, "no_active_cohort", "No active cohort is registered")
			return 0, false
		}
		s.logger.Error("failed to resolve active cohort", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve active cohort")
		return 0, false
	}

	return guildID, true
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLeaderboard handles GET /api/v1/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.LeaderboardQuery == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Leaderboard handler not configured")
		return
	}

	guildID, ok := s.resolveGuild(r.Context(), w)
	if !ok {
		return
	}

	// Parse query parameters
	q := query.GetLeaderboardQuery{
		GuildID:     guildID.Int64(),
		Limit:       getQueryParamInt(r, "limit", query.DefaultLeaderboardLimit),
		UseRealName: getQueryParamBool(r, "real_names"),
	}

	result, err := s.deps.LeaderboardQuery.Handle(r.Context(), q)
	if err != nil {
		if shared.IsValidation(err) {
			writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Invalid leaderboard parameters", err.Error())
			return
		}
		s.logger.Error("leaderboard query failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to build leaderboard")
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		TotalCount: len(result.Entries),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// EVALS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetEvals handles GET /api/v1/evals
func (s *Server) handleGetEvals(w http.ResponseWriter, r *http.Request) {
	s.handleEvalsInternal(w, r, getQueryParamInt(r, "day", 0))
}

// handleGetEvalsByDay handles GET /api/v1/evals/{day}
func (s *Server) handleGetEvalsByDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Day must be an integer")
		return
	}
	s.handleEvalsInternal(w, r, day)
}

// handleEvalsInternal is the internal implementation for evals handlers.
// Day 0 is the sentinel for the latest recorded day.
func (s *Server) handleEvalsInternal(w http.ResponseWriter, r *http.Request, day int) {
	if s.deps.PairingsQuery == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Pairings handler not configured")
		return
	}

	guildID, ok := s.resolveGuild(r.Context(), w)
	if !ok {
		return
	}

	q := query.GetDailyPairingsQuery{
		GuildID:     guildID.Int64(),
		Day:         day,
		UseRealName: getQueryParamBool(r, "real_names"),
	}

	result, err := s.deps.PairingsQuery.Handle(r.Context(), q)
	if err != nil {
		if shared.IsValidation(err) {
			writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Invalid evals parameters", err.Error())
			return
		}
		s.logger.Error("pairings query failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to load pairings")
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		TotalCount: len(result.Pairings),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStats handles GET /api/v1/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	guildID, ok := s.resolveGuild(r.Context(), w)
	if !ok {
		return
	}

	stats := map[string]interface{}{
		"guild_id":       guildID.Int64(),
		"uptime_seconds": int64(s.Uptime().Seconds()),
	}

	if s.deps.StudentRepo != nil {
		count, err := s.deps.StudentRepo.Count(r.Context(), guildID)
		if err != nil {
			s.logger.Error("student count failed", logger.Err(err))
			writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to count students")
			return
		}
		stats["student_count"] = count
	}

	if s.deps.CohortRepo != nil {
		c, err := s.deps.CohortRepo.Get(r.Context(), guildID)
		switch {
		case err == nil:
			stats["cohort"] = map[string]interface{}{
				"start_date":  c.StartDate,
				"day":         c.DayNumber(timeutil.Now()),
				"initialized": c.MarkerMsgID.Int64() != 0,
			}
		case errors.Is(err, shared.ErrCohortNotFound):
			stats["cohort"] = nil
		default:
			s.logger.Error("cohort lookup failed", logger.Err(err))
			writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to load cohort")
			return
		}
	}

	if s.deps.DB != nil {
		h, err := s.deps.DB.Health(r.Context())
		if err != nil {
			s.logger.Error("database health check failed", logger.Err(err))
		} else {
			stats["database"] = map[string]interface{}{
				"healthy":         h.Healthy,
				"ping_latency_ms": h.PingLatency.Milliseconds(),
				"total_conns":     h.TotalConns,
				"idle_conns":      h.IdleConns,
				"acquired_conns":  h.AcquiredConns,
			}
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetRegistry handles GET /admin/registry
func (s *Server) handleGetRegistry(w http.ResponseWriter, r *http.Request) {
	if s.deps.Registry == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Cohort registry not configured")
		return
	}

	guildID, err := s.deps.Registry.ActiveGuild(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrNoActiveCohort) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"active_guild": nil})
			return
		}
		s.logger.Error("registry lookup failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to read registry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active_guild": guildID.Int64(),
	})
}

// handleGetCohort handles GET /admin/cohort
func (s *Server) handleGetCohort(w http.ResponseWriter, r *http.Request) {
	if s.deps.CohortRepo == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Cohort repository not configured")
		return
	}

	guildID, ok := s.resolveGuild(r.Context(), w)
	if !ok {
		return
	}

	c, err := s.deps.CohortRepo.Get(r.Context(), guildID)
	if err != nil {
		if errors.Is(err, shared.ErrCohortNotFound) {
			writeJSONError(w, http.StatusNotFound, "cohort_not_found", "Cohort settings were never created")
			return
		}
		s.logger.Error("cohort lookup failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to load cohort")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"guild_id":      c.GuildID.Int64(),
		"start_date":    c.StartDate,
		"marker_msg_id": c.MarkerMsgID.Int64(),
		"initialized":   c.MarkerMsgID.Int64() != 0,
		"created_at":    c.CreatedAt,
		"updated_at":    c.UpdatedAt,
	})
}
