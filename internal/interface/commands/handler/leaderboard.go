package handler

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/interface/commands/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLER
// Handles the $leaderboard command - shows the top-N ranking block.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardHandler handles the $leaderboard command.
type LeaderboardHandler struct {
	leaderboardQuery *query.GetLeaderboardHandler
}

// NewLeaderboardHandler creates a new LeaderboardHandler with dependencies.
func NewLeaderboardHandler(leaderboardQuery *query.GetLeaderboardHandler) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardQuery: leaderboardQuery}
}

// LeaderboardRequest contains the parsed $leaderboard command data.
type LeaderboardRequest struct {
	// GuildID is the guild the command was issued in.
	GuildID int64

	// Limit is the number of entries to show. Non-positive values
	// produce an empty block.
	Limit int

	// Nick selects nicknames over real names for display and
	// tie-breaking.
	Nick bool
}

// LeaderboardResponse contains the response to send back.
type LeaderboardResponse struct {
	// Text is the rendered leaderboard block.
	Text string
}

// Handle processes the $leaderboard command.
func (h *LeaderboardHandler) Handle(ctx context.Context, req LeaderboardRequest) (*LeaderboardResponse, error) {
	result, err := h.leaderboardQuery.Handle(ctx, query.GetLeaderboardQuery{
		GuildID:     req.GuildID,
		Limit:       req.Limit,
		UseRealName: !req.Nick,
	})
	if err != nil {
		return nil, err
	}

	return &LeaderboardResponse{
		Text: presenter.LeaderboardBlock(result.Entries),
	}, nil
}
