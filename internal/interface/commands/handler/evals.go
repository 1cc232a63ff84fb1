package handler

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/interface/commands/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVALS HANDLER
// Handles the $evals command - shows a day's evaluation pairs.
// Day 0 resolves to the latest recorded day, but the rendered header
// always shows the day exactly as requested.
// ══════════════════════════════════════════════════════════════════════════════

// EvalsHandler handles the $evals command.
type EvalsHandler struct {
	pairingsQuery *query.GetDailyPairingsHandler
}

// NewEvalsHandler creates a new EvalsHandler with dependencies.
func NewEvalsHandler(pairingsQuery *query.GetDailyPairingsHandler) *EvalsHandler {
	return &EvalsHandler{pairingsQuery: pairingsQuery}
}

// EvalsRequest contains the parsed $evals command data.
type EvalsRequest struct {
	// GuildID is the guild the command was issued in.
	GuildID int64

	// Day selects the evaluation day. Zero means the latest day.
	Day int

	// Nick selects nicknames over real names for display.
	Nick bool
}

// EvalsResponse contains the response to send back.
type EvalsResponse struct {
	// Text is the rendered evals block.
	Text string

	// EffectiveDay is the day the pairs actually came from.
	EffectiveDay int
}

// Handle processes the $evals command.
func (h *EvalsHandler) Handle(ctx context.Context, req EvalsRequest) (*EvalsResponse, error) {
	result, err := h.pairingsQuery.Handle(ctx, query.GetDailyPairingsQuery{
		GuildID:     req.GuildID,
		Day:         req.Day,
		UseRealName: !req.Nick,
	})
	if err != nil {
		return nil, err
	}

	return &EvalsResponse{
		Text:         presenter.EvalsBlock(result.RequestedDay, result.Pairings),
		EffectiveDay: result.EffectiveDay,
	}, nil
}
