package handler

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// GIVEXP HANDLER
// Handles the $givexp command - awards XP to a student.
// Success is silent; a non-student target is a silent no-op as well.
// ══════════════════════════════════════════════════════════════════════════════

// GiveXPHandler handles the $givexp command.
type GiveXPHandler struct {
	awardXP *command.AwardXPHandler
}

// NewGiveXPHandler creates a new GiveXPHandler with dependencies.
func NewGiveXPHandler(awardXP *command.AwardXPHandler) *GiveXPHandler {
	return &GiveXPHandler{awardXP: awardXP}
}

// GiveXPRequest contains the parsed $givexp command data.
type GiveXPRequest struct {
	// GuildID is the guild the command was issued in.
	GuildID int64

	// MemberID is the targeted guild member.
	MemberID int64

	// Amount is the XP delta. Negative amounts lower XP but never level.
	Amount int

	// CorrelationID for tracing.
	CorrelationID string
}

// GiveXPResponse contains the award outcome.
type GiveXPResponse struct {
	// Skipped is true when the target is not an enrolled student.
	Skipped bool

	// NewLevel and NewXP describe the progression after the award.
	// Zero values when skipped.
	NewLevel int
	NewXP    int
}

// Handle processes the $givexp command.
func (h *GiveXPHandler) Handle(ctx context.Context, req GiveXPRequest) (*GiveXPResponse, error) {
	result, err := h.awardXP.Handle(ctx, command.AwardXPCommand{
		GuildID:       req.GuildID,
		MemberID:      req.MemberID,
		Amount:        req.Amount,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		return nil, err
	}

	if result.Skipped {
		return &GiveXPResponse{Skipped: true}, nil
	}

	return &GiveXPResponse{
		NewLevel: result.Award.NewLevel,
		NewXP:    result.Award.NewXP,
	}, nil
}
