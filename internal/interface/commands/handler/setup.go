// Package handler contains guild command handlers.
package handler

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/application/saga"
)

// ══════════════════════════════════════════════════════════════════════════════
// SETUP HANDLER
// Handles the $setup command - one-time cohort initialization.
// The reply is the permalink of the code of conduct message, on replay
// the permalink of the originally stored one.
// ══════════════════════════════════════════════════════════════════════════════

// MessageLinker resolves a delivered message to its permalink.
type MessageLinker interface {
	MessageLink(ctx context.Context, guildID int64, channelName string, messageID int64) (string, error)
}

// SetupHandler handles the $setup command.
type SetupHandler struct {
	setupSaga *saga.CohortSetupSaga
	links     MessageLinker
}

// NewSetupHandler creates a new SetupHandler with dependencies.
func NewSetupHandler(setupSaga *saga.CohortSetupSaga, links MessageLinker) *SetupHandler {
	return &SetupHandler{
		setupSaga: setupSaga,
		links:     links,
	}
}

// SetupRequest contains the parsed $setup command data.
type SetupRequest struct {
	// GuildID is the guild the command was issued in.
	GuildID int64

	// Date is the bootcamp start date in 'yyyy-mm-dd'.
	Date string

	// CorrelationID for tracing.
	CorrelationID string
}

// SetupResponse contains the response to send back.
type SetupResponse struct {
	// Text is the reply text (the code of conduct permalink).
	Text string

	// Replayed is true when the cohort was already initialized.
	Replayed bool
}

// Handle processes the $setup command.
func (h *SetupHandler) Handle(ctx context.Context, req SetupRequest) (*SetupResponse, error) {
	result, err := h.setupSaga.Execute(ctx, saga.SetupInput{
		GuildID:       req.GuildID,
		StartDate:     req.Date,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		return nil, err
	}

	link, err := h.links.MessageLink(ctx, req.GuildID, saga.ChannelCodeOfConduct, result.MarkerMsgID.Int64())
	if err != nil {
		return nil, err
	}

	return &SetupResponse{
		Text:     link,
		Replayed: result.Replayed,
	}, nil
}
