package handler

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/interface/commands/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEADCOUNT HANDLER
// Handles the $headcount command - counts students in a voice channel.
// ══════════════════════════════════════════════════════════════════════════════

// ChannelMentioner resolves a named guild channel to its mention token.
type ChannelMentioner interface {
	ResolveChannel(ctx context.Context, guildID int64, channelName string) (string, error)
}

// HeadcountHandler handles the $headcount command.
type HeadcountHandler struct {
	headcountQuery *query.GetHeadcountHandler
	channels       ChannelMentioner
}

// NewHeadcountHandler creates a new HeadcountHandler with dependencies.
func NewHeadcountHandler(headcountQuery *query.GetHeadcountHandler, channels ChannelMentioner) *HeadcountHandler {
	return &HeadcountHandler{
		headcountQuery: headcountQuery,
		channels:       channels,
	}
}

// HeadcountRequest contains the parsed $headcount command data.
type HeadcountRequest struct {
	// GuildID is the guild the command was issued in.
	GuildID int64

	// ChannelName is the target voice channel.
	ChannelName string
}

// HeadcountResponse contains the response to send back.
type HeadcountResponse struct {
	// Text is the reply line.
	Text string

	// Count is the number of students in the channel.
	Count int
}

// Handle processes the $headcount command.
func (h *HeadcountHandler) Handle(ctx context.Context, req HeadcountRequest) (*HeadcountResponse, error) {
	result, err := h.headcountQuery.Handle(ctx, query.GetHeadcountQuery{
		GuildID:     req.GuildID,
		ChannelName: req.ChannelName,
	})
	if err != nil {
		return nil, err
	}

	mention, err := h.channels.ResolveChannel(ctx, req.GuildID, req.ChannelName)
	if err != nil {
		// The roster already resolved the channel; fall back to the
		// plain name rather than failing the reply.
		mention = "#" + req.ChannelName
	}

	return &HeadcountResponse{
		Text:  presenter.HeadcountLine(result.Count, mention),
		Count: result.Count,
	}, nil
}
