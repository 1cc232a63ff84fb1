package handler

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEV HANDLERS
// Handle the $devecho and $devattach commands - thin passthroughs that
// relay an operator-supplied message into an arbitrary channel.
// ══════════════════════════════════════════════════════════════════════════════

// ChannelSender delivers plain text into a named guild channel.
type ChannelSender interface {
	SendToChannel(ctx context.Context, guildID shared.GuildID, channelName, content string) (shared.MessageID, error)
}

// AttachmentSender delivers text with an attached file into a channel.
type AttachmentSender interface {
	SendWithAttachment(ctx context.Context, guildID int64, channelName, content, attachmentURL string) (int64, error)
}

// DevEchoHandler handles the $devecho command.
type DevEchoHandler struct {
	sender ChannelSender
}

// NewDevEchoHandler creates a new DevEchoHandler with dependencies.
func NewDevEchoHandler(sender ChannelSender) *DevEchoHandler {
	return &DevEchoHandler{sender: sender}
}

// DevEchoRequest contains the parsed $devecho command data.
type DevEchoRequest struct {
	// GuildID is the guild the command was issued in.
	GuildID int64

	// ChannelName is the destination channel.
	ChannelName string

	// Message is the message body.
	Message string
}

// Handle processes the $devecho command. Success is silent.
func (h *DevEchoHandler) Handle(ctx context.Context, req DevEchoRequest) error {
	_, err := h.sender.SendToChannel(ctx, shared.GuildID(req.GuildID), req.ChannelName, req.Message)
	return err
}

// DevAttachHandler handles the $devattach command.
type DevAttachHandler struct {
	sender AttachmentSender
}

// NewDevAttachHandler creates a new DevAttachHandler with dependencies.
func NewDevAttachHandler(sender AttachmentSender) *DevAttachHandler {
	return &DevAttachHandler{sender: sender}
}

// DevAttachRequest contains the parsed $devattach command data.
type DevAttachRequest struct {
	// GuildID is the guild the command was issued in.
	GuildID int64

	// ChannelName is the destination channel.
	ChannelName string

	// Message is the message body.
	Message string

	// AttachmentURL points at the file attached to the invoking
	// message. Empty when the operator forgot the attachment.
	AttachmentURL string
}

// Handle processes the $devattach command. Success is silent.
func (h *DevAttachHandler) Handle(ctx context.Context, req DevAttachRequest) error {
	if req.AttachmentURL == "" {
		return shared.NewDomainError("handler", "DevAttach", shared.ErrMissingAttachment, "no attachment on the invoking message")
	}

	_, err := h.sender.SendWithAttachment(ctx, req.GuildID, req.ChannelName, req.Message, req.AttachmentURL)
	return err
}
