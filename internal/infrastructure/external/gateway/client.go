// Package gateway implements the Messaging Gateway API wrapper.
// The gateway is the external collaborator that owns all chat-platform
// specifics: channels, roles, reactions, attachments and message
// delivery. This package provides a clean client for the rest of the
// system; everything above it talks in guild, channel and member terms.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the gateway client.
type ClientConfig struct {
	// Token authenticates the bot against the gateway.
	Token string

	// BaseURL is the gateway API base URL.
	BaseURL string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RetryAttempts is the number of retry attempts for failed requests.
	RetryAttempts int

	// RetryDelay is the initial delay between retries.
	RetryDelay time.Duration

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables debug logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token string) ClientConfig {
	return ClientConfig{
		Token:         token,
		BaseURL:       "http://localhost:8090",
		Timeout:       60 * time.Second, // Must be > polling timeout (30s) + network latency
		RetryAttempts: 3,
		RetryDelay:    1 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY API TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Attachment describes a file attached to a guild message. The gateway
// serves the file itself; the hub only forwards the reference.
type Attachment struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
}

// MessageEvent is an inbound guild message delivered by the gateway.
type MessageEvent struct {
	MessageID   int64        `json:"message_id"`
	GuildID     int64        `json:"guild_id"`
	ChannelName string       `json:"channel"`
	AuthorID    int64        `json:"author_id"`
	AuthorName  string       `json:"author_name,omitempty"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Timestamp   int64        `json:"timestamp,omitempty"`
}

// Event is a single entry from the gateway event stream.
type Event struct {
	Offset  int64         `json:"offset"`
	Type    string        `json:"type"`
	Message *MessageEvent `json:"message,omitempty"`
}

// EventTypeMessage marks events carrying a guild message.
const EventTypeMessage = "message"

// sendResult is the gateway response to a send call.
type sendResult struct {
	MessageID int64 `json:"message_id"`
}

// roleResult is the gateway response to a role resolution.
type roleResult struct {
	RoleID  int64  `json:"role_id"`
	Mention string `json:"mention"`
}

// channelResult is the gateway response to a channel resolution.
type channelResult struct {
	ChannelID int64  `json:"channel_id"`
	Mention   string `json:"mention"`
	Kind      string `json:"kind"`
}

// memberResult is the gateway response to a member lookup.
type memberResult struct {
	MemberID int64    `json:"member_id"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
}

// voiceResult is the gateway response to a voice roster lookup.
type voiceResult struct {
	MemberIDs []int64 `json:"member_ids"`
}

// linkResult is the gateway response to a message link request.
type linkResult struct {
	URL string `json:"url"`
}

// eventsResult is the gateway response to an event poll.
type eventsResult struct {
	Events     []Event `json:"events"`
	NextOffset int64   `json:"next_offset"`
}

// apiResponse is the gateway response envelope.
type apiResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *apiError       `json:"error,omitempty"`
}

type apiError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the Messaging Gateway API client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger

	// Event stream position
	eventOffset int64
	eventMu     sync.Mutex
}

// NewClient creates a new gateway client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8090"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SENDING MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// SendParams contains parameters for sending a guild message.
type SendParams struct {
	GuildID       int64
	ChannelName   string
	Content       string
	ReplyToMsgID  int64
	AttachmentURL string
}

// Send delivers a message into a named guild channel and returns the
// new message ID.
func (c *Client) Send(ctx context.Context, params SendParams) (int64, error) {
	body := map[string]interface{}{
		"guild_id": params.GuildID,
		"channel":  params.ChannelName,
		"content":  params.Content,
	}

	if params.ReplyToMsgID > 0 {
		body["reply_to"] = params.ReplyToMsgID
	}
	if params.AttachmentURL != "" {
		body["attachment_url"] = params.AttachmentURL
	}

	var result sendResult
	if err := c.callAPI(ctx, "guilds.sendMessage", body, &result); err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}

	return result.MessageID, nil
}

// SendWithAttachment delivers a message with an attached file. The
// gateway re-uploads the file from the given URL.
func (c *Client) SendWithAttachment(ctx context.Context, guildID int64, channelName, content, attachmentURL string) (int64, error) {
	return c.Send(ctx, SendParams{
		GuildID:       guildID,
		ChannelName:   channelName,
		Content:       content,
		AttachmentURL: attachmentURL,
	})
}

// Reply sends a message into a channel as a reply to another message.
func (c *Client) Reply(ctx context.Context, guildID int64, channelName string, replyTo int64, content string) (int64, error) {
	return c.Send(ctx, SendParams{
		GuildID:      guildID,
		ChannelName:  channelName,
		Content:      content,
		ReplyToMsgID: replyTo,
	})
}

// React attaches an emoji reaction to a delivered message.
func (c *Client) React(ctx context.Context, guildID int64, channelName string, messageID int64, emoji string) error {
	body := map[string]interface{}{
		"guild_id":   guildID,
		"channel":    channelName,
		"message_id": messageID,
		"emoji":      emoji,
	}

	var result bool
	if err := c.callAPI(ctx, "guilds.addReaction", body, &result); err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GUILD LOOKUPS
// ══════════════════════════════════════════════════════════════════════════════

// ResolveRole resolves a named guild role to its mention token.
func (c *Client) ResolveRole(ctx context.Context, guildID int64, roleName string) (string, error) {
	body := map[string]interface{}{
		"guild_id": guildID,
		"role":     roleName,
	}

	var result roleResult
	if err := c.callAPI(ctx, "guilds.resolveRole", body, &result); err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}

	return result.Mention, nil
}

// ResolveChannel resolves a named guild channel to its mention token.
func (c *Client) ResolveChannel(ctx context.Context, guildID int64, channelName string) (string, error) {
	body := map[string]interface{}{
		"guild_id": guildID,
		"channel":  channelName,
	}

	var result channelResult
	if err := c.callAPI(ctx, "guilds.resolveChannel", body, &result); err != nil {
		if c.isChannelNotFound(err) {
			return "", shared.ErrChannelNotFound
		}
		return "", fmt.Errorf("resolve channel: %w", err)
	}

	return result.Mention, nil
}

// MemberRoles returns the role names a guild member currently holds.
func (c *Client) MemberRoles(ctx context.Context, guildID, memberID int64) ([]string, error) {
	body := map[string]interface{}{
		"guild_id":  guildID,
		"member_id": memberID,
	}

	var result memberResult
	if err := c.callAPI(ctx, "guilds.memberRoles", body, &result); err != nil {
		return nil, fmt.Errorf("member roles: %w", err)
	}

	return result.Roles, nil
}

// VoiceMembers returns the IDs of members connected to a voice channel.
func (c *Client) VoiceMembers(ctx context.Context, guildID int64, channelName string) ([]int64, error) {
	body := map[string]interface{}{
		"guild_id": guildID,
		"channel":  channelName,
	}

	var result voiceResult
	if err := c.callAPI(ctx, "guilds.voiceMembers", body, &result); err != nil {
		if c.isChannelNotFound(err) {
			return nil, shared.ErrChannelNotFound
		}
		return nil, fmt.Errorf("voice members: %w", err)
	}

	return result.MemberIDs, nil
}

// MessageLink returns the permalink for a delivered guild message.
func (c *Client) MessageLink(ctx context.Context, guildID int64, channelName string, messageID int64) (string, error) {
	body := map[string]interface{}{
		"guild_id":   guildID,
		"channel":    channelName,
		"message_id": messageID,
	}

	var result linkResult
	if err := c.callAPI(ctx, "guilds.messageLink", body, &result); err != nil {
		return "", fmt.Errorf("message link: %w", err)
	}

	return result.URL, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT STREAM
// ══════════════════════════════════════════════════════════════════════════════

// PollEvents fetches pending events using long polling.
func (c *Client) PollEvents(ctx context.Context, offset int64, timeout int) ([]Event, int64, error) {
	body := map[string]interface{}{
		"timeout": timeout,
	}

	if offset > 0 {
		body["offset"] = offset
	}

	var result eventsResult
	if err := c.callAPI(ctx, "events.poll", body, &result); err != nil {
		return nil, offset, fmt.Errorf("poll events: %w", err)
	}

	return result.Events, result.NextOffset, nil
}

// EventHandler is a function that handles a gateway event.
type EventHandler func(ctx context.Context, event *Event) error

// StartPolling starts long polling for gateway events. Blocks until the
// context is cancelled.
func (c *Client) StartPolling(ctx context.Context, handler EventHandler) error {
	c.logger.Info("starting gateway long polling")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopping gateway long polling")
			return ctx.Err()
		default:
		}

		c.eventMu.Lock()
		offset := c.eventOffset
		c.eventMu.Unlock()

		events, next, err := c.PollEvents(ctx, offset, 30)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("failed to poll events", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		c.eventMu.Lock()
		if next > c.eventOffset {
			c.eventOffset = next
		}
		c.eventMu.Unlock()

		for i := range events {
			if err := handler(ctx, &events[i]); err != nil {
				c.logger.Error("failed to handle event",
					"offset", events[i].Offset,
					"type", events[i].Type,
					"error", err,
				)
			}
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

// Ping verifies the gateway is reachable and the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	var result bool
	if err := c.callAPI(ctx, "ping", nil, &result); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// API CALL HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// callAPI makes a call to the gateway API with retries.
func (c *Client) callAPI(ctx context.Context, method string, body map[string]interface{}, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doAPICall(ctx, method, body, result)
		if err == nil {
			return nil
		}

		lastErr = err

		if !c.isRetryableError(err) {
			return err
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(apiErr.RetryAfter) * time.Second):
			}
		}
	}

	return fmt.Errorf("api call failed after %d retries: %w", c.config.RetryAttempts, lastErr)
}

// doAPICall performs a single API call.
func (c *Client) doAPICall(ctx context.Context, method string, body map[string]interface{}, result interface{}) error {
	url := fmt.Sprintf("%s/api/%s", c.config.BaseURL, method)

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.config.Token)

	if c.config.Debug {
		c.logger.Debug("gateway api call", "method", method)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if !envelope.OK {
		apiErr := &APIError{Code: http.StatusInternalServerError}
		if envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Description = envelope.Error.Message
			apiErr.RetryAfter = envelope.Error.RetryAfter
		}
		return apiErr
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// APIError represents a gateway API error.
type APIError struct {
	Code        int
	Description string
	RetryAfter  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("gateway api error %d: %s", e.Code, e.Description)
}

// isRetryableError checks if an error is retryable.
func (c *Client) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// Rate limited - retryable
		if apiErr.Code == 429 {
			return true
		}
		// Server errors - retryable
		if apiErr.Code >= 500 {
			return true
		}
		// Client errors - generally not retryable
		if apiErr.Code >= 400 && apiErr.Code < 500 {
			return false
		}
	}

	// Network errors are retryable
	errStr := err.Error()
	for _, sub := range []string{"timeout", "connection refused", "temporary", "reset"} {
		if strings.Contains(errStr, sub) {
			return true
		}
	}
	return false
}

// isChannelNotFound checks if the error indicates an unknown channel.
func (c *Client) isChannelNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404 && strings.Contains(strings.ToLower(apiErr.Description), "channel")
	}
	return false
}
