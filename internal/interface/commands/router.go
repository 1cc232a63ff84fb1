package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/external/gateway"
	"github.com/c4t-hub/botcamp-hub/internal/interface/commands/handler"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultCommandPrefix marks guild messages as hub commands.
const DefaultCommandPrefix = "$"

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// Prefix is the command prefix (default "$").
	Prefix string

	// Debug enables debug logging for routing decisions.
	Debug bool
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT TYPES
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext contains context for command handling.
type CommandContext struct {
	// GuildID is the guild the command was issued in.
	GuildID int64

	// ChannelName is the channel the command was issued in.
	ChannelName string

	// MessageID is the ID of the invoking message.
	MessageID int64

	// AuthorID is the issuing member's ID.
	AuthorID int64

	// Args is the command arguments (text after the command word).
	Args string

	// Attachments carries the invoking message's attachments.
	Attachments []gateway.Attachment

	// Client is the gateway client for sending responses.
	Client *gateway.Client
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// CommandHandler is the interface for generic command handlers.
type CommandHandler interface {
	// Handle processes the command. The handler should use
	// cmdCtx.Client to send responses.
	Handle(ctx context.Context, cmdCtx CommandContext) error
}

// OperatorGate answers whether a member may drive hub commands.
type OperatorGate interface {
	IsOperator(ctx context.Context, guildID shared.GuildID, memberID int64) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Routes inbound guild messages to command handlers. Every command is
// operator-gated; denied commands are dropped without a reply, the way
// the guild platform treats missing-role failures.
// ══════════════════════════════════════════════════════════════════════════════

// Router routes guild commands to appropriate handlers.
type Router struct {
	config RouterConfig
	logger *slog.Logger
	gate   OperatorGate

	// Command handlers by command name (without the prefix)
	commandHandlers   map[string]interface{}
	commandHandlersMu sync.RWMutex
}

// NewRouter creates a new router.
func NewRouter(config RouterConfig, gate OperatorGate) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Prefix == "" {
		config.Prefix = DefaultCommandPrefix
	}

	return &Router{
		config:          config,
		logger:          config.Logger,
		gate:            gate,
		commandHandlers: make(map[string]interface{}),
	}
}

// RegisterCommand registers a handler for a specific command.
// The command should be without the leading prefix.
func (r *Router) RegisterCommand(command string, h interface{}) {
	r.commandHandlersMu.Lock()
	defer r.commandHandlersMu.Unlock()

	r.commandHandlers[command] = h

	if r.config.Debug {
		r.logger.Debug("registered command handler", "command", command)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING METHODS
// ══════════════════════════════════════════════════════════════════════════════

// SplitCommand extracts the command name and argument string from a
// message. Returns false when the message is not a command.
func SplitCommand(content, prefix string) (string, string, bool) {
	if !strings.HasPrefix(content, prefix) {
		return "", "", false
	}

	rest := strings.TrimPrefix(content, prefix)
	if rest == "" {
		return "", "", false
	}

	name, args, _ := strings.Cut(rest, " ")
	if name == "" {
		return "", "", false
	}

	return name, strings.TrimSpace(args), true
}

// HandleMessage routes an inbound guild message. Non-command messages
// and unknown commands are ignored.
func (r *Router) HandleMessage(ctx context.Context, msg *gateway.MessageEvent, client *gateway.Client) error {
	command, args, ok := SplitCommand(msg.Content, r.config.Prefix)
	if !ok {
		return nil
	}

	cmdCtx := CommandContext{
		GuildID:     msg.GuildID,
		ChannelName: msg.ChannelName,
		MessageID:   msg.MessageID,
		AuthorID:    msg.AuthorID,
		Args:        args,
		Attachments: msg.Attachments,
		Client:      client,
	}

	r.commandHandlersMu.RLock()
	h, ok := r.commandHandlers[command]
	r.commandHandlersMu.RUnlock()

	if !ok {
		if r.config.Debug {
			r.logger.Debug("no handler for command", "command", command)
		}
		return nil
	}

	allowed, err := r.gate.IsOperator(ctx, shared.GuildID(cmdCtx.GuildID), cmdCtx.AuthorID)
	if err != nil {
		return fmt.Errorf("operator check for %q: %w", command, err)
	}
	if !allowed {
		r.logger.Info("command denied",
			"command", command,
			"guild_id", cmdCtx.GuildID,
			"author_id", cmdCtx.AuthorID,
		)
		return nil
	}

	return r.executeCommandHandler(ctx, h, command, cmdCtx)
}

// executeCommandHandler executes a command handler based on its type.
func (r *Router) executeCommandHandler(ctx context.Context, h interface{}, command string, cmdCtx CommandContext) error {
	switch hdl := h.(type) {
	case *handler.SetupHandler:
		return r.handleSetupCommand(ctx, hdl, cmdCtx)
	case *handler.GiveXPHandler:
		return r.handleGiveXPCommand(ctx, hdl, cmdCtx)
	case *handler.LeaderboardHandler:
		return r.handleLeaderboardCommand(ctx, hdl, cmdCtx)
	case *handler.EvalsHandler:
		return r.handleEvalsCommand(ctx, hdl, cmdCtx)
	case *handler.HeadcountHandler:
		return r.handleHeadcountCommand(ctx, hdl, cmdCtx)
	case *handler.DevEchoHandler:
		return r.handleDevEchoCommand(ctx, hdl, cmdCtx)
	case *handler.DevAttachHandler:
		return r.handleDevAttachCommand(ctx, hdl, cmdCtx)
	case CommandHandler:
		return hdl.Handle(ctx, cmdCtx)
	default:
		r.logger.Warn("unknown handler type", "command", command, "type", fmt.Sprintf("%T", h))
		return nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND HANDLER ADAPTERS
// Parse arguments, call the typed handler and map its errors to the
// reply text each command historically answers with.
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) handleSetupCommand(ctx context.Context, h *handler.SetupHandler, cmdCtx CommandContext) error {
	fields := splitArgs(cmdCtx.Args)
	if len(fields) == 0 {
		return r.reply(ctx, cmdCtx, "```$setup <date>```")
	}

	resp, err := h.Handle(ctx, handler.SetupRequest{
		GuildID:       cmdCtx.GuildID,
		Date:          fields[0],
		CorrelationID: uuid.NewString(),
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidDate):
			return r.reply(ctx, cmdCtx, "You entered an invalid date!")
		case errors.Is(err, shared.ErrMissingArgument):
			return r.reply(ctx, cmdCtx, "```$setup <date>```")
		}
		return err
	}

	return r.reply(ctx, cmdCtx, resp.Text)
}

func (r *Router) handleGiveXPCommand(ctx context.Context, h *handler.GiveXPHandler, cmdCtx CommandContext) error {
	const usage = "```$givexp <student> <xp>```"

	fields := splitArgs(cmdCtx.Args)
	if len(fields) == 0 {
		return r.reply(ctx, cmdCtx, usage)
	}

	memberID, err := parseMemberRef(fields[0])
	if err != nil {
		return r.reply(ctx, cmdCtx, usage)
	}

	amount := DefaultXPAmount
	if len(fields) > 1 {
		amount, err = strconv.Atoi(fields[1])
		if err != nil {
			return r.reply(ctx, cmdCtx, usage)
		}
	}

	_, err = h.Handle(ctx, handler.GiveXPRequest{
		GuildID:       cmdCtx.GuildID,
		MemberID:      memberID,
		Amount:        amount,
		CorrelationID: uuid.NewString(),
	})
	if err != nil {
		if shared.IsValidation(err) {
			return r.reply(ctx, cmdCtx, usage)
		}
		return err
	}

	// Awards reply with nothing, skipped targets included.
	return nil
}

func (r *Router) handleLeaderboardCommand(ctx context.Context, h *handler.LeaderboardHandler, cmdCtx CommandContext) error {
	const usage = "```$leaderboard [n=5] [nick=True]```"

	limit := query.DefaultLeaderboardLimit
	nick := true

	fields := splitArgs(cmdCtx.Args)
	if len(fields) > 0 {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return r.reply(ctx, cmdCtx, usage)
		}
		limit = n
	}
	if len(fields) > 1 {
		b, err := parseBoolArg(fields[1])
		if err != nil {
			return r.reply(ctx, cmdCtx, usage)
		}
		nick = b
	}

	resp, err := h.Handle(ctx, handler.LeaderboardRequest{
		GuildID: cmdCtx.GuildID,
		Limit:   limit,
		Nick:    nick,
	})
	if err != nil {
		return err
	}

	return r.reply(ctx, cmdCtx, resp.Text)
}

func (r *Router) handleEvalsCommand(ctx context.Context, h *handler.EvalsHandler, cmdCtx CommandContext) error {
	day := 0
	nick := true

	// Bad arguments to evals are dropped without a usage reply.
	fields := splitArgs(cmdCtx.Args)
	if len(fields) > 0 {
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 {
			return nil
		}
		day = n
	}
	if len(fields) > 1 {
		b, err := parseBoolArg(fields[1])
		if err != nil {
			return nil
		}
		nick = b
	}

	resp, err := h.Handle(ctx, handler.EvalsRequest{
		GuildID: cmdCtx.GuildID,
		Day:     day,
		Nick:    nick,
	})
	if err != nil {
		return err
	}

	return r.reply(ctx, cmdCtx, resp.Text)
}

func (r *Router) handleHeadcountCommand(ctx context.Context, h *handler.HeadcountHandler, cmdCtx CommandContext) error {
	const usage = "```$headcount <channel>```"

	fields := splitArgs(cmdCtx.Args)
	if len(fields) == 0 {
		return r.reply(ctx, cmdCtx, usage)
	}

	channelName, err := parseChannelRef(fields[0])
	if err != nil {
		return r.reply(ctx, cmdCtx, usage)
	}

	resp, err := h.Handle(ctx, handler.HeadcountRequest{
		GuildID:     cmdCtx.GuildID,
		ChannelName: channelName,
	})
	if err != nil {
		if errors.Is(err, shared.ErrChannelNotFound) || shared.IsValidation(err) {
			return r.reply(ctx, cmdCtx, usage)
		}
		return err
	}

	return r.reply(ctx, cmdCtx, resp.Text)
}

func (r *Router) handleDevEchoCommand(ctx context.Context, h *handler.DevEchoHandler, cmdCtx CommandContext) error {
	const usage = "```$devecho <channel> \"<message>\"```"

	fields := splitArgs(cmdCtx.Args)
	if len(fields) < 2 {
		return r.reply(ctx, cmdCtx, usage)
	}

	channelName, err := parseChannelRef(fields[0])
	if err != nil {
		return r.reply(ctx, cmdCtx, usage)
	}

	err = h.Handle(ctx, handler.DevEchoRequest{
		GuildID:     cmdCtx.GuildID,
		ChannelName: channelName,
		Message:     fields[1],
	})
	if err != nil {
		if errors.Is(err, shared.ErrChannelNotFound) {
			return r.reply(ctx, cmdCtx, usage)
		}
		return err
	}

	return nil
}

func (r *Router) handleDevAttachCommand(ctx context.Context, h *handler.DevAttachHandler, cmdCtx CommandContext) error {
	const usage = "```$devattach <channel> \"<message>\"```"

	fields := splitArgs(cmdCtx.Args)
	if len(fields) < 2 {
		return r.reply(ctx, cmdCtx, usage)
	}

	channelName, err := parseChannelRef(fields[0])
	if err != nil {
		return r.reply(ctx, cmdCtx, usage)
	}

	var attachmentURL string
	if len(cmdCtx.Attachments) > 0 {
		attachmentURL = cmdCtx.Attachments[0].URL
	}

	err = h.Handle(ctx, handler.DevAttachRequest{
		GuildID:       cmdCtx.GuildID,
		ChannelName:   channelName,
		Message:       fields[1],
		AttachmentURL: attachmentURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrMissingAttachment):
			return r.reply(ctx, cmdCtx, "You forgot to include the attachment.")
		case errors.Is(err, shared.ErrChannelNotFound):
			return r.reply(ctx, cmdCtx, usage)
		}
		return err
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// DefaultXPAmount is used when $givexp omits the amount.
const DefaultXPAmount = 10

// reply answers the invoking message in its channel.
func (r *Router) reply(ctx context.Context, cmdCtx CommandContext, text string) error {
	_, err := cmdCtx.Client.Reply(ctx, cmdCtx.GuildID, cmdCtx.ChannelName, cmdCtx.MessageID, text)
	if err != nil {
		return fmt.Errorf("reply in %q: %w", cmdCtx.ChannelName, err)
	}
	return nil
}

// splitArgs splits an argument string on spaces, keeping text wrapped
// in double quotes together (without the quotes).
func splitArgs(s string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false
	hasToken := false

	for _, ch := range s {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			hasToken = true
		case ch == ' ' && !inQuotes:
			if hasToken {
				fields = append(fields, current.String())
				current.Reset()
				hasToken = false
			}
		default:
			current.WriteRune(ch)
			hasToken = true
		}
	}
	if hasToken {
		fields = append(fields, current.String())
	}

	return fields
}

// parseMemberRef parses a member argument: a mention token ("<@id>" or
// "<@!id>") or a raw numeric ID.
func parseMemberRef(s string) (int64, error) {
	ref := s
	if strings.HasPrefix(ref, "<@") && strings.HasSuffix(ref, ">") {
		ref = strings.TrimSuffix(strings.TrimPrefix(ref, "<@"), ">")
		ref = strings.TrimPrefix(ref, "!")
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("not a member reference: %q", s)
	}
	return id, nil
}

// parseChannelRef parses a channel argument: a plain name, optionally
// with a leading "#".
func parseChannelRef(s string) (string, error) {
	name := strings.TrimPrefix(s, "#")
	if name == "" || strings.HasPrefix(name, "<") {
		return "", fmt.Errorf("not a channel reference: %q", s)
	}
	return name, nil
}

// parseBoolArg parses a flexible boolean argument the way command
// frameworks traditionally do.
func parseBoolArg(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "on", "1", "enable", "enabled":
		return true, nil
	case "false", "f", "no", "n", "off", "0", "disable", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}
