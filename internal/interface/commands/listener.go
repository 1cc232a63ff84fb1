// Package commands implements the guild chat command interface for
// BotCamp Hub: operator-issued commands drive cohort setup, XP awards
// and the read-side blocks (leaderboard, evals, headcount).
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/application/command"
	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/application/saga"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/external/gateway"
	"github.com/c4t-hub/botcamp-hub/internal/interface/commands/handler"
)

// ══════════════════════════════════════════════════════════════════════════════
// LISTENER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ListenerConfig contains configuration for the command listener.
type ListenerConfig struct {
	// Prefix is the command prefix (default "$").
	Prefix string

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables debug logging.
	Debug bool
}

// ══════════════════════════════════════════════════════════════════════════════
// LISTENER DEPENDENCIES
// Aggregates all application-layer dependencies the handlers need.
// ══════════════════════════════════════════════════════════════════════════════

// ListenerDependencies contains all dependencies for the command handlers.
type ListenerDependencies struct {
	// Sagas
	SetupSaga *saga.CohortSetupSaga

	// Commands
	AwardXPCmd *command.AwardXPHandler

	// Queries
	LeaderboardQuery *query.GetLeaderboardHandler
	PairingsQuery    *query.GetDailyPairingsHandler
	HeadcountQuery   *query.GetHeadcountHandler
}

// ══════════════════════════════════════════════════════════════════════════════
// LISTENER
// Consumes the gateway event stream and drives the command router.
// ══════════════════════════════════════════════════════════════════════════════

// Listener is the guild command listener.
type Listener struct {
	config ListenerConfig
	client *gateway.Client
	router *Router
	logger *slog.Logger

	// Lifecycle management
	running   bool
	runningMu sync.RWMutex

	// Statistics
	stats *ListenerStats
}

// ListenerStats holds runtime statistics.
type ListenerStats struct {
	mu              sync.RWMutex
	StartedAt       time.Time
	MessagesSeen    int64
	CommandsHandled int64
	ErrorsCount     int64
}

// NewListener creates a new command listener with all handlers wired.
func NewListener(config ListenerConfig, client *gateway.Client, deps ListenerDependencies) (*Listener, error) {
	if client == nil {
		return nil, errors.New("gateway client is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	setupHandler := handler.NewSetupHandler(deps.SetupSaga, client)
	giveXPHandler := handler.NewGiveXPHandler(deps.AwardXPCmd)
	leaderboardHandler := handler.NewLeaderboardHandler(deps.LeaderboardQuery)
	evalsHandler := handler.NewEvalsHandler(deps.PairingsQuery)
	headcountHandler := handler.NewHeadcountHandler(deps.HeadcountQuery, client)
	devEchoHandler := handler.NewDevEchoHandler(client)
	devAttachHandler := handler.NewDevAttachHandler(client)

	router := NewRouter(RouterConfig{
		Logger: config.Logger,
		Prefix: config.Prefix,
		Debug:  config.Debug,
	}, client)

	router.RegisterCommand("setup", setupHandler)
	router.RegisterCommand("givexp", giveXPHandler)
	router.RegisterCommand("leaderboard", leaderboardHandler)
	router.RegisterCommand("evals", evalsHandler)
	router.RegisterCommand("headcount", headcountHandler)
	router.RegisterCommand("devecho", devEchoHandler)
	router.RegisterCommand("devattach", devAttachHandler)

	return &Listener{
		config: config,
		client: client,
		router: router,
		logger: config.Logger,
		stats:  &ListenerStats{},
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Run starts consuming the gateway event stream. Blocks until the
// context is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	l.runningMu.Lock()
	if l.running {
		l.runningMu.Unlock()
		return errors.New("listener already running")
	}
	l.running = true
	l.runningMu.Unlock()

	l.stats.mu.Lock()
	l.stats.StartedAt = time.Now()
	l.stats.mu.Unlock()

	defer func() {
		l.runningMu.Lock()
		l.running = false
		l.runningMu.Unlock()
	}()

	if err := l.client.Ping(ctx); err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}

	l.logger.Info("command listener started", "prefix", l.router.config.Prefix)

	return l.client.StartPolling(ctx, l.handleEvent)
}

// IsRunning reports whether the listener is consuming events.
func (l *Listener) IsRunning() bool {
	l.runningMu.RLock()
	defer l.runningMu.RUnlock()
	return l.running
}

// Router exposes the router for test wiring.
func (l *Listener) Router() *Router {
	return l.router
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// handleEvent dispatches a single gateway event.
func (l *Listener) handleEvent(ctx context.Context, event *gateway.Event) error {
	if event.Type != gateway.EventTypeMessage || event.Message == nil {
		return nil
	}

	l.stats.mu.Lock()
	l.stats.MessagesSeen++
	l.stats.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			l.stats.mu.Lock()
			l.stats.ErrorsCount++
			l.stats.mu.Unlock()
			l.logger.Error("panic while handling command",
				"panic", rec,
				"guild_id", event.Message.GuildID,
				"channel", event.Message.ChannelName,
			)
		}
	}()

	if err := l.router.HandleMessage(ctx, event.Message, l.client); err != nil {
		l.stats.mu.Lock()
		l.stats.ErrorsCount++
		l.stats.mu.Unlock()
		return err
	}

	l.stats.mu.Lock()
	l.stats.CommandsHandled++
	l.stats.mu.Unlock()
	return nil
}

// GetStats returns a snapshot of runtime statistics.
func (l *Listener) GetStats() map[string]interface{} {
	l.stats.mu.RLock()
	defer l.stats.mu.RUnlock()

	return map[string]interface{}{
		"started_at":       l.stats.StartedAt,
		"messages_seen":    l.stats.MessagesSeen,
		"commands_handled": l.stats.CommandsHandled,
		"errors_count":     l.stats.ErrorsCount,
	}
}
