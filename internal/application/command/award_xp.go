// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
	"github.com/c4t-hub/botcamp-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD XP COMMAND
// Awards XP to a student and cascades level-ups. The write path is
// serialized per student: a row lock inside the transaction plus a
// redis lock across processes.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultXPAmount is awarded when the caller does not specify an amount.
const DefaultXPAmount = 10

// awardLockTTL bounds how long a crashed process can hold a student's
// award lock.
const awardLockTTL = 10 * time.Second

// MemberDirectory answers capability questions about guild members.
// Implemented by the gateway adapter; membership lives outside the store.
type MemberDirectory interface {
	// IsStudent reports whether the member holds the student capability.
	IsStudent(ctx context.Context, guildID shared.GuildID, memberID shared.StudentID) (bool, error)
}

// AwardXPCommand contains the data to award XP.
type AwardXPCommand struct {
	// GuildID is the cohort's guild.
	GuildID int64

	// MemberID is the guild member designated by the caller.
	MemberID int64

	// Amount is the XP delta. Negative amounts lower XP but never level.
	Amount int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c AwardXPCommand) Validate() error {
	if c.GuildID <= 0 {
		return shared.NewDomainError("command", "AwardXP", shared.ErrInvalidID, "guild ID is required")
	}
	if c.MemberID <= 0 {
		return shared.NewDomainError("command", "AwardXP", shared.ErrInvalidID, "member ID is required")
	}
	return nil
}

// AwardXPResult contains the result of an XP award.
type AwardXPResult struct {
	// Skipped is true when the target member is not an enrolled student.
	// The command still succeeds; nothing was written.
	Skipped bool

	// Award describes the progression change. Zero value when skipped.
	Award student.AwardResult

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AwardXPHandler handles the AwardXPCommand.
type AwardXPHandler struct {
	uowFactory student.UnitOfWorkFactory
	directory  MemberDirectory
	lock       student.AwardLock
	cache      student.Cache
	publisher  shared.EventPublisher
	retrier    *retry.Retrier
}

// NewAwardXPHandler creates a new AwardXPHandler.
func NewAwardXPHandler(
	uowFactory student.UnitOfWorkFactory,
	directory MemberDirectory,
	lock student.AwardLock,
	cache student.Cache,
	publisher shared.EventPublisher,
) *AwardXPHandler {
	return &AwardXPHandler{
		uowFactory: uowFactory,
		directory:  directory,
		lock:       lock,
		cache:      cache,
		publisher:  publisher,
		retrier:    retry.StoreRetrier(shared.IsRetryable),
	}
}

// Handle executes the award.
func (h *AwardXPHandler) Handle(ctx context.Context, cmd AwardXPCommand) (*AwardXPResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	guildID := shared.GuildID(cmd.GuildID)
	memberID := shared.StudentID(cmd.MemberID)

	// Non-students are skipped silently: the command succeeds and the
	// result carries an explicit flag instead of an error. A nil
	// directory disables the check and every member counts as enrolled.
	isStudent := true
	if h.directory != nil {
		var err error
		isStudent, err = h.directory.IsStudent(ctx, guildID, memberID)
		if err != nil {
			return nil, fmt.Errorf("award_xp: capability check: %w", err)
		}
	}
	if !isStudent {
		res := &AwardXPResult{Skipped: true}
		ev := shared.NewAwardSkippedEvent(cmd.GuildID, cmd.MemberID, cmd.Amount, "not a student")
		if cmd.CorrelationID != "" {
			ev.BaseEvent = ev.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		res.Events = append(res.Events, ev)
		h.publish(res.Events)
		return res, nil
	}

	release, acquired, err := h.lock.Acquire(ctx, guildID, memberID, awardLockTTL)
	if err != nil {
		return nil, shared.WrapError("command", "AwardXP", shared.ErrStoreUnavailable, "award lock unavailable", err)
	}
	if !acquired {
		return nil, shared.NewDomainError("command", "AwardXP", shared.ErrConcurrentModification, "another award for this student is in flight")
	}
	defer func() {
		_ = release(context.WithoutCancel(ctx))
	}()

	var award student.AwardResult

	err = h.retrier.Do(ctx, func(ctx context.Context) error {
		res, txErr := h.awardInTx(ctx, guildID, memberID, cmd.Amount)
		if txErr != nil {
			return txErr
		}
		award = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The ranking changed; stale cached leaderboards must not survive.
	if h.cache != nil {
		_ = h.cache.InvalidateRanking(ctx, guildID)
	}

	result := &AwardXPResult{Award: award}
	result.Events = h.buildEvents(cmd, award)
	h.publish(result.Events)

	return result, nil
}

// awardInTx runs the cascade inside one transaction holding the row lock.
func (h *AwardXPHandler) awardInTx(ctx context.Context, guildID shared.GuildID, memberID shared.StudentID, amount int) (student.AwardResult, error) {
	uow, err := h.uowFactory.Begin(ctx)
	if err != nil {
		return student.AwardResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	st, err := uow.Students().GetByIDForUpdate(ctx, guildID, memberID)
	if err != nil {
		return student.AwardResult{}, err
	}

	award, err := st.AwardXP(amount)
	if err != nil {
		return student.AwardResult{}, err
	}

	if err := uow.Students().Update(ctx, st); err != nil {
		return student.AwardResult{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return student.AwardResult{}, err
	}

	return award, nil
}

func (h *AwardXPHandler) buildEvents(cmd AwardXPCommand, award student.AwardResult) []shared.Event {
	events := make([]shared.Event, 0, 1+award.LevelsGained)

	awarded := shared.NewXPAwardedEvent(cmd.GuildID, cmd.MemberID, cmd.Amount, award.NewXP, award.NewLevel)
	if cmd.CorrelationID != "" {
		awarded.BaseEvent = awarded.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	events = append(events, awarded)

	for lvl := award.OldLevel; lvl < award.NewLevel; lvl++ {
		up := shared.NewLevelUpEvent(cmd.GuildID, cmd.MemberID, lvl, lvl+1)
		if cmd.CorrelationID != "" {
			up.BaseEvent = up.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		events = append(events, up)
	}

	return events
}

func (h *AwardXPHandler) publish(events []shared.Event) {
	if h.publisher == nil {
		return
	}
	for _, ev := range events {
		_ = h.publisher.Publish(ev)
	}
}
