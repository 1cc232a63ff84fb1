// Package saga contains complex business processes that orchestrate
// multiple domain operations in a coordinated manner.
// Sagas ensure consistency across operations and handle compensation on failures.
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/cohort"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COHORT SETUP SAGA
// One-time cohort initialization.
// Flow: Validate Date → Check Marker → Send Code of Conduct →
//
//	Send Survival Guide → Send Padlet Reminder → Record (one transaction)
//
// Replay: marker present → zero sends, same stored message reference.
// ══════════════════════════════════════════════════════════════════════════════

// Channel names the introductory messages go to.
const (
	ChannelCodeOfConduct = "code-of-conduct"
	ChannelAlerts        = "alerts"
	ChannelPadlet        = "padlet"
)

// StudentsRoleName is the guild role granted to enrolled students.
const StudentsRoleName = "Students"

// ackEmoji is added to the code of conduct message; reacting grants the
// student role.
const ackEmoji = "🆗"

// SetupInput contains all data required to initialize a cohort.
type SetupInput struct {
	// GuildID - the guild the cohort lives in (required).
	GuildID int64

	// StartDate - bootcamp start date in 'yyyy-mm-dd' (required).
	StartDate string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks if the input is valid for setup.
func (i SetupInput) Validate() error {
	if i.GuildID <= 0 {
		return shared.NewDomainError("saga", "Setup", shared.ErrInvalidID, "guild ID must be positive")
	}
	if i.StartDate == "" {
		return shared.NewDomainError("saga", "Setup", shared.ErrMissingArgument, "start date is required")
	}
	return nil
}

// SetupResult contains the result of a cohort setup.
type SetupResult struct {
	// MarkerMsgID - the code of conduct message reference. On replay this
	// is the originally stored reference.
	MarkerMsgID shared.MessageID

	// StartDate - the recorded bootcamp start date.
	StartDate time.Time

	// Replayed is true when the cohort was already initialized and no
	// messages were sent.
	Replayed bool

	// CompletedAt - timestamp of saga completion.
	CompletedAt time.Time
}

// SetupStep represents a step in the setup process.
type SetupStep string

const (
	StepValidateDate  SetupStep = "validate_date"
	StepCheckMarker   SetupStep = "check_marker"
	StepSendMessages  SetupStep = "send_messages"
	StepRecordCohort  SetupStep = "record_cohort"
	StepSetupComplete SetupStep = "complete"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Messenger delivers messages into guild channels. Implemented by the
// gateway adapter.
type Messenger interface {
	// SendToChannel sends text to a named channel and returns the
	// message reference.
	SendToChannel(ctx context.Context, guildID shared.GuildID, channelName, content string) (shared.MessageID, error)

	// AddReaction attaches an emoji reaction to a delivered message.
	AddReaction(ctx context.Context, guildID shared.GuildID, channelName string, msgID shared.MessageID, emoji string) error

	// RoleMention renders a mention token for a named guild role.
	RoleMention(ctx context.Context, guildID shared.GuildID, roleName string) (string, error)
}

// SetupLinks holds the external resources referenced by the
// introductory messages.
type SetupLinks struct {
	// CodeOfConductURL - full code of conduct document.
	CodeOfConductURL string

	// SurvivalGuideURL - the bootcamp survival guide.
	SurvivalGuideURL string

	// ExamplePadletURL - a reference padlet to point students at.
	ExamplePadletURL string
}

// ══════════════════════════════════════════════════════════════════════════════
// SETUP SAGA IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CohortSetupSaga orchestrates one-time cohort initialization.
//
// The send-then-record gap is a known limitation: if the process dies
// between the sends and the transaction, a rerun sends the messages
// again. Matching the original behavior; not silently hardened.
type CohortSetupSaga struct {
	cohortRepo cohort.Repository
	uowFactory cohort.UnitOfWorkFactory
	messenger  Messenger
	publisher  shared.EventPublisher
	links      SetupLinks
}

// NewCohortSetupSaga creates a new CohortSetupSaga.
func NewCohortSetupSaga(
	cohortRepo cohort.Repository,
	uowFactory cohort.UnitOfWorkFactory,
	messenger Messenger,
	publisher shared.EventPublisher,
	links SetupLinks,
) *CohortSetupSaga {
	return &CohortSetupSaga{
		cohortRepo: cohortRepo,
		uowFactory: uowFactory,
		messenger:  messenger,
		publisher:  publisher,
		links:      links,
	}
}

// Execute runs the setup saga.
func (s *CohortSetupSaga) Execute(ctx context.Context, input SetupInput) (*SetupResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	guildID := shared.GuildID(input.GuildID)

	// Step 1: validate the date. Rejection happens before any send or
	// write: a bad date must leave no trace.
	startDate, err := s.validateDate(input.StartDate)
	if err != nil {
		return nil, err
	}

	// Step 2: check the marker. A present marker means the cohort was
	// initialized before; replay returns the stored reference with zero
	// sends, observably identical to the first run's reply.
	existing, err := s.cohortRepo.Get(ctx, guildID)
	if err != nil && !shared.IsNotFound(err) {
		return nil, fmt.Errorf("setup: check marker: %w", err)
	}
	if existing != nil && existing.IsInitialized() {
		return &SetupResult{
			MarkerMsgID: existing.MarkerMsgID,
			StartDate:   existing.StartDate,
			Replayed:    true,
			CompletedAt: time.Now().UTC(),
		}, nil
	}

	// Step 3: deliver the three introductory messages.
	markerMsgID, err := s.sendIntroMessages(ctx, guildID)
	if err != nil {
		return nil, err
	}

	// Step 4: record marker, start date and the active-cohort pointer in
	// one transaction. A partially initialized cohort must never be
	// visible to readers.
	c, err := cohort.New(guildID, startDate)
	if err != nil {
		return nil, err
	}
	if err := c.MarkInitialized(markerMsgID); err != nil {
		return nil, err
	}

	if err := s.recordCohort(ctx, c); err != nil {
		return nil, fmt.Errorf("setup: record cohort: %w", err)
	}

	s.publishEvents(input, c)

	return &SetupResult{
		MarkerMsgID: markerMsgID,
		StartDate:   startDate,
		CompletedAt: time.Now().UTC(),
	}, nil
}

// validateDate parses the date and rejects anything already in the past
// in Kuala Lumpur time. The date resolves to local midnight, so today's
// date is rejected too once the day has started.
func (s *CohortSetupSaga) validateDate(value string) (time.Time, error) {
	date, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, shared.ErrBadStartDate
	}

	if timeutil.IsPast(date) {
		return time.Time{}, shared.ErrStartDateInPast
	}

	return date, nil
}

// sendIntroMessages delivers the three announcements and returns the
// code of conduct message reference.
func (s *CohortSetupSaga) sendIntroMessages(ctx context.Context, guildID shared.GuildID) (shared.MessageID, error) {
	roleMention, err := s.messenger.RoleMention(ctx, guildID, StudentsRoleName)
	if err != nil {
		return 0, fmt.Errorf("setup: resolve student role: %w", err)
	}

	cocText := fmt.Sprintf(
		"I acknowledge that I have read the Code of Conduct in details and "+
			"am agreeable to the rules, regulations, terms and conditions set "+
			"by the C4T establishment. I will abide by the Code of Conduct "+
			"and I am aware that action will be taken against me for any form "+
			"of misconduct.\n\nReact OK to be granted %s Role.\n\n%s",
		roleMention, s.links.CodeOfConductURL,
	)

	markerMsgID, err := s.messenger.SendToChannel(ctx, guildID, ChannelCodeOfConduct, cocText)
	if err != nil {
		return 0, fmt.Errorf("setup: send code of conduct: %w", err)
	}

	if err := s.messenger.AddReaction(ctx, guildID, ChannelCodeOfConduct, markerMsgID, ackEmoji); err != nil {
		return 0, fmt.Errorf("setup: add reaction: %w", err)
	}

	guideText := fmt.Sprintf(
		"%s, below guide will serve as your reference during the BotCamp.\n\n%s",
		roleMention, s.links.SurvivalGuideURL,
	)
	if _, err := s.messenger.SendToChannel(ctx, guildID, ChannelAlerts, guideText); err != nil {
		return 0, fmt.Errorf("setup: send survival guide: %w", err)
	}

	padletText := fmt.Sprintf(
		"Create your own Padlet and share them here! Check out Prag's Padlet!\n\n%s",
		s.links.ExamplePadletURL,
	)
	if _, err := s.messenger.SendToChannel(ctx, guildID, ChannelPadlet, padletText); err != nil {
		return 0, fmt.Errorf("setup: send padlet reminder: %w", err)
	}

	return markerMsgID, nil
}

// recordCohort writes cohort settings and the active-cohort pointer in
// a single transaction. Last writer wins on the pointer.
func (s *CohortSetupSaga) recordCohort(ctx context.Context, c *cohort.Cohort) error {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.Cohorts().Save(ctx, c); err != nil {
		return err
	}

	if err := uow.Registry().SetActiveGuild(ctx, c.GuildID); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (s *CohortSetupSaga) publishEvents(input SetupInput, c *cohort.Cohort) {
	if s.publisher == nil {
		return
	}

	initialized := shared.NewCohortInitializedEvent(input.GuildID, c.StartDate, c.MarkerMsgID.Int64())
	activated := shared.NewCohortActivatedEvent(input.GuildID)
	if input.CorrelationID != "" {
		initialized.BaseEvent = initialized.BaseEvent.WithCorrelationID(input.CorrelationID)
		activated.BaseEvent = activated.BaseEvent.WithCorrelationID(input.CorrelationID)
	}

	_ = s.publisher.Publish(initialized)
	_ = s.publisher.Publish(activated)
}
