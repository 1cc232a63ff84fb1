// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - each event represents something significant that
// happened in the domain.
const (
	// Cohort events
	EventCohortInitialized EventType = "cohort.initialized"
	EventCohortActivated   EventType = "cohort.activated"

	// Progression events
	EventXPAwarded    EventType = "progression.xp_awarded"
	EventLevelUp      EventType = "progression.level_up"
	EventAwardSkipped EventType = "progression.award_skipped"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Cohort Events
// ═══════════════════════════════════════════════════════════════════════════

// CohortInitializedEvent is emitted once per cohort, when setup completes.
type CohortInitializedEvent struct {
	BaseEvent
	GuildID     int64     `json:"guild_id"`
	StartDate   time.Time `json:"start_date"`
	MarkerMsgID int64     `json:"marker_msg_id"`
}

// Payload implements Event interface.
func (e CohortInitializedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"guild_id":      e.GuildID,
		"start_date":    e.StartDate.Format("2006-01-02"),
		"marker_msg_id": e.MarkerMsgID,
	}
}

// NewCohortInitializedEvent creates a new CohortInitializedEvent.
func NewCohortInitializedEvent(guildID int64, startDate time.Time, markerMsgID int64) CohortInitializedEvent {
	return CohortInitializedEvent{
		BaseEvent:   NewBaseEvent(EventCohortInitialized, strconv.FormatInt(guildID, 10)),
		GuildID:     guildID,
		StartDate:   startDate,
		MarkerMsgID: markerMsgID,
	}
}

// CohortActivatedEvent is emitted when a cohort becomes the active one
// in the registry. Last writer wins.
type CohortActivatedEvent struct {
	BaseEvent
	GuildID int64 `json:"guild_id"`
}

// Payload implements Event interface.
func (e CohortActivatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"guild_id": e.GuildID,
	}
}

// NewCohortActivatedEvent creates a new CohortActivatedEvent.
func NewCohortActivatedEvent(guildID int64) CohortActivatedEvent {
	return CohortActivatedEvent{
		BaseEvent: NewBaseEvent(EventCohortActivated, strconv.FormatInt(guildID, 10)),
		GuildID:   guildID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progression Events
// ═══════════════════════════════════════════════════════════════════════════

// XPAwardedEvent is emitted when a student receives XP.
type XPAwardedEvent struct {
	BaseEvent
	GuildID   int64 `json:"guild_id"`
	StudentID int64 `json:"student_id"`
	Amount    int   `json:"amount"`
	NewXP     int   `json:"new_xp"`
	NewLevel  int   `json:"new_level"`
}

// Payload implements Event interface.
func (e XPAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"guild_id":   e.GuildID,
		"student_id": e.StudentID,
		"amount":     e.Amount,
		"new_xp":     e.NewXP,
		"new_level":  e.NewLevel,
	}
}

// NewXPAwardedEvent creates a new XPAwardedEvent.
func NewXPAwardedEvent(guildID, studentID int64, amount, newXP, newLevel int) XPAwardedEvent {
	return XPAwardedEvent{
		BaseEvent: NewBaseEvent(EventXPAwarded, strconv.FormatInt(studentID, 10)),
		GuildID:   guildID,
		StudentID: studentID,
		Amount:    amount,
		NewXP:     newXP,
		NewLevel:  newLevel,
	}
}

// LevelUpEvent is emitted for each level crossed during an award.
// A single large award can produce several of these.
type LevelUpEvent struct {
	BaseEvent
	GuildID   int64 `json:"guild_id"`
	StudentID int64 `json:"student_id"`
	OldLevel  int   `json:"old_level"`
	NewLevel  int   `json:"new_level"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"guild_id":   e.GuildID,
		"student_id": e.StudentID,
		"old_level":  e.OldLevel,
		"new_level":  e.NewLevel,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(guildID, studentID int64, oldLevel, newLevel int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, strconv.FormatInt(studentID, 10)),
		GuildID:   guildID,
		StudentID: studentID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// AwardSkippedEvent is emitted when an XP award targets a guild member who
// is not an enrolled student. The command succeeds silently; the event keeps
// an audit trail.
type AwardSkippedEvent struct {
	BaseEvent
	GuildID  int64  `json:"guild_id"`
	MemberID int64  `json:"member_id"`
	Amount   int    `json:"amount"`
	Reason   string `json:"reason"`
}

// Payload implements Event interface.
func (e AwardSkippedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"guild_id":  e.GuildID,
		"member_id": e.MemberID,
		"amount":    e.Amount,
		"reason":    e.Reason,
	}
}

// NewAwardSkippedEvent creates a new AwardSkippedEvent.
func NewAwardSkippedEvent(guildID, memberID int64, amount int, reason string) AwardSkippedEvent {
	return AwardSkippedEvent{
		BaseEvent: NewBaseEvent(EventAwardSkipped, strconv.FormatInt(memberID, 10)),
		GuildID:   guildID,
		MemberID:  memberID,
		Amount:    amount,
		Reason:    reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
