// Package cohort содержит доменную модель когорты буткемпа.
// Одна когорта живёт в одной гильдии; это ядро бизнес-логики.
package cohort

import (
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: COHORT
// ══════════════════════════════════════════════════════════════════════════════

// Cohort представляет настройки когорты, привязанной к гильдии.
type Cohort struct {
	// GuildID - гильдия, в которой живёт когорта.
	GuildID shared.GuildID

	// StartDate - дата начала буткемпа (полночь по Куала-Лумпуру).
	StartDate time.Time

	// MarkerMsgID - ID сообщения с кодексом поведения. Ненулевое значение
	// означает, что единоразовая инициализация уже выполнена.
	MarkerMsgID shared.MessageID

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// New создаёт когорту для гильдии. Когорта ещё не инициализирована:
// маркер проставляется только после успешной рассылки вводных сообщений.
func New(guildID shared.GuildID, startDate time.Time) (*Cohort, error) {
	if !guildID.IsValid() {
		return nil, shared.NewDomainError("cohort", "New", shared.ErrInvalidID, "guild ID must be positive")
	}
	if startDate.IsZero() {
		return nil, shared.ErrBadStartDate
	}

	now := time.Now().UTC()

	return &Cohort{
		GuildID:   guildID,
		StartDate: startDate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsInitialized возвращает true, если единоразовая инициализация
// когорты уже выполнялась.
func (c *Cohort) IsInitialized() bool {
	return c.MarkerMsgID.IsValid()
}

// MarkInitialized фиксирует завершение инициализации: запоминает ID
// сообщения-маркера. Повторная инициализация запрещена.
func (c *Cohort) MarkInitialized(markerMsgID shared.MessageID) error {
	if c.IsInitialized() {
		return shared.NewDomainError("cohort", "MarkInitialized", shared.ErrAlreadyProcessed, "cohort already initialized")
	}
	if !markerMsgID.IsValid() {
		return shared.NewDomainError("cohort", "MarkInitialized", shared.ErrInvalidID, "marker message ID must be positive")
	}

	c.MarkerMsgID = markerMsgID
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// DayNumber возвращает порядковый номер дня буткемпа для момента t.
// День начала - день 1. До начала буткемпа возвращается 0.
func (c *Cohort) DayNumber(t time.Time) int {
	start := c.StartDate
	elapsed := t.Sub(start)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed.Hours()/24) + 1
}
