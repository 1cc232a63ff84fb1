package cohort

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранилища для настроек когорты.
type Repository interface {
	// Get возвращает настройки когорты гильдии.
	// Возвращает shared.ErrCohortNotFound, если когорта не заводилась.
	Get(ctx context.Context, guildID shared.GuildID) (*Cohort, error)

	// Save создаёт или полностью обновляет настройки когорты.
	// Запись маркера и даты старта выполняется в одной транзакции
	// с регистрацией активной когорты (см. UnitOfWork).
	Save(ctx context.Context, c *Cohort) error
}

// Registry хранит указатель на активную когорту. Указатель один на всю
// систему; последняя инициализация побеждает.
type Registry interface {
	// ActiveGuild возвращает гильдию активной когорты.
	// Возвращает shared.ErrNoActiveCohort, если указатель не установлен.
	ActiveGuild(ctx context.Context) (shared.GuildID, error)

	// SetActiveGuild перенаправляет указатель на гильдию.
	SetActiveGuild(ctx context.Context, guildID shared.GuildID) error
}

// UnitOfWork объединяет запись настроек когорты и регистрацию активной
// когорты в одну транзакцию: частично инициализированная когорта не
// должна быть видна ни одному читателю.
type UnitOfWork interface {
	// Cohorts возвращает репозиторий когорт в рамках транзакции.
	Cohorts() Repository

	// Registry возвращает реестр активной когорты в рамках транзакции.
	Registry() Registry

	// Commit фиксирует транзакцию.
	Commit(ctx context.Context) error

	// Rollback откатывает транзакцию.
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory создаёт единицы работы.
type UnitOfWorkFactory interface {
	// Begin начинает новую транзакцию.
	Begin(ctx context.Context) (UnitOfWork, error)
}
