package evaluation

import (
	"context"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранилища для оценочных пар.
type Repository interface {
	// Create записывает оценочную пару.
	// Возвращает shared.ErrAlreadyExists при конфликте (день, код).
	Create(ctx context.Context, p *Pair) error

	// CreateBatch записывает набор пар одной транзакцией.
	CreateBatch(ctx context.Context, pairs []*Pair) error

	// ListByDay возвращает пары указанного дня в порядке записи.
	// Сортировка не применяется: порядок хранения значим для вывода.
	ListByDay(ctx context.Context, guildID shared.GuildID, day shared.Day) ([]*Pair, error)

	// MaxDay возвращает наибольший записанный день когорты.
	// Если пар нет вовсе, возвращает 0 без ошибки.
	MaxDay(ctx context.Context, guildID shared.GuildID) (shared.Day, error)

	// DeleteByDay удаляет все пары указанного дня. Используется при
	// повторной загрузке расписания на день.
	DeleteByDay(ctx context.Context, guildID shared.GuildID, day shared.Day) error
}
