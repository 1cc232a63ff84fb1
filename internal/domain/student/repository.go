package student

import (
	"context"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранилища для студентов.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create создаёт запись студента.
	// Возвращает shared.ErrAlreadyExists, если запись уже есть.
	Create(ctx context.Context, st *Student) error

	// GetByID возвращает студента по ID участника в рамках гильдии.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	GetByID(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (*Student, error)

	// GetByIDForUpdate возвращает студента с блокировкой строки до конца
	// транзакции. Используется в пути начисления XP.
	GetByIDForUpdate(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (*Student, error)

	// Update обновляет данные студента.
	// Возвращает shared.ErrStudentNotFound, если студент не найден.
	Update(ctx context.Context, st *Student) error

	// Delete удаляет запись студента.
	Delete(ctx context.Context, guildID shared.GuildID, id shared.StudentID) error

	// ─────────────────────────────────────────────────────────────────────────
	// Bulk Operations
	// ─────────────────────────────────────────────────────────────────────────

	// GetByIDs возвращает студентов по списку ID. Отсутствующие ID
	// просто не попадают в результат.
	GetByIDs(ctx context.Context, guildID shared.GuildID, ids []shared.StudentID) ([]*Student, error)

	// ListRanked возвращает студентов когорты в порядке рейтинга:
	// уровень по убыванию, XP по убыванию, отображаемое имя по возрастанию.
	// useNickname управляет тем, какое имя участвует в сравнении.
	// При limit <= 0 возвращается пустой срез.
	ListRanked(ctx context.Context, guildID shared.GuildID, limit int, useNickname bool) ([]*Student, error)

	// Count возвращает количество зачисленных студентов когорты.
	Count(ctx context.Context, guildID shared.GuildID) (int, error)

	// Exists проверяет, зачислен ли участник как студент.
	Exists(ctx context.Context, guildID shared.GuildID, id shared.StudentID) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK (для транзакций)
// Путь начисления XP: взять строку студента с блокировкой, применить
// каскад, записать (level, xp) одним UPDATE, закоммитить.
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork представляет единицу работы с транзакционной семантикой.
type UnitOfWork interface {
	// Students возвращает репозиторий студентов в рамках транзакции.
	Students() Repository

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

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Для кеширования рейтинга (обычно реализуется через Redis).
// ══════════════════════════════════════════════════════════════════════════════

// RankedEntry - строка кешированного рейтинга.
type RankedEntry struct {
	Rank        int    `json:"rank"`
	StudentID   int64  `json:"student_id"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
}

// Cache определяет операции кеширования рейтинга когорты.
type Cache interface {
	// GetRanking получает кешированный рейтинг.
	// Возвращает shared.ErrNotFound при промахе.
	GetRanking(ctx context.Context, guildID shared.GuildID, limit int, useNickname bool) ([]RankedEntry, error)

	// SetRanking сохраняет рейтинг в кеш.
	SetRanking(ctx context.Context, guildID shared.GuildID, limit int, useNickname bool, entries []RankedEntry, ttl time.Duration) error

	// InvalidateRanking сбрасывает все кешированные рейтинги когорты.
	// Вызывается после каждого начисления XP.
	InvalidateRanking(ctx context.Context, guildID shared.GuildID) error
}

// ══════════════════════════════════════════════════════════════════════════════
// AWARD LOCK
// Сериализация начислений XP одному студенту между процессами.
// ══════════════════════════════════════════════════════════════════════════════

// AwardLock определяет межпроцессную блокировку на студента.
type AwardLock interface {
	// Acquire берёт блокировку начисления для студента.
	// Возвращает release-функцию и false, если блокировка занята.
	Acquire(ctx context.Context, guildID shared.GuildID, id shared.StudentID, ttl time.Duration) (release func(ctx context.Context) error, acquired bool, err error)
}
