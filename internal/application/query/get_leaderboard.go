// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Получает топ-N студентов гильдии, отсортированных по уровню и опыту.
// Ничьи разрешаются по отображаемому имени, поэтому выбор ника или
// реального имени влияет и на порядок строк.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultLeaderboardLimit - размер топа по умолчанию.
const DefaultLeaderboardLimit = 5

// rankingCacheTTL - время жизни закешированного топа.
const rankingCacheTTL = 30 * time.Second

// GetLeaderboardQuery содержит параметры запроса лидерборда.
type GetLeaderboardQuery struct {
	// GuildID - гильдия, по которой строится рейтинг (обязательно).
	GuildID int64

	// Limit - количество записей. Ноль и отрицательные значения дают
	// пустой результат; значение по умолчанию подставляет вызывающий
	// слой (DefaultLeaderboardLimit).
	Limit int

	// UseRealName - сортировать и отображать по реальному имени
	// вместо ника.
	UseRealName bool
}

// Validate проверяет корректность параметров запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if q.GuildID <= 0 {
		return errors.New("guild id must be positive")
	}
	return nil
}

// GetLeaderboardResult содержит результат запроса лидерборда.
type GetLeaderboardResult struct {
	// Entries - записи рейтинга в порядке убывания.
	Entries []student.RankedEntry `json:"entries"`

	// FromCache - true, если результат получен из кеша.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetLeaderboardHandler обрабатывает запросы на получение лидерборда.
type GetLeaderboardHandler struct {
	students student.Repository
	cache    student.Cache
}

// NewGetLeaderboardHandler создаёт новый обработчик запроса лидерборда.
func NewGetLeaderboardHandler(students student.Repository, cache student.Cache) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		students: students,
		cache:    cache,
	}
}

// Handle выполняет запрос на получение лидерборда.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, query GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrValidation, err.Error(), err)
	}

	guildID := shared.GuildID(query.GuildID)
	useNickname := !query.UseRealName

	// Неположительный limit валиден и даёт пустую таблицу.
	if query.Limit <= 0 {
		return &GetLeaderboardResult{
			Entries:     []student.RankedEntry{},
			GeneratedAt: time.Now().UTC(),
		}, nil
	}

	if entries, ok := h.tryGetFromCache(ctx, guildID, query.Limit, useNickname); ok {
		return &GetLeaderboardResult{
			Entries:     entries,
			FromCache:   true,
			GeneratedAt: time.Now().UTC(),
		}, nil
	}

	ranked, err := h.students.ListRanked(ctx, guildID, query.Limit, useNickname)
	if err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrStoreUnavailable, "failed to list ranking", err)
	}

	entries := buildRankedEntries(ranked, useNickname)

	if h.cache != nil {
		// Ошибка кеша не критична, рейтинг уже получен.
		_ = h.cache.SetRanking(ctx, guildID, query.Limit, useNickname, entries, rankingCacheTTL)
	}

	return &GetLeaderboardResult{
		Entries:     entries,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// buildRankedEntries превращает студентов в строки рейтинга с позициями.
// Имя строки зависит от useNickname: пустой ник заменяется реальным именем.
func buildRankedEntries(ranked []*student.Student, useNickname bool) []student.RankedEntry {
	entries := make([]student.RankedEntry, 0, len(ranked))
	for i, st := range ranked {
		name := st.Name
		if useNickname {
			name = st.DisplayName()
		}
		entries = append(entries, student.RankedEntry{
			Rank:        i + 1,
			StudentID:   st.ID.Int64(),
			DisplayName: name,
			Level:       st.Level.Int(),
			XP:          st.XP.Int(),
		})
	}
	return entries
}

// tryGetFromCache пытается получить рейтинг из кеша.
func (h *GetLeaderboardHandler) tryGetFromCache(
	ctx context.Context,
	guildID shared.GuildID,
	limit int,
	useNickname bool,
) ([]student.RankedEntry, bool) {
	if h.cache == nil {
		return nil, false
	}

	entries, err := h.cache.GetRanking(ctx, guildID, limit, useNickname)
	if err != nil || entries == nil {
		return nil, false
	}
	return entries, true
}
