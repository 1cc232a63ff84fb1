package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/evaluation"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DAILY PAIRINGS QUERY
// Получает пары tester -> coder на заданный день буткемпа.
// День 0 - сентинель "последний записанный день".
// ══════════════════════════════════════════════════════════════════════════════

// GetDailyPairingsQuery содержит параметры запроса пар на день.
type GetDailyPairingsQuery struct {
	// GuildID - гильдия когорты (обязательно).
	GuildID int64

	// Day - номер дня. 0 означает последний день, по которому есть записи.
	Day int

	// UseRealName - подставлять реальные имена вместо ников.
	UseRealName bool
}

// Validate проверяет корректность параметров запроса.
func (q *GetDailyPairingsQuery) Validate() error {
	if q.GuildID <= 0 {
		return errors.New("guild id must be positive")
	}
	if q.Day < 0 {
		return errors.New("day cannot be negative")
	}
	return nil
}

// PairingDTO - пара с уже разрешёнными именами участников.
type PairingDTO struct {
	// Code - четырёхзначный код пары.
	Code string `json:"code"`

	// TesterName - отображаемое имя проверяющего.
	TesterName string `json:"tester_name"`

	// CoderName - отображаемое имя проверяемого.
	CoderName string `json:"coder_name"`
}

// GetDailyPairingsResult содержит результат запроса пар.
type GetDailyPairingsResult struct {
	// RequestedDay - день из запроса, включая сентинель 0.
	RequestedDay int `json:"requested_day"`

	// EffectiveDay - день, по которому реально читались записи.
	// 0, если записей нет вовсе.
	EffectiveDay int `json:"effective_day"`

	// Pairings - пары в порядке хранения.
	Pairings []PairingDTO `json:"pairings"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetDailyPairingsHandler обрабатывает запросы на получение пар дня.
type GetDailyPairingsHandler struct {
	evals    evaluation.Repository
	students student.Repository
}

// NewGetDailyPairingsHandler создаёт новый обработчик запроса пар дня.
func NewGetDailyPairingsHandler(evals evaluation.Repository, students student.Repository) *GetDailyPairingsHandler {
	return &GetDailyPairingsHandler{
		evals:    evals,
		students: students,
	}
}

// Handle выполняет запрос на получение пар дня.
func (h *GetDailyPairingsHandler) Handle(ctx context.Context, query GetDailyPairingsQuery) (*GetDailyPairingsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetDailyPairings", shared.ErrValidation, err.Error(), err)
	}

	guildID := shared.GuildID(query.GuildID)

	day := shared.Day(query.Day)
	if day.IsLatest() {
		maxDay, err := h.evals.MaxDay(ctx, guildID)
		if err != nil {
			return nil, shared.WrapError("query", "GetDailyPairings", shared.ErrStoreUnavailable, "failed to resolve latest day", err)
		}
		day = maxDay
	}

	result := &GetDailyPairingsResult{
		RequestedDay: query.Day,
		EffectiveDay: day.Int(),
		Pairings:     []PairingDTO{},
		GeneratedAt:  time.Now().UTC(),
	}

	// Записей нет: сентинель разрешился в 0, либо запрошен пустой день.
	if day.Int() == 0 {
		return result, nil
	}

	pairs, err := h.evals.ListByDay(ctx, guildID, day)
	if err != nil {
		return nil, shared.WrapError("query", "GetDailyPairings", shared.ErrStoreUnavailable, "failed to list pairs", err)
	}
	if len(pairs) == 0 {
		return result, nil
	}

	names, err := h.resolveNames(ctx, guildID, pairs, !query.UseRealName)
	if err != nil {
		return nil, err
	}

	for _, p := range pairs {
		result.Pairings = append(result.Pairings, PairingDTO{
			Code:       p.Code.String(),
			TesterName: names[p.TesterID],
			CoderName:  names[p.CoderID],
		})
	}

	return result, nil
}

// resolveNames собирает имена всех участников пар одним запросом.
// Пара, ссылающаяся на незачисленного студента, означает повреждение
// данных и отдаётся как ошибка целостности, а не пропускается молча.
func (h *GetDailyPairingsHandler) resolveNames(
	ctx context.Context,
	guildID shared.GuildID,
	pairs []*evaluation.Pair,
	useNickname bool,
) (map[shared.StudentID]string, error) {
	seen := make(map[shared.StudentID]struct{}, len(pairs)*2)
	ids := make([]shared.StudentID, 0, len(pairs)*2)
	for _, p := range pairs {
		for _, id := range []shared.StudentID{p.TesterID, p.CoderID} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	studentsByID, err := h.students.GetByIDs(ctx, guildID, ids)
	if err != nil {
		return nil, shared.WrapError("query", "GetDailyPairings", shared.ErrStoreUnavailable, "failed to load students", err)
	}

	names := make(map[shared.StudentID]string, len(studentsByID))
	for _, st := range studentsByID {
		if useNickname {
			names[st.ID] = st.DisplayName()
		} else {
			names[st.ID] = st.Name
		}
	}

	for _, id := range ids {
		if _, ok := names[id]; !ok {
			return nil, shared.WrapError(
				"query", "GetDailyPairings",
				shared.ErrInternalConsistency,
				fmt.Sprintf("pair references unknown student %d", id.Int64()),
				shared.ErrOrphanedEvalPair,
			)
		}
	}

	return names, nil
}
