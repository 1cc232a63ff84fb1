package eventhandler

import (
	"context"
	"log/slog"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON COHORT INITIALIZED HANDLER
// Реагирует на завершение сетапа когорты: сбрасывает кеши прошлой
// когорты этой гильдии и фиксирует факт запуска в логе. Рейтинги
// прошлого набора не должны пережить новый старт.
// ═══════════════════════════════════════════════════════════════════════════

// OnCohortInitializedHandler обрабатывает событие инициализации когорты.
type OnCohortInitializedHandler struct {
	cache  student.Cache
	logger *slog.Logger
}

// NewOnCohortInitializedHandler создаёт новый обработчик.
func NewOnCohortInitializedHandler(cache student.Cache, logger *slog.Logger) *OnCohortInitializedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnCohortInitializedHandler{
		cache:  cache,
		logger: logger,
	}
}

// Handle обрабатывает событие.
// Реализует интерфейс shared.EventHandler.
func (h *OnCohortInitializedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	initialized, ok := event.(shared.CohortInitializedEvent)
	if !ok {
		h.logger.Warn("received non-CohortInitializedEvent",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
		)
		return nil
	}

	if h.cache != nil {
		if err := h.cache.InvalidateRanking(ctx, shared.GuildID(initialized.GuildID)); err != nil {
			// Кеш истечёт сам, запуск когорты важнее.
			h.logger.Error("failed to invalidate ranking cache",
				"guild_id", initialized.GuildID,
				"error", err,
			)
		}
	}

	h.logger.Info("cohort initialized",
		"guild_id", initialized.GuildID,
		"start_date", initialized.StartDate.Format("2006-01-02"),
		"marker_msg_id", initialized.MarkerMsgID,
	)

	return nil
}

// AsEventHandler адаптирует обработчик к функции shared.EventHandler.
func (h *OnCohortInitializedHandler) AsEventHandler() shared.EventHandler {
	return h.Handle
}
