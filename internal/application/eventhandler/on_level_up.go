// Package eventhandler содержит обработчики доменных событий.
// Эти обработчики реализуют event-driven архитектуру и связывают
// различные части системы через асинхронные события: начисление
// опыта порождает события, а побочные эффекты (объявления в каналах,
// сброс кешей) живут здесь, вне пути записи.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON LEVEL UP HANDLER
// Объявляет о повышении уровня в канале гильдии. Каскад из нескольких
// уровней порождает несколько событий, но объявляется только итоговый
// уровень каждого события.
// ═══════════════════════════════════════════════════════════════════════════

// Announcer отправляет текст в именованный канал гильдии.
type Announcer interface {
	SendToChannel(ctx context.Context, guildID shared.GuildID, channelName, content string) (shared.MessageID, error)
}

// LevelUpConfig содержит конфигурацию обработчика.
type LevelUpConfig struct {
	// AnnounceChannel - канал для объявлений о повышении уровня.
	AnnounceChannel string

	// MinLevelToAnnounce - минимальный новый уровень, с которого
	// начинаются объявления. Уровень 1 у всех, им не хвастаются.
	MinLevelToAnnounce int
}

// DefaultLevelUpConfig возвращает конфигурацию по умолчанию.
func DefaultLevelUpConfig() LevelUpConfig {
	return LevelUpConfig{
		AnnounceChannel:    "alerts",
		MinLevelToAnnounce: 2,
	}
}

// OnLevelUpHandler обрабатывает событие повышения уровня.
type OnLevelUpHandler struct {
	studentRepo student.Repository
	announcer   Announcer
	logger      *slog.Logger
	config      LevelUpConfig
}

// NewOnLevelUpHandler создаёт новый обработчик повышения уровня.
func NewOnLevelUpHandler(
	studentRepo student.Repository,
	announcer Announcer,
	logger *slog.Logger,
	config LevelUpConfig,
) *OnLevelUpHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.AnnounceChannel == "" {
		config.AnnounceChannel = DefaultLevelUpConfig().AnnounceChannel
	}

	return &OnLevelUpHandler{
		studentRepo: studentRepo,
		announcer:   announcer,
		logger:      logger,
		config:      config,
	}
}

// Handle обрабатывает событие.
// Реализует интерфейс shared.EventHandler.
func (h *OnLevelUpHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	levelUp, ok := event.(shared.LevelUpEvent)
	if !ok {
		h.logger.Warn("received non-LevelUpEvent",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
		)
		return nil
	}

	if levelUp.NewLevel < h.config.MinLevelToAnnounce {
		return nil
	}

	st, err := h.studentRepo.GetByID(ctx,
		shared.GuildID(levelUp.GuildID),
		shared.StudentID(levelUp.StudentID),
	)
	if err != nil {
		// Студент мог быть удалён между начислением и обработкой.
		if shared.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("level up handler: load student: %w", err)
	}

	content := fmt.Sprintf("🎉 %s reached LEVEL %d!", st.DisplayName(), levelUp.NewLevel)
	if _, err := h.announcer.SendToChannel(ctx, st.GuildID, h.config.AnnounceChannel, content); err != nil {
		h.logger.Error("failed to announce level up",
			"student_id", levelUp.StudentID,
			"new_level", levelUp.NewLevel,
			"error", err,
		)
		return err
	}

	h.logger.Info("level up announced",
		"student_id", levelUp.StudentID,
		"old_level", levelUp.OldLevel,
		"new_level", levelUp.NewLevel,
	)

	return nil
}

// AsEventHandler адаптирует обработчик к функции shared.EventHandler.
func (h *OnLevelUpHandler) AsEventHandler() shared.EventHandler {
	return h.Handle
}
