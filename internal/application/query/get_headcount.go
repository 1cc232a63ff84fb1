package query

import (
	"context"
	"errors"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET HEADCOUNT QUERY
// Считает студентов, находящихся в голосовом канале прямо сейчас.
// Читает живое состояние шлюза, а не хранилище: членство в канале
// нигде не персистится.
// ══════════════════════════════════════════════════════════════════════════════

// VoiceRoster exposes live voice channel membership from the gateway.
type VoiceRoster interface {
	// VoiceChannelMembers returns the member IDs currently connected to
	// the named voice channel. A missing channel yields
	// shared.ErrChannelNotFound.
	VoiceChannelMembers(ctx context.Context, guildID shared.GuildID, channelName string) ([]int64, error)

	// IsStudent reports whether the member carries the student role.
	IsStudent(ctx context.Context, guildID shared.GuildID, memberID int64) (bool, error)
}

// GetHeadcountQuery содержит параметры запроса подсчёта.
type GetHeadcountQuery struct {
	// GuildID - гильдия (обязательно).
	GuildID int64

	// ChannelName - имя голосового канала (обязательно).
	ChannelName string
}

// Validate проверяет корректность параметров запроса.
func (q *GetHeadcountQuery) Validate() error {
	if q.GuildID <= 0 {
		return errors.New("guild id must be positive")
	}
	if q.ChannelName == "" {
		return errors.New("channel name is required")
	}
	return nil
}

// GetHeadcountResult содержит результат подсчёта.
type GetHeadcountResult struct {
	// ChannelName - канал, по которому считали.
	ChannelName string `json:"channel_name"`

	// Count - количество студентов в канале.
	Count int `json:"count"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetHeadcountHandler обрабатывает запросы подсчёта студентов в канале.
type GetHeadcountHandler struct {
	roster VoiceRoster
}

// NewGetHeadcountHandler создаёт новый обработчик подсчёта.
func NewGetHeadcountHandler(roster VoiceRoster) *GetHeadcountHandler {
	return &GetHeadcountHandler{roster: roster}
}

// Handle выполняет запрос подсчёта.
func (h *GetHeadcountHandler) Handle(ctx context.Context, query GetHeadcountQuery) (*GetHeadcountResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetHeadcount", shared.ErrValidation, err.Error(), err)
	}

	guildID := shared.GuildID(query.GuildID)

	members, err := h.roster.VoiceChannelMembers(ctx, guildID, query.ChannelName)
	if err != nil {
		if errors.Is(err, shared.ErrChannelNotFound) {
			return nil, err
		}
		return nil, shared.WrapError("query", "GetHeadcount", shared.ErrServiceUnavailable, "failed to read voice channel", err)
	}

	count := 0
	for _, memberID := range members {
		isStudent, err := h.roster.IsStudent(ctx, guildID, memberID)
		if err != nil {
			return nil, shared.WrapError("query", "GetHeadcount", shared.ErrServiceUnavailable, "failed to check member role", err)
		}
		if isStudent {
			count++
		}
	}

	return &GetHeadcountResult{
		ChannelName: query.ChannelName,
		Count:       count,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
