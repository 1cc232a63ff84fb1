// Package student содержит доменную модель студента буткемпа.
// Это ядро бизнес-логики - внешних зависимостей нет.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное базовое имя студента.
	ErrInvalidName = errors.New("invalid student name: must be 1-100 chars")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - центральная сущность системы: участник гильдии,
// зачисленный в буткемп.
type Student struct {
	// ID - идентификатор участника гильдии.
	ID shared.StudentID

	// GuildID - гильдия (когорта), к которой принадлежит студент.
	GuildID shared.GuildID

	// Name - базовое имя участника.
	Name string

	// Nickname - ник, выбранный участником. Пустая строка = не задан.
	// Заданный ник полностью заменяет базовое имя при отображении.
	Nickname string

	// Level - текущий уровень. Начинается с нуля.
	Level shared.Level

	// XP - очки опыта, накопленные внутри текущего уровня.
	XP shared.XP

	// EnrolledAt - время зачисления.
	EnrolledAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewStudentParams содержит параметры для создания нового студента.
type NewStudentParams struct {
	ID       int64
	GuildID  int64
	Name     string
	Nickname string
	Level    int
	XP       int
}

// NewStudent создаёт нового студента с валидацией всех полей.
func NewStudent(params NewStudentParams) (*Student, error) {
	id, err := shared.NewStudentID(params.ID)
	if err != nil {
		return nil, err
	}

	guildID, err := shared.NewGuildID(params.GuildID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	if params.Level < 0 {
		return nil, shared.NewDomainError("student", "New", shared.ErrNegativeValue, "level cannot be negative")
	}

	xp, err := shared.NewXP(params.XP)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	st := &Student{
		ID:         id,
		GuildID:    guildID,
		Name:       name,
		Nickname:   strings.TrimSpace(params.Nickname),
		Level:      shared.Level(params.Level),
		XP:         xp,
		EnrolledAt: now,
		UpdatedAt:  now,
	}

	if err := st.CheckProgression(); err != nil {
		return nil, err
	}

	return st, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// DisplayName возвращает имя для отображения: ник, если задан,
// иначе базовое имя.
func (s *Student) DisplayName() string {
	if s.Nickname != "" {
		return s.Nickname
	}
	return s.Name
}

// SetNickname устанавливает или сбрасывает ник участника.
func (s *Student) SetNickname(nickname string) {
	s.Nickname = strings.TrimSpace(nickname)
	s.UpdatedAt = time.Now().UTC()
}

// Rename обновляет базовое имя участника.
func (s *Student) Rename(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return ErrInvalidName
	}
	s.Name = name
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// String возвращает строковое представление студента для логирования.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %d, Name: %s, Level: %d, XP: %d}",
		s.ID, s.DisplayName(), s.Level, s.XP,
	)
}

// Clone создаёт копию студента.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s
	return &clone
}
