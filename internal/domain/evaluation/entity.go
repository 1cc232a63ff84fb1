// Package evaluation содержит доменную модель парных оценочных сессий.
// Каждый день буткемпа студенты разбиваются на пары "тестер -> кодер".
package evaluation

import (
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PAIR
// ══════════════════════════════════════════════════════════════════════════════

// Pair представляет одну оценочную пару на конкретный день.
type Pair struct {
	// GuildID - гильдия (когорта), к которой относится пара.
	GuildID shared.GuildID

	// Day - порядковый номер дня буткемпа, начиная с 1.
	Day shared.Day

	// Code - код сессии, отображается четырьмя цифрами с ведущими нулями.
	Code shared.EvalCode

	// CoderID - студент, чью работу оценивают.
	CoderID shared.StudentID

	// TesterID - студент, который проводит оценку.
	TesterID shared.StudentID

	// CreatedAt - время записи пары.
	CreatedAt time.Time
}

// NewPairParams содержит параметры для создания пары.
type NewPairParams struct {
	GuildID  int64
	Day      int
	Code     int
	CoderID  int64
	TesterID int64
}

// NewPair создаёт оценочную пару с валидацией всех полей.
func NewPair(params NewPairParams) (*Pair, error) {
	guildID, err := shared.NewGuildID(params.GuildID)
	if err != nil {
		return nil, err
	}

	if params.Day < 1 {
		return nil, shared.NewDomainError("evaluation", "NewPair", shared.ErrValueOutOfRange, "day must be positive")
	}

	code := shared.EvalCode(params.Code)
	if !code.IsValid() {
		return nil, shared.NewDomainError("evaluation", "NewPair", shared.ErrValueOutOfRange, "code must fit four digits")
	}

	coderID, err := shared.NewStudentID(params.CoderID)
	if err != nil {
		return nil, err
	}

	testerID, err := shared.NewStudentID(params.TesterID)
	if err != nil {
		return nil, err
	}

	return &Pair{
		GuildID:   guildID,
		Day:       shared.Day(params.Day),
		Code:      code,
		CoderID:   coderID,
		TesterID:  testerID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
