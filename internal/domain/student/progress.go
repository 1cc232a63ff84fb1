package student

import (
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION
// XP хранится относительно уровня. Порог уровня n: 5n² + 50n + 100.
// ══════════════════════════════════════════════════════════════════════════════

// XPThreshold возвращает количество XP, необходимое для перехода
// с уровня level на следующий.
func XPThreshold(level int) int {
	return shared.Level(level).Threshold()
}

// AwardResult описывает результат начисления XP.
type AwardResult struct {
	// OldLevel и OldXP - состояние до начисления.
	OldLevel int
	OldXP    int

	// NewLevel и NewXP - состояние после начисления.
	NewLevel int
	NewXP    int

	// LevelsGained - сколько порогов пересекло начисление.
	LevelsGained int
}

// LeveledUp возвращает true, если начисление повысило уровень.
func (r AwardResult) LeveledUp() bool {
	return r.LevelsGained > 0
}

// AwardXP начисляет студенту XP и каскадно повышает уровень, пока
// накопленный XP достигает порога текущего уровня. Остаток переносится
// на новый уровень. Отрицательное начисление уменьшает XP (возможно,
// ниже нуля), но никогда не понижает уровень.
func (s *Student) AwardXP(amount int) (AwardResult, error) {
	if err := s.CheckProgression(); err != nil {
		return AwardResult{}, err
	}

	res := AwardResult{
		OldLevel: s.Level.Int(),
		OldXP:    s.XP.Int(),
	}

	level := s.Level.Int()
	xp := s.XP.Int() + amount

	for xp >= XPThreshold(level) {
		xp -= XPThreshold(level)
		level++
		res.LevelsGained++
	}

	s.Level = shared.Level(level)
	s.XP = shared.XP(xp)

	res.NewLevel = level
	res.NewXP = xp

	return res, nil
}

// CheckProgression проверяет инвариант прогрессии:
// XP < Threshold(Level). Отрицательный XP допустим (результат
// отрицательных начислений), XP на уровне порога и выше означает порчу
// хранимого состояния и поднимается как shared.ErrProgressionBroken.
func (s *Student) CheckProgression() error {
	if !s.Level.IsValid() {
		return shared.ErrProgressionBroken
	}
	if s.XP.Int() >= s.Level.Threshold() {
		return shared.ErrProgressionBroken
	}
	return nil
}
