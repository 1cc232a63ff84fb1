package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

func newTestStudent(t *testing.T, level, xp int) *Student {
	t.Helper()
	st, err := NewStudent(NewStudentParams{
		ID:      100,
		GuildID: 1,
		Name:    "ayen",
		Level:   level,
		XP:      xp,
	})
	require.NoError(t, err)
	return st
}

func TestXPThreshold(t *testing.T) {
	assert.Equal(t, 100, XPThreshold(0))
	assert.Equal(t, 155, XPThreshold(1))
	assert.Equal(t, 220, XPThreshold(2))
	assert.Equal(t, 1100, XPThreshold(10))
}

func TestXPThreshold_Monotonic(t *testing.T) {
	for level := 0; level < 50; level++ {
		assert.Less(t, XPThreshold(level), XPThreshold(level+1))
	}
}

func TestAwardXP_NoLevelUp(t *testing.T) {
	st := newTestStudent(t, 0, 0)

	res, err := st.AwardXP(99)
	require.NoError(t, err)

	assert.Equal(t, 0, res.NewLevel)
	assert.Equal(t, 99, res.NewXP)
	assert.False(t, res.LeveledUp())
}

func TestAwardXP_SingleLevelUpCarriesRemainder(t *testing.T) {
	st := newTestStudent(t, 0, 95)

	res, err := st.AwardXP(10)
	require.NoError(t, err)

	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 5, res.NewXP)
	assert.Equal(t, 1, res.LevelsGained)
	assert.Equal(t, shared.Level(1), st.Level)
	assert.Equal(t, shared.XP(5), st.XP)
}

func TestAwardXP_ExactThresholdResetsToZero(t *testing.T) {
	st := newTestStudent(t, 0, 0)

	res, err := st.AwardXP(100)
	require.NoError(t, err)

	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 0, res.NewXP)
}

func TestAwardXP_CascadesAcrossLevels(t *testing.T) {
	st := newTestStudent(t, 0, 0)

	// 100 + 155 + 220 = 475 clears levels 0, 1 and 2 with 25 left over.
	res, err := st.AwardXP(500)
	require.NoError(t, err)

	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, 25, res.NewXP)
	assert.Equal(t, 3, res.LevelsGained)
}

func TestAwardXP_ZeroAmountIsNoop(t *testing.T) {
	st := newTestStudent(t, 2, 50)

	res, err := st.AwardXP(0)
	require.NoError(t, err)

	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 50, res.NewXP)
	assert.False(t, res.LeveledUp())
}

func TestAwardXP_NegativeAmountLowersXPNotLevel(t *testing.T) {
	st := newTestStudent(t, 3, 10)

	res, err := st.AwardXP(-25)
	require.NoError(t, err)

	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, -15, res.NewXP)
	assert.False(t, res.LeveledUp())
	assert.Equal(t, shared.XP(-15), st.XP)
}

func TestAwardXP_DetectsCorruptedState(t *testing.T) {
	st := newTestStudent(t, 0, 0)
	st.XP = shared.XP(XPThreshold(0)) // stored XP at the threshold is invalid

	_, err := st.AwardXP(1)
	assert.ErrorIs(t, err, shared.ErrInternalConsistency)
}

func TestCheckProgression(t *testing.T) {
	st := newTestStudent(t, 1, 154)
	assert.NoError(t, st.CheckProgression())

	st.XP = 155
	assert.ErrorIs(t, st.CheckProgression(), shared.ErrProgressionBroken)

	st.XP = 10
	st.Level = -1
	assert.Error(t, st.CheckProgression())
}
