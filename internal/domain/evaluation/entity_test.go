package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

func TestNewPair(t *testing.T) {
	p, err := NewPair(NewPairParams{
		GuildID:  10,
		Day:      3,
		Code:     7,
		CoderID:  100,
		TesterID: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, shared.Day(3), p.Day)
	assert.Equal(t, "0007", p.Code.String())
	assert.Equal(t, shared.StudentID(100), p.CoderID)
	assert.Equal(t, shared.StudentID(200), p.TesterID)
}

func TestNewPair_Validation(t *testing.T) {
	base := NewPairParams{GuildID: 10, Day: 1, Code: 1, CoderID: 100, TesterID: 200}

	bad := base
	bad.GuildID = 0
	_, err := NewPair(bad)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	bad = base
	bad.Day = 0
	_, err = NewPair(bad)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	bad = base
	bad.Code = 10000
	_, err = NewPair(bad)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	bad = base
	bad.CoderID = 0
	_, err = NewPair(bad)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	bad = base
	bad.TesterID = -1
	_, err = NewPair(bad)
	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestEvalCodeFormatting(t *testing.T) {
	assert.Equal(t, "0000", shared.EvalCode(0).String())
	assert.Equal(t, "0042", shared.EvalCode(42).String())
	assert.Equal(t, "9999", shared.EvalCode(9999).String())
}
