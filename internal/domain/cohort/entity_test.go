package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/pkg/timeutil"
)

func TestNew(t *testing.T) {
	start := timeutil.Date(2026, 9, 1)

	c, err := New(shared.GuildID(10), start)
	require.NoError(t, err)

	assert.Equal(t, shared.GuildID(10), c.GuildID)
	assert.False(t, c.IsInitialized())
}

func TestNew_Validation(t *testing.T) {
	start := timeutil.Date(2026, 9, 1)

	_, err := New(0, start)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = New(shared.GuildID(10), time.Time{})
	assert.ErrorIs(t, err, shared.ErrInvalidDate)
}

func TestMarkInitialized(t *testing.T) {
	c, err := New(shared.GuildID(10), timeutil.Date(2026, 9, 1))
	require.NoError(t, err)

	require.NoError(t, c.MarkInitialized(shared.MessageID(555)))
	assert.True(t, c.IsInitialized())
	assert.Equal(t, shared.MessageID(555), c.MarkerMsgID)
}

func TestMarkInitialized_SecondTimeRejected(t *testing.T) {
	c, err := New(shared.GuildID(10), timeutil.Date(2026, 9, 1))
	require.NoError(t, err)
	require.NoError(t, c.MarkInitialized(shared.MessageID(555)))

	err = c.MarkInitialized(shared.MessageID(777))
	assert.ErrorIs(t, err, shared.ErrAlreadyProcessed)
	assert.Equal(t, shared.MessageID(555), c.MarkerMsgID)
}

func TestMarkInitialized_InvalidMarker(t *testing.T) {
	c, err := New(shared.GuildID(10), timeutil.Date(2026, 9, 1))
	require.NoError(t, err)

	assert.ErrorIs(t, c.MarkInitialized(0), shared.ErrInvalidID)
}

func TestDayNumber(t *testing.T) {
	start := timeutil.Date(2026, 9, 1)
	c, err := New(shared.GuildID(10), start)
	require.NoError(t, err)

	assert.Equal(t, 1, c.DayNumber(start))
	assert.Equal(t, 1, c.DayNumber(start.Add(23*time.Hour)))
	assert.Equal(t, 2, c.DayNumber(start.Add(25*time.Hour)))
	assert.Equal(t, 0, c.DayNumber(start.Add(-time.Hour)))
}
