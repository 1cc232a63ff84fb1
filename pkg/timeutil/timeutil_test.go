package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKualaLumpurOffset(t *testing.T) {
	utc := time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)
	local := ToKualaLumpur(utc)

	// UTC 16:00 is 00:00 the next day in Kuala Lumpur.
	assert.Equal(t, 11, local.Day())
	assert.Equal(t, 0, local.Hour())
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-06-17")
	assert.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.June, parsed.Month())
	assert.Equal(t, 17, parsed.Day())
	assert.Equal(t, KualaLumpurTZ, parsed.Location())

	_, err = ParseDate("17/06/2024")
	assert.Error(t, err)
}

func TestIsPast(t *testing.T) {
	assert.True(t, IsPast(Now().Add(-time.Hour)))
	assert.False(t, IsPast(Now().Add(time.Hour)))
}

func TestStartAndEndOfDay(t *testing.T) {
	moment := time.Date(2024, 6, 17, 13, 45, 12, 0, KualaLumpurTZ)

	start := StartOfDay(moment)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())
	assert.Equal(t, 17, start.Day())

	end := EndOfDay(moment)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 17, end.Day())
}

func TestIsSameDay(t *testing.T) {
	// 15:59 UTC and 16:01 UTC straddle midnight in Kuala Lumpur.
	before := time.Date(2024, 3, 10, 15, 59, 0, 0, time.UTC)
	after := time.Date(2024, 3, 10, 16, 1, 0, 0, time.UTC)

	assert.False(t, IsSameDay(before, after))
	assert.True(t, IsSameDay(before, before.Add(-time.Hour)))
}

func TestDaysBetween(t *testing.T) {
	a := Date(2024, 6, 17)
	b := Date(2024, 6, 20)

	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, 3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(5*time.Hour)))
}

func TestFormatDateStr(t *testing.T) {
	moment := time.Date(2024, 6, 17, 23, 0, 0, 0, KualaLumpurTZ)
	assert.Equal(t, "2024-06-17", FormatDateStr(moment))
}
