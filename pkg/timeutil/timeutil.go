// Package timeutil provides timezone utilities for the Kuala Lumpur timezone (UTC+8).
// Every BotCamp cohort runs on Malaysia time: setup dates, daily eval rotations and
// announcement schedules are all interpreted in this zone regardless of where the
// service itself is deployed.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// KualaLumpurTZ is the Kuala Lumpur timezone (UTC+8, no DST).
// Malaysia has observed a constant UTC+8 offset since 1982, so this is
// constant year-round.
var KualaLumpurTZ = time.FixedZone("Asia/Kuala_Lumpur", 8*60*60)

// Now returns the current time in Kuala Lumpur timezone.
func Now() time.Time {
	return time.Now().In(KualaLumpurTZ)
}

// ToKualaLumpur converts a time to Kuala Lumpur timezone.
func ToKualaLumpur(t time.Time) time.Time {
	return t.In(KualaLumpurTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in Kuala Lumpur timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, KualaLumpurTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Kuala Lumpur timezone.
func StartOfDay(t time.Time) time.Time {
	local := ToKualaLumpur(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, KualaLumpurTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Kuala Lumpur timezone.
func EndOfDay(t time.Time) time.Time {
	local := ToKualaLumpur(t)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, KualaLumpurTZ)
}

// IsToday checks if the given time is today in Kuala Lumpur timezone.
func IsToday(t time.Time) bool {
	now := Now()
	local := ToKualaLumpur(t)
	return local.Year() == now.Year() &&
		local.Month() == now.Month() &&
		local.Day() == now.Day()
}

// IsPast reports whether the given time is strictly before the current
// moment in Kuala Lumpur timezone. Cohort setup uses this to reject
// start dates that have already passed.
func IsPast(t time.Time) bool {
	return ToKualaLumpur(t).Before(Now())
}

// IsSameDay checks if two times are on the same day in Kuala Lumpur timezone.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := ToKualaLumpur(t1), ToKualaLumpur(t2)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween calculates the number of whole days between two times.
func DaysBetween(t1, t2 time.Time) int {
	a := StartOfDay(t1)
	b := StartOfDay(t2)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD), the format
	// accepted by the setup command.
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
)

// FormatLocal formats a time in Kuala Lumpur timezone with the given layout.
func FormatLocal(t time.Time, layout string) string {
	return ToKualaLumpur(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in Kuala Lumpur timezone.
func FormatDateStr(t time.Time) string {
	return FormatLocal(t, FormatDate)
}

// ParseLocal parses a time string in Kuala Lumpur timezone.
func ParseLocal(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, KualaLumpurTZ)
}

// ParseDate parses a date string (YYYY-MM-DD) in Kuala Lumpur timezone.
// This is the parser behind the setup command's date argument.
func ParseDate(value string) (time.Time, error) {
	return ParseLocal(FormatDate, value)
}
