// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// GuildID identifies a guild (one cohort lives in one guild).
type GuildID int64

// IsValid checks if the guild ID is valid (positive number).
func (g GuildID) IsValid() bool {
	return g > 0
}

// Int64 returns the underlying int64 value.
func (g GuildID) Int64() int64 {
	return int64(g)
}

// String returns the string representation.
func (g GuildID) String() string {
	return strconv.FormatInt(int64(g), 10)
}

// NewGuildID creates a new GuildID with validation.
func NewGuildID(id int64) (GuildID, error) {
	if id <= 0 {
		return 0, NewDomainError("shared", "NewGuildID", ErrInvalidID, "guild ID must be positive")
	}
	return GuildID(id), nil
}

// StudentID identifies a guild member enrolled as a student.
type StudentID int64

// IsValid checks if the student ID is valid.
func (s StudentID) IsValid() bool {
	return s > 0
}

// Int64 returns the underlying int64 value.
func (s StudentID) Int64() int64 {
	return int64(s)
}

// String returns the string representation.
func (s StudentID) String() string {
	return strconv.FormatInt(int64(s), 10)
}

// NewStudentID creates a new StudentID with validation.
func NewStudentID(id int64) (StudentID, error) {
	if id <= 0 {
		return 0, ErrInvalidStudentID
	}
	return StudentID(id), nil
}

// MessageID identifies a message delivered through the gateway.
// The setup marker message ID doubles as the cohort's "initialized" flag.
type MessageID int64

// IsValid checks if the message ID is set.
func (m MessageID) IsValid() bool {
	return m > 0
}

// Int64 returns the underlying int64 value.
func (m MessageID) Int64() int64 {
	return int64(m)
}

// ═══════════════════════════════════════════════════════════════════════════
// XP and Level Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// XP represents experience points accumulated within the current level.
// XP is relative: crossing a level threshold resets it to the remainder.
// Negative awards can drive stored XP below zero; that is valid state.
type XP int

// IsValid checks if the XP value is non-negative. Used when enrolling;
// stored XP may legitimately be negative.
func (x XP) IsValid() bool {
	return x >= 0
}

// Int returns the underlying int value.
func (x XP) Int() int {
	return int(x)
}

// NewXP creates a new XP value with validation.
func NewXP(amount int) (XP, error) {
	if amount < 0 {
		return 0, NewDomainError("shared", "NewXP", ErrNegativeValue, "XP cannot be negative")
	}
	return XP(amount), nil
}

// Level represents a student's level. Levels start at zero.
type Level int

// IsValid checks if the level is non-negative.
func (l Level) IsValid() bool {
	return l >= 0
}

// Int returns the underlying int value.
func (l Level) Int() int {
	return int(l)
}

// Threshold returns the XP needed to advance past this level.
// The curve is quadratic: 5*level^2 + 50*level + 100.
func (l Level) Threshold() int {
	n := int(l)
	return 5*n*n + 50*n + 100
}

// ═══════════════════════════════════════════════════════════════════════════
// Rank Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Rank represents a student's position in the leaderboard, starting at 1.
type Rank int

// IsValid checks if the rank is valid.
func (r Rank) IsValid() bool {
	return r >= 1
}

// Int returns the underlying int value.
func (r Rank) Int() int {
	return int(r)
}

// ═══════════════════════════════════════════════════════════════════════════
// Evaluation Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// EvalCode is a session code assigned to an evaluation pairing.
type EvalCode int

// IsValid checks if the code fits the four-digit display space.
func (c EvalCode) IsValid() bool {
	return c >= 0 && c <= 9999
}

// Int returns the underlying int value.
func (c EvalCode) Int() int {
	return int(c)
}

// String renders the code zero-padded to four digits.
func (c EvalCode) String() string {
	return fmt.Sprintf("%04d", int(c))
}

// Day is a one-based bootcamp day number. Zero means "latest recorded day".
type Day int

const (
	// LatestDay is the sentinel that resolves to the highest recorded day.
	LatestDay Day = 0
)

// IsLatest reports whether the day is the latest-day sentinel.
func (d Day) IsLatest() bool {
	return d == LatestDay
}

// Int returns the underlying int value.
func (d Day) Int() int {
	return int(d)
}

// ═══════════════════════════════════════════════════════════════════════════
// DisplayName Value Object
// ═══════════════════════════════════════════════════════════════════════════

// DisplayName is the name a student is shown under. When a student sets a
// nickname it replaces the base name everywhere.
type DisplayName string

// IsValid checks that the name is not blank.
func (n DisplayName) IsValid() bool {
	return strings.TrimSpace(string(n)) != ""
}

// String returns the string representation.
func (n DisplayName) String() string {
	return string(n)
}
