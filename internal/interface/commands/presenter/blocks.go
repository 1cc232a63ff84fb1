// Package presenter formats query results for monospace guild display.
// The block layouts are fixed-width and wrapped in code fences so
// column alignment survives the chat client's proportional font.
package presenter

import (
	"fmt"
	"strings"

	"github.com/c4t-hub/botcamp-hub/internal/application/query"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD BLOCK
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardBlock renders ranked entries under the LEADERBOARD header.
// Rank is right-justified to 2, level to 3, xp to 5.
func LeaderboardBlock(entries []student.RankedEntry) string {
	var b strings.Builder
	b.WriteString("```\n")
	b.WriteString("-----------\n")
	b.WriteString("LEADERBOARD\n")
	b.WriteString("-----------\n")

	for _, e := range entries {
		fmt.Fprintf(&b, "%2d. LEVEL%3d:%5d XP: %s\n", e.Rank, e.Level, e.XP, e.DisplayName)
	}

	b.WriteString("```")
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// EVALS BLOCK
// ══════════════════════════════════════════════════════════════════════════════

// EvalsBlock renders a day's evaluation pairs. The header shows the day
// as the caller requested it, so asking for the latest day prints
// "DAY 0 EVALS" even though the pairs come from the newest recorded day.
func EvalsBlock(requestedDay int, pairings []query.PairingDTO) string {
	var b strings.Builder
	b.WriteString("```\n")
	b.WriteString("-----------\n")
	fmt.Fprintf(&b, "DAY %d EVALS\n", requestedDay)
	b.WriteString("-----------\n")
	b.WriteString("0000: Tester  ->  Coder\n")

	for _, p := range pairings {
		fmt.Fprintf(&b, "%s: %s  ->  %s\n", p.Code, p.TesterName, p.CoderName)
	}

	b.WriteString("```")
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// ONE-LINERS
// ══════════════════════════════════════════════════════════════════════════════

// HeadcountLine renders the voice channel headcount reply.
func HeadcountLine(count int, channelMention string) string {
	return fmt.Sprintf("%d students in %s.", count, channelMention)
}
