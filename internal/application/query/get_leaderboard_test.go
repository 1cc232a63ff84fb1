package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

func TestGetLeaderboard_OrderAndLimit(t *testing.T) {
	repo := newFakeStudentRepo(
		mustStudent(1, "anna", "ann", 3, 40),
		mustStudent(2, "boris", "bob", 3, 40),
		mustStudent(3, "vera", "vee", 5, 0),
		mustStudent(4, "grisha", "gri", 1, 99),
	)
	h := NewGetLeaderboardHandler(repo, nil)

	res, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: 10, Limit: 3})
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)

	// Level descending, then XP, then display name for ties.
	assert.Equal(t, "vee", res.Entries[0].DisplayName)
	assert.Equal(t, "ann", res.Entries[1].DisplayName)
	assert.Equal(t, "bob", res.Entries[2].DisplayName)

	assert.Equal(t, 1, res.Entries[0].Rank)
	assert.Equal(t, 2, res.Entries[1].Rank)
	assert.Equal(t, 3, res.Entries[2].Rank)
}

func TestGetLeaderboard_DefaultLimitCapsEntries(t *testing.T) {
	repo := newFakeStudentRepo()
	for i := int64(1); i <= 8; i++ {
		require.NoError(t, repo.Create(context.Background(), mustStudent(i, "s", "", int(i), 0)))
	}
	h := NewGetLeaderboardHandler(repo, nil)

	res, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: 10, Limit: DefaultLeaderboardLimit})
	require.NoError(t, err)
	assert.Len(t, res.Entries, DefaultLeaderboardLimit)
}

func TestGetLeaderboard_NonPositiveLimitYieldsEmpty(t *testing.T) {
	repo := newFakeStudentRepo(mustStudent(1, "anna", "ann", 1, 0))
	h := NewGetLeaderboardHandler(repo, nil)

	for _, limit := range []int{0, -1} {
		res, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: 10, Limit: limit})
		require.NoError(t, err)
		assert.Empty(t, res.Entries)
	}
}

func TestGetLeaderboard_RealNameMode(t *testing.T) {
	// Same level and XP: the display mode flips the tie-break order.
	repo := newFakeStudentRepo(
		mustStudent(1, "zoya", "aa", 2, 10),
		mustStudent(2, "anna", "zz", 2, 10),
	)
	h := NewGetLeaderboardHandler(repo, nil)

	byNick, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: 10, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, "aa", byNick.Entries[0].DisplayName)

	byName, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: 10, Limit: 2, UseRealName: true})
	require.NoError(t, err)
	assert.Equal(t, "anna", byName.Entries[0].DisplayName)
}

func TestGetLeaderboard_CacheHitSkipsRepository(t *testing.T) {
	repo := newFakeStudentRepo(mustStudent(1, "anna", "ann", 1, 0))
	repo.listErr = errors.New("repo must not be called")
	cache := &fakeRankingCache{entries: []student.RankedEntry{
		{Rank: 1, StudentID: 1, DisplayName: "ann", Level: 1, XP: 0},
	}}
	h := NewGetLeaderboardHandler(repo, cache)

	res, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: 10, Limit: 5})
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, 1, cache.hits)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "ann", res.Entries[0].DisplayName)
}

func TestGetLeaderboard_CacheMissPopulatesCache(t *testing.T) {
	repo := newFakeStudentRepo(mustStudent(1, "anna", "ann", 1, 0))
	cache := &fakeRankingCache{}
	h := NewGetLeaderboardHandler(repo, cache)

	res, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: 10, Limit: 5})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, 1, cache.sets)
}

func TestGetLeaderboard_InvalidGuild(t *testing.T) {
	h := NewGetLeaderboardHandler(newFakeStudentRepo(), nil)

	_, err := h.Handle(context.Background(), GetLeaderboardQuery{GuildID: 0})
	assert.Error(t, err)
}
