package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE
// Cached leaderboard snapshots. A snapshot is keyed by guild, limit and
// name mode, because all three change what gets rendered. Awards
// invalidate every snapshot of the guild at once.
// ══════════════════════════════════════════════════════════════════════════════

// RankingCache implements student.Cache on top of the generic Cache.
type RankingCache struct {
	cache *Cache
}

// NewRankingCache creates a new RankingCache.
func NewRankingCache(cache *Cache) *RankingCache {
	return &RankingCache{cache: cache}
}

func rankingKey(guildID shared.GuildID, limit int, useNickname bool) string {
	mode := "name"
	if useNickname {
		mode = "nick"
	}
	return fmt.Sprintf("%s%d:%d:%s", PrefixRanking, guildID.Int64(), limit, mode)
}

// GetRanking returns the cached snapshot.
// Returns shared.ErrNotFound on a miss.
func (c *RankingCache) GetRanking(ctx context.Context, guildID shared.GuildID, limit int, useNickname bool) ([]student.RankedEntry, error) {
	var entries []student.RankedEntry
	err := c.cache.Get(ctx, rankingKey(guildID, limit, useNickname), &entries)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return entries, nil
}

// SetRanking stores a snapshot with the given TTL.
func (c *RankingCache) SetRanking(ctx context.Context, guildID shared.GuildID, limit int, useNickname bool, entries []student.RankedEntry, ttl time.Duration) error {
	return c.cache.Set(ctx, rankingKey(guildID, limit, useNickname), entries, ttl)
}

// InvalidateRanking drops all cached snapshots of the guild.
func (c *RankingCache) InvalidateRanking(ctx context.Context, guildID shared.GuildID) error {
	pattern := fmt.Sprintf("%s%d:*", PrefixRanking, guildID.Int64())
	return c.cache.DeleteByPattern(ctx, pattern)
}
