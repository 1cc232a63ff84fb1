package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD LOCK
// Serializes XP awards per student across processes. The row lock in
// the award transaction protects a single database; this lock protects
// against two bot instances racing on the same student.
// ══════════════════════════════════════════════════════════════════════════════

// Release compares the stored token before deleting, so a lock that
// expired and was re-acquired by someone else is never released by the
// old holder.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// AwardLock implements student.AwardLock on Redis SET NX.
type AwardLock struct {
	cache *Cache
}

// NewAwardLock creates a new AwardLock.
func NewAwardLock(cache *Cache) *AwardLock {
	return &AwardLock{cache: cache}
}

func awardLockKey(guildID shared.GuildID, id shared.StudentID) string {
	return fmt.Sprintf("%saward:%d:%d", PrefixLock, guildID.Int64(), id.Int64())
}

// Acquire takes the student's award lock.
// Returns a release function and false when the lock is already held.
func (l *AwardLock) Acquire(ctx context.Context, guildID shared.GuildID, id shared.StudentID, ttl time.Duration) (func(ctx context.Context) error, bool, error) {
	key := awardLockKey(guildID, id)
	token := uuid.NewString()

	acquired, err := l.cache.Client().SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("award lock: acquire: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		err := l.cache.Client().Eval(ctx, releaseScript, []string{key}, token).Err()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("award lock: release: %w", err)
		}
		return nil
	}

	return release, true, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL AWARD LOCK
// Fallback for deployments without Redis. Serializes awards inside one
// process only; the row lock in the award transaction still covers the
// database. TTL is ignored because the process releases on every path.
// ══════════════════════════════════════════════════════════════════════════════

// LocalAwardLock implements student.AwardLock with in-process state.
type LocalAwardLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalAwardLock creates a new LocalAwardLock.
func NewLocalAwardLock() *LocalAwardLock {
	return &LocalAwardLock{held: make(map[string]struct{})}
}

// Acquire takes the student's award lock within this process.
func (l *LocalAwardLock) Acquire(ctx context.Context, guildID shared.GuildID, id shared.StudentID, ttl time.Duration) (func(ctx context.Context) error, bool, error) {
	key := awardLockKey(guildID, id)

	l.mu.Lock()
	if _, taken := l.held[key]; taken {
		l.mu.Unlock()
		return nil, false, nil
	}
	l.held[key] = struct{}{}
	l.mu.Unlock()

	release := func(ctx context.Context) error {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
		return nil
	}

	return release, true, nil
}
