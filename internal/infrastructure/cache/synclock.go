// Package cache holds Redis-backed coordination primitives.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// syncLockKey guards the ticket sync pipeline across processes.
	syncLockKey = "diglink:sync:lock"
)

// SyncLock is a Redis-based lock preventing overlapping sync runs when both
// the worker schedule and the cron HTTP trigger fire. The TTL bounds how long
// a crashed holder can block the next run.
type SyncLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSyncLock creates a sync lock with the given holder TTL.
func NewSyncLock(client *redis.Client, ttl time.Duration) *SyncLock {
	return &SyncLock{client: client, ttl: ttl}
}

// TryAcquire attempts to take the lock without blocking. SetNX is atomic, so
// exactly one contender wins.
func (l *SyncLock) TryAcquire(ctx context.Context, holder string) (bool, error) {
	acquired, err := l.client.SetNX(ctx, syncLockKey, holder, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	return acquired, nil
}

// Release frees the lock if this holder still owns it. The check-and-delete
// runs as a Lua script so an expired-and-reacquired lock is never released by
// the previous holder.
func (l *SyncLock) Release(ctx context.Context, holder string) error {
	script := redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`)
	if err := script.Run(ctx, l.client, []string{syncLockKey}, holder).Err(); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}
