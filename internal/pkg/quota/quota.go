// Package quota enforces the per-student daily chat budget with Redis.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimitExceededError is returned once a student has used up the daily
// allowance. It maps to HTTP 429 at the edge.
type LimitExceededError struct {
	Limit int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("daily chat limit of %d messages reached", e.Limit)
}

type ILimiter interface {
	Allow(ctx context.Context, userID string) error
}

type limiter struct {
	rdb   *redis.Client
	limit int
}

func NewLimiter(rdb *redis.Client, limit int) ILimiter {
	return &limiter{rdb: rdb, limit: limit}
}

// Allow counts this turn against today's budget. The counter key rolls over
// at midnight UTC via expiry, so no cleanup job is needed. If Redis is down
// the turn is allowed; quota is a throttle, not a security boundary.
func (l *limiter) Allow(ctx context.Context, userID string) error {
	if l.rdb == nil || l.limit <= 0 {
		return nil
	}

	key := fmt.Sprintf("chat_quota:%s:%s", userID, time.Now().UTC().Format("2006-01-02"))

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return nil
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, 24*time.Hour)
	}

	if count > int64(l.limit) {
		return &LimitExceededError{Limit: l.limit}
	}
	return nil
}
