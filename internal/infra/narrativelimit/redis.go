package narrativelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	budgetKeyPrefix = "narrative:budget:"

	// Keys expire well after their window closes so a clock-skewed
	// reader never resurrects a stale counter.
	budgetTTL = 2 * time.Hour
)

type redisBudget struct {
	client       *redis.Client
	callsPerHour int
}

// NewRedisBudget caps external narrative calls per user per hour.
func NewRedisBudget(client *redis.Client, callsPerHour int) Budget {
	return &redisBudget{
		client:       client,
		callsPerHour: callsPerHour,
	}
}

func (b *redisBudget) Take(ctx context.Context, userID string, now time.Time) (bool, error) {
	if b.callsPerHour <= 0 {
		return true, nil
	}

	key := budgetKeyPrefix + userID + ":" + HourKey(now)

	pipe := b.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, budgetTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= int64(b.callsPerHour), nil
}

// HourKey buckets a timestamp into its UTC hour.
func HourKey(t time.Time) string {
	return t.UTC().Truncate(time.Hour).Format("2006-01-02-15")
}
