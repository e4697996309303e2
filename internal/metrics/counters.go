package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// counterTTL keeps hot counters around long enough for same-day and
// yesterday reads, after which Postgres is the source of truth.
const counterTTL = 48 * time.Hour

// Counters keeps loss-tolerant hot click counters in Redis. The durable
// aggregates live in Postgres; these exist so dashboards and the click
// handler can read today's totals without hitting the database.
type Counters struct{ rdb *redis.Client }

// NewCounters creates a Redis-backed hot counter set.
func NewCounters(rdb *redis.Client) *Counters { return &Counters{rdb: rdb} }

func clickKey(issuerID string, day time.Time) string {
	return fmt.Sprintf("clicks:%s:%s", day.Format("2006-01-02"), issuerID)
}

// IncrClick bumps the issuer's counter for the day and refreshes its TTL.
func (c *Counters) IncrClick(ctx context.Context, issuerID string, day time.Time) error {
	key := clickKey(issuerID, day)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("incr click counter: %w", err)
	}
	return nil
}

// GetClicks returns the hot counter for (issuer, day); missing keys are 0.
func (c *Counters) GetClicks(ctx context.Context, issuerID string, day time.Time) (int, error) {
	n, err := c.rdb.Get(ctx, clickKey(issuerID, day)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get click counter: %w", err)
	}
	return n, nil
}
