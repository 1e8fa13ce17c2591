package preference

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheTTL bounds how long a cached projection can outlive an external
// mutation of the backing store (e.g. a direct SQL edit bypassing Save).
const cacheTTL = 10 * time.Minute

const cacheKey = "grafik:preferences:records"

// CachedStore wraps a Store with a Redis-backed cache of the raw record
// set, invalidated on every Save. A Redis error never surfaces as a store
// failure — Load and Save both fall back to the wrapped store.
type CachedStore struct {
	next   Store
	rdb    *redis.Client
	logger *slog.Logger
}

// NewCachedStore wraps next with a read-through Redis cache.
func NewCachedStore(next Store, rdb *redis.Client, logger *slog.Logger) *CachedStore {
	return &CachedStore{next: next, rdb: rdb, logger: logger}
}

func (c *CachedStore) Load(ctx context.Context) ([]Record, error) {
	if cached, ok := c.readCache(ctx); ok {
		return cached, nil
	}

	records, err := c.next.Load(ctx)
	if err != nil {
		return records, err
	}
	c.writeCache(ctx, records)
	return records, nil
}

func (c *CachedStore) Save(ctx context.Context, records []Record) error {
	if err := c.next.Save(ctx, records); err != nil {
		return err
	}
	// Best-effort invalidation: a stale cache entry self-heals at the next
	// TTL expiry even if this delete fails.
	if err := c.rdb.Del(ctx, cacheKey).Err(); err != nil {
		c.logger.Warn("failed to invalidate preference cache", "error", err)
	}
	return nil
}

func (c *CachedStore) readCache(ctx context.Context) ([]Record, bool) {
	val, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("preference cache read failed, falling back to store", "error", err)
		}
		return nil, false
	}
	var wire []wireRecord
	if err := json.Unmarshal(val, &wire); err != nil {
		c.logger.Warn("invalid preference cache payload", "error", err)
		return nil, false
	}
	return fromWire(wire), true
}

func (c *CachedStore) writeCache(ctx context.Context, records []Record) {
	payload, err := json.Marshal(toWire(records))
	if err != nil {
		c.logger.Warn("failed to marshal preference cache payload", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey, payload, cacheTTL).Err(); err != nil {
		c.logger.Warn("failed to warm preference cache", "error", err)
	}
}

// wireRecord is the JSON-friendly shape for Record (time.Time round-trips
// through JSON directly, but keeping the wire type explicit makes the
// cache payload independent of the domain type's field order).
type wireRecord struct {
	Date   time.Time `json:"date"`
	Doctor string    `json:"doctor"`
	Status string    `json:"status"`
	Reason string    `json:"reason"`
}

func toWire(records []Record) []wireRecord {
	out := make([]wireRecord, len(records))
	for i, r := range records {
		out[i] = wireRecord{Date: r.Date, Doctor: r.Doctor, Status: string(r.Status), Reason: string(r.Reason)}
	}
	return out
}

func fromWire(wire []wireRecord) []Record {
	out := make([]Record, len(wire))
	for i, w := range wire {
		out[i] = Record{Date: w.Date, Doctor: w.Doctor, Status: Status(w.Status), Reason: Reason(w.Reason)}
	}
	return out
}

var _ Store = (*CachedStore)(nil)
