// Package cache provides a Redis-backed read-through cache for rendered
// board payloads. The board is recomputed on every status change, so entries
// are short-lived and evicted on any appointment write.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const keyPrefix = "board:"

// Boards caches serialized board responses keyed by view filter. A nil
// client degrades every operation to a miss, so callers never branch.
type Boards struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewBoards(client *redis.Client, ttl time.Duration) *Boards {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Boards{redis: client, ttl: ttl}
}

// Get returns the cached payload for a view key, if present.
func (b *Boards) Get(ctx context.Context, viewKey string) ([]byte, bool) {
	if b == nil || b.redis == nil {
		return nil, false
	}
	data, err := b.redis.Get(ctx, keyPrefix+viewKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			// on redis errors serve from the database without failing
			log.WithError(err).Warn("board cache read failed")
		}
		return nil, false
	}
	return data, true
}

// Set stores a rendered payload. Failures are logged, never surfaced.
func (b *Boards) Set(ctx context.Context, viewKey string, payload []byte) {
	if b == nil || b.redis == nil {
		return
	}
	if err := b.redis.Set(ctx, keyPrefix+viewKey, payload, b.ttl).Err(); err != nil {
		log.WithError(err).Warn("board cache write failed")
	}
}

// Evict drops every cached board view. Called after any appointment write;
// a move can appear in several filtered views at once.
func (b *Boards) Evict(ctx context.Context) {
	if b == nil || b.redis == nil {
		return
	}
	keys, err := b.redis.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		log.WithError(err).Warn("board cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := b.redis.Del(ctx, keys...).Err(); err != nil {
		log.WithError(err).Warn("board cache eviction failed")
	}
}
