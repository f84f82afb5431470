package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matenweekend/api/internal/domain"
)

const rankingKey = "ranking:v1"

// RedisRankingCache keeps one serialized copy of the computed leaderboard.
// The ledger remains the source of truth: every ledger append invalidates the
// key, and a TTL bounds staleness if an invalidation is ever lost.
type RedisRankingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRankingCache(addr, password string, db int) (*RedisRankingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis -> %w", err)
	}

	return &RedisRankingCache{
		client: client,
		ttl:    5 * time.Minute,
	}, nil
}

// NewRedisRankingCacheWithClient wires an existing client, useful in tests.
func NewRedisRankingCacheWithClient(client *redis.Client, ttl time.Duration) *RedisRankingCache {
	return &RedisRankingCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisRankingCache) Get(ctx context.Context) ([]domain.RankingEntry, bool, error) {
	payload, err := c.client.Get(ctx, rankingKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("c.client.Get -> %w", err)
	}

	var entries []domain.RankingEntry
	if err = json.Unmarshal(payload, &entries); err != nil {
		return nil, false, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return entries, true, nil
}

func (c *RedisRankingCache) Set(ctx context.Context, entries []domain.RankingEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err = c.client.Set(ctx, rankingKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("c.client.Set -> %w", err)
	}

	return nil
}

func (c *RedisRankingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, rankingKey).Err(); err != nil {
		return fmt.Errorf("c.client.Del -> %w", err)
	}

	return nil
}
