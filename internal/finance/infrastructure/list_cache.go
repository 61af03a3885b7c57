package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/expensio/expensio/internal/finance/domain"
)

const listCacheTTL = 60 * time.Second

// RedisListCache keeps per-user transaction lists in Redis so list views
// survive across requests until the next mutation invalidates them.
// Every failure degrades to a cache miss.
type RedisListCache struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisListCache(client *redis.Client, logger zerolog.Logger) *RedisListCache {
	return &RedisListCache{client: client, logger: logger}
}

func (c *RedisListCache) Get(userID string) ([]domain.Transaction, bool) {
	ctx, cancel := cacheContext()
	defer cancel()

	cached, err := c.client.Get(ctx, listCacheKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	var transactions []domain.Transaction
	if err := json.Unmarshal([]byte(cached), &transactions); err != nil {
		return nil, false
	}
	return transactions, true
}

func (c *RedisListCache) Set(userID string, transactions []domain.Transaction) {
	data, err := json.Marshal(transactions)
	if err != nil {
		return
	}
	ctx, cancel := cacheContext()
	defer cancel()

	if err := c.client.SetEx(ctx, listCacheKey(userID), data, listCacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("transaction list cache write failed")
	}
}

func (c *RedisListCache) InvalidateUser(userID string) {
	ctx, cancel := cacheContext()
	defer cancel()

	if err := c.client.Del(ctx, listCacheKey(userID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("transaction list cache invalidation failed")
	}
}

func listCacheKey(userID string) string {
	return "transactions:" + userID
}

func cacheContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}

// NoopListCache disables caching; used when Redis is not configured.
type NoopListCache struct{}

func (NoopListCache) Get(string) ([]domain.Transaction, bool)  { return nil, false }
func (NoopListCache) Set(string, []domain.Transaction)         {}
func (NoopListCache) InvalidateUser(string)                    {}
