// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	stderrors "recipe-engine/internal/common/errors"
	"recipe-engine/internal/common/logger"
	"recipe-engine/internal/common/metrics"
	"recipe-engine/internal/models"
)

const (
	entryKeyPrefix = "query:result:"
	tagKeyPrefix   = "query:recipetag:"
)

// ResultCache memoizes query results in Redis under a fingerprint key.
// The short TTL is the primary consistency mechanism; tag sets per recipe id
// enable best-effort invalidation on recipe mutation. The cache is a
// performance optimization only: every failure here is reported as a miss
// and the façade computes live.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewResultCache(client *redis.Client, ttl time.Duration, log logger.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "result-cache"}),
	}
}

// TTL returns the configured entry lifetime.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached result for a fingerprint, or (nil, false) on miss.
// Cache errors are logged and reported as a miss.
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (*models.QueryResult, bool) {
	val, err := c.client.Get(ctx, entryKeyPrefix+fingerprint).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.warnDegraded("get", err)
		}
		metrics.CacheMisses.Inc()
		return nil, false
	}

	var result models.QueryResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		c.warnDegraded("get", err)
		metrics.CacheMisses.Inc()
		return nil, false
	}

	metrics.CacheHits.Inc()
	return &result, true
}

// Put stores a result under its fingerprint and tags the entry with every
// recipe id it contains so recipe mutations can invalidate it. Tag sets live
// twice as long as entries so a tag never expires before its members.
func (c *ResultCache) Put(ctx context.Context, fingerprint string, result *models.QueryResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.warnDegraded("put", err)
		return
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, entryKeyPrefix+fingerprint, data, c.ttl)
	for _, item := range result.Items {
		tagKey := tagKeyPrefix + item.RecipeID
		pipe.SAdd(ctx, tagKey, fingerprint)
		pipe.Expire(ctx, tagKey, 2*c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.warnDegraded("put", err)
	}
}

// InvalidateByRecipe drops every cached entry tagged with the recipe id.
// Best effort: a failure here just means those entries age out via TTL.
func (c *ResultCache) InvalidateByRecipe(ctx context.Context, recipeID, reason string) {
	tagKey := tagKeyPrefix + recipeID

	fingerprints, err := c.client.SMembers(ctx, tagKey).Result()
	if err != nil {
		c.warnDegraded("invalidate", err)
		return
	}
	if len(fingerprints) == 0 {
		return
	}

	keys := make([]string, 0, len(fingerprints)+1)
	for _, fp := range fingerprints {
		keys = append(keys, entryKeyPrefix+fp)
	}
	keys = append(keys, tagKey)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.warnDegraded("invalidate", err)
		return
	}

	metrics.CacheInvalidations.WithLabelValues(reason).Add(float64(len(fingerprints)))
	c.logger.Debug("cache entries invalidated", map[string]interface{}{
		"recipeId": recipeID,
		"entries":  len(fingerprints),
	})
}

func (c *ResultCache) warnDegraded(operation string, err error) {
	cacheErr := stderrors.NewCacheError(operation, err)
	c.logger.Warn("cache degraded, falling through to live computation", map[string]interface{}{
		"operation": operation,
		"code":      string(cacheErr.Code),
		"error":     err.Error(),
	})
}
