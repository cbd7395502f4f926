package controllers

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	awspkg "catalog-service/pkg/aws"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	CatalogCachePrefix = "catalog:v:"
	CacheVersionKey    = "catalog:version"
)

// Cache kinds, used as key segments.
const (
	cacheKindProducts = "products"
	cacheKindFacets   = "facets"
	cacheKindCategory = "category"
)

// CacheRecorder receives cache hit and miss counts.
type CacheRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// CacheManager caches catalog read responses in Redis. Every catalog write
// bumps a version number that is part of each key, so stale entries are never
// read again and simply expire. A nil manager or nil client caches nothing.
type CacheManager struct {
	redis   *redis.Client
	ttl     time.Duration
	metrics CacheRecorder
}

func NewCacheManager(redis *redis.Client, ttl time.Duration, metrics CacheRecorder) *CacheManager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheManager{
		redis:   redis,
		ttl:     ttl,
		metrics: metrics,
	}
}

func (cm *CacheManager) enabled() bool {
	return cm != nil && cm.redis != nil
}

// Get loads a cached response into dest. Any Redis failure counts as a miss.
func (cm *CacheManager) Get(ctx context.Context, kind, key string, dest interface{}) bool {
	if !cm.enabled() {
		return false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil || version == 0 {
		return false
	}

	cachedData, err := cm.redis.Get(ctx, cm.cacheKey(version, kind, key)).Bytes()
	if err != nil {
		cm.record(awspkg.MetricCacheMisses, kind)
		return false
	}
	if err := json.Unmarshal(cachedData, dest); err != nil {
		zap.L().Warn("Failed to unmarshal cached response", zap.String("kind", kind), zap.Error(err))
		return false
	}
	cm.record(awspkg.MetricCacheHits, kind)
	return true
}

// SetAsync caches a response without blocking the request.
func (cm *CacheManager) SetAsync(kind, key string, value interface{}) {
	if !cm.enabled() {
		return
	}
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		zap.L().Warn("Failed to marshal response for cache", zap.String("kind", kind), zap.Error(err))
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil || version == 0 {
			return
		}
		if err := cm.redis.Set(bgCtx, cm.cacheKey(version, kind, key), jsonBytes, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache response", zap.String("kind", kind), zap.Error(err))
		}
	}()
}

// Invalidate invalidates all catalog caches by bumping the version
func (cm *CacheManager) Invalidate(ctx context.Context) error {
	if !cm.enabled() {
		return nil
	}
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	zap.L().Debug("Cache invalidated", zap.Int64("new_version", newVersion))
	return nil
}

// InvalidateAfterWrite bumps the version and only logs a failure; the write
// has already succeeded.
func (cm *CacheManager) InvalidateAfterWrite(ctx context.Context, what string) {
	if err := cm.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate catalog cache", zap.Error(err), zap.String("after", what))
	}
}

// getCacheVersion retrieves the current cache version with retry logic
func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}

		if err == redis.Nil {
			if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err == nil {
				continue
			}
		}

		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}

	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

// cacheKey hashes the request key so arbitrary filter values stay out of the
// Redis keyspace.
func (cm *CacheManager) cacheKey(version int64, kind, key string) string {
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("%s%d:%s:%s", CatalogCachePrefix, version, kind, hex.EncodeToString(sum[:]))
}

func (cm *CacheManager) record(metric, kind string) {
	if cm.metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = cm.metrics.RecordCount(ctx, metric, map[string]string{"Kind": kind})
	}()
}

// listCacheKey canonicalizes listing parameters. url.Values.Encode sorts keys.
func listCacheKey(query map[string]string) string {
	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	return values.Encode()
}
