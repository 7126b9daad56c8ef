package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/food-insight/backend-go/internal/config"
	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
)

const insightKeyPrefix = "insights:all"

// InsightKey identifies one computed bundle. Two requests with the same key must
// produce the same insights as long as the underlying tables are unchanged.
type InsightKey struct {
	Range        domain.DateRange
	ServiceLevel float64
	Strategy     string
	// Config is the ConfigFingerprint of the business configuration the bundle was computed with.
	Config string
}

// ConfigFingerprint hashes a business configuration so bundles computed under a
// different configuration never share a cache entry.
func ConfigFingerprint(cfg domain.BusinessConfig) string {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	hash := sha1.Sum(raw)
	return hex.EncodeToString(hash[:8])
}

type InsightCache interface {
	Get(ctx context.Context, key InsightKey) (*insight.AllInsights, bool, error)
	Set(ctx context.Context, key InsightKey, all *insight.AllInsights) error
	InvalidateAll(ctx context.Context) error
}

type redisInsightCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopInsightCache struct{}

// NewInsightCache connects to redis, or returns a cache that never hits when caching is disabled.
func NewInsightCache(cfg config.CacheConfig) (InsightCache, error) {
	if !cfg.Enabled {
		return &noopInsightCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisInsightCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopInsightCache() InsightCache {
	return &noopInsightCache{}
}

func (c *redisInsightCache) Get(ctx context.Context, key InsightKey) (*insight.AllInsights, bool, error) {
	payload, err := c.client.Get(ctx, buildInsightKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var all insight.AllInsights
	if err := json.Unmarshal(payload, &all); err != nil {
		return nil, false, fmt.Errorf("decode insight cache: %w", err)
	}

	return &all, true, nil
}

func (c *redisInsightCache) Set(ctx context.Context, key InsightKey, all *insight.AllInsights) error {
	payload, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode insight cache: %w", err)
	}

	if err := c.client.Set(ctx, buildInsightKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisInsightCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, insightKeyPrefix, scanBatchSize)
}

func (n *noopInsightCache) Get(ctx context.Context, key InsightKey) (*insight.AllInsights, bool, error) {
	return nil, false, nil
}

func (n *noopInsightCache) Set(ctx context.Context, key InsightKey, all *insight.AllInsights) error {
	return nil
}

func (n *noopInsightCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildInsightKey(key InsightKey) string {
	var parts []string
	if !key.Range.From.IsZero() {
		parts = append(parts, "from="+key.Range.From.UTC().Format("2006-01-02"))
	}
	if !key.Range.To.IsZero() {
		parts = append(parts, "to="+key.Range.To.UTC().Format("2006-01-02"))
	}
	if key.ServiceLevel > 0 {
		parts = append(parts, "service_level="+strconv.FormatFloat(key.ServiceLevel, 'f', -1, 64))
	}
	if key.Strategy != "" {
		parts = append(parts, "strategy="+strings.ToLower(key.Strategy))
	}
	if key.Config != "" {
		parts = append(parts, "config="+key.Config)
	}

	if len(parts) == 0 {
		return insightKeyPrefix + ":default"
	}

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", insightKeyPrefix, hex.EncodeToString(hash[:]))
}
