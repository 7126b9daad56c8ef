package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/food-insight/backend-go/internal/config"
	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
)

func TestBuildInsightKey(t *testing.T) {
	jan := domain.DateRange{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, "insights:all:default", buildInsightKey(InsightKey{}))

	k1 := buildInsightKey(InsightKey{Range: jan})
	k2 := buildInsightKey(InsightKey{Range: jan, ServiceLevel: 99})
	k3 := buildInsightKey(InsightKey{Range: jan, ServiceLevel: 99, Strategy: "SELF_BASELINE"})
	k4 := buildInsightKey(InsightKey{Range: jan, ServiceLevel: 99, Strategy: "self_baseline"})

	assert.True(t, strings.HasPrefix(k1, insightKeyPrefix+":"))
	assert.Len(t, strings.TrimPrefix(k1, insightKeyPrefix+":"), 40)
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k2, k3)
	assert.Equal(t, k3, k4, "strategy names are case-insensitive")

	// Time of day does not split the cache.
	later := jan
	later.To = later.To.Add(15 * time.Hour)
	assert.Equal(t, k1, buildInsightKey(InsightKey{Range: later}))
}

func TestBuildInsightKey_BusinessConfig(t *testing.T) {
	cfg := config.DefaultBusinessConfig()
	changed := config.DefaultBusinessConfig()
	changed.LeadTimeDays++

	fp := ConfigFingerprint(cfg)
	assert.Len(t, fp, 16)
	assert.Equal(t, fp, ConfigFingerprint(config.DefaultBusinessConfig()), "stable across calls")
	assert.NotEqual(t, fp, ConfigFingerprint(changed))

	base := buildInsightKey(InsightKey{ServiceLevel: 95, Config: fp})
	assert.NotEqual(t, base, buildInsightKey(InsightKey{ServiceLevel: 95, Config: ConfigFingerprint(changed)}))
	assert.NotEqual(t, base, buildInsightKey(InsightKey{ServiceLevel: 95}))
}

func TestNoopInsightCache(t *testing.T) {
	ctx := context.Background()

	c, err := NewInsightCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, InsightKey{}, &insight.AllInsights{}))
	got, ok, err := c.Get(ctx, InsightKey{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)

	opts, err = buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2, RedisPassword: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.internal:6390/3", RedisHost: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6390", opts.Addr)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}

func TestCacheTTL(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, cacheTTL(config.CacheConfig{}))
	assert.Equal(t, 30*time.Second, cacheTTL(config.CacheConfig{InsightTTLSeconds: 30}))
}
