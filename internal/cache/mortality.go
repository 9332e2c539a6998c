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

	"github.com/confinapp/backend-go/internal/config"
	"github.com/confinapp/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const mortalityStatsKeyPrefix = "mortality:stats"

// StatisticsCache caches mortality statistics per filter. Any write to the
// register invalidates the whole prefix.
type StatisticsCache interface {
	Get(ctx context.Context, filter domain.MortalityFilter) (*domain.MortalityStatistics, bool, error)
	Set(ctx context.Context, filter domain.MortalityFilter, stats *domain.MortalityStatistics) error
	Invalidate(ctx context.Context) error
}

type redisStatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopStatisticsCache struct{}

func NewStatisticsCache(cfg config.CacheConfig) (StatisticsCache, error) {
	if !cfg.Enabled {
		return &noopStatisticsCache{}, nil
	}
	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisStatisticsCache{client: client, ttl: ttl}, nil
}

func NewNoopStatisticsCache() StatisticsCache {
	return &noopStatisticsCache{}
}

func (c *redisStatisticsCache) Get(ctx context.Context, filter domain.MortalityFilter) (*domain.MortalityStatistics, bool, error) {
	payload, err := c.client.Get(ctx, statsKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var stats domain.MortalityStatistics
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, false, fmt.Errorf("decode mortality stats cache: %w", err)
	}
	return &stats, true, nil
}

func (c *redisStatisticsCache) Set(ctx context.Context, filter domain.MortalityFilter, stats *domain.MortalityStatistics) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode mortality stats cache: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisStatisticsCache) Invalidate(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, mortalityStatsKeyPrefix)
}

func (n *noopStatisticsCache) Get(ctx context.Context, filter domain.MortalityFilter) (*domain.MortalityStatistics, bool, error) {
	return nil, false, nil
}

func (n *noopStatisticsCache) Set(ctx context.Context, filter domain.MortalityFilter, stats *domain.MortalityStatistics) error {
	return nil
}

func (n *noopStatisticsCache) Invalidate(ctx context.Context) error {
	return nil
}

func statsKey(filter domain.MortalityFilter) string {
	var parts []string
	if filter.LotID != nil {
		parts = append(parts, "lot="+strconv.FormatInt(*filter.LotID, 10))
	}
	if filter.PenID != nil {
		parts = append(parts, "pen="+strconv.FormatInt(*filter.PenID, 10))
	}
	if filter.Cause != "" {
		parts = append(parts, "cause="+string(filter.Cause))
	}
	if filter.From != nil {
		parts = append(parts, "from="+filter.From.Format(time.RFC3339))
	}
	if filter.To != nil {
		parts = append(parts, "to="+filter.To.Format(time.RFC3339))
	}

	if len(parts) == 0 {
		return mortalityStatsKeyPrefix + ":default"
	}

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", mortalityStatsKeyPrefix, hex.EncodeToString(hash[:]))
}
