package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confinapp/backend-go/internal/config"
	"github.com/confinapp/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const dreKeyPrefix = "dre:statement"

// StatementCache caches generated DRE statements keyed by month and cycle.
type StatementCache interface {
	Get(ctx context.Context, month time.Time, cycleID *int64) (*domain.DREStatement, bool, error)
	Set(ctx context.Context, month time.Time, cycleID *int64, st *domain.DREStatement) error
	// InvalidateMonth drops every cached statement for the month, cycle
	// scoped or not, after a ledger change touching that window.
	InvalidateMonth(ctx context.Context, month time.Time) error
}

type redisStatementCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopStatementCache struct{}

func NewStatementCache(cfg config.CacheConfig) (StatementCache, error) {
	if !cfg.Enabled {
		return &noopStatementCache{}, nil
	}
	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return &redisStatementCache{client: client, ttl: ttl}, nil
}

func NewNoopStatementCache() StatementCache {
	return &noopStatementCache{}
}

func (c *redisStatementCache) Get(ctx context.Context, month time.Time, cycleID *int64) (*domain.DREStatement, bool, error) {
	payload, err := c.client.Get(ctx, statementKey(month, cycleID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var st domain.DREStatement
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, false, fmt.Errorf("decode dre statement cache: %w", err)
	}
	return &st, true, nil
}

func (c *redisStatementCache) Set(ctx context.Context, month time.Time, cycleID *int64, st *domain.DREStatement) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode dre statement cache: %w", err)
	}
	if err := c.client.Set(ctx, statementKey(month, cycleID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisStatementCache) InvalidateMonth(ctx context.Context, month time.Time) error {
	return deleteKeysWithPrefix(ctx, c.client, monthKeyPrefix(month))
}

func (n *noopStatementCache) Get(ctx context.Context, month time.Time, cycleID *int64) (*domain.DREStatement, bool, error) {
	return nil, false, nil
}

func (n *noopStatementCache) Set(ctx context.Context, month time.Time, cycleID *int64, st *domain.DREStatement) error {
	return nil
}

func (n *noopStatementCache) InvalidateMonth(ctx context.Context, month time.Time) error {
	return nil
}

func monthKeyPrefix(month time.Time) string {
	return fmt.Sprintf("%s:%s", dreKeyPrefix, month.Format("2006-01"))
}

func statementKey(month time.Time, cycleID *int64) string {
	if cycleID == nil {
		return monthKeyPrefix(month) + ":all"
	}
	return fmt.Sprintf("%s:cycle-%d", monthKeyPrefix(month), *cycleID)
}
