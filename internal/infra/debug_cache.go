package infra

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"mata/internal/reconciliation"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache keeps the product-level data of the last calculation per day,
// so that breakdowns stay available after the record is saved and reloaded.
type SnapshotCache interface {
	Get(ctx context.Context, date string) (*reconciliation.Snapshot, bool, error)
	Set(ctx context.Context, snap *reconciliation.Snapshot) error
}

// RedisSnapshotCache stores snapshots as JSON under reconciliation:debug:<date>.
type RedisSnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSnapshotCache(rdb *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{rdb: rdb, ttl: ttl}
}

func snapshotKey(date string) string { return "reconciliation:debug:" + date }

func (c *RedisSnapshotCache) Get(ctx context.Context, date string) (*reconciliation.Snapshot, bool, error) {
	val, err := c.rdb.Get(ctx, snapshotKey(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var snap reconciliation.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snap *reconciliation.Snapshot) error {
	if snap == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, snapshotKey(snap.Date), payload, c.ttl).Err()
}

// NoopSnapshotCache is used when Redis is not configured.
type NoopSnapshotCache struct{}

func (NoopSnapshotCache) Get(_ context.Context, _ string) (*reconciliation.Snapshot, bool, error) {
	return nil, false, nil
}

func (NoopSnapshotCache) Set(_ context.Context, _ *reconciliation.Snapshot) error { return nil }

// MemorySnapshotCache keeps snapshots in process memory. The server uses it
// when Redis is unavailable; entries live until restart.
type MemorySnapshotCache struct {
	mu    sync.RWMutex
	items map[string]*reconciliation.Snapshot
}

func NewMemorySnapshotCache() *MemorySnapshotCache {
	return &MemorySnapshotCache{items: map[string]*reconciliation.Snapshot{}}
}

func (c *MemorySnapshotCache) Get(_ context.Context, date string) (*reconciliation.Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.items[date]
	return s, ok, nil
}

func (c *MemorySnapshotCache) Set(_ context.Context, snap *reconciliation.Snapshot) error {
	if snap == nil {
		return nil
	}
	c.mu.Lock()
	c.items[snap.Date] = snap
	c.mu.Unlock()
	return nil
}
