package datasource

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/rental-insights/pkg/models"
)

// BlobStore is the cache backend for snapshots.
type BlobStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedReader serves LoadSnapshot from a BlobStore when a fresh copy is
// there and falls back to the wrapped reader otherwise. Cache failures are
// logged and never fail a load.
type CachedReader struct {
	SnapshotReader
	store  BlobStore
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedReader wraps reader. key identifies the source database and should
// come from SnapshotCacheKey.
func NewCachedReader(reader SnapshotReader, store BlobStore, key string, ttl time.Duration, logger *zap.Logger) *CachedReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedReader{
		SnapshotReader: reader,
		store:          store,
		key:            key,
		ttl:            ttl,
		logger:         logger.With(zap.String("cache_key", key)),
	}
}

// SnapshotCacheKey builds a stable key from the prefix and the connection
// identity (dialect, host, port, database). Credentials never contribute.
func SnapshotCacheKey(prefix, dsType string, config map[string]any) string {
	parts := []string{
		"snapshot",
		strings.ToLower(strings.TrimSpace(dsType)),
		fmt.Sprint(config["host"]),
		fmt.Sprint(config["port"]),
		fmt.Sprint(config["database"]),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:snapshot:%x", prefix, sum[:])
}

// LoadSnapshot returns the cached snapshot if present, otherwise loads one
// from the database and caches it.
func (c *CachedReader) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if snap, ok := c.fromCache(ctx); ok {
		return snap, nil
	}

	snap, err := c.SnapshotReader.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("Failed to encode snapshot for cache", zap.Error(err))
		return snap, nil
	}
	if err := c.store.Set(ctx, c.key, payload, c.ttl); err != nil {
		c.logger.Warn("Failed to cache snapshot", zap.Error(err))
		return snap, nil
	}
	c.logger.Debug("Snapshot cached", zap.Int("bytes", len(payload)), zap.Duration("ttl", c.ttl))
	return snap, nil
}

func (c *CachedReader) fromCache(ctx context.Context) (*models.Snapshot, bool) {
	payload, found, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn("Snapshot cache unavailable", zap.Error(err))
		return nil, false
	}
	if !found {
		c.logger.Debug("Snapshot cache miss")
		return nil, false
	}

	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		c.logger.Warn("Discarding unreadable cached snapshot", zap.Error(err))
		return nil, false
	}
	c.logger.Info("Snapshot loaded from cache", zap.Time("loaded_at", snap.LoadedAt))
	return &snap, true
}

var _ SnapshotReader = (*CachedReader)(nil)
