// Package redis implements domain.ZoneCache on Redis so classified zones are
// shared across planner replicas.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
)

const (
	keyPrefix   = "upkeep:zone:"
	pingTimeout = 5 * time.Second
)

// ZoneCache stores one zone string per home under a TTL.
type ZoneCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewZoneCache connects to Redis and verifies the connection with a ping.
func NewZoneCache(addr, password string, db int, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) (*ZoneCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	logger.Info("connected to redis", "addr", addr, "db", db)
	return &ZoneCache{rdb: rdb, ttl: ttl, metrics: metrics, logger: logger}, nil
}

func zoneKey(homeID string) string {
	return keyPrefix + homeID
}

// GetZone returns the cached zone. A missing key or an unrecognized value is a miss.
func (c *ZoneCache) GetZone(ctx context.Context, homeID string) (domain.ClimateZone, bool, error) {
	val, err := c.rdb.Get(ctx, zoneKey(homeID)).Result()
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheLookups.WithLabelValues("zone", "miss").Inc()
		return "", false, nil
	}
	if err != nil {
		c.metrics.CacheLookups.WithLabelValues("zone", "error").Inc()
		return "", false, fmt.Errorf("redis get %s: %w", homeID, err)
	}

	zone := domain.ClimateZone(val)
	if !zone.Valid() {
		c.logger.Warn("ignoring invalid cached zone", "home_id", homeID, "value", val)
		c.metrics.CacheLookups.WithLabelValues("zone", "miss").Inc()
		return "", false, nil
	}
	c.metrics.CacheLookups.WithLabelValues("zone", "hit").Inc()
	return zone, true, nil
}

// PutZone stores the zone with the configured TTL.
func (c *ZoneCache) PutZone(ctx context.Context, homeID string, zone domain.ClimateZone) error {
	if err := c.rdb.Set(ctx, zoneKey(homeID), string(zone), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", homeID, err)
	}
	return nil
}

// DeleteZone drops the cached zone. Deleting a missing key is not an error.
func (c *ZoneCache) DeleteZone(ctx context.Context, homeID string) error {
	if err := c.rdb.Del(ctx, zoneKey(homeID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", homeID, err)
	}
	return nil
}

// CheckReadiness pings Redis.
func (c *ZoneCache) CheckReadiness(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection pool.
func (c *ZoneCache) Close() error {
	return c.rdb.Close()
}
