package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache[domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache[domain.GeocodingResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	key := "fwd:" + strings.ToLower(strings.TrimSpace(query))
	if result, ok := c.cache.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
		return result, nil
	}
	c.metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()

	result, err := c.inner.ForwardGeocode(ctx, query)
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if result.Found() {
		c.cache.put(key, result)
	}
	return result, nil
}

// CachedClimateSource wraps a ClimateSource with an in-memory LRU cache.
// Normals are keyed by coordinate rounded to two decimals (about 1 km);
// daily series also by their window.
type CachedClimateSource struct {
	inner   domain.ClimateSource
	normals *lruCache[domain.ClimateAverages]
	daily   *lruCache[[]domain.DailyTemperature]
	metrics *observability.Metrics
}

// NewCachedClimateSource creates a cache decorator around a climate source.
func NewCachedClimateSource(inner domain.ClimateSource, maxEntries int, metrics *observability.Metrics) *CachedClimateSource {
	return &CachedClimateSource{
		inner:   inner,
		normals: newLRUCache[domain.ClimateAverages](maxEntries),
		daily:   newLRUCache[[]domain.DailyTemperature](maxEntries),
		metrics: metrics,
	}
}

func coordKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

func (c *CachedClimateSource) ClimateNormals(ctx context.Context, lat, lon float64) (domain.ClimateAverages, error) {
	key := coordKey(lat, lon)
	if avg, ok := c.normals.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("climate", "hit").Inc()
		return avg, nil
	}
	c.metrics.CacheLookups.WithLabelValues("climate", "miss").Inc()

	avg, err := c.inner.ClimateNormals(ctx, lat, lon)
	if err != nil {
		return avg, err
	}
	c.normals.put(key, avg)
	return avg, nil
}

func (c *CachedClimateSource) DailyTemperatures(ctx context.Context, lat, lon float64, from, to time.Time) ([]domain.DailyTemperature, error) {
	key := fmt.Sprintf("%s|%s|%s", coordKey(lat, lon), from.Format(domain.DateLayout), to.Format(domain.DateLayout))
	if days, ok := c.daily.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("climate", "hit").Inc()
		return days, nil
	}
	c.metrics.CacheLookups.WithLabelValues("climate", "miss").Inc()

	days, err := c.inner.DailyTemperatures(ctx, lat, lon, from, to)
	if err != nil {
		return days, err
	}
	if len(days) > 0 {
		c.daily.put(key, days)
	}
	return days, nil
}

// MemoryZoneCache is a process-local domain.ZoneCache with per-entry expiry.
type MemoryZoneCache struct {
	zones   *lruCache[domain.ClimateZone]
	metrics *observability.Metrics
}

// NewMemoryZoneCache creates a zone cache holding up to maxEntries homes for ttl.
func NewMemoryZoneCache(maxEntries int, ttl time.Duration, metrics *observability.Metrics) *MemoryZoneCache {
	return &MemoryZoneCache{
		zones:   newExpiringLRUCache[domain.ClimateZone](maxEntries, ttl, domain.Now),
		metrics: metrics,
	}
}

func (c *MemoryZoneCache) GetZone(_ context.Context, homeID string) (domain.ClimateZone, bool, error) {
	z, ok := c.zones.get(homeID)
	result := "miss"
	if ok {
		result = "hit"
	}
	c.metrics.CacheLookups.WithLabelValues("zone", result).Inc()
	return z, ok, nil
}

func (c *MemoryZoneCache) PutZone(_ context.Context, homeID string, zone domain.ClimateZone) error {
	c.zones.put(homeID, zone)
	return nil
}

func (c *MemoryZoneCache) DeleteZone(_ context.Context, homeID string) error {
	c.zones.delete(homeID)
	return nil
}
