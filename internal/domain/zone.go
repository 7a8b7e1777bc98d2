package domain

import (
	"context"
	"log/slog"
	"time"
)

// ZoneWindowDays is the trailing window of daily temperatures averaged to
// classify a home's coordinates.
const ZoneWindowDays = 30

// ZoneTier names the fallback level that produced a climate zone.
type ZoneTier string

const (
	TierExplicit   ZoneTier = "explicit"
	TierCache      ZoneTier = "cache"
	TierCoordinate ZoneTier = "coordinate"
	TierState      ZoneTier = "state"
	TierDefault    ZoneTier = "default"
)

// ZoneResolver picks a home's climate zone for the rule engine. Every tier
// is best effort: a lookup error is logged and the next tier is tried, so
// Resolve never fails.
type ZoneResolver struct {
	climate ClimateSource
	cache   ZoneCache
	logger  *slog.Logger
}

// NewZoneResolver creates a resolver. Either dependency may be nil, which
// disables its tier.
func NewZoneResolver(climate ClimateSource, cache ZoneCache, logger *slog.Logger) *ZoneResolver {
	return &ZoneResolver{climate: climate, cache: cache, logger: logger}
}

type zoneTier func(ctx context.Context, h Home) (ClimateZone, bool)

// Resolve returns the zone and the tier that supplied it. Tiers run in
// order: explicit, cache, coordinate, state, default.
func (r *ZoneResolver) Resolve(ctx context.Context, h Home) (ClimateZone, ZoneTier) {
	tiers := []struct {
		name ZoneTier
		fn   zoneTier
	}{
		{TierExplicit, r.explicit},
		{TierCache, r.cached},
		{TierCoordinate, r.coordinate},
		{TierState, r.state},
	}
	for _, t := range tiers {
		if z, ok := t.fn(ctx, h); ok {
			return z, t.name
		}
	}
	return ZoneModerate, TierDefault
}

func (r *ZoneResolver) explicit(_ context.Context, h Home) (ClimateZone, bool) {
	return h.ClimateZone, h.ClimateZone.Valid()
}

func (r *ZoneResolver) cached(ctx context.Context, h Home) (ClimateZone, bool) {
	if r.cache == nil || h.ID == "" {
		return "", false
	}
	z, ok, err := r.cache.GetZone(ctx, h.ID)
	if err != nil {
		r.logger.Warn("zone cache read failed", "home_id", h.ID, "error", err)
		return "", false
	}
	return z, ok && z.Valid()
}

func (r *ZoneResolver) coordinate(ctx context.Context, h Home) (ClimateZone, bool) {
	if r.climate == nil || h.Geo == nil {
		return "", false
	}
	from, to := WindowFor(clock.Now())
	days, err := r.climate.DailyTemperatures(ctx, h.Geo.Lat, h.Geo.Lon, from, to)
	if err != nil {
		r.logger.Warn("daily temperature lookup failed, using state fallback",
			"home_id", h.ID, "lat", h.Geo.Lat, "lon", h.Geo.Lon, "error", err)
		return "", false
	}
	zone, avg := ClassifyDays(days)
	r.logger.Debug("classified zone from coordinates", "home_id", h.ID, "avg_temp_c", avg, "zone", zone)

	if r.cache != nil && h.ID != "" {
		if err := r.cache.PutZone(ctx, h.ID, zone); err != nil {
			r.logger.Warn("zone cache write failed", "home_id", h.ID, "error", err)
		}
	}
	return zone, true
}

func (r *ZoneResolver) state(_ context.Context, h Home) (ClimateZone, bool) {
	return stateZone(h.State)
}

// Forget drops the cached zone for a home so the next Resolve reclassifies
// it. Cache errors are logged, not returned.
func (r *ZoneResolver) Forget(ctx context.Context, homeID string) {
	if r.cache == nil || homeID == "" {
		return
	}
	if err := r.cache.DeleteZone(ctx, homeID); err != nil {
		r.logger.Warn("zone cache delete failed", "home_id", homeID, "error", err)
	}
}

// WindowFor reports the daily-temperature window Resolve would request now.
func WindowFor(now time.Time) (from, to time.Time) {
	to = calendarDate(now)
	return to.AddDate(0, 0, -ZoneWindowDays), to
}
