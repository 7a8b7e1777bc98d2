package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrNoLocation means no city, state, or country was available at any
	// fallback level. The caller must supply one or decline to predict.
	ErrNoLocation = errors.New("no location available: add city/state/country on the home or profile")

	// ErrUpstreamUnavailable is matched by every geocoding or climate failure.
	ErrUpstreamUnavailable = errors.New("upstream climate data unavailable")

	ErrGeocodeFailed      = fmt.Errorf("geocoding failed: %w", ErrUpstreamUnavailable)
	ErrClimateUnavailable = fmt.Errorf("climate normals unavailable: %w", ErrUpstreamUnavailable)

	// ErrNotFound is returned by stores when a profile, home, or appliance
	// does not exist for the requesting user.
	ErrNotFound = errors.New("not found")
)

// LocationResolver yields a location from one tier of the fallback chain.
type LocationResolver func() (Location, bool)

// QueryString joins the non-empty postal fields with ", ".
func (l Location) QueryString() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.State, l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether every postal field is blank.
func (l Location) IsEmpty() bool {
	return l.QueryString() == ""
}

// FromLocation is a resolver tier over an optional explicit location.
func FromLocation(l *Location) LocationResolver {
	return func() (Location, bool) {
		if l == nil || l.IsEmpty() {
			return Location{}, false
		}
		return *l, true
	}
}

// FromHome is a resolver tier over an optional home record.
func FromHome(h *Home) LocationResolver {
	return func() (Location, bool) {
		if h == nil {
			return Location{}, false
		}
		l := h.Location()
		return l, !l.IsEmpty()
	}
}

// FromProfile is a resolver tier over an optional profile record.
func FromProfile(p *Profile) LocationResolver {
	return func() (Location, bool) {
		if p == nil {
			return Location{}, false
		}
		l := p.Location()
		return l, !l.IsEmpty()
	}
}

// ResolveLocation tries each tier in order and returns the first hit.
func ResolveLocation(tiers ...LocationResolver) (Location, bool) {
	for _, tier := range tiers {
		if l, ok := tier(); ok {
			return l, true
		}
	}
	return Location{}, false
}

// PredictRequest asks for a precise prediction for one appliance.
// Location tiers are tried in order: Override, Home, Profile.
type PredictRequest struct {
	Appliance Appliance
	Override  *Location
	Home      *Home
	Profile   *Profile
	BudgetUSD *float64
}

// LifespanPredictor runs the climate-adjusted lifespan model against live
// geocoding and climate data. Unlike zone classification it never falls back
// to a default climate: a failed lookup fails the prediction.
type LifespanPredictor struct {
	geocoder Geocoder
	climate  ClimateSource
	logger   *slog.Logger
}

// NewLifespanPredictor creates a predictor over the given lookups.
func NewLifespanPredictor(geocoder Geocoder, climate ClimateSource, logger *slog.Logger) *LifespanPredictor {
	return &LifespanPredictor{geocoder: geocoder, climate: climate, logger: logger}
}

// Predict resolves the request's location and runs the model.
func (p *LifespanPredictor) Predict(ctx context.Context, req PredictRequest) (LifespanPrediction, error) {
	loc, ok := ResolveLocation(FromLocation(req.Override), FromHome(req.Home), FromProfile(req.Profile))
	if !ok {
		return LifespanPrediction{}, ErrNoLocation
	}

	pred, err := p.PredictAt(ctx, req.Appliance.Type, req.Appliance.InstallYear, loc.QueryString(), req.BudgetUSD)
	if err != nil {
		return LifespanPrediction{}, err
	}
	pred.ApplianceID = req.Appliance.ID
	return pred, nil
}

// PredictAt runs the model for an explicit type, install year, and location query.
func (p *LifespanPredictor) PredictAt(ctx context.Context, applianceType string, installYear *int, query string, budget *float64) (LifespanPrediction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return LifespanPrediction{}, ErrNoLocation
	}

	geo, err := p.geocoder.ForwardGeocode(ctx, query)
	if err != nil {
		p.logger.Warn("geocoding failed", "query", query, "error", err)
		return LifespanPrediction{}, fmt.Errorf("%w: %s: %w", ErrGeocodeFailed, query, err)
	}
	if !geo.Found() {
		return LifespanPrediction{}, fmt.Errorf("%w: no match for %q", ErrGeocodeFailed, query)
	}

	avg, err := p.climate.ClimateNormals(ctx, geo.Lat, geo.Lon)
	if err != nil {
		p.logger.Warn("climate normals lookup failed", "lat", geo.Lat, "lon", geo.Lon, "error", err)
		return LifespanPrediction{}, fmt.Errorf("%w: %w", ErrClimateUnavailable, err)
	}

	pred := ComputeLifespan(LifespanInput{
		ApplianceType: applianceType,
		InstallYear:   installYear,
		Climate:       avg,
		BudgetUSD:     budget,
		Now:           clock.Now(),
	})
	pred.Diagnostics.LocationQuery = query
	pred.Diagnostics.Latitude = geo.Lat
	pred.Diagnostics.Longitude = geo.Lon
	return pred, nil
}
