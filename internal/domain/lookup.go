package domain

import (
	"context"
	"time"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Found reports whether the provider returned a usable coordinate.
func (r GeocodingResult) Found() bool {
	return r.Lat != 0 || r.Lon != 0
}

// Geocoder converts free-text addresses to coordinates.
type Geocoder interface {
	// ForwardGeocode resolves a query such as "Austin, TX, USA". An empty
	// result with a nil error means the provider found nothing.
	ForwardGeocode(ctx context.Context, query string) (GeocodingResult, error)
}

// ClimateAverages is a location's long-term mean temperature and humidity.
type ClimateAverages struct {
	AvgTempC   float64
	AvgRHPct   float64
	SampleDays int
}

// DailyTemperature is one day's observed high and low. Either may be nil
// when the upstream feed has a gap.
type DailyTemperature struct {
	Date  string
	HighC *float64
	LowC  *float64
}

// ClimateSource supplies historical weather for a coordinate.
type ClimateSource interface {
	// ClimateNormals returns 30-year mean temperature and relative humidity.
	ClimateNormals(ctx context.Context, lat, lon float64) (ClimateAverages, error)

	// DailyTemperatures returns daily highs and lows for [from, to].
	DailyTemperatures(ctx context.Context, lat, lon float64, from, to time.Time) ([]DailyTemperature, error)
}

// ZoneCache remembers a classified zone per home so coordinate lookups run
// once per home rather than once per plan.
type ZoneCache interface {
	GetZone(ctx context.Context, homeID string) (ClimateZone, bool, error)
	PutZone(ctx context.Context, homeID string, zone ClimateZone) error
	DeleteZone(ctx context.Context, homeID string) error
}

// ChatMessage is one turn of a text-generation prompt.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TextGenerator produces a free-text reply for a prompt. Implementations
// are optional; callers must be able to answer without one.
type TextGenerator interface {
	Generate(ctx context.Context, messages []ChatMessage) (string, error)
}
