// Package openmeteo implements domain.Geocoder and domain.ClimateSource on
// the keyless Open-Meteo geocoding, ERA5 archive, and forecast APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
)

const (
	provider = "openmeteo"

	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultArchiveURL  = "https://archive-api.open-meteo.com/v1/era5"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	// ERA5 climate normals period.
	normalsStart = "1991-01-01"
	normalsEnd   = "2020-12-31"
)

// ErrNoSamples means the archive returned no usable daily values.
var ErrNoSamples = errors.New("open-meteo returned no climate samples")

// Client talks to the Open-Meteo APIs. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	geocodeURL  string
	archiveURL  string
	forecastURL string
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates an Open-Meteo client with a per-request timeout.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		geocodeURL:  defaultGeocodeURL,
		archiveURL:  defaultArchiveURL,
		forecastURL: defaultForecastURL,
		metrics:     metrics,
		logger:      logger,
	}
}

// ForwardGeocode resolves a free-text place name to its best match.
func (c *Client) ForwardGeocode(ctx context.Context, query string) (domain.GeocodingResult, error) {
	params := url.Values{
		"name":     {query},
		"count":    {"1"},
		"language": {"en"},
	}

	var resp geocodeResponse
	if err := c.getJSON(ctx, "geocode", c.geocodeURL+"?"+params.Encode(), &resp); err != nil {
		return domain.GeocodingResult{}, err
	}
	if len(resp.Results) == 0 {
		c.record("geocode", "empty")
		c.logger.Debug("open-meteo found no match", "query", query)
		return domain.GeocodingResult{}, nil
	}
	c.record("geocode", "success")

	r := resp.Results[0]
	return domain.GeocodingResult{
		Lat:              r.Latitude,
		Lon:              r.Longitude,
		FormattedAddress: r.formatted(),
		Confidence:       1,
	}, nil
}

// ClimateNormals averages ERA5 daily mean temperature and relative humidity
// over 1991-2020.
func (c *Client) ClimateNormals(ctx context.Context, lat, lon float64) (domain.ClimateAverages, error) {
	params := url.Values{
		"latitude":   {formatCoord(lat)},
		"longitude":  {formatCoord(lon)},
		"daily":      {"temperature_2m_mean,relative_humidity_2m_mean"},
		"start_date": {normalsStart},
		"end_date":   {normalsEnd},
	}

	var resp archiveResponse
	if err := c.getJSON(ctx, "normals", c.archiveURL+"?"+params.Encode(), &resp); err != nil {
		return domain.ClimateAverages{}, err
	}

	avgT, nT := mean(resp.Daily.TempMean)
	avgRH, nRH := mean(resp.Daily.RHMean)
	if nT == 0 || nRH == 0 {
		c.record("normals", "empty")
		return domain.ClimateAverages{}, fmt.Errorf("%w at %s,%s", ErrNoSamples, formatCoord(lat), formatCoord(lon))
	}
	c.record("normals", "success")
	return domain.ClimateAverages{AvgTempC: avgT, AvgRHPct: avgRH, SampleDays: nT}, nil
}

// DailyTemperatures fetches daily highs and lows for [from, to] in UTC.
func (c *Client) DailyTemperatures(ctx context.Context, lat, lon float64, from, to time.Time) ([]domain.DailyTemperature, error) {
	params := url.Values{
		"latitude":   {formatCoord(lat)},
		"longitude":  {formatCoord(lon)},
		"daily":      {"temperature_2m_max,temperature_2m_min"},
		"start_date": {from.UTC().Format(domain.DateLayout)},
		"end_date":   {to.UTC().Format(domain.DateLayout)},
		"timezone":   {"UTC"},
	}

	var resp forecastResponse
	if err := c.getJSON(ctx, "daily", c.forecastURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	days := make([]domain.DailyTemperature, len(resp.Daily.Time))
	for i, d := range resp.Daily.Time {
		days[i] = domain.DailyTemperature{Date: d, HighC: at(resp.Daily.TempMax, i), LowC: at(resp.Daily.TempMin, i)}
	}
	outcome := "success"
	if len(days) == 0 {
		outcome = "empty"
	}
	c.record("daily", outcome)
	return days, nil
}

func (c *Client) getJSON(ctx context.Context, method, fullURL string, into any) error {
	start := time.Now()
	defer func() {
		c.metrics.UpstreamDuration.WithLabelValues(provider, method).Observe(time.Since(start).Seconds())
	}()

	err := c.doGet(ctx, fullURL, into)
	if err != nil {
		c.record(method, "error")
		return fmt.Errorf("open-meteo %s: %w", method, err)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, fullURL string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) record(method, outcome string) {
	c.metrics.UpstreamRequests.WithLabelValues(provider, method, outcome).Inc()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// mean averages the non-null values and returns how many there were.
func mean(values []*float64) (float64, int) {
	var sum float64
	var n int
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// Open-Meteo API response types. Daily arrays carry null for missing days.

type geocodeResponse struct {
	Results []place `json:"results"`
}

type place struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Admin1    string  `json:"admin1"`
	Country   string  `json:"country"`
}

func (p place) formatted() string {
	out := p.Name
	for _, part := range []string{p.Admin1, p.Country} {
		if part != "" {
			out += ", " + part
		}
	}
	return out
}

type archiveResponse struct {
	Daily struct {
		TempMean []*float64 `json:"temperature_2m_mean"`
		RHMean   []*float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

type forecastResponse struct {
	Daily struct {
		Time    []string   `json:"time"`
		TempMax []*float64 `json:"temperature_2m_max"`
		TempMin []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}
