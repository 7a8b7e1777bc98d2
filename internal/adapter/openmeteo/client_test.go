package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		geocodeURL:  baseURL + "/v1/search",
		archiveURL:  baseURL + "/v1/era5",
		forecastURL: baseURL + "/v1/forecast",
		metrics:     observability.NewMetricsForTesting(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func serveJSON(t *testing.T, path, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		if check != nil {
			check(r)
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ForwardGeocode_Success(t *testing.T) {
	srv := serveJSON(t, "/v1/search",
		`{"results":[{"name":"Austin","latitude":30.26715,"longitude":-97.74306,"admin1":"Texas","country":"United States"}]}`,
		func(r *http.Request) {
			assert.Equal(t, "Austin, TX, US", r.URL.Query().Get("name"))
			assert.Equal(t, "1", r.URL.Query().Get("count"))
		})

	c := testClient(srv.URL)
	result, err := c.ForwardGeocode(context.Background(), "Austin, TX, US")
	require.NoError(t, err)

	assert.Equal(t, 30.26715, result.Lat)
	assert.Equal(t, -97.74306, result.Lon)
	assert.Equal(t, "Austin, Texas, United States", result.FormattedAddress)
	assert.True(t, result.Found())
}

func TestClient_ForwardGeocode_NoResults(t *testing.T) {
	srv := serveJSON(t, "/v1/search", `{"generationtime_ms":0.5}`, nil)

	c := testClient(srv.URL)
	result, err := c.ForwardGeocode(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.UpstreamRequests.WithLabelValues(provider, "geocode", "empty")), 0)
}

func TestClient_ClimateNormals(t *testing.T) {
	srv := serveJSON(t, "/v1/era5",
		`{"daily":{"time":["1991-01-01","1991-01-02","1991-01-03"],"temperature_2m_mean":[20.0,null,24.0],"relative_humidity_2m_mean":[60,70,80]}}`,
		func(r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "30.2672", q.Get("latitude"))
			assert.Equal(t, "-97.7431", q.Get("longitude"))
			assert.Equal(t, "1991-01-01", q.Get("start_date"))
			assert.Equal(t, "2020-12-31", q.Get("end_date"))
			assert.Equal(t, "temperature_2m_mean,relative_humidity_2m_mean", q.Get("daily"))
		})

	c := testClient(srv.URL)
	avg, err := c.ClimateNormals(context.Background(), 30.2672, -97.7431)
	require.NoError(t, err)

	assert.InDelta(t, 22.0, avg.AvgTempC, 1e-9)
	assert.InDelta(t, 70.0, avg.AvgRHPct, 1e-9)
	assert.Equal(t, 2, avg.SampleDays)
}

func TestClient_ClimateNormals_NoSamples(t *testing.T) {
	srv := serveJSON(t, "/v1/era5", `{"daily":{"temperature_2m_mean":[],"relative_humidity_2m_mean":[]}}`, nil)

	c := testClient(srv.URL)
	_, err := c.ClimateNormals(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrNoSamples)
}

func TestClient_DailyTemperatures(t *testing.T) {
	from := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)

	srv := serveJSON(t, "/v1/forecast",
		`{"daily":{"time":["2024-07-01","2024-07-02","2024-07-03"],"temperature_2m_max":[35.1,null,33.0],"temperature_2m_min":[24.3,23.0]}}`,
		func(r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "2024-07-01", q.Get("start_date"))
			assert.Equal(t, "2024-07-03", q.Get("end_date"))
			assert.Equal(t, "UTC", q.Get("timezone"))
		})

	c := testClient(srv.URL)
	days, err := c.DailyTemperatures(context.Background(), 30.27, -97.74, from, to)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "2024-07-01", days[0].Date)
	assert.Equal(t, 35.1, *days[0].HighC)
	assert.Equal(t, 24.3, *days[0].LowC)
	assert.Nil(t, days[1].HighC)
	assert.Nil(t, days[2].LowC, "short min array leaves a gap")
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":true,"reason":"upstream"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.ClimateNormals(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.UpstreamRequests.WithLabelValues(provider, "normals", "error")), 0)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.ForwardGeocode(context.Background(), "Austin")
	require.Error(t, err)
}
