package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/upkeep-planner-service/internal/adapter/http"
	"github.com/couchcryptid/upkeep-planner-service/internal/assistant"
	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
	"github.com/couchcryptid/upkeep-planner-service/internal/service"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockPlanner struct {
	err  error
	pred domain.LifespanPrediction

	appliances []domain.Appliance
	home       domain.HomeContext
	ref        time.Time
	trigger    string
	userID     string
	targetID   string
	loc        domain.Location
	override   *domain.Location
	message    string
}

func (m *mockPlanner) Plan(appliances []domain.Appliance, home domain.HomeContext, ref time.Time, trigger string) domain.MaintenancePlanResult {
	m.appliances, m.home, m.ref, m.trigger = appliances, home, ref, trigger
	return domain.GeneratePlan(appliances, home, ref)
}

func (m *mockPlanner) PlanForHome(_ context.Context, userID, homeID string, ref time.Time, trigger string) (domain.MaintenancePlanResult, error) {
	m.userID, m.targetID, m.ref, m.trigger = userID, homeID, ref, trigger
	if m.err != nil {
		return domain.MaintenancePlanResult{}, m.err
	}
	return domain.MaintenancePlanResult{ClimateZone: domain.ZoneModerate, Tasks: []domain.MaintenanceTask{}}, nil
}

func (m *mockPlanner) PredictAt(_ context.Context, _ string, _ *int, loc domain.Location, _ *float64) (domain.LifespanPrediction, error) {
	m.loc = loc
	return m.pred, m.err
}

func (m *mockPlanner) PredictAppliance(_ context.Context, userID, applianceID string, override *domain.Location, _ *float64) (domain.LifespanPrediction, error) {
	m.userID, m.targetID, m.override = userID, applianceID, override
	return m.pred, m.err
}

func (m *mockPlanner) Chat(_ context.Context, userID, message string) (assistant.Reply, error) {
	m.userID, m.message = userID, message
	if m.err != nil {
		return assistant.Reply{}, m.err
	}
	return assistant.Reply{Answer: "Hi Sam!"}, nil
}

func newTestServer(planner *mockPlanner, readyErr error) (*httpadapter.Server, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return httpadapter.NewServer(":0", planner, &mockReadiness{err: readyErr}, metrics, slog.Default()), metrics
}

func do(srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// --- operational endpoints ---

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(&mockPlanner{}, nil)
	rec := do(srv, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(&mockPlanner{}, nil)
	rec := do(srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(&mockPlanner{}, fmt.Errorf("not ready yet"))
	rec := do(srv, http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(&mockPlanner{}, nil)
	rec := do(srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- API ---

func TestPostPlan(t *testing.T) {
	planner := &mockPlanner{}
	srv, metrics := newTestServer(planner, nil)

	rec := do(srv, http.MethodPost, "/v1/plans", `{
		"appliances": [{"id": "dw1", "type": "dishwasher", "install_year": 2018}],
		"home": {"home_id": "h1", "floors": 1, "state": "OR"},
		"date": "2024-01-01"
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), planner.ref)
	assert.Equal(t, service.TriggerHTTP, planner.trigger)
	require.Len(t, planner.appliances, 1)
	assert.Equal(t, 2018, *planner.appliances[0].InstallYear)

	var plan domain.MaintenancePlanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	var titles []string
	for _, task := range plan.Tasks {
		titles = append(titles, task.Title)
	}
	assert.Contains(t, titles, "Annual Inspection: Dishwasher")
	assert.Contains(t, titles, "Deep Clean Dishwasher")
	assert.NotContains(t, titles, "Clean Gutters")

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/v1/plans", "200")), 0)
}

func TestPostPlan_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{"appliances":`, "invalid JSON body"},
		{"missing type", `{"appliances":[{"id":"a1"}]}`, "Type"},
		{"implausible install year", `{"appliances":[{"id":"a1","type":"ac","install_year":1492}]}`, "install_year"},
		{"bad zone", `{"home":{"climate_zone":"tropical"}}`, "ClimateZone"},
		{"bad date", `{"date":"01/02/2024"}`, "Date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(&mockPlanner{}, nil)
			rec := do(srv, http.MethodPost, "/v1/plans", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec)["error"], tt.want)
		})
	}
}

func TestGetHomePlan(t *testing.T) {
	planner := &mockPlanner{}
	srv, _ := newTestServer(planner, nil)
	userID, homeID := uuid.NewString(), uuid.NewString()

	rec := do(srv, http.MethodGet, "/v1/users/"+userID+"/homes/"+homeID+"/plan?date=2024-06-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, planner.userID)
	assert.Equal(t, homeID, planner.targetID)
	assert.Equal(t, 6, int(planner.ref.Month()))
}

func TestGetHomePlan_Errors(t *testing.T) {
	userID, homeID := uuid.NewString(), uuid.NewString()

	t.Run("invalid id", func(t *testing.T) {
		srv, _ := newTestServer(&mockPlanner{}, nil)
		rec := do(srv, http.MethodGet, "/v1/users/not-a-uuid/homes/"+homeID+"/plan", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		srv, _ := newTestServer(&mockPlanner{err: fmt.Errorf("get home: %w", domain.ErrNotFound)}, nil)
		rec := do(srv, http.MethodGet, "/v1/users/"+userID+"/homes/"+homeID+"/plan", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure is opaque", func(t *testing.T) {
		srv, _ := newTestServer(&mockPlanner{err: fmt.Errorf("database is locked")}, nil)
		rec := do(srv, http.MethodGet, "/v1/users/"+userID+"/homes/"+homeID+"/plan", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal error", decodeBody(t, rec)["error"])
	})
}

func TestPostPrediction_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, http.StatusOK},
		{"no location", domain.ErrNoLocation, http.StatusBadRequest},
		{"geocode failed", fmt.Errorf("%w: no match", domain.ErrGeocodeFailed), http.StatusBadRequest},
		{"climate unavailable", fmt.Errorf("%w: timeout", domain.ErrClimateUnavailable), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := &mockPlanner{err: tt.err, pred: domain.LifespanPrediction{Type: "water_heater", AdjustedLifespanYears: 11.8}}
			srv, _ := newTestServer(planner, nil)

			rec := do(srv, http.MethodPost, "/v1/predictions",
				`{"type":"water heater","install_year":2015,"location":{"city":"Austin","state":"TX"}}`)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, domain.Location{City: "Austin", State: "TX"}, planner.loc)
		})
	}
}

func TestPostPrediction_Validation(t *testing.T) {
	srv, _ := newTestServer(&mockPlanner{}, nil)

	rec := do(srv, http.MethodPost, "/v1/predictions", `{"install_year":2015}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(srv, http.MethodPost, "/v1/predictions", `{"type":"dishwasher","budget_usd":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostAppliancePrediction(t *testing.T) {
	userID, applianceID := uuid.NewString(), uuid.NewString()

	t.Run("empty body", func(t *testing.T) {
		planner := &mockPlanner{}
		srv, _ := newTestServer(planner, nil)
		rec := do(srv, http.MethodPost, "/v1/users/"+userID+"/appliances/"+applianceID+"/prediction", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, applianceID, planner.targetID)
		assert.Nil(t, planner.override)
	})

	t.Run("override location", func(t *testing.T) {
		planner := &mockPlanner{}
		srv, _ := newTestServer(planner, nil)
		rec := do(srv, http.MethodPost, "/v1/users/"+userID+"/appliances/"+applianceID+"/prediction",
			`{"location":{"city":"Denver","state":"CO"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, planner.override)
		assert.Equal(t, "Denver", planner.override.City)
	})
}

func TestPostMatch(t *testing.T) {
	srv, _ := newTestServer(&mockPlanner{}, nil)
	appliances := `[{"id":"wh","type":"water_heater","install_year":2015},{"id":"dw","type":"dishwasher","install_year":2020}]`

	tests := []struct {
		message string
		wantID  any
	}{
		{"when should I replace my water heater", "wh"},
		{"dishwasher acting weird", "dw"},
		{"what's up", nil},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			rec := do(srv, http.MethodPost, "/v1/match", fmt.Sprintf(`{"message":%q,"appliances":%s}`, tt.message, appliances))
			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			if tt.wantID == nil {
				assert.Nil(t, body["appliance"])
				return
			}
			require.NotNil(t, body["appliance"])
			assert.Equal(t, tt.wantID, body["appliance"].(map[string]any)["id"])
		})
	}
}

func TestPostNormalize(t *testing.T) {
	srv, _ := newTestServer(&mockPlanner{}, nil)

	rec := do(srv, http.MethodPost, "/v1/normalize", `{"text":"Hot Water Heater"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "water_heater", body["type"])
	assert.Equal(t, "Water Heater", body["label"])
	assert.Equal(t, true, body["known"])

	rec = do(srv, http.MethodPost, "/v1/normalize", `{"text":"garage freezer"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "garage_freezer", body["type"])
	assert.Equal(t, false, body["known"])
}

func TestPostChat(t *testing.T) {
	planner := &mockPlanner{}
	srv, _ := newTestServer(planner, nil)
	userID := uuid.NewString()

	rec := do(srv, http.MethodPost, "/v1/users/"+userID+"/chat", `{"message":"how long will my fridge last"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi Sam!", decodeBody(t, rec)["answer"])
	assert.Equal(t, "how long will my fridge last", planner.message)

	rec = do(srv, http.MethodPost, "/v1/users/"+userID+"/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
