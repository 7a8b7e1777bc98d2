// Package http serves the planner's JSON API alongside the health,
// readiness, and metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/upkeep-planner-service/internal/assistant"
	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
)

// Planner is the application surface behind the API.
type Planner interface {
	Plan(appliances []domain.Appliance, home domain.HomeContext, ref time.Time, trigger string) domain.MaintenancePlanResult
	PlanForHome(ctx context.Context, userID, homeID string, ref time.Time, trigger string) (domain.MaintenancePlanResult, error)
	PredictAt(ctx context.Context, applianceType string, installYear *int, loc domain.Location, budget *float64) (domain.LifespanPrediction, error)
	PredictAppliance(ctx context.Context, userID, applianceID string, override *domain.Location, budget *float64) (domain.LifespanPrediction, error)
	Chat(ctx context.Context, userID, message string) (assistant.Reply, error)
}

// Server exposes the API plus /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	planner    Planner
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API and operational routes.
func NewServer(addr string, planner Planner, ready sharedobs.ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		planner: planner,
		metrics: metrics,
		logger:  logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/plans", s.handlePlan)
		r.Post("/predictions", s.handlePredict)
		r.Post("/match", s.handleMatch)
		r.Post("/normalize", s.handleNormalize)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/homes/{homeID}/plan", s.handleHomePlan)
			r.Post("/appliances/{applianceID}/prediction", s.handleAppliancePrediction)
			r.Post("/chat", s.handleChat)
		})
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// instrument counts requests by route pattern and logs each one.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
