// Package service ties the domain engine to stored entities: plans for a
// stored home, predictions for a stored appliance, and chat turns for a user.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/upkeep-planner-service/internal/assistant"
	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
)

// Plan triggers, used as the plans_generated_total label.
const (
	TriggerHTTP  = "http"
	TriggerKafka = "kafka"
)

// Store reads persisted profiles, homes, and appliances. Missing records
// are reported as domain.ErrNotFound.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	ListHomes(ctx context.Context, userID string) ([]domain.Home, error)
	GetHome(ctx context.Context, userID, homeID string) (*domain.Home, error)
	ListAppliances(ctx context.Context, userID string) ([]domain.Appliance, error)
	ListHomeAppliances(ctx context.Context, userID, homeID string) ([]domain.Appliance, error)
	GetAppliance(ctx context.Context, userID, applianceID string) (*domain.Appliance, error)
}

// Predictor runs precise lifespan predictions.
type Predictor interface {
	Predict(ctx context.Context, req domain.PredictRequest) (domain.LifespanPrediction, error)
	PredictAt(ctx context.Context, applianceType string, installYear *int, query string, budget *float64) (domain.LifespanPrediction, error)
}

// Responder answers chat messages.
type Responder interface {
	Respond(ctx context.Context, message string, uc assistant.UserContext) assistant.Reply
}

// Service is safe for concurrent use.
type Service struct {
	store     Store
	zones     *domain.ZoneResolver
	predictor Predictor
	assistant Responder
	metrics   *observability.Metrics
	logger    *slog.Logger
	checks    []namedCheck
}

type namedCheck struct {
	name    string
	checker sharedobs.ReadinessChecker
}

// New creates a Service.
func New(store Store, zones *domain.ZoneResolver, predictor Predictor, responder Responder, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		zones:     zones,
		predictor: predictor,
		assistant: responder,
		metrics:   metrics,
		logger:    logger,
	}
}

// AddReadinessCheck registers a dependency that must be healthy for /readyz.
func (s *Service) AddReadinessCheck(name string, c sharedobs.ReadinessChecker) {
	s.checks = append(s.checks, namedCheck{name: name, checker: c})
}

// CheckReadiness reports the first failing dependency.
func (s *Service) CheckReadiness(ctx context.Context) error {
	for _, c := range s.checks {
		if err := c.checker.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", c.name, err)
		}
	}
	return nil
}

// PlanForHome generates the plan for a stored home. The home's climate zone
// is resolved through the zone resolver before the rule engine runs.
func (s *Service) PlanForHome(ctx context.Context, userID, homeID string, ref time.Time, trigger string) (domain.MaintenancePlanResult, error) {
	home, err := s.store.GetHome(ctx, userID, homeID)
	if err != nil {
		return domain.MaintenancePlanResult{}, err
	}
	appliances, err := s.store.ListHomeAppliances(ctx, userID, homeID)
	if err != nil {
		return domain.MaintenancePlanResult{}, err
	}

	zone, tier := s.zones.Resolve(ctx, *home)
	s.metrics.ZoneResolutions.WithLabelValues(string(tier)).Inc()
	s.logger.Debug("resolved climate zone", "home_id", homeID, "zone", zone, "tier", tier)

	hc := domain.ContextFor(*home)
	hc.ClimateZone = zone
	return s.Plan(appliances, hc, ref, trigger), nil
}

// ForgetZone drops a home's cached climate zone, for use when the home's
// address or coordinates may have changed.
func (s *Service) ForgetZone(ctx context.Context, homeID string) {
	s.zones.Forget(ctx, homeID)
}

// Plan generates a plan for caller-supplied appliances and home context.
func (s *Service) Plan(appliances []domain.Appliance, home domain.HomeContext, ref time.Time, trigger string) domain.MaintenancePlanResult {
	plan := domain.GeneratePlan(appliances, home, ref)
	s.metrics.PlansGenerated.WithLabelValues(trigger).Inc()
	s.metrics.PlanTasks.Observe(float64(len(plan.Tasks)))
	return plan
}

// PredictAppliance runs a precise prediction for a stored appliance. The
// location is the override, then the appliance's home, then the profile.
func (s *Service) PredictAppliance(ctx context.Context, userID, applianceID string, override *domain.Location, budget *float64) (domain.LifespanPrediction, error) {
	appliance, err := s.store.GetAppliance(ctx, userID, applianceID)
	if err != nil {
		return domain.LifespanPrediction{}, err
	}

	req := domain.PredictRequest{Appliance: *appliance, Override: override, BudgetUSD: budget}
	if appliance.HomeID != "" {
		if req.Home, err = optional(s.store.GetHome(ctx, userID, appliance.HomeID)); err != nil {
			return domain.LifespanPrediction{}, err
		}
	}
	if req.Profile, err = optional(s.store.GetProfile(ctx, userID)); err != nil {
		return domain.LifespanPrediction{}, err
	}

	pred, err := s.predictor.Predict(ctx, req)
	s.recordPrediction(err)
	return pred, err
}

// PredictAt runs a precise prediction for an explicit type and location.
func (s *Service) PredictAt(ctx context.Context, applianceType string, installYear *int, loc domain.Location, budget *float64) (domain.LifespanPrediction, error) {
	pred, err := s.predictor.PredictAt(ctx, applianceType, installYear, loc.QueryString(), budget)
	s.recordPrediction(err)
	return pred, err
}

// Chat answers one message using everything stored for the user.
func (s *Service) Chat(ctx context.Context, userID, message string) (assistant.Reply, error) {
	profile, err := optional(s.store.GetProfile(ctx, userID))
	if err != nil {
		return assistant.Reply{}, err
	}
	homes, err := s.store.ListHomes(ctx, userID)
	if err != nil {
		return assistant.Reply{}, err
	}
	appliances, err := s.store.ListAppliances(ctx, userID)
	if err != nil {
		return assistant.Reply{}, err
	}

	reply := s.assistant.Respond(ctx, message, assistant.UserContext{
		Profile:    profile,
		Homes:      homes,
		Appliances: appliances,
	})

	mode := "template"
	if reply.Generated {
		mode = "generated"
	}
	s.metrics.ChatReplies.WithLabelValues(mode).Inc()
	return reply, nil
}

// optional turns a not-found lookup into a nil record.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (s *Service) recordPrediction(err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoLocation):
		outcome = "no_location"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		outcome = "upstream_error"
	default:
		outcome = "error"
	}
	s.metrics.Predictions.WithLabelValues(outcome).Inc()
}
