package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/service"
)

// HomePlanner generates the plan for a stored home.
type HomePlanner interface {
	ForgetZone(ctx context.Context, homeID string)
	PlanForHome(ctx context.Context, userID, homeID string, ref time.Time, trigger string) (domain.MaintenancePlanResult, error)
}

// PlanTransformer implements Transformer by regenerating the plan of the
// home named in each event.
type PlanTransformer struct {
	planner HomePlanner
	logger  *slog.Logger
}

// NewTransformer creates a PlanTransformer.
func NewTransformer(planner HomePlanner, logger *slog.Logger) *PlanTransformer {
	return &PlanTransformer{planner: planner, logger: logger}
}

// Transform plans as of the current date; the event carries only ids. A
// changed home may have moved, so its cached zone is dropped first.
func (t *PlanTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	ev, err := domain.ParseHomeChanged(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	t.planner.ForgetZone(ctx, ev.HomeID)

	plan, err := t.planner.PlanForHome(ctx, ev.UserID, ev.HomeID, time.Time{}, service.TriggerKafka)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	t.logger.Debug("refreshed plan", "home_id", ev.HomeID, "tasks", len(plan.Tasks))

	return domain.SerializePlan(ev, plan)
}
