package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Sink message header keys.
const (
	HeaderHomeID      = "home_id"
	HeaderGeneratedAt = "generated_at"
)

// ErrInvalidEvent is returned for home-change messages that cannot be planned.
var ErrInvalidEvent = errors.New("invalid home-change event")

// PlanSnapshot is the sink-topic payload: a plan tagged with its owner.
type PlanSnapshot struct {
	UserID string `json:"user_id"`
	HomeID string `json:"home_id"`
	MaintenancePlanResult
}

// ParseHomeChanged decodes a source-topic message. Both ids are required.
func ParseHomeChanged(raw RawEvent) (HomeChanged, error) {
	var ev HomeChanged
	if err := json.Unmarshal(raw.Value, &ev); err != nil {
		return HomeChanged{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if ev.UserID == "" || ev.HomeID == "" {
		return HomeChanged{}, fmt.Errorf("%w: user_id and home_id are required", ErrInvalidEvent)
	}
	return ev, nil
}

// SerializePlan wraps a plan as a sink message keyed by home id.
func SerializePlan(ev HomeChanged, plan MaintenancePlanResult) (OutputEvent, error) {
	data, err := json.Marshal(PlanSnapshot{UserID: ev.UserID, HomeID: ev.HomeID, MaintenancePlanResult: plan})
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize plan: %w", err)
	}
	return OutputEvent{
		Key:   []byte(ev.HomeID),
		Value: data,
		Headers: map[string]string{
			HeaderHomeID:      ev.HomeID,
			HeaderGeneratedAt: plan.GeneratedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
