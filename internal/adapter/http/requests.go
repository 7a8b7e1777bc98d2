package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Install years run from 1900 through next year.
	_ = v.RegisterValidation("install_year", func(fl validator.FieldLevel) bool {
		y := int(fl.Field().Int())
		return y >= 1900 && y <= domain.Now().Year()+1
	})
	return v
}

type applianceInput struct {
	ID          string `json:"id" validate:"required"`
	HomeID      string `json:"home_id"`
	Type        string `json:"type" validate:"required"`
	InstallYear *int   `json:"install_year" validate:"omitempty,install_year"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Location    string `json:"location"`
}

func (a applianceInput) toDomain() domain.Appliance {
	return domain.Appliance{
		ID:          a.ID,
		HomeID:      a.HomeID,
		Type:        a.Type,
		InstallYear: a.InstallYear,
		Brand:       a.Brand,
		Model:       a.Model,
		Location:    a.Location,
	}
}

type homeInput struct {
	HomeID      string `json:"home_id"`
	State       string `json:"state"`
	Bedrooms    *int   `json:"bedrooms" validate:"omitempty,min=0"`
	Bathrooms   *int   `json:"bathrooms" validate:"omitempty,min=0"`
	Floors      *int   `json:"floors" validate:"omitempty,min=0"`
	MoveInYear  *int   `json:"move_in_year" validate:"omitempty,install_year"`
	ClimateZone string `json:"climate_zone" validate:"omitempty,oneof=cold moderate harsh"`
}

func (h homeInput) toDomain() domain.HomeContext {
	return domain.HomeContext{
		HomeID:      h.HomeID,
		State:       h.State,
		Bedrooms:    h.Bedrooms,
		Bathrooms:   h.Bathrooms,
		Floors:      h.Floors,
		MoveInYear:  h.MoveInYear,
		ClimateZone: domain.ClimateZone(h.ClimateZone),
	}
}

type planRequest struct {
	Appliances []applianceInput `json:"appliances" validate:"dive"`
	Home       homeInput        `json:"home"`
	Date       string           `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type predictRequest struct {
	Type        string          `json:"type" validate:"required"`
	InstallYear *int            `json:"install_year" validate:"omitempty,install_year"`
	Location    domain.Location `json:"location"`
	BudgetUSD   *float64        `json:"budget_usd" validate:"omitempty,gt=0"`
}

type appliancePredictionRequest struct {
	Location  *domain.Location `json:"location"`
	BudgetUSD *float64         `json:"budget_usd" validate:"omitempty,gt=0"`
}

type matchRequest struct {
	Message    string           `json:"message" validate:"required"`
	Appliances []applianceInput `json:"appliances" validate:"dive"`
}

type matchResponse struct {
	DetectedType *string           `json:"detected_type"`
	Appliance    *domain.Appliance `json:"appliance"`
}

type normalizeRequest struct {
	Text string `json:"text" validate:"required"`
}

type normalizeResponse struct {
	Type              string `json:"type"`
	Label             string `json:"label"`
	Known             bool   `json:"known"`
	BaseLifespanYears int    `json:"base_lifespan_years"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// parseDate reads an optional YYYY-MM-DD reference date.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
