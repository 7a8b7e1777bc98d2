package domain

import (
	"math"
	"time"
)

// Climate-model constants.
const (
	DefaultBaseLifespanYears = 12

	TempBaselineC       = 22.0
	RHBaselinePct       = 60.0
	heatPenaltyPerC     = 0.5 / 100
	humidPenaltyPerPct  = 0.25 / 100
	heatPenaltyCap      = 15.0 / 100
	humidityPenaltyCap  = 10.0 / 100
	defaultBudgetUSD    = 2000.0
	installAnchorMonth  = time.June
	minPlausibleInstall = 1900
	maxPlausibleInstall = 9999
)

// baseLifespanYears feeds the climate-adjusted predictor.
var baseLifespanYears = map[string]int{
	"water_heater": 12,
	"dishwasher":   10,
	"hvac":         15,
	"ac":           12,
	"furnace":      18,
	"boiler":       20,
	"fridge":       13,
	"washer":       11,
	"dryer":        12,
	"disposal":     8,
	"oven":         15,
	"microwave":    8,
}

// replacementHorizonYears feeds plan generation; it is climate agnostic.
var replacementHorizonYears = map[string]int{
	"water_heater": 10,
	"dishwasher":   9,
	"fridge":       15,
	"washer":       12,
	"dryer":        12,
	"ac":           15,
	"hvac":         15,
	"furnace":      20,
	"boiler":       25,
	"disposal":     8,
	"oven":         18,
	"microwave":    8,
}

var defaultBudgets = map[string]float64{
	"water_heater": 1400,
	"dishwasher":   600,
}

// BaseLifespan returns the climate-model base lifespan for a canonical type,
// or DefaultBaseLifespanYears when the type is unknown.
func BaseLifespan(applianceType string) (int, bool) {
	if y, ok := baseLifespanYears[applianceType]; ok {
		return y, true
	}
	return DefaultBaseLifespanYears, false
}

// ReplacementHorizon returns the plan-path lifespan for a canonical type.
func ReplacementHorizon(applianceType string) (int, bool) {
	y, ok := replacementHorizonYears[applianceType]
	return y, ok
}

// DefaultBudget returns the replacement budget used when the caller gives none.
func DefaultBudget(applianceType string) float64 {
	if b, ok := defaultBudgets[applianceType]; ok {
		return b
	}
	return defaultBudgetUSD
}

// PlausibleInstallYear reports whether y can anchor an install date.
func PlausibleInstallYear(y *int) bool {
	return y != nil && *y > minPlausibleInstall && *y <= maxPlausibleInstall
}

// LifespanInput is everything the pure lifespan model needs.
type LifespanInput struct {
	ApplianceType string
	InstallYear   *int
	Climate       ClimateAverages
	BudgetUSD     *float64
	Now           time.Time
}

// Penalties holds the two climate penalty terms and their sum, as fractions.
type Penalties struct {
	Heat     float64 `json:"heat"`
	Humidity float64 `json:"humidity"`
	Total    float64 `json:"total"`
}

// Baselines echoes the model baselines used for a prediction.
type Baselines struct {
	TempC float64 `json:"temp_c"`
	RHPct float64 `json:"rh_pct"`
}

// Diagnostics exposes the intermediate values behind a prediction.
type Diagnostics struct {
	LocationQuery string    `json:"location_query,omitempty"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	AvgTempC      float64   `json:"avg_temp_c"`
	AvgRHPct      float64   `json:"avg_rh_pct"`
	Penalties     Penalties `json:"penalties"`
	Baselines     Baselines `json:"baselines"`
}

// LifespanPrediction is the result of a precise, climate-adjusted prediction.
type LifespanPrediction struct {
	ApplianceID           string      `json:"appliance_id,omitempty"`
	Type                  string      `json:"type"`
	InstallYear           *int        `json:"install_year,omitempty"`
	BaseLifespanYears     int         `json:"base_lifespan_years"`
	AdjustedLifespanYears float64     `json:"adj_lifespan_years"`
	ReplaceOn             string      `json:"replace_on"`
	MonthsRemaining       int         `json:"months_remaining"`
	BudgetUSD             float64     `json:"budget_usd"`
	MonthlyTarget         float64     `json:"monthly_target"`
	Diagnostics           Diagnostics `json:"inputs"`
}

// ClimatePenalties computes the clamped heat and humidity penalties.
func ClimatePenalties(avgTempC, avgRHPct float64) Penalties {
	heat := math.Min(heatPenaltyCap, math.Max(0, avgTempC-TempBaselineC)*heatPenaltyPerC)
	humid := math.Min(humidityPenaltyCap, math.Max(0, avgRHPct-RHBaselinePct)*humidPenaltyPerPct)
	return Penalties{Heat: heat, Humidity: humid, Total: heat + humid}
}

// ComputeLifespan runs the closed-form lifespan model. It performs no I/O;
// location fields of the diagnostics are left for the caller to fill.
func ComputeLifespan(in LifespanInput) LifespanPrediction {
	t := NormalizeApplianceType(in.ApplianceType)
	base, _ := BaseLifespan(t)

	p := ClimatePenalties(in.Climate.AvgTempC, in.Climate.AvgRHPct)
	adjusted := roundTo(float64(base)*(1-p.Total), 1)

	now := in.Now
	installed := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if PlausibleInstallYear(in.InstallYear) {
		installed = time.Date(*in.InstallYear, installAnchorMonth, 1, 0, 0, 0, 0, time.UTC)
	}
	years := max(1, int(math.Floor(adjusted)))
	replace := installed.AddDate(years, 0, 0)

	months := max(1, (replace.Year()-now.Year())*12+int(replace.Month())-int(now.Month()))
	budget := DefaultBudget(t)
	if in.BudgetUSD != nil {
		budget = *in.BudgetUSD
	}

	return LifespanPrediction{
		Type:                  t,
		InstallYear:           in.InstallYear,
		BaseLifespanYears:     base,
		AdjustedLifespanYears: adjusted,
		ReplaceOn:             replace.Format(DateLayout),
		MonthsRemaining:       months,
		BudgetUSD:             budget,
		MonthlyTarget:         roundTo(budget/float64(months), 2),
		Diagnostics: Diagnostics{
			AvgTempC: roundTo(in.Climate.AvgTempC, 2),
			AvgRHPct: roundTo(in.Climate.AvgRHPct, 2),
			Penalties: Penalties{
				Heat:     roundTo(p.Heat, 4),
				Humidity: roundTo(p.Humidity, 4),
				Total:    roundTo(p.Total, 4),
			},
			Baselines: Baselines{TempC: TempBaselineC, RHPct: RHBaselinePct},
		},
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
