package domain

import (
	"context"
	"time"
)

// DateLayout is the calendar-date format used at every boundary.
const DateLayout = "2006-01-02"

// Severity is the urgency tier of a maintenance task.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySoon    Severity = "soon"
	SeverityOverdue Severity = "overdue"
)

// Category groups maintenance tasks by the kind of work involved.
type Category string

const (
	CategoryFilter      Category = "filter"
	CategoryInspection  Category = "inspection"
	CategoryCleaning    Category = "cleaning"
	CategoryReplacement Category = "replacement"
	CategoryService     Category = "service"
	CategoryGeneral     Category = "general"
)

// Source records whether a task came from a recurring rule or a lifespan prediction.
type Source string

const (
	SourceRule       Source = "rule"
	SourcePrediction Source = "prediction"
)

// Confidence is the reliability tier of a lifespan estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ClimateZone is a coarse thermal-severity bucket for a location.
type ClimateZone string

const (
	ZoneCold     ClimateZone = "cold"
	ZoneModerate ClimateZone = "moderate"
	ZoneHarsh    ClimateZone = "harsh"
)

// Valid reports whether z is one of the three known zones.
func (z ClimateZone) Valid() bool {
	switch z {
	case ZoneCold, ZoneModerate, ZoneHarsh:
		return true
	default:
		return false
	}
}

// Location is a free-text postal location used to build geocoding queries.
type Location struct {
	City    string `json:"city,omitempty" yaml:"city"`
	State   string `json:"state,omitempty" yaml:"state"`
	Country string `json:"country,omitempty" yaml:"country"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Appliance is a household appliance record as loaded from the entity store.
type Appliance struct {
	ID          string `json:"id" yaml:"id"`
	UserID      string `json:"user_id,omitempty" yaml:"user_id"`
	HomeID      string `json:"home_id,omitempty" yaml:"home_id"`
	Type        string `json:"type" yaml:"type"`
	InstallYear *int   `json:"install_year,omitempty" yaml:"install_year"`
	Brand       string `json:"brand,omitempty" yaml:"brand"`
	Model       string `json:"model,omitempty" yaml:"model"`
	Location    string `json:"location,omitempty" yaml:"location"`
}

// Home is a home record as loaded from the entity store.
type Home struct {
	ID          string      `json:"id" yaml:"id"`
	UserID      string      `json:"user_id,omitempty" yaml:"user_id"`
	Nickname    string      `json:"nickname,omitempty" yaml:"nickname"`
	City        string      `json:"city,omitempty" yaml:"city"`
	State       string      `json:"state,omitempty" yaml:"state"`
	Country     string      `json:"country,omitempty" yaml:"country"`
	Zip         string      `json:"zip,omitempty" yaml:"zip"`
	Geo         *Geo        `json:"geo,omitempty" yaml:"geo"`
	Bedrooms    *int        `json:"bedrooms,omitempty" yaml:"bedrooms"`
	Bathrooms   *int        `json:"bathrooms,omitempty" yaml:"bathrooms"`
	Floors      *int        `json:"floors,omitempty" yaml:"floors"`
	MoveInYear  *int        `json:"move_in_year,omitempty" yaml:"move_in_year"`
	ClimateZone ClimateZone `json:"climate_zone,omitempty" yaml:"climate_zone"`
}

// Location returns the postal fields of the home.
func (h Home) Location() Location {
	return Location{City: h.City, State: h.State, Country: h.Country}
}

// Profile is the user's profile record; its location is the last fallback
// for precise predictions.
type Profile struct {
	UserID     string `json:"user_id"`
	FirstName  string `json:"first_name,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	LastHomeID string `json:"last_home_id,omitempty"`
}

// Location returns the postal fields of the profile.
func (p Profile) Location() Location {
	return Location{City: p.City, State: p.State, Country: p.Country}
}

// HomeContext carries the home attributes the rule engine needs.
type HomeContext struct {
	HomeID      string      `json:"home_id,omitempty" yaml:"home_id"`
	State       string      `json:"state,omitempty" yaml:"state"`
	Bedrooms    *int        `json:"bedrooms,omitempty" yaml:"bedrooms"`
	Bathrooms   *int        `json:"bathrooms,omitempty" yaml:"bathrooms"`
	Floors      *int        `json:"floors,omitempty" yaml:"floors"`
	MoveInYear  *int        `json:"move_in_year,omitempty" yaml:"move_in_year"`
	ClimateZone ClimateZone `json:"climate_zone,omitempty" yaml:"climate_zone"`
}

// ContextFor builds a HomeContext from a stored home.
func ContextFor(h Home) HomeContext {
	return HomeContext{
		HomeID:      h.ID,
		State:       h.State,
		Bedrooms:    h.Bedrooms,
		Bathrooms:   h.Bathrooms,
		Floors:      h.Floors,
		MoveInYear:  h.MoveInYear,
		ClimateZone: h.ClimateZone,
	}
}

// LifespanEstimate is the per-appliance lifespan outcome of plan generation.
// Numeric fields are nil when the type is unknown or the install year is missing.
type LifespanEstimate struct {
	ApplianceID              string     `json:"appliance_id,omitempty"`
	Type                     string     `json:"type"`
	EstimatedReplacementYear *int       `json:"estimated_replacement_year,omitempty"`
	YearsRemaining           *int       `json:"years_remaining,omitempty"`
	Confidence               Confidence `json:"confidence"`
}

// MaintenanceTask is one scheduled action. Tasks are values: a new plan
// supersedes them, nothing mutates them.
type MaintenanceTask struct {
	ID          string   `json:"id"`
	ApplianceID string   `json:"appliance_id,omitempty"`
	HomeID      string   `json:"home_id,omitempty"`
	DueDate     string   `json:"due_date"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Source      Source   `json:"source"`
}

// MaintenancePlanResult is the output of plan generation.
type MaintenancePlanResult struct {
	Tasks       []MaintenanceTask  `json:"tasks"`
	Lifespan    []LifespanEstimate `json:"lifespan"`
	ClimateZone ClimateZone        `json:"climate_zone"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// HomeChanged is the payload of a source-topic message: a home or one of its
// appliances changed and its plan should be regenerated.
type HomeChanged struct {
	UserID string `json:"user_id"`
	HomeID string `json:"home_id"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
