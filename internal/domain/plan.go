package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// soonWindow is how close a due date must be to count as SeveritySoon.
const soonWindow = 30 * 24 * time.Hour

// Confidence thresholds on years remaining.
const (
	mediumConfidenceBelowYears = 3
	replacementAdvisoryYears   = 1
)

// GeneratePlan builds the maintenance plan for a home's appliances as of ref.
// A zero ref means now. The result depends only on its arguments and the
// package clock, so identical inputs yield identical task ids, dates, and
// ordering. An install year that fails PlausibleInstallYear counts as missing.
func GeneratePlan(appliances []Appliance, home HomeContext, ref time.Time) MaintenancePlanResult {
	if ref.IsZero() {
		ref = clock.Now()
	}
	today := calendarDate(ref)
	zone := planZone(home)

	var tasks []MaintenanceTask
	lifespans := make([]LifespanEstimate, 0, len(appliances))

	for i, a := range appliances {
		a.Type = NormalizeApplianceType(a.Type)
		if !PlausibleInstallYear(a.InstallYear) {
			a.InstallYear = nil
		}
		key := taskKey(a, i)

		est, advisory := estimateLifespan(a, key, today)
		lifespans = append(lifespans, est)
		if advisory != nil {
			tasks = append(tasks, *advisory)
		}
		tasks = append(tasks, routineTasks(a, key, today)...)
	}

	if homeID := resolveHomeID(home, appliances); homeID != "" {
		tasks = append(tasks, homeTasks(homeID, home, zone, today)...)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate < tasks[j].DueDate
	})

	return MaintenancePlanResult{
		Tasks:       tasks,
		Lifespan:    lifespans,
		ClimateZone: zone,
		GeneratedAt: clock.Now().UTC(),
	}
}

// planZone picks the zone for home-level rules without any I/O: the
// caller-supplied zone, else the state table, else moderate. Coordinate
// lookups happen upstream in ZoneResolver.
func planZone(h HomeContext) ClimateZone {
	if h.ClimateZone.Valid() {
		return h.ClimateZone
	}
	return ClassifyState(h.State)
}

func resolveHomeID(h HomeContext, appliances []Appliance) string {
	if h.HomeID != "" {
		return h.HomeID
	}
	for _, a := range appliances {
		if a.HomeID != "" {
			return a.HomeID
		}
	}
	return ""
}

// estimateLifespan applies the plan-path lifespan table. It returns a
// replacement advisory when the appliance is within a year of its horizon.
func estimateLifespan(a Appliance, key string, today time.Time) (LifespanEstimate, *MaintenanceTask) {
	est := LifespanEstimate{ApplianceID: a.ID, Type: a.Type, Confidence: ConfidenceLow}

	years, known := ReplacementHorizon(a.Type)
	if !known || a.InstallYear == nil {
		return est, nil
	}

	replaceYear := *a.InstallYear + years
	remaining := replaceYear - today.Year()
	est.EstimatedReplacementYear = &replaceYear
	est.YearsRemaining = &remaining
	est.Confidence = confidenceFor(remaining)

	if remaining > replacementAdvisoryYears {
		return est, nil
	}

	due, severity := today, SeverityOverdue
	if remaining > 0 {
		due, severity = today.AddDate(0, remaining*12, 0), SeveritySoon
	}
	pretty := PrettyType(a.Type)
	desc := fmt.Sprintf("Your %s is near the end of its typical %d-year lifespan. Start budgeting for a replacement.", strings.ToLower(pretty), years)
	if remaining <= 0 {
		desc = fmt.Sprintf("Your %s has passed its typical %d-year lifespan. Plan a replacement before it fails.", strings.ToLower(pretty), years)
	}
	return est, &MaintenanceTask{
		ID:          taskID("replace", key),
		ApplianceID: a.ID,
		HomeID:      a.HomeID,
		DueDate:     due.Format(DateLayout),
		Title:       "Plan Replacement: " + pretty,
		Description: desc,
		Severity:    severity,
		Category:    CategoryReplacement,
		Source:      SourcePrediction,
	}
}

func confidenceFor(yearsRemaining int) Confidence {
	switch {
	case yearsRemaining < 0:
		return ConfidenceHigh
	case yearsRemaining < mediumConfidenceBelowYears:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// routineTasks fires every matching routine rule for one appliance. Each
// rule yields the next occurrence after the last completed interval counted
// from January of the anchor year.
func routineTasks(a Appliance, key string, today time.Time) []MaintenanceTask {
	anchorYear := today.Year()
	if a.InstallYear != nil {
		anchorYear = *a.InstallYear
	}
	anchor := time.Date(anchorYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	monthsSince := (today.Year()-anchorYear)*12 + int(today.Month()-time.January)

	var out []MaintenanceTask
	for _, r := range routineRules {
		if !r.matches(a.Type) {
			continue
		}
		period := floorDiv(monthsSince, r.everyMonths) + 1
		due := anchor.AddDate(0, period*r.everyMonths, 0)
		out = append(out, MaintenanceTask{
			ID:          taskID(r.id, key, fmt.Sprint(period)),
			ApplianceID: a.ID,
			HomeID:      a.HomeID,
			DueDate:     due.Format(DateLayout),
			Title:       r.title(a),
			Description: r.description(a),
			Severity:    severityFor(due, today),
			Category:    r.category,
			Source:      SourceRule,
		})
	}
	return out
}

// homeTasks anchors each applicable home rule at the next occurrence of its
// calendar slots on or after today.
func homeTasks(homeID string, h HomeContext, zone ClimateZone, today time.Time) []MaintenanceTask {
	var out []MaintenanceTask
	for _, r := range homeRules {
		if !r.applies(h, zone, today.Year()) {
			continue
		}
		for _, slot := range r.slots(h, zone) {
			due := nextOccurrence(slot, today)
			id := taskID(r.id, homeID, due.Format("2006-01"))
			if r.oneTime {
				id = taskID(r.id, homeID)
			}
			out = append(out, MaintenanceTask{
				ID:          id,
				HomeID:      homeID,
				DueDate:     due.Format(DateLayout),
				Title:       r.title(h, zone, slot),
				Description: r.desc(h, zone),
				Severity:    severityFor(due, today),
				Category:    r.category,
				Source:      SourceRule,
			})
		}
	}
	return out
}

func nextOccurrence(slot calendarSlot, today time.Time) time.Time {
	d := time.Date(today.Year(), slot.month, slot.day, 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		d = d.AddDate(1, 0, 0)
	}
	return d
}

func severityFor(due, today time.Time) Severity {
	switch {
	case due.Before(today):
		return SeverityOverdue
	case due.Sub(today) < soonWindow:
		return SeveritySoon
	default:
		return SeverityInfo
	}
}

// taskKey is the appliance component of task ids. Appliances without an id
// fall back to their position in the input.
func taskKey(a Appliance, index int) string {
	if a.ID != "" {
		return a.ID
	}
	return "#" + strconv.Itoa(index)
}

func taskID(parts ...string) string {
	return strings.Join(parts, ":")
}

// calendarDate truncates t to midnight UTC of its UTC calendar day.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// floorDiv rounds toward negative infinity so install years in the future
// still land on a period boundary.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
