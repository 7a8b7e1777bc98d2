package domain

import (
	"fmt"
	"time"
)

// wildcardType matches every appliance type in a routine rule.
const wildcardType = "*"

// routineRule is a recurring per-appliance task.
type routineRule struct {
	id          string
	applianceOf string
	everyMonths int
	category    Category
	title       func(a Appliance) string
	description func(a Appliance) string
}

func (r routineRule) matches(applianceType string) bool {
	return r.applianceOf == wildcardType || r.applianceOf == applianceType
}

func fixed(s string) func(Appliance) string {
	return func(Appliance) string { return s }
}

var routineRules = []routineRule{
	{
		id:          "ac-filter",
		applianceOf: "ac",
		everyMonths: 3,
		category:    CategoryFilter,
		title:       fixed("Change AC Filter"),
		description: fixed("Replace or clean the HVAC/AC air filter to maintain efficiency."),
	},
	{
		id:          "hvac-filter",
		applianceOf: "hvac",
		everyMonths: 3,
		category:    CategoryFilter,
		title:       fixed("Change HVAC Filter"),
		description: fixed("Routine filter change improves air quality and lowers energy usage."),
	},
	{
		id:          "water-heater-flush",
		applianceOf: "water_heater",
		everyMonths: 12,
		category:    CategoryInspection,
		title:       fixed("Flush Water Heater Tank"),
		description: fixed("Annual flush reduces sediment buildup and extends lifespan."),
	},
	{
		id:          "dishwasher-deep-clean",
		applianceOf: "dishwasher",
		everyMonths: 6,
		category:    CategoryCleaning,
		title:       fixed("Deep Clean Dishwasher"),
		description: fixed("Clean spray arms, filter, and run a cleaning cycle."),
	},
	{
		id:          "annual-inspection",
		applianceOf: wildcardType,
		everyMonths: 12,
		category:    CategoryInspection,
		title: func(a Appliance) string {
			return "Annual Inspection: " + PrettyType(a.Type)
		},
		description: func(a Appliance) string {
			return fmt.Sprintf("General annual inspection for %s to spot early issues.", PrettyType(a.Type))
		},
	},
}

// calendarSlot is a fixed month/day that recurs every year.
type calendarSlot struct {
	month time.Month
	day   int
}

// homeRule is a home-level task anchored on fixed calendar slots.
type homeRule struct {
	id       string
	category Category
	// oneTime rules carry no period in their task id.
	oneTime bool
	slots   func(h HomeContext, zone ClimateZone) []calendarSlot
	applies func(h HomeContext, zone ClimateZone, year int) bool
	title   func(h HomeContext, zone ClimateZone, slot calendarSlot) string
	desc    func(h HomeContext, zone ClimateZone) string
}

func always(HomeContext, ClimateZone, int) bool { return true }

func slots(s ...calendarSlot) func(HomeContext, ClimateZone) []calendarSlot {
	return func(HomeContext, ClimateZone) []calendarSlot { return s }
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func multiStory(h HomeContext) bool { return intOr(h.Floors, 0) > 1 }

// agingInfrastructureYears is how long after move-in plumbing gets a one-time review.
const agingInfrastructureYears = 20

var homeRules = []homeRule{
	{
		id:       "smoke-co-alarms",
		category: CategoryGeneral,
		slots:    slots(calendarSlot{time.April, 1}, calendarSlot{time.October, 1}),
		applies:  always,
		title: func(HomeContext, ClimateZone, calendarSlot) string {
			return "Test Smoke & CO Alarms"
		},
		desc: func(HomeContext, ClimateZone) string {
			return "Press the test button on every smoke and carbon-monoxide alarm and replace weak batteries."
		},
	},
	{
		id:       "gutter-cleaning",
		category: CategoryCleaning,
		slots:    slots(calendarSlot{time.May, 1}, calendarSlot{time.November, 1}),
		applies: func(h HomeContext, _ ClimateZone, _ int) bool {
			return multiStory(h)
		},
		title: func(HomeContext, ClimateZone, calendarSlot) string {
			return "Clean Gutters"
		},
		desc: func(h HomeContext, _ ClimateZone) string {
			return fmt.Sprintf("Clear leaves and debris from gutters and downspouts on your %d-story home.", intOr(h.Floors, 0))
		},
	},
	{
		id:       "bathroom-caulk",
		category: CategoryInspection,
		slots:    slots(calendarSlot{time.February, 1}),
		applies: func(h HomeContext, _ ClimateZone, _ int) bool {
			return intOr(h.Bathrooms, 0) > 0
		},
		title: func(HomeContext, ClimateZone, calendarSlot) string {
			return "Inspect Bathroom Caulk"
		},
		desc: func(h HomeContext, _ ClimateZone) string {
			n := intOr(h.Bathrooms, 0)
			noun := "bathrooms"
			if n == 1 {
				noun = "bathroom"
			}
			return fmt.Sprintf("Check caulk and grout around tubs, showers, and sinks in %d %s; recaulk any cracked seams.", n, noun)
		},
	},
	{
		id:       "hvac-tune-up",
		category: CategoryService,
		slots: func(_ HomeContext, zone ClimateZone) []calendarSlot {
			if zone == ZoneCold {
				return []calendarSlot{{time.September, 15}}
			}
			return []calendarSlot{{time.April, 15}, {time.October, 15}}
		},
		applies: always,
		title: func(_ HomeContext, zone ClimateZone, slot calendarSlot) string {
			switch {
			case zone == ZoneCold:
				return "Pre-Winter HVAC Tune-Up"
			case slot.month < time.July:
				return "Spring HVAC Tune-Up"
			default:
				return "Fall HVAC Tune-Up"
			}
		},
		desc: func(_ HomeContext, zone ClimateZone) string {
			if zone == ZoneCold {
				return "Have heating equipment serviced before the cold season."
			}
			return "Seasonal service keeps heating and cooling efficient through peak months."
		},
	},
	{
		id:       "roof-inspection",
		category: CategoryInspection,
		slots:    slots(calendarSlot{time.June, 1}),
		applies: func(h HomeContext, zone ClimateZone, _ int) bool {
			return multiStory(h) || zone == ZoneHarsh
		},
		title: func(HomeContext, ClimateZone, calendarSlot) string {
			return "Inspect Roof"
		},
		desc: func(_ HomeContext, zone ClimateZone) string {
			if zone == ZoneHarsh {
				return "Harsh climates wear shingles and flashing faster; check for damage and leaks."
			}
			return "Look for missing shingles, damaged flashing, and signs of leaks."
		},
	},
	{
		id:       "plumbing-aging",
		category: CategoryService,
		oneTime:  true,
		slots:    slots(calendarSlot{time.March, 15}),
		applies: func(h HomeContext, _ ClimateZone, year int) bool {
			return h.MoveInYear != nil && year-*h.MoveInYear >= agingInfrastructureYears
		},
		title: func(HomeContext, ClimateZone, calendarSlot) string {
			return "Aging Plumbing Inspection"
		},
		desc: func(h HomeContext, _ ClimateZone) string {
			return fmt.Sprintf("You moved in %d; have a plumber check supply lines, shutoff valves, and drains for age-related wear.", intOr(h.MoveInYear, 0))
		},
	},
}
