package domain

import "strings"

const (
	coldBelowC  = 7.0  // ≈45°F
	harshAboveC = 26.0 // ≈78°F

	// DefaultAvgTempC is classified when a temperature series has no usable day.
	DefaultAvgTempC = 15.0
)

var (
	coldRegions = toSet(
		"AK", "ME", "NH", "VT", "MN", "ND", "SD", "WI", "MI", "MT", "WY",
		// Canadian provinces and territories.
		"AB", "SK", "MB", "ON", "QC", "NB", "NS", "PE", "NL", "YT", "NT", "NU",
	)
	harshRegions = toSet("FL", "TX", "AZ", "NV", "LA", "MS", "AL", "HI", "PR")
)

func toSet(codes ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

// ClassifyTemperature buckets an average temperature in °C.
func ClassifyTemperature(avgC float64) ClimateZone {
	switch {
	case avgC < coldBelowC:
		return ZoneCold
	case avgC > harshAboveC:
		return ZoneHarsh
	default:
		return ZoneModerate
	}
}

// ClassifyState buckets a state or province code using the static table.
// Unknown or empty codes are moderate.
func ClassifyState(code string) ClimateZone {
	if z, ok := stateZone(code); ok {
		return z
	}
	return ZoneModerate
}

// stateZone is ClassifyState restricted to table members.
func stateZone(code string) (ClimateZone, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := coldRegions[c]; ok {
		return ZoneCold, true
	}
	if _, ok := harshRegions[c]; ok {
		return ZoneHarsh, true
	}
	return "", false
}

// MeanDailyMidpoint averages (high+low)/2 over days where both values are
// present. With no valid day it returns DefaultAvgTempC and false.
func MeanDailyMidpoint(days []DailyTemperature) (float64, bool) {
	var sum float64
	var count int
	for _, d := range days {
		if d.HighC == nil || d.LowC == nil {
			continue
		}
		sum += (*d.HighC + *d.LowC) / 2
		count++
	}
	if count == 0 {
		return DefaultAvgTempC, false
	}
	return sum / float64(count), true
}

// ClassifyDays classifies a daily temperature series; an empty or gap-only
// series degrades to the default average rather than failing.
func ClassifyDays(days []DailyTemperature) (ClimateZone, float64) {
	avg, _ := MeanDailyMidpoint(days)
	return ClassifyTemperature(avg), avg
}
