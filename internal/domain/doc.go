// Package domain implements appliance lifespan estimation and maintenance
// plan generation for homeowners.
//
// # Components
//
// Type normalization maps free text ("hot water heater", "A/C") to canonical
// snake_case keys (water_heater, ac). Every lookup table below is keyed by
// canonical type; unrecognized text still produces a stable key so routine
// rules keep firing for it.
//
// Climate classification buckets a location into cold, moderate, or harsh:
//
//	avg < 7°C (≈45°F)  cold
//	avg > 26°C (≈78°F) harsh
//	otherwise          moderate
//
// Coordinate-based averages use the midpoint of each day's high and low over
// a 30-day window. Without coordinates, a fixed state/province table applies.
//
// # Lifespan Model
//
// The precise predictor starts from a base lifespan per type (default 12
// years) and subtracts two clamped climate penalties:
//
//	heat     = min(15%, max(0, avgTempC - 22) × 0.5%)
//	humidity = min(10%, max(0, avgRH - 60) × 0.25%)
//	adjusted = base × (1 - heat - humidity), one decimal
//
// The replacement date is June 1 of the install year plus
// max(1, floor(adjusted)) years. The monthly savings target divides a
// per-type budget by the months left (at least one).
//
// The plan path uses a separate replacement-horizon table and is climate
// agnostic: replacement year = install year + horizon.
//
// # Task IDs
//
// Task IDs are built from stable keys (rule, appliance or home, period)
// joined with ":". Regenerating a plan for the same inputs and reference
// date yields identical IDs; advancing into the next period yields a new one.
// No wall-clock or random input feeds an ID.
package domain
