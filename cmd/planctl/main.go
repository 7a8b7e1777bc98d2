// Command planctl runs the planner engine offline: plans from a YAML or JSON
// file, lifespan predictions from explicit climate numbers or a live lookup,
// and the normalizer, matcher, and zone classifier.
//
// Usage:
//
//	planctl plan -f home.yaml --date 2024-01-01
//	planctl predict --type "water heater" --install-year 2015 --temp-c 24 --rh-pct 70
//	planctl predict --type dishwasher --install-year 2018 --location "Austin, TX, US"
//	planctl normalize hot water heater
//	planctl match -f home.yaml -m "when should I replace my water heater"
//	planctl zone --state MN
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
