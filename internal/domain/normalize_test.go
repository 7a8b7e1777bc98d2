package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeApplianceType(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"canonical key", "water_heater", "water_heater"},
		{"exact alias", "hot water heater", "water_heater"},
		{"alias with case and padding", "  Water   Heater ", "water_heater"},
		{"run-together alias", "WaterHeater", "water_heater"},
		{"phrase inside text", "my old refrigerator in the garage", "fridge"},
		{"air conditioner", "Air Conditioner", "ac"},
		{"a/c", "a/c", "ac"},
		{"stove maps to oven", "gas stove", "oven"},
		{"garbage disposal", "garbage disposal", "disposal"},
		{"unknown falls back to snake case", "Garage Freezer", "garage_freezer"},
		{"punctuation stripped", "Wine-Cooler (built in)!", "wine_cooler_built_in"},
		{"hyphenated alias", "Dish-Washer", "dishwasher"},
		{"two types named", "Microwave Oven", "microwave_oven"},
		{"range and microwave", "over-the-range microwave", "over_the_range_microwave"},
		{"repeated phrases of one type", "water heater (hot water heater)", "water_heater"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeApplianceType(tt.raw))
		})
	}
}

func TestDetectApplianceType_WholeWord(t *testing.T) {
	got, ok := DetectApplianceType("when should I replace my Water Heater?")
	assert.True(t, ok)
	assert.Equal(t, "water_heater", got)

	// "ac" inside "vacation" is not a match.
	_, ok = DetectApplianceType("going on vacation soon")
	assert.False(t, ok)

	// "range" inside "orange" is not a match.
	_, ok = DetectApplianceType("orange juice")
	assert.False(t, ok)
}

func TestDetectApplianceType_FirstInTableOrder(t *testing.T) {
	// The chat detector keeps table order; only normalization refuses to pick.
	got, ok := DetectApplianceType("my microwave oven")
	assert.True(t, ok)
	assert.Equal(t, "oven", got)
}

func TestNormalizeApplianceType_Idempotent(t *testing.T) {
	for _, raw := range []string{"hot water heater", "Garage Freezer", "dish washer", "HVAC"} {
		once := NormalizeApplianceType(raw)
		assert.Equal(t, once, NormalizeApplianceType(once), raw)
	}
}

func TestPrettyType(t *testing.T) {
	assert.Equal(t, "Water Heater", PrettyType("water_heater"))
	assert.Equal(t, "Dishwasher", PrettyType("dishwasher"))
	assert.Equal(t, "", PrettyType(""))
}
