package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *PricingConfig {
	return &PricingConfig{
		BaseRate:            decimal.NewFromInt(50),
		OccupancyMultiplier: decimal.NewFromInt(1),
		VATRate:             decimal.NewFromInt(12),
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

func TestPricingConfigValidate_Defaults(t *testing.T) {
	cfg := DefaultPricingConfig()
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.BaseRate.Equal(decimal.NewFromInt(50)))
	assert.True(t, cfg.VATRate.Equal(decimal.NewFromInt(12)))
	assert.True(t, cfg.OccupancyMultiplier.Equal(decimal.NewFromInt(1)))
}

func TestPricingConfigValidate_NegativeBaseRateRejected(t *testing.T) {
	cfg := validConfig()
	cfg.BaseRate = decimal.NewFromInt(-1)

	err := cfg.Validate()
	assert.True(t, IsValidationError(err))
}

func TestPricingConfigValidate_ZeroRatesAreLegal(t *testing.T) {
	cfg := &PricingConfig{
		BaseRate:            decimal.Zero,
		OccupancyMultiplier: decimal.Zero,
		VATRate:             decimal.Zero,
	}
	assert.NoError(t, cfg.Validate())
}

func TestPricingConfigValidate_VATRateBounds(t *testing.T) {
	cfg := validConfig()
	cfg.VATRate = decimal.NewFromInt(100)
	assert.NoError(t, cfg.Validate())

	cfg.VATRate = decimal.NewFromFloat(100.01)
	assert.True(t, IsValidationError(cfg.Validate()))

	cfg.VATRate = decimal.NewFromInt(-1)
	assert.True(t, IsValidationError(cfg.Validate()))
}

func TestPricingConfigValidate_VehicleTypeRates(t *testing.T) {
	cfg := validConfig()
	cfg.VehicleTypeRates = map[VehicleType]decimal.Decimal{
		VehicleCar: decimal.NewFromInt(60),
	}
	assert.NoError(t, cfg.Validate())

	cfg.VehicleTypeRates[VehicleType("hovercraft")] = decimal.NewFromInt(10)
	assert.True(t, IsValidationError(cfg.Validate()))

	delete(cfg.VehicleTypeRates, VehicleType("hovercraft"))
	cfg.VehicleTypeRates[VehicleCar] = decimal.NewFromInt(-5)
	assert.True(t, IsValidationError(cfg.Validate()))
}

func TestPricingConfigValidate_TimeBasedRates(t *testing.T) {
	cfg := validConfig()
	cfg.TimeBasedRates = []TimeBasedRate{
		{Name: "evening", DayOfWeek: 5, StartTime: "18:00", EndTime: "23:00", Multiplier: decimal.NewFromFloat(1.5)},
	}
	assert.NoError(t, cfg.Validate())

	bad := cfg.Clone()
	bad.TimeBasedRates[0].DayOfWeek = 7
	assert.True(t, IsValidationError(bad.Validate()))

	bad = cfg.Clone()
	bad.TimeBasedRates[0].StartTime = "25:00"
	assert.True(t, IsValidationError(bad.Validate()))

	bad = cfg.Clone()
	bad.TimeBasedRates[0].EndTime = "18:00"
	assert.True(t, IsValidationError(bad.Validate()), "end must be after start")

	bad = cfg.Clone()
	bad.TimeBasedRates[0].Multiplier = decimal.Zero
	assert.True(t, IsValidationError(bad.Validate()))
}

func TestPricingConfigValidate_HolidayRates(t *testing.T) {
	cfg := validConfig()
	cfg.HolidayRates = []HolidayRate{
		{Name: "christmas", Date: "2026-12-25", Recurring: true, Multiplier: decimal.NewFromInt(2)},
	}
	assert.NoError(t, cfg.Validate())

	cfg.HolidayRates[0].Date = "Dec 25"
	assert.True(t, IsValidationError(cfg.Validate()))
}

// ============================================================================
// CLOCK PARSING
// ============================================================================

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	minutes, err = ParseClock("18:30")
	require.NoError(t, err)
	assert.Equal(t, 18*60+30, minutes)

	minutes, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23*60+59, minutes)

	for _, bad := range []string{"", "24:00", "12:60", "-1:30", "noon"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

// ============================================================================
// CLONE / RATE LOOKUP
// ============================================================================

func TestPricingConfigClone_Independent(t *testing.T) {
	original := validConfig()
	original.VehicleTypeRates = map[VehicleType]decimal.Decimal{VehicleCar: decimal.NewFromInt(60)}
	original.TimeBasedRates = []TimeBasedRate{
		{Name: "evening", DayOfWeek: 5, StartTime: "18:00", EndTime: "23:00", Multiplier: decimal.NewFromFloat(1.5)},
	}

	copied := original.Clone()
	copied.VehicleTypeRates[VehicleCar] = decimal.NewFromInt(99)
	copied.TimeBasedRates[0].Name = "mutated"

	assert.True(t, original.VehicleTypeRates[VehicleCar].Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "evening", original.TimeBasedRates[0].Name)
}

func TestPricingConfigClone_Nil(t *testing.T) {
	var cfg *PricingConfig
	assert.Nil(t, cfg.Clone())
}

func TestRateForVehicle(t *testing.T) {
	cfg := validConfig()
	cfg.VehicleTypeRates = map[VehicleType]decimal.Decimal{
		VehicleMotorcycle: decimal.NewFromInt(20),
	}

	assert.True(t, cfg.RateForVehicle(VehicleMotorcycle).Equal(decimal.NewFromInt(20)))
	// No dedicated rate falls back to the base rate.
	assert.True(t, cfg.RateForVehicle(VehicleTruck).Equal(decimal.NewFromInt(50)))
	assert.True(t, cfg.RateForVehicle("").Equal(decimal.NewFromInt(50)))
}

// ============================================================================
// JSONB ROUND-TRIP
// ============================================================================

func TestPricingConfigScanValue(t *testing.T) {
	original := validConfig()
	original.HolidayRates = []HolidayRate{
		{Name: "new year", Date: "2026-01-01", Recurring: true, Multiplier: decimal.NewFromFloat(1.25)},
	}

	raw, err := original.Value()
	require.NoError(t, err)

	var restored PricingConfig
	require.NoError(t, restored.Scan(raw))

	assert.True(t, restored.BaseRate.Equal(original.BaseRate))
	require.Len(t, restored.HolidayRates, 1)
	assert.True(t, restored.HolidayRates[0].Multiplier.Equal(decimal.NewFromFloat(1.25)))
}
