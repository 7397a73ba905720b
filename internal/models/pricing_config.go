package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimeBasedRate multiplies the hourly rate inside a weekly time window.
// DayOfWeek follows time.Weekday (0 = Sunday). StartTime/EndTime are
// "HH:MM" clock values; the window is inclusive of StartTime and
// exclusive of EndTime. Overlapping windows for the same day are allowed,
// the first declared match wins.
type TimeBasedRate struct {
	Name       string          `json:"name"`
	DayOfWeek  int             `json:"day_of_week"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// HolidayRate multiplies the hourly rate on a calendar date. Date is
// "YYYY-MM-DD"; when Recurring is set only the month and day are matched.
type HolidayRate struct {
	Name       string          `json:"name"`
	Date       string          `json:"date"`
	Recurring  bool            `json:"recurring"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// PricingConfig is the price policy attached to a hierarchy node. It is
// immutable once stored: updates replace the whole JSONB column, never
// individual sub-fields.
type PricingConfig struct {
	BaseRate            decimal.Decimal                 `json:"base_rate"`
	VehicleTypeRates    map[VehicleType]decimal.Decimal `json:"vehicle_type_rates,omitempty"`
	TimeBasedRates      []TimeBasedRate                 `json:"time_based_rates,omitempty"`
	HolidayRates        []HolidayRate                   `json:"holiday_rates,omitempty"`
	OccupancyMultiplier decimal.Decimal                 `json:"occupancy_multiplier"`
	VATRate             decimal.Decimal                 `json:"vat_rate"`
}

// Default pricing constants used when no node in the ancestor chain owns
// a config.
var (
	defaultBaseRate            = decimal.NewFromInt(50)
	defaultVATRate             = decimal.NewFromInt(12)
	defaultOccupancyMultiplier = decimal.NewFromInt(1)
)

// DefaultPricingConfig returns the process-wide fallback policy: base
// rate 50/hour, VAT 12%, occupancy multiplier 1, no overrides.
func DefaultPricingConfig() *PricingConfig {
	return &PricingConfig{
		BaseRate:            defaultBaseRate,
		OccupancyMultiplier: defaultOccupancyMultiplier,
		VATRate:             defaultVATRate,
	}
}

var hundred = decimal.NewFromInt(100)

// Validate enforces every construction invariant. A config that fails
// validation is rejected before any write.
func (p *PricingConfig) Validate() error {
	if p.BaseRate.IsNegative() {
		return NewValidationError("base_rate", "must be non-negative")
	}
	if p.OccupancyMultiplier.IsNegative() {
		return NewValidationError("occupancy_multiplier", "must be non-negative")
	}
	if p.VATRate.IsNegative() || p.VATRate.GreaterThan(hundred) {
		return NewValidationError("vat_rate", "must be between 0 and 100")
	}

	for vt, rate := range p.VehicleTypeRates {
		if !IsValidVehicleType(vt) {
			return NewValidationError("vehicle_type_rates", fmt.Sprintf("unknown vehicle type %q", vt))
		}
		if rate.IsNegative() {
			return NewValidationError("vehicle_type_rates", fmt.Sprintf("rate for %q must be non-negative", vt))
		}
	}

	for i, tr := range p.TimeBasedRates {
		if tr.DayOfWeek < 0 || tr.DayOfWeek > 6 {
			return NewValidationError("time_based_rates", fmt.Sprintf("entry %d: day_of_week must be 0-6", i))
		}
		start, err := ParseClock(tr.StartTime)
		if err != nil {
			return NewValidationError("time_based_rates", fmt.Sprintf("entry %d: %v", i, err))
		}
		end, err := ParseClock(tr.EndTime)
		if err != nil {
			return NewValidationError("time_based_rates", fmt.Sprintf("entry %d: %v", i, err))
		}
		if end <= start {
			return NewValidationError("time_based_rates", fmt.Sprintf("entry %d: end_time must be after start_time", i))
		}
		if !tr.Multiplier.IsPositive() {
			return NewValidationError("time_based_rates", fmt.Sprintf("entry %d: multiplier must be positive", i))
		}
	}

	for i, hr := range p.HolidayRates {
		if _, err := time.Parse("2006-01-02", hr.Date); err != nil {
			return NewValidationError("holiday_rates", fmt.Sprintf("entry %d: date must be YYYY-MM-DD", i))
		}
		if hr.Multiplier.IsNegative() {
			return NewValidationError("holiday_rates", fmt.Sprintf("entry %d: multiplier must be non-negative", i))
		}
	}

	return nil
}

// RateForVehicle returns the hourly rate for the given vehicle class,
// falling back to the base rate when no class override exists.
func (p *PricingConfig) RateForVehicle(vt VehicleType) decimal.Decimal {
	if rate, ok := p.VehicleTypeRates[vt]; ok {
		return rate
	}
	return p.BaseRate
}

// Clone returns a deep copy so stored configs can be handed out without
// sharing mutable state.
func (p *PricingConfig) Clone() *PricingConfig {
	if p == nil {
		return nil
	}
	out := &PricingConfig{
		BaseRate:            p.BaseRate,
		OccupancyMultiplier: p.OccupancyMultiplier,
		VATRate:             p.VATRate,
	}
	if p.VehicleTypeRates != nil {
		out.VehicleTypeRates = make(map[VehicleType]decimal.Decimal, len(p.VehicleTypeRates))
		for vt, rate := range p.VehicleTypeRates {
			out.VehicleTypeRates[vt] = rate
		}
	}
	if p.TimeBasedRates != nil {
		out.TimeBasedRates = append([]TimeBasedRate(nil), p.TimeBasedRates...)
	}
	if p.HolidayRates != nil {
		out.HolidayRates = append([]HolidayRate(nil), p.HolidayRates...)
	}
	return out
}

// Value serializes the config for the JSONB pricing_config column.
func (p PricingConfig) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan deserializes the config from a JSONB column value.
func (p *PricingConfig) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("PricingConfig: Scan failed, expected []byte but got %T", value)
	}
	return json.Unmarshal(b, p)
}

// ParseClock parses an "HH:MM" clock value into minutes since midnight.
func ParseClock(s string) (int, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("invalid clock value %q, expected HH:MM", s)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hh*60 + mm, nil
}
