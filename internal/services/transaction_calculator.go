package services

import (
	"time"

	"pricing-service/internal/models"

	"github.com/shopspring/decimal"
)

// minorUnitPlaces is the currency's minor-unit precision; amounts are
// rounded half-up to this many decimal places.
const minorUnitPlaces = 2

var (
	decimalOne     = decimal.NewFromInt(1)
	decimalHundred = decimal.NewFromInt(100)
)

// TransactionCalculator composes an effective pricing config, a booking
// window, a vehicle type and the applicable discounts into the final
// billable breakdown. The composition order is fixed:
//
//  1. vehicle-class rate (else base rate)
//  2. per hour: × time multiplier × holiday multiplier × occupancy multiplier
//  3. sum across the window → subtotal, partial hours prorated linearly
//  4. each discount deducted against the original subtotal (no compounding)
//  5. any VAT-exempt discount zeroes VAT for the whole transaction
//  6. total = subtotal − discounts + VAT, rounded half-up to minor units
type TransactionCalculator struct{}

func NewTransactionCalculator() *TransactionCalculator {
	return &TransactionCalculator{}
}

// Calculate prices one parking session. Discount deduction amounts are
// rounded to minor units individually; the subtotal keeps full precision
// until the final rounding.
func (tc *TransactionCalculator) Calculate(
	pricing *models.PricingConfig,
	vehicleType models.VehicleType,
	window models.TimeRange,
	discounts []models.DiscountRule,
) (*models.TransactionCalculation, error) {
	subtotal, err := tc.computeSubtotal(pricing, vehicleType, window)
	if err != nil {
		return nil, err
	}

	calc := &models.TransactionCalculation{
		Subtotal:         subtotal.Round(minorUnitPlaces),
		AppliedDiscounts: []models.AppliedDiscount{},
		DiscountTotal:    decimal.Zero,
	}

	// Every deduction is computed against the original subtotal so
	// eligibility for multiple rules never compounds.
	for _, rule := range discounts {
		deducted := subtotal.Mul(rule.Percentage).Div(decimalHundred).Round(minorUnitPlaces)
		calc.AppliedDiscounts = append(calc.AppliedDiscounts, models.AppliedDiscount{
			RuleID:         rule.ID,
			Name:           rule.Name,
			Type:           rule.Type,
			Percentage:     rule.Percentage,
			IsVATExempt:    rule.IsVATExempt,
			AmountDeducted: deducted,
		})
		calc.DiscountTotal = calc.DiscountTotal.Add(deducted)
		if rule.IsVATExempt {
			calc.VATExempt = true
		}
	}

	calc.VATBase = subtotal.Sub(calc.DiscountTotal).Round(minorUnitPlaces)

	// VAT exemption is all-or-nothing per transaction: one exempt
	// discount zeroes the entire VAT, it is never prorated.
	if calc.VATExempt {
		calc.VATAmount = decimal.Zero
	} else {
		calc.VATAmount = calc.VATBase.Mul(pricing.VATRate).Div(decimalHundred).Round(minorUnitPlaces)
	}

	calc.Total = subtotal.Sub(calc.DiscountTotal).Add(calc.VATAmount).Round(minorUnitPlaces)
	return calc, nil
}

// computeSubtotal walks the window in one-hour units, the last unit
// prorated linearly. Each unit gets the single first-declared matching
// time-based rate and the single matching holiday rate for its date.
func (tc *TransactionCalculator) computeSubtotal(
	pricing *models.PricingConfig,
	vehicleType models.VehicleType,
	window models.TimeRange,
) (decimal.Decimal, error) {
	hourlyRate := pricing.RateForVehicle(vehicleType)

	subtotal := decimal.Zero
	cursor := window.Start
	for cursor.Before(window.End) {
		step := time.Hour
		if remaining := window.End.Sub(cursor); remaining < step {
			step = remaining
		}
		fraction := decimal.NewFromFloat(step.Hours())

		timeMult, err := tc.timeMultiplier(pricing, cursor)
		if err != nil {
			return decimal.Zero, err
		}
		holidayMult, err := tc.holidayMultiplier(pricing, cursor)
		if err != nil {
			return decimal.Zero, err
		}

		unitCharge := hourlyRate.
			Mul(timeMult).
			Mul(holidayMult).
			Mul(pricing.OccupancyMultiplier).
			Mul(fraction)
		subtotal = subtotal.Add(unitCharge)

		cursor = cursor.Add(step)
	}
	return subtotal, nil
}

// timeMultiplier returns the multiplier of the first declared time-based
// rate covering the instant, or 1 when none matches. A rate whose window
// is inverted is an invariant breach and fails loudly.
func (tc *TransactionCalculator) timeMultiplier(pricing *models.PricingConfig, at time.Time) (decimal.Decimal, error) {
	minuteOfDay := at.Hour()*60 + at.Minute()
	for _, tr := range pricing.TimeBasedRates {
		if tr.DayOfWeek != int(at.Weekday()) {
			continue
		}
		start, err := models.ParseClock(tr.StartTime)
		if err != nil {
			return decimal.Zero, models.NewComputationError("time-based rate %q: %v", tr.Name, err)
		}
		end, err := models.ParseClock(tr.EndTime)
		if err != nil {
			return decimal.Zero, models.NewComputationError("time-based rate %q: %v", tr.Name, err)
		}
		if end <= start {
			return decimal.Zero, models.NewComputationError("time-based rate %q has end_time before start_time", tr.Name)
		}
		if minuteOfDay >= start && minuteOfDay < end {
			return tr.Multiplier, nil
		}
	}
	return decimalOne, nil
}

// holidayMultiplier returns the multiplier of the holiday covering the
// instant's calendar date, or 1. Recurring holidays match month and day
// only.
func (tc *TransactionCalculator) holidayMultiplier(pricing *models.PricingConfig, at time.Time) (decimal.Decimal, error) {
	for _, hr := range pricing.HolidayRates {
		date, err := time.Parse("2006-01-02", hr.Date)
		if err != nil {
			return decimal.Zero, models.NewComputationError("holiday rate %q has malformed date %q", hr.Name, hr.Date)
		}
		if hr.Recurring {
			if date.Month() == at.Month() && date.Day() == at.Day() {
				return hr.Multiplier, nil
			}
			continue
		}
		if date.Year() == at.Year() && date.Month() == at.Month() && date.Day() == at.Day() {
			return hr.Multiplier, nil
		}
	}
	return decimalOne, nil
}
