package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDiscountRuleRequest creates a new discount rule. OperatorID nil
// makes the rule platform-global.
type CreateDiscountRuleRequest struct {
	Name        string             `json:"name"`
	Type        DiscountType       `json:"type"`
	Percentage  decimal.Decimal    `json:"percentage"`
	IsVATExempt bool               `json:"is_vat_exempt"`
	Conditions  DiscountConditions `json:"conditions"`
	OperatorID  *string            `json:"operator_id,omitempty"`
}

func (r CreateDiscountRuleRequest) Validate() error {
	rule := DiscountRule{
		Name:       r.Name,
		Type:       r.Type,
		Percentage: r.Percentage,
		Conditions: r.Conditions,
	}
	return rule.Validate()
}

// UpdateDiscountRuleRequest patches a discount rule. Nil fields are left
// untouched.
type UpdateDiscountRuleRequest struct {
	Name        *string             `json:"name,omitempty"`
	Percentage  *decimal.Decimal    `json:"percentage,omitempty"`
	IsVATExempt *bool               `json:"is_vat_exempt,omitempty"`
	Conditions  *DiscountConditions `json:"conditions,omitempty"`
	IsActive    *bool               `json:"is_active,omitempty"`
}

func (r UpdateDiscountRuleRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if r.Percentage != nil && (r.Percentage.IsNegative() || r.Percentage.GreaterThan(hundred)) {
		return NewValidationError("percentage", "must be between 0 and 100")
	}
	if r.Conditions != nil {
		for i, cond := range *r.Conditions {
			if cond.Field == "" {
				return NewValidationError("conditions", fmt.Sprintf("entry %d: field must not be empty", i))
			}
			if !IsValidConditionOperator(cond.Operator) {
				return NewValidationError("conditions", fmt.Sprintf("entry %d: unknown operator %q", i, cond.Operator))
			}
		}
	}
	return nil
}

// CalculateTransactionRequest prices one parking session.
// DiscountContext carries the eligibility fields discount conditions
// evaluate against (e.g. age, has_pwd_id); the engine adds vehicle_type,
// duration_hours and occupancy to it before evaluation.
type CalculateTransactionRequest struct {
	NodeID          uuid.UUID        `json:"node_id"`
	VehicleType     VehicleType      `json:"vehicle_type"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         time.Time        `json:"end_time"`
	Occupancy       *decimal.Decimal `json:"occupancy,omitempty"`
	OperatorID      *string          `json:"operator_id,omitempty"`
	DiscountContext map[string]any   `json:"discount_context,omitempty"`
}

func (r CalculateTransactionRequest) Validate() error {
	if r.NodeID == uuid.Nil {
		return NewValidationError("node_id", "must not be empty")
	}
	if !IsValidVehicleType(r.VehicleType) {
		return NewValidationError("vehicle_type", fmt.Sprintf("unknown vehicle type %q", r.VehicleType))
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return NewValidationError("time_window", "start_time and end_time are required")
	}
	if !r.EndTime.After(r.StartTime) {
		return NewValidationError("time_window", "end_time must be after start_time")
	}
	return nil
}

// Window returns the booking window of the request.
func (r CalculateTransactionRequest) Window() TimeRange {
	return TimeRange{Start: r.StartTime, End: r.EndTime}
}
