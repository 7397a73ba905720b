package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountCondition is one eligibility predicate evaluated against the
// transaction context. A condition referencing a field absent from the
// context fails closed: the rule does not match, no error is raised.
type DiscountCondition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    any               `json:"value"`
}

// DiscountConditions is the JSONB-persisted condition list.
type DiscountConditions []DiscountCondition

func (c DiscountConditions) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal([]DiscountCondition{})
	}
	return json.Marshal(c)
}

func (c *DiscountConditions) Scan(value any) error {
	if value == nil {
		*c = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("DiscountConditions: Scan failed, expected []byte but got %T", value)
	}
	return json.Unmarshal(b, c)
}

// DiscountRule is a named discount with eligibility conditions.
// OperatorID nil means platform-global; operator-scoped rules take
// precedence over global ones of the same type. Rules are soft-deleted
// via IsActive=false.
type DiscountRule struct {
	ID          uuid.UUID          `db:"id" json:"id"`
	Name        string             `db:"name" json:"name"`
	Type        DiscountType       `db:"type" json:"type"`
	Percentage  decimal.Decimal    `db:"percentage" json:"percentage"`
	IsVATExempt bool               `db:"is_vat_exempt" json:"is_vat_exempt"`
	Conditions  DiscountConditions `db:"conditions" json:"conditions"`
	OperatorID  *string            `db:"operator_id" json:"operator_id,omitempty"`
	IsActive    bool               `db:"is_active" json:"is_active"`
	CreatedBy   *string            `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// Validate enforces the rule invariants before any write.
func (r *DiscountRule) Validate() error {
	if r.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if !IsValidDiscountType(r.Type) {
		return NewValidationError("type", fmt.Sprintf("unknown discount type %q", r.Type))
	}
	if r.Percentage.IsNegative() || r.Percentage.GreaterThan(hundred) {
		return NewValidationError("percentage", "must be between 0 and 100")
	}
	for i, cond := range r.Conditions {
		if cond.Field == "" {
			return NewValidationError("conditions", fmt.Sprintf("entry %d: field must not be empty", i))
		}
		if !IsValidConditionOperator(cond.Operator) {
			return NewValidationError("conditions", fmt.Sprintf("entry %d: unknown operator %q", i, cond.Operator))
		}
	}
	return nil
}

// AppliedDiscount records one rule applied to a transaction and the
// amount it deducted from the original subtotal.
type AppliedDiscount struct {
	RuleID         uuid.UUID       `json:"rule_id"`
	Name           string          `json:"name"`
	Type           DiscountType    `json:"type"`
	Percentage     decimal.Decimal `json:"percentage"`
	IsVATExempt    bool            `json:"is_vat_exempt"`
	AmountDeducted decimal.Decimal `json:"amount_deducted"`
}
