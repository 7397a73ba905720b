package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pricing-service/internal/models"
)

// DiscountStore fetches rules from persistence. Implemented by
// repository.DiscountRepository.
type DiscountStore interface {
	ListActiveForOperator(ctx context.Context, operatorID *string) ([]models.DiscountRule, error)
}

// StackingOrder controls the order matching rules are applied in. The
// order is an explicit configuration, not an accident of query ordering.
type StackingOrder string

const (
	// StackPlatformFirst applies platform-global rules before
	// operator-scoped ones. This is the default.
	StackPlatformFirst StackingOrder = "platform_first"
	// StackOperatorFirst applies operator-scoped rules first.
	StackOperatorFirst StackingOrder = "operator_first"
)

// DiscountCatalog selects the discount rules applicable to a transaction
// context. A rule applies when it is active, its scope covers the caller
// (global or matching operator) and every condition holds. When a global
// and an operator-scoped rule of the same type both match, the operator
// rule wins and the global one is dropped.
type DiscountCatalog struct {
	store DiscountStore
	order StackingOrder
}

func NewDiscountCatalog(store DiscountStore, order StackingOrder) *DiscountCatalog {
	if order == "" {
		order = StackPlatformFirst
	}
	return &DiscountCatalog{store: store, order: order}
}

// FindApplicable returns the matching rules in stacking order.
func (c *DiscountCatalog) FindApplicable(ctx context.Context, evalCtx map[string]any, operatorID *string) ([]models.DiscountRule, error) {
	rules, err := c.store.ListActiveForOperator(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount rules: %w", err)
	}
	return c.selectApplicable(rules, evalCtx), nil
}

func (c *DiscountCatalog) selectApplicable(rules []models.DiscountRule, evalCtx map[string]any) []models.DiscountRule {
	var global, scoped []models.DiscountRule
	scopedTypes := make(map[models.DiscountType]bool)

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if !ruleMatches(rule, evalCtx) {
			continue
		}
		if rule.OperatorID == nil {
			global = append(global, rule)
		} else {
			scoped = append(scoped, rule)
			scopedTypes[rule.Type] = true
		}
	}

	// Operator-scoped rules shadow global rules of the same type.
	kept := global[:0]
	for _, rule := range global {
		if !scopedTypes[rule.Type] {
			kept = append(kept, rule)
		}
	}
	global = kept

	if c.order == StackOperatorFirst {
		return append(scoped, global...)
	}
	return append(global, scoped...)
}

// ruleMatches reports whether every condition of the rule holds against
// the context. Eligibility evaluation never errors: a condition that
// cannot be evaluated fails closed.
func ruleMatches(rule models.DiscountRule, evalCtx map[string]any) bool {
	for _, cond := range rule.Conditions {
		if !evaluateCondition(cond, evalCtx) {
			return false
		}
	}
	return true
}

func evaluateCondition(cond models.DiscountCondition, evalCtx map[string]any) bool {
	if evalCtx == nil {
		return false
	}
	actual, ok := evalCtx[cond.Field]
	if !ok {
		// Unknown field fails closed, never an error.
		return false
	}

	switch cond.Operator {
	case models.OperatorEquals:
		if a, aOK := toNumber(actual); aOK {
			if e, eOK := toNumber(cond.Value); eOK {
				return a == e
			}
		}
		return stringify(actual) == stringify(cond.Value)
	case models.OperatorGreaterThan:
		a, aOK := toNumber(actual)
		e, eOK := toNumber(cond.Value)
		return aOK && eOK && a > e
	case models.OperatorLessThan:
		a, aOK := toNumber(actual)
		e, eOK := toNumber(cond.Value)
		return aOK && eOK && a < e
	case models.OperatorContains:
		switch v := actual.(type) {
		case []any:
			for _, item := range v {
				if stringify(item) == stringify(cond.Value) {
					return true
				}
			}
			return false
		case []string:
			for _, item := range v {
				if item == stringify(cond.Value) {
					return true
				}
			}
			return false
		default:
			return strings.Contains(stringify(actual), stringify(cond.Value))
		}
	default:
		return false
	}
}

// toNumber coerces JSON-decoded scalars into a comparable float.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
