package models

import "github.com/google/uuid"

// HierarchyNode is one row of the Location/Section/Zone/Spot tree. The
// pricing engine only reads nodes; they are created and mutated by the
// location-management service.
type HierarchyNode struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Level         HierarchyLevel `json:"level"`
	ParentID      *uuid.UUID     `json:"parent_id,omitempty"`
	OperatorID    *string        `json:"operator_id,omitempty"`
	PricingConfig *PricingConfig `json:"pricing_config,omitempty"`
}

// PricingInheritanceResult reports how a node's effective pricing was
// resolved.
type PricingInheritanceResult struct {
	Level            HierarchyLevel `json:"level"`
	ID               uuid.UUID      `json:"id"`
	OwnPricing       *PricingConfig `json:"own_pricing,omitempty"`
	InheritedPricing *PricingConfig `json:"inherited_pricing,omitempty"`
	EffectivePricing *PricingConfig `json:"effective_pricing"`
	Source           PricingSource  `json:"source"`
	InheritedFromID  *uuid.UUID     `json:"inherited_from_id,omitempty"`
}

// PricingChainEntry is one step of the ancestor chain report, nearest
// node first.
type PricingChainEntry struct {
	Level      HierarchyLevel `json:"level"`
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	OwnPricing *PricingConfig `json:"own_pricing,omitempty"`
}
