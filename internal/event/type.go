package event

import (
	"time"

	"pricing-service/internal/models"

	"github.com/google/uuid"
)

// PricingInvalidatedEvent tells downstream consumers (spot availability,
// pricing caches) that the effective pricing under a node changed and a
// recalculation is needed. Delivery is best-effort.
type PricingInvalidatedEvent struct {
	Level      models.HierarchyLevel `json:"level"`
	NodeID     uuid.UUID             `json:"node_id"`
	Reason     string                `json:"reason"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// Reasons attached to invalidation events.
const (
	ReasonPricingSet     = "pricing_set"
	ReasonPricingRemoved = "pricing_removed"
	ReasonPricingCopied  = "pricing_copied"
)

const PricingInvalidatedQueue string = "pricing_invalidated_events"
