package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pricing-service/internal/event"
	"pricing-service/internal/models"

	"github.com/google/uuid"
)

// HierarchyStore persists node pricing. Implemented by
// repository.HierarchyRepository. Writes touch only the pricing_config
// column; the engine never creates or moves nodes.
type HierarchyStore interface {
	LoadHierarchy(ctx context.Context) ([]models.HierarchyNode, error)
	SetPricingConfig(ctx context.Context, level models.HierarchyLevel, id uuid.UUID, cfg *models.PricingConfig) error
	ClearPricingConfig(ctx context.Context, level models.HierarchyLevel, id uuid.UUID) error
}

// ResolutionCache caches resolved effective pricing per node. Implemented
// by repository.PricingCache.
type ResolutionCache interface {
	GetEffective(ctx context.Context, id uuid.UUID) (*models.PricingInheritanceResult, error)
	SetEffective(ctx context.Context, result *models.PricingInheritanceResult) error
	InvalidateNodes(ctx context.Context, ids []uuid.UUID) error
}

// EventDispatcher delivers invalidation notifications, best-effort.
// Implemented by worker.InvalidationDispatcher.
type EventDispatcher interface {
	Dispatch(ev event.PricingInvalidatedEvent)
}

// PricingPropagator applies pricing writes to the hierarchy. Inheritance
// itself stays lazy: a write never touches any other node's stored
// config, except for the explicit one-level CopyToChildren fan-out.
// Every write invalidates the cached resolutions of the whole subtree
// before new resolutions are served, then emits a PricingInvalidated
// event asynchronously.
type PricingPropagator struct {
	store      HierarchyStore
	cache      ResolutionCache
	dispatcher EventDispatcher
}

func NewPricingPropagator(store HierarchyStore, cache ResolutionCache, dispatcher EventDispatcher) *PricingPropagator {
	return &PricingPropagator{store: store, cache: cache, dispatcher: dispatcher}
}

// SetPricing stores config as the node's own pricing. Re-applying the
// same config is a no-op in effect, so a caller that lost the
// notification may safely retry.
func (p *PricingPropagator) SetPricing(ctx context.Context, level models.HierarchyLevel, nodeID uuid.UUID, cfg *models.PricingConfig) error {
	if cfg == nil {
		return models.NewValidationError("pricing_config", "must not be empty")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	snapshot, err := p.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := p.checkNode(snapshot, level, nodeID); err != nil {
		return err
	}

	if err := p.store.SetPricingConfig(ctx, level, nodeID, cfg); err != nil {
		return fmt.Errorf("failed to store pricing config: %w", err)
	}

	if err := p.invalidateSubtree(ctx, snapshot, nodeID); err != nil {
		return err
	}
	p.notify(level, nodeID, event.ReasonPricingSet)
	return nil
}

// RemovePricing clears the node's own pricing; it becomes dependent on
// inherited or default pricing again.
func (p *PricingPropagator) RemovePricing(ctx context.Context, level models.HierarchyLevel, nodeID uuid.UUID) error {
	snapshot, err := p.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := p.checkNode(snapshot, level, nodeID); err != nil {
		return err
	}

	if err := p.store.ClearPricingConfig(ctx, level, nodeID); err != nil {
		return fmt.Errorf("failed to clear pricing config: %w", err)
	}

	if err := p.invalidateSubtree(ctx, snapshot, nodeID); err != nil {
		return err
	}
	p.notify(level, nodeID, event.ReasonPricingRemoved)
	return nil
}

// CopyToChildren copies the node's current effective pricing onto each
// direct child. Children that already own a config are skipped unless
// overrideExisting is set. One level only; seeding deeper levels requires
// calling again at the next level, which is what lets an operator seed
// zone pricing without clobbering hand-tuned spot overrides.
func (p *PricingPropagator) CopyToChildren(ctx context.Context, level models.HierarchyLevel, nodeID uuid.UUID, overrideExisting bool) error {
	snapshot, err := p.loadSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := p.checkNode(snapshot, level, nodeID); err != nil {
		return err
	}

	resolver := NewPricingResolver(snapshot)
	resolved, err := resolver.ResolveEffective(nodeID)
	if err != nil {
		return err
	}

	copied := 0
	for _, childID := range snapshot.Children(nodeID) {
		child, ok := snapshot.Node(childID)
		if !ok {
			return models.NewComputationError("child %s missing from snapshot", childID)
		}
		if child.PricingConfig != nil && !overrideExisting {
			continue
		}
		if err := p.store.SetPricingConfig(ctx, child.Level, child.ID, resolved.EffectivePricing); err != nil {
			return fmt.Errorf("failed to copy pricing to child %s: %w", child.ID, err)
		}
		copied++
	}

	slog.Info("Copied pricing to children",
		"level", level, "node_id", nodeID,
		"copied", copied, "override_existing", overrideExisting)

	if err := p.invalidateSubtree(ctx, snapshot, nodeID); err != nil {
		return err
	}
	p.notify(level, nodeID, event.ReasonPricingCopied)
	return nil
}

func (p *PricingPropagator) loadSnapshot(ctx context.Context) (*HierarchySnapshot, error) {
	nodes, err := p.store.LoadHierarchy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hierarchy: %w", err)
	}
	return NewHierarchySnapshot(nodes), nil
}

func (p *PricingPropagator) checkNode(snapshot *HierarchySnapshot, level models.HierarchyLevel, nodeID uuid.UUID) error {
	if !models.IsValidHierarchyLevel(level) {
		return models.NewValidationError("level", fmt.Sprintf("unknown hierarchy level %q", level))
	}
	node, ok := snapshot.Node(nodeID)
	if !ok || node.Level != level {
		return fmt.Errorf("node %s at level %s: %w", nodeID, level, models.ErrNodeNotFound)
	}
	return nil
}

// invalidateSubtree drops cached resolutions for the node and everything
// below it. Cache invalidation failures surface to the caller: serving a
// stale resolution after a successful write is worse than asking the
// caller to retry the idempotent write.
func (p *PricingPropagator) invalidateSubtree(ctx context.Context, snapshot *HierarchySnapshot, nodeID uuid.UUID) error {
	if p.cache == nil {
		return nil
	}
	ids := append([]uuid.UUID{nodeID}, snapshot.Descendants(nodeID)...)
	if err := p.cache.InvalidateNodes(ctx, ids); err != nil {
		return fmt.Errorf("failed to invalidate pricing cache: %w", err)
	}
	return nil
}

func (p *PricingPropagator) notify(level models.HierarchyLevel, nodeID uuid.UUID, reason string) {
	if p.dispatcher == nil {
		return
	}
	p.dispatcher.Dispatch(event.PricingInvalidatedEvent{
		Level:      level,
		NodeID:     nodeID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
}
