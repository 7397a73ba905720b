package services

import (
	"context"
	"fmt"
	"log/slog"

	"pricing-service/internal/models"

	"github.com/google/uuid"
)

// PricingService is the read side of the engine: effective pricing and
// inheritance-chain reports, served from the Redis cache when possible.
type PricingService struct {
	store HierarchyStore
	cache ResolutionCache
}

func NewPricingService(store HierarchyStore, cache ResolutionCache) *PricingService {
	return &PricingService{store: store, cache: cache}
}

// GetEffectivePricing resolves the pricing that applies to a node.
// Cache reads and writes are best-effort; resolution always succeeds
// against a fresh snapshot when the cache is unavailable.
func (s *PricingService) GetEffectivePricing(ctx context.Context, nodeID uuid.UUID) (*models.PricingInheritanceResult, error) {
	if s.cache != nil {
		cached, err := s.cache.GetEffective(ctx, nodeID)
		if err != nil {
			slog.Warn("pricing cache read failed", "node_id", nodeID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	resolver, err := s.resolver(ctx)
	if err != nil {
		return nil, err
	}
	result, err := resolver.ResolveEffective(nodeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetEffective(ctx, result); err != nil {
			slog.Warn("pricing cache write failed", "node_id", nodeID, "error", err)
		}
	}
	return result, nil
}

// GetPricingChain reports the node's ancestor chain with each node's own
// pricing, nearest-first.
func (s *PricingService) GetPricingChain(ctx context.Context, nodeID uuid.UUID) ([]models.PricingChainEntry, error) {
	resolver, err := s.resolver(ctx)
	if err != nil {
		return nil, err
	}
	return resolver.PricingChain(nodeID)
}

func (s *PricingService) resolver(ctx context.Context) (*PricingResolver, error) {
	nodes, err := s.store.LoadHierarchy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load hierarchy: %w", err)
	}
	return NewPricingResolver(NewHierarchySnapshot(nodes)), nil
}
