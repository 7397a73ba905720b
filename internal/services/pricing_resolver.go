package services

import (
	"fmt"

	"pricing-service/internal/models"

	"github.com/google/uuid"
)

// HierarchySnapshot is a read-only arena of hierarchy nodes indexed by id
// with a parent→children adjacency map. Resolution walks indices instead
// of re-fetching rows, and the snapshot is never mutated after build, so
// any number of goroutines may resolve against it concurrently.
type HierarchySnapshot struct {
	nodes    map[uuid.UUID]*models.HierarchyNode
	children map[uuid.UUID][]uuid.UUID
}

// NewHierarchySnapshot builds the arena from a flat node list.
func NewHierarchySnapshot(nodes []models.HierarchyNode) *HierarchySnapshot {
	s := &HierarchySnapshot{
		nodes:    make(map[uuid.UUID]*models.HierarchyNode, len(nodes)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for i := range nodes {
		node := nodes[i]
		s.nodes[node.ID] = &node
		if node.ParentID != nil {
			s.children[*node.ParentID] = append(s.children[*node.ParentID], node.ID)
		}
	}
	return s
}

// Node returns the node with the given id.
func (s *HierarchySnapshot) Node(id uuid.UUID) (*models.HierarchyNode, bool) {
	node, ok := s.nodes[id]
	return node, ok
}

// Children returns the direct children of a node, one level down only.
func (s *HierarchySnapshot) Children(id uuid.UUID) []uuid.UUID {
	return s.children[id]
}

// Descendants returns every node below the given one, any depth.
func (s *HierarchySnapshot) Descendants(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	queue := append([]uuid.UUID(nil), s.children[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		out = append(out, next)
		queue = append(queue, s.children[next]...)
	}
	return out
}

// AncestorChain returns the chain from the node up to its root location,
// nearest-first and including the node itself. A missing target id is a
// caller error (ErrNodeNotFound); a broken parent link inside the chain
// is a data defect and fails loudly.
func (s *HierarchySnapshot) AncestorChain(id uuid.UUID) ([]*models.HierarchyNode, error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, models.ErrNodeNotFound)
	}

	chain := []*models.HierarchyNode{node}
	seen := map[uuid.UUID]bool{id: true}
	for node.ParentID != nil {
		parent, ok := s.nodes[*node.ParentID]
		if !ok {
			return nil, models.NewComputationError("node %s references missing parent %s", node.ID, *node.ParentID)
		}
		if seen[parent.ID] {
			return nil, models.NewComputationError("hierarchy cycle detected at node %s", parent.ID)
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		node = parent
	}
	return chain, nil
}

// PricingResolver computes effective pricing for any node by inheritance:
// own config wins, otherwise the nearest ancestor's, otherwise the
// process-wide default. Resolution is a pure read over the snapshot.
type PricingResolver struct {
	snapshot *HierarchySnapshot
}

func NewPricingResolver(snapshot *HierarchySnapshot) *PricingResolver {
	return &PricingResolver{snapshot: snapshot}
}

// ResolveEffective resolves the pricing that actually applies to a node.
func (r *PricingResolver) ResolveEffective(nodeID uuid.UUID) (*models.PricingInheritanceResult, error) {
	chain, err := r.snapshot.AncestorChain(nodeID)
	if err != nil {
		return nil, err
	}

	target := chain[0]
	result := &models.PricingInheritanceResult{
		Level:      target.Level,
		ID:         target.ID,
		OwnPricing: target.PricingConfig.Clone(),
	}

	for _, node := range chain {
		if node.PricingConfig == nil {
			continue
		}
		result.EffectivePricing = node.PricingConfig.Clone()
		if node.ID == target.ID {
			result.Source = models.SourceOwn
		} else {
			result.Source = models.SourceInherited
			result.InheritedPricing = node.PricingConfig.Clone()
			inheritedFrom := node.ID
			result.InheritedFromID = &inheritedFrom
		}
		return result, nil
	}

	result.Source = models.SourceDefault
	result.EffectivePricing = models.DefaultPricingConfig()
	return result, nil
}

// PricingChain reports every node on the path to the root with its own
// pricing, nearest-first. Used by the admin surface to explain where an
// effective config came from.
func (r *PricingResolver) PricingChain(nodeID uuid.UUID) ([]models.PricingChainEntry, error) {
	chain, err := r.snapshot.AncestorChain(nodeID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.PricingChainEntry, 0, len(chain))
	for _, node := range chain {
		entries = append(entries, models.PricingChainEntry{
			Level:      node.Level,
			ID:         node.ID,
			Name:       node.Name,
			OwnPricing: node.PricingConfig.Clone(),
		})
	}
	return entries, nil
}
