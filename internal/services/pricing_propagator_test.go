package services

import (
	"context"
	"sync"
	"testing"

	"pricing-service/internal/event"
	"pricing-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// fakeHierarchyStore keeps nodes in memory and records pricing writes.
type fakeHierarchyStore struct {
	mu    sync.Mutex
	nodes map[uuid.UUID]*models.HierarchyNode
}

func newFakeHierarchyStore(nodes ...models.HierarchyNode) *fakeHierarchyStore {
	store := &fakeHierarchyStore{nodes: make(map[uuid.UUID]*models.HierarchyNode)}
	for i := range nodes {
		node := nodes[i]
		store.nodes[node.ID] = &node
	}
	return store
}

func (f *fakeHierarchyStore) LoadHierarchy(_ context.Context) ([]models.HierarchyNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.HierarchyNode, 0, len(f.nodes))
	for _, node := range f.nodes {
		copied := *node
		copied.PricingConfig = node.PricingConfig.Clone()
		out = append(out, copied)
	}
	return out, nil
}

func (f *fakeHierarchyStore) SetPricingConfig(_ context.Context, _ models.HierarchyLevel, id uuid.UUID, cfg *models.PricingConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	node, ok := f.nodes[id]
	if !ok {
		return models.ErrNodeNotFound
	}
	node.PricingConfig = cfg.Clone()
	return nil
}

func (f *fakeHierarchyStore) ClearPricingConfig(_ context.Context, _ models.HierarchyLevel, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	node, ok := f.nodes[id]
	if !ok {
		return models.ErrNodeNotFound
	}
	node.PricingConfig = nil
	return nil
}

func (f *fakeHierarchyStore) config(id uuid.UUID) *models.PricingConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nodes[id].PricingConfig.Clone()
}

type fakeDispatcher struct {
	events []event.PricingInvalidatedEvent
}

func (f *fakeDispatcher) Dispatch(ev event.PricingInvalidatedEvent) {
	f.events = append(f.events, ev)
}

type fakeCache struct {
	invalidated [][]uuid.UUID
}

func (f *fakeCache) GetEffective(_ context.Context, _ uuid.UUID) (*models.PricingInheritanceResult, error) {
	return nil, nil
}

func (f *fakeCache) SetEffective(_ context.Context, _ *models.PricingInheritanceResult) error {
	return nil
}

func (f *fakeCache) InvalidateNodes(_ context.Context, ids []uuid.UUID) error {
	f.invalidated = append(f.invalidated, ids)
	return nil
}

// ============================================================================
// SET / REMOVE
// ============================================================================

func TestSetPricing_StoresConfigAndNotifies(t *testing.T) {
	loc, sec, zone, spot := buildChain(nil, nil, nil, nil)
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	dispatcher := &fakeDispatcher{}
	cache := &fakeCache{}
	propagator := NewPricingPropagator(store, cache, dispatcher)

	err := propagator.SetPricing(context.Background(), models.LevelZone, zone.ID, testConfig(60))
	require.NoError(t, err)

	stored := store.config(zone.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.BaseRate.Equal(decimal.NewFromInt(60)))

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, event.ReasonPricingSet, dispatcher.events[0].Reason)
	assert.Equal(t, zone.ID, dispatcher.events[0].NodeID)

	// The zone's subtree (zone + spot) was invalidated.
	require.Len(t, cache.invalidated, 1)
	assert.ElementsMatch(t, []uuid.UUID{zone.ID, spot.ID}, cache.invalidated[0])
}

func TestSetPricing_DoesNotTouchOtherNodes(t *testing.T) {
	loc, sec, zone, spot := buildChain(testConfig(50), nil, nil, testConfig(80))
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	propagator := NewPricingPropagator(store, nil, nil)

	err := propagator.SetPricing(context.Background(), models.LevelSection, sec.ID, testConfig(70))
	require.NoError(t, err)

	// Writing section pricing leaves the spot's own config alone;
	// inheritance stays lazy.
	assert.True(t, store.config(spot.ID).BaseRate.Equal(decimal.NewFromInt(80)))
	assert.Nil(t, store.config(zone.ID))
}

func TestSetPricing_RejectsInvalidConfig(t *testing.T) {
	loc, sec, zone, spot := buildChain(nil, nil, nil, nil)
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	dispatcher := &fakeDispatcher{}
	propagator := NewPricingPropagator(store, nil, dispatcher)

	bad := testConfig(50)
	bad.VATRate = decimal.NewFromInt(150)
	err := propagator.SetPricing(context.Background(), models.LevelZone, zone.ID, bad)

	assert.True(t, models.IsValidationError(err))
	// Rejected before any write: nothing stored, nothing notified.
	assert.Nil(t, store.config(zone.ID))
	assert.Empty(t, dispatcher.events)
}

func TestSetPricing_UnknownNodeOrWrongLevel(t *testing.T) {
	loc, sec, zone, spot := buildChain(nil, nil, nil, nil)
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	propagator := NewPricingPropagator(store, nil, nil)

	err := propagator.SetPricing(context.Background(), models.LevelZone, uuid.New(), testConfig(60))
	assert.ErrorIs(t, err, models.ErrNodeNotFound)

	// Existing node addressed at the wrong level is a not-found too.
	err = propagator.SetPricing(context.Background(), models.LevelSpot, zone.ID, testConfig(60))
	assert.ErrorIs(t, err, models.ErrNodeNotFound)
}

func TestRemovePricing_NodeInheritsAgain(t *testing.T) {
	loc, sec, zone, spot := buildChain(testConfig(50), nil, testConfig(70), nil)
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	dispatcher := &fakeDispatcher{}
	propagator := NewPricingPropagator(store, nil, dispatcher)

	err := propagator.RemovePricing(context.Background(), models.LevelZone, zone.ID)
	require.NoError(t, err)
	assert.Nil(t, store.config(zone.ID))

	nodes, err := store.LoadHierarchy(context.Background())
	require.NoError(t, err)
	resolver := NewPricingResolver(NewHierarchySnapshot(nodes))
	result, err := resolver.ResolveEffective(zone.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SourceInherited, result.Source)
	assert.True(t, result.EffectivePricing.BaseRate.Equal(decimal.NewFromInt(50)))

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, event.ReasonPricingRemoved, dispatcher.events[0].Reason)
}

// ============================================================================
// COPY-TO-CHILDREN
// ============================================================================

func TestCopyToChildren_SeedsDirectChildrenOnly(t *testing.T) {
	loc, sec, zone, spot := buildChain(testConfig(50), nil, nil, nil)
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	propagator := NewPricingPropagator(store, nil, nil)

	err := propagator.CopyToChildren(context.Background(), models.LevelSection, sec.ID, false)
	require.NoError(t, err)

	// The zone (direct child) received the section's effective pricing,
	// which is inherited from the location.
	zoneCfg := store.config(zone.ID)
	require.NotNil(t, zoneCfg)
	assert.True(t, zoneCfg.BaseRate.Equal(decimal.NewFromInt(50)))

	// Not recursive: the spot one level deeper stays untouched.
	assert.Nil(t, store.config(spot.ID))
}

func TestCopyToChildren_NonDestructiveWithoutOverride(t *testing.T) {
	loc, sec, zone, spot := buildChain(testConfig(50), nil, testConfig(80), nil)
	_ = spot
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	propagator := NewPricingPropagator(store, nil, nil)

	err := propagator.CopyToChildren(context.Background(), models.LevelSection, sec.ID, false)
	require.NoError(t, err)

	// The zone already owns a config and override is off: unchanged.
	assert.True(t, store.config(zone.ID).BaseRate.Equal(decimal.NewFromInt(80)))
}

func TestCopyToChildren_OverrideReplacesExisting(t *testing.T) {
	loc, sec, zone, spot := buildChain(testConfig(50), nil, testConfig(80), nil)
	_ = spot
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	propagator := NewPricingPropagator(store, nil, nil)

	err := propagator.CopyToChildren(context.Background(), models.LevelSection, sec.ID, true)
	require.NoError(t, err)

	assert.True(t, store.config(zone.ID).BaseRate.Equal(decimal.NewFromInt(50)))
}

func TestCopyToChildren_Idempotent(t *testing.T) {
	loc, sec, zone, spot := buildChain(testConfig(50), nil, nil, nil)
	_ = spot
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	propagator := NewPricingPropagator(store, nil, nil)

	require.NoError(t, propagator.CopyToChildren(context.Background(), models.LevelSection, sec.ID, true))
	first := store.config(zone.ID)

	require.NoError(t, propagator.CopyToChildren(context.Background(), models.LevelSection, sec.ID, true))
	second := store.config(zone.ID)

	assert.True(t, first.BaseRate.Equal(second.BaseRate))
	assert.True(t, first.VATRate.Equal(second.VATRate))
	assert.True(t, first.OccupancyMultiplier.Equal(second.OccupancyMultiplier))
}

func TestCopyToChildren_SpotHasNoChildren(t *testing.T) {
	loc, sec, zone, spot := buildChain(testConfig(50), nil, nil, nil)
	store := newFakeHierarchyStore(loc, sec, zone, spot)
	dispatcher := &fakeDispatcher{}
	propagator := NewPricingPropagator(store, nil, dispatcher)

	err := propagator.CopyToChildren(context.Background(), models.LevelSpot, spot.ID, true)
	require.NoError(t, err)
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, event.ReasonPricingCopied, dispatcher.events[0].Reason)
}
