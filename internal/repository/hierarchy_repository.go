package repository

import (
	"context"
	"fmt"
	"log/slog"

	"pricing-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// levelTables maps each hierarchy level to its table.
var levelTables = map[models.HierarchyLevel]string{
	models.LevelLocation: "locations",
	models.LevelSection:  "sections",
	models.LevelZone:     "zones",
	models.LevelSpot:     "parking_spots",
}

// HierarchyRepository reads the four hierarchy tables and writes their
// nullable pricing_config JSONB columns. Structure (rows, parent links)
// is owned by the location-management service; this repository never
// inserts or deletes nodes.
type HierarchyRepository struct {
	db *sqlx.DB
}

func NewHierarchyRepository(db *sqlx.DB) *HierarchyRepository {
	return &HierarchyRepository{db: db}
}

type nodeRow struct {
	ID            uuid.UUID  `db:"id"`
	Name          string     `db:"name"`
	ParentID      *uuid.UUID `db:"parent_id"`
	OperatorID    *string    `db:"operator_id"`
	PricingConfig []byte     `db:"pricing_config"`
}

// LoadHierarchy reads all four tables into a flat node list the resolver
// builds its arena from.
func (r *HierarchyRepository) LoadHierarchy(ctx context.Context) ([]models.HierarchyNode, error) {
	var nodes []models.HierarchyNode

	queries := []struct {
		level models.HierarchyLevel
		query string
	}{
		{models.LevelLocation, `SELECT id, name, NULL::uuid AS parent_id, operator_id, pricing_config FROM locations`},
		{models.LevelSection, `SELECT id, name, location_id AS parent_id, NULL AS operator_id, pricing_config FROM sections`},
		{models.LevelZone, `SELECT id, name, section_id AS parent_id, NULL AS operator_id, pricing_config FROM zones`},
		{models.LevelSpot, `SELECT id, spot_number AS name, zone_id AS parent_id, NULL AS operator_id, pricing_config FROM parking_spots`},
	}

	for _, q := range queries {
		var rows []nodeRow
		if err := r.db.SelectContext(ctx, &rows, q.query); err != nil {
			return nil, fmt.Errorf("failed to load %s table: %w", q.level, err)
		}
		for _, row := range rows {
			node, err := row.toNode(q.level)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
	}

	return nodes, nil
}

func (row nodeRow) toNode(level models.HierarchyLevel) (models.HierarchyNode, error) {
	node := models.HierarchyNode{
		ID:         row.ID,
		Name:       row.Name,
		Level:      level,
		ParentID:   row.ParentID,
		OperatorID: row.OperatorID,
	}
	if row.PricingConfig != nil {
		cfg := &models.PricingConfig{}
		if err := cfg.Scan(row.PricingConfig); err != nil {
			return models.HierarchyNode{}, fmt.Errorf("failed to decode pricing_config for %s %s: %w", level, row.ID, err)
		}
		node.PricingConfig = cfg
	}
	return node, nil
}

// SetPricingConfig replaces the node's pricing_config column as a whole.
// A nil config is rejected; use ClearPricingConfig to remove pricing.
func (r *HierarchyRepository) SetPricingConfig(ctx context.Context, level models.HierarchyLevel, id uuid.UUID, cfg *models.PricingConfig) error {
	table, ok := levelTables[level]
	if !ok {
		return models.NewValidationError("level", fmt.Sprintf("unknown hierarchy level %q", level))
	}
	if cfg == nil {
		return models.NewValidationError("pricing_config", "must not be empty")
	}

	query := fmt.Sprintf(`UPDATE %s SET pricing_config = $1, updated_at = NOW() WHERE id = $2`, table)
	res, err := r.db.ExecContext(ctx, query, *cfg, id)
	if err != nil {
		slog.Error("Failed to set pricing config", "level", level, "node_id", id, "error", err)
		return fmt.Errorf("failed to set pricing config: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("node %s at level %s: %w", id, level, models.ErrNodeNotFound)
	}

	slog.Info("Pricing config set", "level", level, "node_id", id)
	return nil
}

// ClearPricingConfig nulls the node's pricing_config column so the node
// inherits again.
func (r *HierarchyRepository) ClearPricingConfig(ctx context.Context, level models.HierarchyLevel, id uuid.UUID) error {
	table, ok := levelTables[level]
	if !ok {
		return models.NewValidationError("level", fmt.Sprintf("unknown hierarchy level %q", level))
	}

	query := fmt.Sprintf(`UPDATE %s SET pricing_config = NULL, updated_at = NOW() WHERE id = $1`, table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Error("Failed to clear pricing config", "level", level, "node_id", id, "error", err)
		return fmt.Errorf("failed to clear pricing config: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("node %s at level %s: %w", id, level, models.ErrNodeNotFound)
	}

	slog.Info("Pricing config cleared", "level", level, "node_id", id)
	return nil
}
