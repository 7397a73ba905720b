package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"pricing-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DiscountRepository persists discount rules. Deletion is always soft:
// rules are deactivated, never removed.
type DiscountRepository struct {
	db *sqlx.DB
}

func NewDiscountRepository(db *sqlx.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) CreateRule(ctx context.Context, rule *models.DiscountRule) error {
	query := `
		INSERT INTO discount_rules (
			id, name, type, percentage, is_vat_exempt, conditions,
			operator_id, is_active, created_by, created_at, updated_at
		) VALUES (
			:id, :name, :type, :percentage, :is_vat_exempt, :conditions,
			:operator_id, :is_active, :created_by, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, rule)
	if err != nil {
		slog.Error("Failed to create discount rule", "rule_id", rule.ID, "error", err)
		return fmt.Errorf("failed to create discount rule: %w", err)
	}

	slog.Info("Discount rule created",
		"rule_id", rule.ID,
		"type", rule.Type,
		"operator_id", rule.OperatorID)
	return nil
}

func (r *DiscountRepository) GetRuleByID(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	var rule models.DiscountRule
	query := `SELECT * FROM discount_rules WHERE id = $1`
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule %s: %w", id, models.ErrDiscountNotFound)
		}
		return nil, fmt.Errorf("failed to get discount rule: %w", err)
	}
	return &rule, nil
}

func (r *DiscountRepository) UpdateRule(ctx context.Context, rule *models.DiscountRule) error {
	query := `
		UPDATE discount_rules SET
			name = :name,
			percentage = :percentage,
			is_vat_exempt = :is_vat_exempt,
			conditions = :conditions,
			is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, rule)
	if err != nil {
		slog.Error("Failed to update discount rule", "rule_id", rule.ID, "error", err)
		return fmt.Errorf("failed to update discount rule: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, models.ErrDiscountNotFound)
	}

	slog.Info("Discount rule updated", "rule_id", rule.ID, "is_active", rule.IsActive)
	return nil
}

// ListRules returns global rules plus the operator's own when operatorID
// is set, the whole catalog otherwise.
func (r *DiscountRepository) ListRules(ctx context.Context, operatorID *string) ([]models.DiscountRule, error) {
	var rules []models.DiscountRule
	var err error
	if operatorID == nil {
		err = r.db.SelectContext(ctx, &rules,
			`SELECT * FROM discount_rules ORDER BY created_at`)
	} else {
		err = r.db.SelectContext(ctx, &rules,
			`SELECT * FROM discount_rules WHERE operator_id IS NULL OR operator_id = $1 ORDER BY created_at`,
			*operatorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list discount rules: %w", err)
	}
	return rules, nil
}

// ListActiveForOperator returns the active rules in scope for a caller:
// platform-global rules plus, when operatorID is set, that operator's
// rules.
func (r *DiscountRepository) ListActiveForOperator(ctx context.Context, operatorID *string) ([]models.DiscountRule, error) {
	var rules []models.DiscountRule
	var err error
	if operatorID == nil {
		err = r.db.SelectContext(ctx, &rules,
			`SELECT * FROM discount_rules WHERE is_active = TRUE AND operator_id IS NULL ORDER BY created_at`)
	} else {
		err = r.db.SelectContext(ctx, &rules,
			`SELECT * FROM discount_rules WHERE is_active = TRUE AND (operator_id IS NULL OR operator_id = $1) ORDER BY created_at`,
			*operatorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list active discount rules: %w", err)
	}
	return rules, nil
}
