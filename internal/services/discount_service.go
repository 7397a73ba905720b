package services

import (
	"context"
	"fmt"
	"time"

	"pricing-service/internal/models"

	"github.com/google/uuid"
)

// DiscountAdminStore is the persistence surface for rule administration.
// Implemented by repository.DiscountRepository.
type DiscountAdminStore interface {
	CreateRule(ctx context.Context, rule *models.DiscountRule) error
	GetRuleByID(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error)
	UpdateRule(ctx context.Context, rule *models.DiscountRule) error
	ListRules(ctx context.Context, operatorID *string) ([]models.DiscountRule, error)
}

// DiscountService manages the discount rule catalog: create, patch,
// soft-delete (is_active=false) and listing by operator scope.
type DiscountService struct {
	store DiscountAdminStore
}

func NewDiscountService(store DiscountAdminStore) *DiscountService {
	return &DiscountService{store: store}
}

func (s *DiscountService) CreateRule(ctx context.Context, req models.CreateDiscountRuleRequest, createdBy *string) (*models.DiscountRule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rule := &models.DiscountRule{
		ID:          uuid.New(),
		Name:        req.Name,
		Type:        req.Type,
		Percentage:  req.Percentage,
		IsVATExempt: req.IsVATExempt,
		Conditions:  req.Conditions,
		OperatorID:  req.OperatorID,
		IsActive:    true,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create discount rule: %w", err)
	}
	return rule, nil
}

func (s *DiscountService) GetRule(ctx context.Context, id uuid.UUID) (*models.DiscountRule, error) {
	rule, err := s.store.GetRuleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRule patches a rule. The patched rule is re-validated as a whole
// before the write; a failed validation leaves the stored rule untouched.
func (s *DiscountService) UpdateRule(ctx context.Context, id uuid.UUID, req models.UpdateDiscountRuleRequest) (*models.DiscountRule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rule, err := s.store.GetRuleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Percentage != nil {
		rule.Percentage = *req.Percentage
	}
	if req.IsVATExempt != nil {
		rule.IsVATExempt = *req.IsVATExempt
	}
	if req.Conditions != nil {
		rule.Conditions = *req.Conditions
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.UpdatedAt = time.Now().UTC()

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update discount rule: %w", err)
	}
	return rule, nil
}

// DeactivateRule soft-deletes a rule; it stays in the table but stops
// matching.
func (s *DiscountService) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	rule, err := s.store.GetRuleByID(ctx, id)
	if err != nil {
		return err
	}
	if !rule.IsActive {
		return nil
	}

	rule.IsActive = false
	rule.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to deactivate discount rule: %w", err)
	}
	return nil
}

// ListRules returns global rules plus the operator's own when operatorID
// is set, all rules otherwise.
func (s *DiscountService) ListRules(ctx context.Context, operatorID *string) ([]models.DiscountRule, error) {
	rules, err := s.store.ListRules(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount rules: %w", err)
	}
	return rules, nil
}
