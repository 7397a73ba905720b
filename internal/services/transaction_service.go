package services

import (
	"context"
	"log/slog"

	"pricing-service/internal/models"
)

// TransactionService wires resolution, discount selection and rate
// composition into the single calculate-transaction operation a booking
// request goes through.
type TransactionService struct {
	pricing    *PricingService
	catalog    *DiscountCatalog
	calculator *TransactionCalculator
}

func NewTransactionService(pricing *PricingService, catalog *DiscountCatalog, calculator *TransactionCalculator) *TransactionService {
	return &TransactionService{
		pricing:    pricing,
		catalog:    catalog,
		calculator: calculator,
	}
}

// Calculate prices a parking session end to end: resolve the node's
// effective pricing, select the applicable discount rules, compose the
// final amounts.
func (s *TransactionService) Calculate(ctx context.Context, req models.CalculateTransactionRequest) (*models.TransactionCalculation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resolved, err := s.pricing.GetEffectivePricing(ctx, req.NodeID)
	if err != nil {
		return nil, err
	}

	discounts, err := s.catalog.FindApplicable(ctx, s.buildEvalContext(req), req.OperatorID)
	if err != nil {
		return nil, err
	}

	calc, err := s.calculator.Calculate(resolved.EffectivePricing, req.VehicleType, req.Window(), discounts)
	if err != nil {
		return nil, err
	}

	slog.Info("Transaction calculated",
		"node_id", req.NodeID,
		"vehicle_type", req.VehicleType,
		"pricing_source", resolved.Source,
		"discounts_applied", len(calc.AppliedDiscounts),
		"total", calc.Total)
	return calc, nil
}

// buildEvalContext merges the caller-supplied discount context with the
// fields the engine always knows about the transaction. Caller fields
// never override the engine's.
func (s *TransactionService) buildEvalContext(req models.CalculateTransactionRequest) map[string]any {
	evalCtx := make(map[string]any, len(req.DiscountContext)+3)
	for k, v := range req.DiscountContext {
		evalCtx[k] = v
	}
	evalCtx["vehicle_type"] = string(req.VehicleType)
	evalCtx["duration_hours"] = req.Window().Duration().Hours()
	if req.Occupancy != nil {
		evalCtx["occupancy"] = req.Occupancy.InexactFloat64()
	}
	return evalCtx
}
