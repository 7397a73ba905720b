package handlers

import (
	"log/slog"
	"strconv"

	"pricing-service/internal/models"
	"pricing-service/internal/services"
	"pricing-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type PricingHandler struct {
	pricingService *services.PricingService
	propagator     *services.PricingPropagator
}

func NewPricingHandler(pricingService *services.PricingService, propagator *services.PricingPropagator) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		propagator:     propagator,
	}
}

func (ph *PricingHandler) Register(app *fiber.App) {
	group := app.Group("pricing/api/v1/hierarchy")

	group.Get("/:level/:id/effective-pricing", ph.GetEffectivePricing)
	group.Get("/:level/:id/pricing-chain", ph.GetPricingChain)
	group.Put("/:level/:id/pricing", ph.SetPricing)
	group.Delete("/:level/:id/pricing", ph.RemovePricing)
	group.Post("/:level/:id/pricing/copy-to-children", ph.CopyToChildren)
}

func parseNodeParams(c fiber.Ctx) (models.HierarchyLevel, uuid.UUID, error) {
	level := models.HierarchyLevel(c.Params("level"))
	if !models.IsValidHierarchyLevel(level) {
		return "", uuid.Nil, models.NewValidationError("level", "must be one of location, section, zone, spot")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", uuid.Nil, models.NewValidationError("id", "must be a valid UUID")
	}
	return level, id, nil
}

// GetEffectivePricing returns the pricing that actually applies to a
// node after inheritance resolution.
func (ph *PricingHandler) GetEffectivePricing(c fiber.Ctx) error {
	_, id, err := parseNodeParams(c)
	if err != nil {
		return respondError(c, err)
	}

	result, err := ph.pricingService.GetEffectivePricing(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

// GetPricingChain returns the ancestor chain with each node's own
// pricing, nearest node first.
func (ph *PricingHandler) GetPricingChain(c fiber.Ctx) error {
	_, id, err := parseNodeParams(c)
	if err != nil {
		return respondError(c, err)
	}

	chain, err := ph.pricingService.GetPricingChain(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(chain))
}

// SetPricing stores the request body as the node's own pricing config.
func (ph *PricingHandler) SetPricing(c fiber.Ctx) error {
	level, id, err := parseNodeParams(c)
	if err != nil {
		return respondError(c, err)
	}

	var cfg models.PricingConfig
	if err := c.Bind().Body(&cfg); err != nil {
		slog.Error("error parsing pricing config body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if err := ph.propagator.SetPricing(c.Context(), level, id, &cfg); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"level": level,
		"id":    id,
	}))
}

// RemovePricing clears the node's own pricing so it inherits again.
func (ph *PricingHandler) RemovePricing(c fiber.Ctx) error {
	level, id, err := parseNodeParams(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := ph.propagator.RemovePricing(c.Context(), level, id); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"level": level,
		"id":    id,
	}))
}

// CopyToChildren copies the node's effective pricing one level down.
// ?override=true replaces children that already own a config.
func (ph *PricingHandler) CopyToChildren(c fiber.Ctx) error {
	level, id, err := parseNodeParams(c)
	if err != nil {
		return respondError(c, err)
	}

	overrideExisting := false
	if raw := c.Query("override"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, models.NewValidationError("override", "must be a boolean"))
		}
		overrideExisting = parsed
	}

	if err := ph.propagator.CopyToChildren(c.Context(), level, id, overrideExisting); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{
		"level":             level,
		"id":                id,
		"override_existing": overrideExisting,
	}))
}
