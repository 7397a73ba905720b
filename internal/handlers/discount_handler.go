package handlers

import (
	"log/slog"

	"pricing-service/internal/models"
	"pricing-service/internal/services"
	"pricing-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type DiscountHandler struct {
	discountService *services.DiscountService
}

func NewDiscountHandler(discountService *services.DiscountService) *DiscountHandler {
	return &DiscountHandler{discountService: discountService}
}

func (dh *DiscountHandler) Register(app *fiber.App) {
	group := app.Group("pricing/api/v1/discounts")

	group.Get("/", dh.ListRules)
	group.Post("/", dh.CreateRule)
	group.Get("/:id", dh.GetRule)
	group.Patch("/:id", dh.UpdateRule)
	group.Delete("/:id", dh.DeactivateRule)
}

// ListRules lists the catalog: global rules plus the caller's operator
// rules when ?operator_id= is given.
func (dh *DiscountHandler) ListRules(c fiber.Ctx) error {
	var operatorID *string
	if raw := c.Query("operator_id"); raw != "" {
		operatorID = &raw
	}

	rules, err := dh.discountService.ListRules(c.Context(), operatorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(rules))
}

func (dh *DiscountHandler) CreateRule(c fiber.Ctx) error {
	var req models.CreateDiscountRuleRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing discount rule body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	var createdBy *string
	if userID := c.Get("X-User-ID"); userID != "" {
		createdBy = &userID
	}

	rule, err := dh.discountService.CreateRule(c.Context(), req, createdBy)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(rule))
}

func (dh *DiscountHandler) GetRule(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, models.NewValidationError("id", "must be a valid UUID"))
	}

	rule, err := dh.discountService.GetRule(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(rule))
}

func (dh *DiscountHandler) UpdateRule(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, models.NewValidationError("id", "must be a valid UUID"))
	}

	var req models.UpdateDiscountRuleRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing discount rule patch body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	rule, err := dh.discountService.UpdateRule(c.Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(rule))
}

// DeactivateRule soft-deletes a rule via is_active=false.
func (dh *DiscountHandler) DeactivateRule(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, models.NewValidationError("id", "must be a valid UUID"))
	}

	if err := dh.discountService.DeactivateRule(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(fiber.Map{"id": id, "is_active": false}))
}
