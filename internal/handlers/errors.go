package handlers

import (
	"errors"

	"pricing-service/internal/models"
	"pricing-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// respondError maps the engine's error taxonomy onto envelope responses.
// Validation errors are recoverable caller errors; not-found is a caller
// error too; computation errors are defects and come back as 500s.
func respondError(c fiber.Ctx, err error) error {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("VALIDATION_ERROR", ve.Error()))
	}
	if errors.Is(err, models.ErrNodeNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(utils.CreateErrorResponse("NODE_NOT_FOUND", err.Error()))
	}
	if errors.Is(err, models.ErrDiscountNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(utils.CreateErrorResponse("DISCOUNT_NOT_FOUND", err.Error()))
	}
	var ce *models.ComputationError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.CreateErrorResponse("COMPUTATION_ERROR", ce.Error()))
	}
	return c.Status(fiber.StatusInternalServerError).JSON(utils.CreateErrorResponse("INTERNAL_SERVER_ERROR", err.Error()))
}
