package handlers

import (
	"log/slog"

	"pricing-service/internal/models"
	"pricing-service/internal/services"
	"pricing-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
}

func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

func (th *TransactionHandler) Register(app *fiber.App) {
	group := app.Group("pricing/api/v1/transactions")

	group.Post("/calculate", th.Calculate)
}

// Calculate prices one parking session and returns the full breakdown:
// subtotal, applied discounts, VAT and total. Nothing is persisted.
func (th *TransactionHandler) Calculate(c fiber.Ctx) error {
	var req models.CalculateTransactionRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing transaction request", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if req.OperatorID == nil {
		if operatorID := c.Get("X-Operator-ID"); operatorID != "" {
			req.OperatorID = &operatorID
		}
	}

	calc, err := th.transactionService.Calculate(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(utils.CreateSuccessResponse(calc))
}
