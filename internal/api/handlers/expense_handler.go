package handlers

import (
	"time"

	"snapspend/internal/dto"
	"snapspend/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseRepo *repository.ExpenseRepository
	demoUserID  string
	logger      *zap.Logger
}

func NewExpenseHandler(expenseRepo *repository.ExpenseRepository, demoUserID string, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseRepo: expenseRepo,
		demoUserID:  demoUserID,
		logger:      logger,
	}
}

// ListRecent is an inspection endpoint over the stored expenses: the most
// recently inserted rows for the resolved user, raw audit JSON excluded.
func (h *ExpenseHandler) ListRecent(c *fiber.Ctx) error {
	userID := resolveUserID(c, h.demoUserID)
	limit := c.QueryInt("limit", 0)

	records, err := h.expenseRepo.Recent(c.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err), zap.String("user_id", userID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list expenses",
		})
	}

	responses := make([]dto.ExpenseResponse, len(records))
	for i, rec := range records {
		responses[i] = dto.ExpenseResponse{
			ID:        rec.ID,
			Date:      rec.Date,
			Merchant:  rec.Merchant,
			Category:  rec.Category,
			Total:     rec.Total,
			Currency:  rec.Currency,
			Notes:     rec.Notes,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		}
	}

	return c.JSON(responses)
}
