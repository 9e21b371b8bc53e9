package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/expense-tracker/internal/database"
)

func (h *Handler) handleTotals(c *fiber.Ctx) error {
	totals, err := h.db.Totals(database.TotalsFilter{
		FromDate: c.Query("fromDate"),
		ToDate:   c.Query("toDate"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to compute totals")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to compute totals")
	}
	return c.JSON(totals)
}

func (h *Handler) handleMonthlyTrends(c *fiber.Ctx) error {
	year := c.QueryInt("year", time.Now().Year())
	if year < 1900 || year > 2200 {
		return errorJSON(c, fiber.StatusBadRequest, "year out of range")
	}

	trends, err := h.db.MonthlyTrends(year)
	if err != nil {
		h.log.Error().Err(err).Int("year", year).Msg("failed to compute monthly trends")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to compute monthly trends")
	}
	return c.JSON(fiber.Map{"year": year, "months": trends})
}

func (h *Handler) handleDailyTrends(c *fiber.Ctx) error {
	now := time.Now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if year < 1900 || year > 2200 {
		return errorJSON(c, fiber.StatusBadRequest, "year out of range")
	}
	if month < 1 || month > 12 {
		return errorJSON(c, fiber.StatusBadRequest, "month must be 1-12")
	}

	trends, err := h.db.DailyTrends(year, month)
	if err != nil {
		h.log.Error().Err(err).Int("year", year).Int("month", month).Msg("failed to compute daily trends")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to compute daily trends")
	}
	return c.JSON(fiber.Map{"year": year, "month": month, "days": trends})
}

func (h *Handler) handleCategoryExpenses(c *fiber.Ctx) error {
	year := c.QueryInt("year", 0)
	month := c.QueryInt("month", 0)
	if year != 0 && (year < 1900 || year > 2200) {
		return errorJSON(c, fiber.StatusBadRequest, "year out of range")
	}
	if month != 0 && (month < 1 || month > 12) {
		return errorJSON(c, fiber.StatusBadRequest, "month must be 1-12")
	}

	expenses, err := h.db.CategoryExpenses(year, month)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to compute category expenses")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to compute category expenses")
	}
	return c.JSON(expenses)
}
