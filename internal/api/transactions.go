package api

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/expense-tracker/internal/database"
	"github.com/insightdelivered/expense-tracker/internal/models"
	"github.com/insightdelivered/expense-tracker/internal/writer"
)

// TransactionPage is one page of the transaction listing.
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Page         int                  `json:"page"`
	Size         int                  `json:"size"`
	TotalItems   int                  `json:"totalItems"`
	TotalPages   int                  `json:"totalPages"`
}

func (h *Handler) handleListTransactions(c *fiber.Ctx) error {
	filter := database.TransactionFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Type:     strings.ToUpper(c.Query("type")),
		FromDate: c.Query("fromDate"),
		ToDate:   c.Query("toDate"),
		SortBy:   c.Query("sortBy", "date"),
		SortDir:  c.Query("sortDir", "desc"),
		Page:     c.QueryInt("page", 0),
		Size:     c.QueryInt("size", 20),
	}
	if filter.Type != "" && filter.Type != models.TypeDebit && filter.Type != models.TypeCredit {
		return errorJSON(c, fiber.StatusBadRequest, "type must be DEBIT or CREDIT")
	}
	if cc := c.Query("isCreditCardTransaction"); cc != "" {
		v, err := strconv.ParseBool(cc)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "isCreditCardTransaction must be a boolean")
		}
		filter.CreditCard = &v
	}

	transactions, total, err := h.db.ListTransactions(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list transactions")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list transactions")
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	size := filter.Size
	if size <= 0 {
		size = 20
	}
	totalPages := (total + size - 1) / size

	return c.JSON(TransactionPage{
		Transactions: transactions,
		Page:         filter.Page,
		Size:         size,
		TotalItems:   total,
		TotalPages:   totalPages,
	})
}

func (h *Handler) handleSummary(c *fiber.Ctx) error {
	summary, err := h.db.Summary(c.Query("fromDate"), c.Query("toDate"))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to compute summary")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to compute summary")
	}
	return c.JSON(summary)
}

func (h *Handler) handleUpdateCategory(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid transaction id")
	}

	var body struct {
		Category string `json:"category"`
	}
	if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.Category) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "category is required")
	}

	if err := h.db.UpdateTransactionCategory(id, strings.TrimSpace(body.Category)); err != nil {
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}

	t, err := h.db.GetTransaction(id)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load transaction")
	}
	return c.JSON(t)
}

func (h *Handler) handleTags(c *fiber.Ctx) error {
	tags, err := h.db.TopTags(c.QueryInt("limit", 20))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list tags")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list tags")
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return c.JSON(tags)
}

func (h *Handler) handleExportCSV(c *fiber.Ctx) error {
	transactions, err := h.db.AllTransactions()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to export transactions")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to export transactions")
	}

	var buf bytes.Buffer
	w := &writer.CSVWriter{}
	if err := w.Write(&buf, transactions); err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to render CSV")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
	return c.Send(buf.Bytes())
}
