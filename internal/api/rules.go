package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/expense-tracker/internal/database"
	"github.com/insightdelivered/expense-tracker/internal/models"
	"github.com/insightdelivered/expense-tracker/internal/rules"
)

// RuleRequest is the mutable subset of a rule definition.
type RuleRequest struct {
	RuleName        string `json:"ruleName"`
	CategoryName    string `json:"categoryName"`
	Pattern         string `json:"pattern"`
	Priority        int    `json:"priority"`
	Enabled         bool   `json:"enabled"`
	IncludeInTotals bool   `json:"includeInTotals"`
}

func (r *RuleRequest) validate() error {
	if strings.TrimSpace(r.RuleName) == "" {
		return fmt.Errorf("ruleName is required")
	}
	if strings.TrimSpace(r.CategoryName) == "" {
		return fmt.Errorf("categoryName is required")
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("pattern is required")
	}
	if err := rules.ValidatePattern(r.Pattern); err != nil {
		return fmt.Errorf("pattern does not compile: %v", err)
	}
	return nil
}

// RuleMutationResponse reports a rule change plus the sweep it triggered.
type RuleMutationResponse struct {
	Rule          *models.RuleDefinition `json:"rule,omitempty"`
	Recategorized int                    `json:"recategorized"`
	Warnings      []string               `json:"warnings,omitempty"`
}

func (h *Handler) handleListRules(c *fiber.Ctx) error {
	defs, err := h.db.ListRules()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rules")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list rules")
	}
	if defs == nil {
		defs = []models.RuleDefinition{}
	}
	return c.JSON(defs)
}

func (h *Handler) handleCreateRule(c *fiber.Ctx) error {
	var req RuleRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid rule payload")
	}
	if err := req.validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	def := models.RuleDefinition{
		RuleName:        strings.TrimSpace(req.RuleName),
		CategoryName:    strings.TrimSpace(req.CategoryName),
		Pattern:         req.Pattern,
		Priority:        req.Priority,
		Enabled:         req.Enabled,
		IncludeInTotals: req.IncludeInTotals,
	}
	id, err := h.db.CreateRule(&def)
	if errors.Is(err, database.ErrDuplicate) {
		return errorJSON(c, fiber.StatusConflict, "a rule with that name already exists")
	}
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create rule")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to create rule")
	}

	created, err := h.db.GetRule(id)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load created rule")
	}
	warnings, matched, err := h.refreshRules()
	if err != nil {
		h.log.Error().Err(err).Msg("rule refresh failed")
		return errorJSON(c, fiber.StatusInternalServerError, "rule created but refresh failed")
	}
	return c.Status(fiber.StatusCreated).JSON(RuleMutationResponse{
		Rule:          created,
		Recategorized: matched,
		Warnings:      warnings,
	})
}

func (h *Handler) handleUpdateRule(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid rule id")
	}

	var req RuleRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid rule payload")
	}
	if err := req.validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	def := models.RuleDefinition{
		ID:              id,
		RuleName:        strings.TrimSpace(req.RuleName),
		CategoryName:    strings.TrimSpace(req.CategoryName),
		Pattern:         req.Pattern,
		Priority:        req.Priority,
		Enabled:         req.Enabled,
		IncludeInTotals: req.IncludeInTotals,
	}
	if err := h.db.UpdateRule(&def); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return errorJSON(c, fiber.StatusConflict, "a rule with that name already exists")
		}
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}

	updated, err := h.db.GetRule(id)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load updated rule")
	}
	warnings, matched, err := h.refreshRules()
	if err != nil {
		h.log.Error().Err(err).Msg("rule refresh failed")
		return errorJSON(c, fiber.StatusInternalServerError, "rule updated but refresh failed")
	}
	return c.JSON(RuleMutationResponse{
		Rule:          updated,
		Recategorized: matched,
		Warnings:      warnings,
	})
}

func (h *Handler) handleDeleteRule(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid rule id")
	}
	if err := h.db.DeleteRule(id); err != nil {
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}
	warnings, matched, err := h.refreshRules()
	if err != nil {
		h.log.Error().Err(err).Msg("rule refresh failed")
		return errorJSON(c, fiber.StatusInternalServerError, "rule deleted but refresh failed")
	}
	return c.JSON(RuleMutationResponse{Recategorized: matched, Warnings: warnings})
}

func (h *Handler) handleReloadRules(c *fiber.Ctx) error {
	warnings, matched, err := h.refreshRules()
	if err != nil {
		h.log.Error().Err(err).Msg("rule reload failed")
		return errorJSON(c, fiber.StatusInternalServerError, "rule reload failed")
	}
	return c.JSON(RuleMutationResponse{Recategorized: matched, Warnings: warnings})
}

func (h *Handler) handleExportRules(c *fiber.Ctx) error {
	defs, err := h.db.ListRules()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to export rules")
	}
	if defs == nil {
		defs = []models.RuleDefinition{}
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="rules.json"`)
	return c.JSON(defs)
}

// ImportResult reports a rule import: how many landed, how many name
// collisions were skipped, and per-rule validation failures.
type ImportResult struct {
	Imported      int      `json:"imported"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors,omitempty"`
	Recategorized int      `json:"recategorized"`
}

func (h *Handler) handleImportRules(c *fiber.Ctx) error {
	skipDuplicates := c.QueryBool("skipDuplicates", true)

	var reqs []RuleRequest
	if err := c.BodyParser(&reqs); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "expected a JSON array of rules")
	}

	var result ImportResult
	for _, req := range reqs {
		if err := req.validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", req.RuleName, err))
			continue
		}
		def := models.RuleDefinition{
			RuleName:        strings.TrimSpace(req.RuleName),
			CategoryName:    strings.TrimSpace(req.CategoryName),
			Pattern:         req.Pattern,
			Priority:        req.Priority,
			Enabled:         req.Enabled,
			IncludeInTotals: req.IncludeInTotals,
		}
		_, err := h.db.CreateRule(&def)
		switch {
		case errors.Is(err, database.ErrDuplicate):
			if skipDuplicates {
				result.Skipped++
			} else {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: a rule with that name already exists", def.RuleName))
			}
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", def.RuleName, err))
		default:
			result.Imported++
		}
	}

	if result.Imported > 0 {
		if _, matched, err := h.refreshRules(); err == nil {
			result.Recategorized = matched
		} else {
			h.log.Error().Err(err).Msg("rule refresh failed after import")
		}
	}
	return c.JSON(result)
}
