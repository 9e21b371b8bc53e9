package api

import "github.com/gofiber/fiber/v2"

func (h *Handler) handleDeleteTransactions(c *fiber.Ctx) error {
	n, err := h.db.DeleteAllTransactions()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to delete transactions")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete transactions")
	}
	return c.JSON(fiber.Map{"deletedTransactions": n})
}

// handleDeleteRules wipes the rule definitions and leaves the engine with an
// empty active set; parser defaults apply until new rules arrive.
func (h *Handler) handleDeleteRules(c *fiber.Ctx) error {
	n, err := h.db.DeleteAllRules()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to delete rules")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete rules")
	}
	if _, err := h.reloadEngine(); err != nil {
		h.log.Error().Err(err).Msg("engine reload failed after rule wipe")
	}
	return c.JSON(fiber.Map{"deletedRules": n})
}

func (h *Handler) handleDeleteTags(c *fiber.Ctx) error {
	n, err := h.db.DeleteAllTags()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to delete tags")
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete tags")
	}
	return c.JSON(fiber.Map{"deletedTags": n})
}

func (h *Handler) handleDeleteAll(c *fiber.Ctx) error {
	transactions, err := h.db.DeleteAllTransactions()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete transactions")
	}
	rules, err := h.db.DeleteAllRules()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete rules")
	}
	tags, err := h.db.DeleteAllTags()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete tags")
	}
	if _, err := h.reloadEngine(); err != nil {
		h.log.Error().Err(err).Msg("engine reload failed after wipe")
	}
	return c.JSON(fiber.Map{
		"deletedTransactions": transactions,
		"deletedRules":        rules,
		"deletedTags":         tags,
	})
}
