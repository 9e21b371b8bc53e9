// Package api exposes the REST surface: statement uploads, transaction
// queries, reports, rule management, and settings.
package api

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/expense-tracker/internal/database"
	"github.com/insightdelivered/expense-tracker/internal/ingest"
	"github.com/insightdelivered/expense-tracker/internal/parser"
	"github.com/insightdelivered/expense-tracker/internal/rules"
)

// Handler wires the HTTP routes to the parsing, rules and persistence
// layers.
type Handler struct {
	log       zerolog.Logger
	db        *database.DB
	factory   *parser.Factory
	cards     parser.StatementParser
	engine    *rules.Engine
	saver     *ingest.Coordinator
	staticDir string
	version   string
}

type Config struct {
	Log       zerolog.Logger
	DB        *database.DB
	Factory   *parser.Factory
	Cards     parser.StatementParser
	Engine    *rules.Engine
	Saver     *ingest.Coordinator
	StaticDir string
	Version   string
}

func NewHandler(cfg Config) *Handler {
	return &Handler{
		log:       cfg.Log,
		db:        cfg.DB,
		factory:   cfg.Factory,
		cards:     cfg.Cards,
		engine:    cfg.Engine,
		saver:     cfg.Saver,
		staticDir: cfg.StaticDir,
		version:   cfg.Version,
	}
}

// Register sets up all routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Post("/upload", h.handleUpload)
	app.Post("/api/credit-card/upload", h.handleCardUpload)

	app.Get("/transactions", h.handleListTransactions)
	app.Get("/transactions/summary", h.handleSummary)
	app.Get("/transactions/tags", h.handleTags)
	app.Get("/transactions/export", h.handleExportCSV)
	app.Put("/transactions/:id/category", h.handleUpdateCategory)

	app.Get("/api/totals", h.handleTotals)
	app.Get("/api/trends/monthly", h.handleMonthlyTrends)
	app.Get("/api/trends/daily", h.handleDailyTrends)
	app.Get("/api/category-expenses", h.handleCategoryExpenses)

	app.Get("/api/rules", h.handleListRules)
	app.Post("/api/rules", h.handleCreateRule)
	app.Put("/api/rules/:id", h.handleUpdateRule)
	app.Delete("/api/rules/:id", h.handleDeleteRule)
	app.Post("/api/rules/reload", h.handleReloadRules)
	app.Get("/api/rules/export", h.handleExportRules)
	app.Post("/api/rules/import", h.handleImportRules)

	app.Delete("/api/settings/all", h.handleDeleteAll)
	app.Delete("/api/settings/transactions", h.handleDeleteTransactions)
	app.Delete("/api/settings/rules", h.handleDeleteRules)
	app.Delete("/api/settings/tags", h.handleDeleteTags)

	app.Get("/api/health", h.handleHealth)

	if h.staticDir != "" {
		h.registerStatic(app)
	}
}

// registerStatic serves the SPA bundle, falling back to index.html for
// client-side routes.
func (h *Handler) registerStatic(app *fiber.App) {
	app.Static("/", h.staticDir)
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Next()
		}
		index := filepath.Join(h.staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			return c.Next()
		}
		return c.SendFile(index)
	})
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": h.version,
	})
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// reloadEngine rebuilds the active rule set from storage and returns the
// pattern compile errors, if any, as strings.
func (h *Handler) reloadEngine() ([]string, error) {
	defs, err := h.db.ListRules()
	if err != nil {
		return nil, err
	}
	var messages []string
	for _, ce := range h.engine.Reload(defs) {
		messages = append(messages, ce.Error())
	}
	return messages, nil
}

// recategorizeStored reapplies the active rule set to every stored
// transaction and persists the rows a rule changed. Returns the number of
// transactions a rule matched.
func (h *Handler) recategorizeStored() (int, error) {
	transactions, err := h.db.AllTransactions()
	if err != nil {
		return 0, err
	}

	matched := 0
	for i := range transactions {
		t := &transactions[i]
		prevCategory, prevInclude := t.Category, t.IncludeInTotals
		if !h.engine.Categorize(t) {
			continue
		}
		matched++
		if t.Category == prevCategory && t.IncludeInTotals == prevInclude {
			continue
		}
		if err := h.db.UpdateCategorization(t.ID, t.Category, t.IncludeInTotals); err != nil {
			h.log.Error().Err(err).Int64("id", t.ID).Msg("failed to persist recategorization")
		}
	}
	return matched, nil
}

// refreshRules is the shared tail of every rule mutation: rebuild the
// engine, then sweep stored transactions under the new set.
func (h *Handler) refreshRules() ([]string, int, error) {
	messages, err := h.reloadEngine()
	if err != nil {
		return nil, 0, err
	}
	matched, err := h.recategorizeStored()
	if err != nil {
		return nil, 0, err
	}
	return messages, matched, nil
}
