package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/insightdelivered/expense-tracker/internal/api"
	"github.com/insightdelivered/expense-tracker/internal/database"
	"github.com/insightdelivered/expense-tracker/internal/ingest"
	"github.com/insightdelivered/expense-tracker/internal/logger"
	"github.com/insightdelivered/expense-tracker/internal/parser"
	"github.com/insightdelivered/expense-tracker/internal/rules"
	"github.com/insightdelivered/expense-tracker/internal/tags"
)

const version = "1.0.0"

func main() {
	addrFlag := flag.String("addr", ":8080", "HTTP listen address")
	dbFlag := flag.String("db", "data/expense-tracker.db", "Path to the sqlite database file")
	staticFlag := flag.String("static", "", "Directory with the web UI bundle (optional)")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Expense Tracker
by Insight Delivered (QEA AutoLens)

Ingests bank and credit-card statement exports, deduplicates the
transactions, and categorizes spending with editable rules.

Usage:
  expense-tracker [flags]

Flags:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("expense-tracker v%s\n", version)
		os.Exit(0)
	}

	log := logger.New()

	db, err := database.Open(*dbFlag)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbFlag).Msg("failed to open database")
	}
	defer db.Close()
	if err := db.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database schema")
	}

	// Seed the starter rules once, on first boot against an empty table.
	ruleCount, err := db.CountRules()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to count rules")
	}
	if ruleCount == 0 {
		for _, def := range rules.DefaultRules() {
			if _, err := db.CreateRule(&def); err != nil {
				log.Fatal().Err(err).Str("rule", def.RuleName).Msg("failed to seed default rule")
			}
		}
		log.Info().Msg("seeded default categorization rules")
	}

	defs, err := db.ListRules()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load rules")
	}
	engine := rules.NewEngine(log, defs)

	saver := ingest.NewCoordinator(log, db, tags.NewMerchantExtractor())
	factory := parser.NewFactory(
		parser.NewExcelParser(log, engine),
		parser.NewTextParser(log, engine),
	)

	app := fiber.New(fiber.Config{
		BodyLimit:             12 << 20,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	handler := api.NewHandler(api.Config{
		Log:       log,
		DB:        db,
		Factory:   factory,
		Cards:     parser.NewCardParser(log, engine),
		Engine:    engine,
		Saver:     saver,
		StaticDir: *staticFlag,
		Version:   version,
	})
	handler.Register(app)

	log.Info().Str("addr", *addrFlag).Str("version", version).Msg("starting expense tracker")
	if err := app.Listen(*addrFlag); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
