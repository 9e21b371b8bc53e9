package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/expense-tracker/internal/database"
	"github.com/insightdelivered/expense-tracker/internal/dedup"
	"github.com/insightdelivered/expense-tracker/internal/ingest"
	"github.com/insightdelivered/expense-tracker/internal/models"
	"github.com/insightdelivered/expense-tracker/internal/parser"
	"github.com/insightdelivered/expense-tracker/internal/rules"
	"github.com/insightdelivered/expense-tracker/internal/tags"
)

func newTestApp(t *testing.T) (*fiber.App, *database.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	engine := rules.NewEngine(log, nil)
	saver := ingest.NewCoordinator(log, db, tags.NewMerchantExtractor())
	factory := parser.NewFactory(
		parser.NewExcelParser(log, engine),
		parser.NewTextParser(log, engine),
	)

	h := NewHandler(Config{
		Log:     log,
		DB:      db,
		Factory: factory,
		Cards:   parser.NewCardParser(log, engine),
		Engine:  engine,
		Saver:   saver,
		Version: "test",
	})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h.Register(app)
	return app, db
}

func seedTransaction(t *testing.T, db *database.DB, day int, description, amount, txnType string) int64 {
	t.Helper()
	date := civil.Date{Year: 2024, Month: time.January, Day: day}
	amt := decimal.RequireFromString(amount)
	id, err := db.InsertTransaction(&models.Transaction{
		Date:            date,
		Description:     description,
		Amount:          amt,
		Type:            txnType,
		Category:        models.CategoryMiscellaneous,
		IncludeInTotals: true,
		TransactionHash: dedup.TransactionHash(description, "", date, amt, txnType),
	})
	require.NoError(t, err)
	return id
}

func jsonReq(method, path string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "test", body["version"])
}

func TestListTransactionsEmpty(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/transactions", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page TransactionPage
	decodeBody(t, resp, &page)
	require.NotNil(t, page.Transactions)
	require.Empty(t, page.Transactions)
	require.Zero(t, page.TotalItems)
	require.Zero(t, page.TotalPages)
}

func TestListTransactionsTypeValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/transactions?type=TRANSFER", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateRuleInvalidPattern(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(jsonReq(http.MethodPost, "/api/rules", RuleRequest{
		RuleName:     "Broken",
		CategoryName: "X",
		Pattern:      "([unclosed",
		Enabled:      true,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRuleLifecycle(t *testing.T) {
	app, db := newTestApp(t)
	txID := seedTransaction(t, db, 15, "SWIGGY BANGALORE", "450.00", models.TypeDebit)

	resp, err := app.Test(jsonReq(http.MethodPost, "/api/rules", RuleRequest{
		RuleName:        "Swiggy",
		CategoryName:    "Food",
		Pattern:         "swiggy",
		Priority:        5,
		Enabled:         true,
		IncludeInTotals: true,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created RuleMutationResponse
	decodeBody(t, resp, &created)
	require.NotNil(t, created.Rule)
	require.NotZero(t, created.Rule.ID)
	require.Equal(t, 1, created.Recategorized)
	require.Empty(t, created.Warnings)

	// The sweep after the mutation persisted the new category.
	stored, err := db.GetTransaction(txID)
	require.NoError(t, err)
	require.Equal(t, "Food", stored.Category)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []models.RuleDefinition
	decodeBody(t, resp, &listed)
	require.Len(t, listed, 1)
	require.Equal(t, "Swiggy", listed[0].RuleName)

	// Same name again conflicts.
	resp, err = app.Test(jsonReq(http.MethodPost, "/api/rules", RuleRequest{
		RuleName:     "Swiggy",
		CategoryName: "Other",
		Pattern:      "swiggy",
		Enabled:      true,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = app.Test(jsonReq(http.MethodPut, fmt.Sprintf("/api/rules/%d", created.Rule.ID), RuleRequest{
		RuleName:        "Swiggy",
		CategoryName:    "Food Delivery",
		Pattern:         "swiggy",
		Priority:        7,
		Enabled:         true,
		IncludeInTotals: true,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated RuleMutationResponse
	decodeBody(t, resp, &updated)
	require.Equal(t, "Food Delivery", updated.Rule.CategoryName)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/rules/%d", created.Rule.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/rules/%d", created.Rule.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateTransactionCategory(t *testing.T) {
	app, db := newTestApp(t)
	id := seedTransaction(t, db, 15, "IRCTC TICKET", "1200.00", models.TypeDebit)

	resp, err := app.Test(jsonReq(http.MethodPut, fmt.Sprintf("/transactions/%d/category", id),
		map[string]string{"category": "Travel"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Transaction
	decodeBody(t, resp, &updated)
	require.Equal(t, "Travel", updated.Category)

	resp, err = app.Test(jsonReq(http.MethodPut, "/transactions/abc/category",
		map[string]string{"category": "Travel"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonReq(http.MethodPut, fmt.Sprintf("/transactions/%d/category", id),
		map[string]string{"category": "  "}))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonReq(http.MethodPut, "/transactions/99999/category",
		map[string]string{"category": "Travel"}))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func uploadReq(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadTextStatement(t *testing.T) {
	app, db := newTestApp(t)

	statement := []byte("HDFC Bank Statement\n" +
		"Account Holder: A Kumar\n" +
		"15-01-2024 UPI TO VENDOR 450.00 12000.00\n" +
		"01-02-2024 NEFT CR SALARY JAN 50000.00 62000.00\n")

	resp, err := app.Test(uploadReq(t, "/upload", "statement.txt", statement), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var upload UploadResponse
	decodeBody(t, resp, &upload)
	require.Equal(t, "HDFC", upload.Bank)
	require.Equal(t, "HDFC Bank", upload.BankName)
	require.Equal(t, 2, upload.ParsedCount)
	require.Equal(t, 2, upload.Saved)
	require.Zero(t, upload.Duplicates)
	require.NotEmpty(t, upload.BatchID)

	n, err := db.CountTransactions()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// The same statement again lands entirely as duplicates.
	resp, err = app.Test(uploadReq(t, "/upload", "statement.txt", statement), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &upload)
	require.Zero(t, upload.Saved)
	require.Equal(t, 2, upload.Duplicates)
}

func TestUploadUnsupportedFileType(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(uploadReq(t, "/upload", "statement.docx", []byte("x")), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadMissingFile(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCardUploadRejectsNonXLS(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(uploadReq(t, "/api/credit-card/upload", "card.pdf", []byte("%PDF junk")), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportCSV(t *testing.T) {
	app, db := newTestApp(t)
	seedTransaction(t, db, 15, "SWIGGY BANGALORE", "450.00", models.TypeDebit)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/transactions/export", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "transactions.csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Contains(t, string(body), "SWIGGY BANGALORE")
	require.Contains(t, string(body), "450.00")
}

func TestImportRules(t *testing.T) {
	app, db := newTestApp(t)
	seedTransaction(t, db, 15, "SWIGGY BANGALORE", "450.00", models.TypeDebit)

	payload := []RuleRequest{
		{RuleName: "Swiggy", CategoryName: "Food", Pattern: "swiggy", Enabled: true, IncludeInTotals: true},
		{RuleName: "Broken", CategoryName: "X", Pattern: "([unclosed", Enabled: true},
	}
	resp, err := app.Test(jsonReq(http.MethodPost, "/api/rules/import", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result ImportResult
	decodeBody(t, resp, &result)
	require.Equal(t, 1, result.Imported)
	require.Zero(t, result.Skipped)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 1, result.Recategorized)

	// Re-importing skips the name collision by default.
	resp, err = app.Test(jsonReq(http.MethodPost, "/api/rules/import",
		[]RuleRequest{{RuleName: "Swiggy", CategoryName: "Food", Pattern: "swiggy", Enabled: true, IncludeInTotals: true}}))
	require.NoError(t, err)
	decodeBody(t, resp, &result)
	require.Zero(t, result.Imported)
	require.Equal(t, 1, result.Skipped)
}

func TestReloadRulesEndpoint(t *testing.T) {
	app, db := newTestApp(t)
	seedTransaction(t, db, 15, "SWIGGY BANGALORE", "450.00", models.TypeDebit)

	// Rule written behind the engine's back; reload picks it up.
	_, err := db.CreateRule(&models.RuleDefinition{
		RuleName: "Swiggy", CategoryName: "Food", Pattern: "swiggy",
		Enabled: true, IncludeInTotals: true,
	})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/rules/reload", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result RuleMutationResponse
	decodeBody(t, resp, &result)
	require.Equal(t, 1, result.Recategorized)
}

func TestSettingsDeletes(t *testing.T) {
	app, db := newTestApp(t)
	seedTransaction(t, db, 15, "SWIGGY BANGALORE", "450.00", models.TypeDebit)
	_, err := db.CreateRule(&models.RuleDefinition{
		RuleName: "Swiggy", CategoryName: "Food", Pattern: "swiggy", Enabled: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.UpsertTag("swiggy"))

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/settings/all", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	n, err := db.CountTransactions()
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = db.CountRules()
	require.NoError(t, err)
	require.Zero(t, n)
	tags, err := db.TopTags(5)
	require.NoError(t, err)
	require.Empty(t, tags)
}

func TestTotalsEndpoint(t *testing.T) {
	app, db := newTestApp(t)
	seedTransaction(t, db, 15, "SWIGGY BANGALORE", "450.00", models.TypeDebit)
	seedTransaction(t, db, 31, "NEFT CR SALARY JAN", "50000.00", models.TypeCredit)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/totals", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var totals models.Totals
	decodeBody(t, resp, &totals)
	require.True(t, totals.TotalIncome.Equal(decimal.RequireFromString("50000")))
	require.True(t, totals.TotalExpense.Equal(decimal.RequireFromString("450")))
	require.True(t, totals.Balance.Equal(decimal.RequireFromString("49550")))
}
