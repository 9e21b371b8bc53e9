package database

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/expense-tracker/internal/dedup"
	"github.com/insightdelivered/expense-tracker/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })
	return db
}

func makeTx(date civil.Date, description, amount, txnType string) *models.Transaction {
	amt := decimal.RequireFromString(amount)
	return &models.Transaction{
		Date:            date,
		Description:     description,
		Amount:          amt,
		Type:            txnType,
		Category:        models.CategoryMiscellaneous,
		IncludeInTotals: true,
		TransactionHash: dedup.TransactionHash(description, "", date, amt, txnType),
	}
}

func jan(day int) civil.Date {
	return civil.Date{Year: 2024, Month: time.January, Day: day}
}

func TestInsertAndGetTransaction(t *testing.T) {
	db := openTestDB(t)

	tx := makeTx(jan(15), "SWIGGY BANGALORE", "450.00", models.TypeDebit)
	tx.RefNo = "REF123"
	tx.Balance = decimal.NullDecimal{Decimal: decimal.RequireFromString("12000"), Valid: true}

	id, err := db.InsertTransaction(tx)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := db.GetTransaction(id)
	require.NoError(t, err)
	require.Equal(t, jan(15), got.Date)
	require.Equal(t, "SWIGGY BANGALORE", got.Description)
	require.Equal(t, "REF123", got.RefNo)
	require.True(t, got.Amount.Equal(decimal.RequireFromString("450")))
	require.Equal(t, models.TypeDebit, got.Type)
	require.True(t, got.Balance.Valid)
	require.True(t, got.Balance.Decimal.Equal(decimal.RequireFromString("12000")))
	require.True(t, got.IncludeInTotals)
	require.Equal(t, models.CategoryMiscellaneous, got.Category)
}

func TestGetTransactionNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetTransaction(99)
	require.Error(t, err)
}

func TestInsertTransactionDuplicateHash(t *testing.T) {
	db := openTestDB(t)

	tx := makeTx(jan(15), "SWIGGY BANGALORE", "450.00", models.TypeDebit)
	_, err := db.InsertTransaction(tx)
	require.NoError(t, err)

	again := makeTx(jan(15), "SWIGGY BANGALORE", "450.00", models.TypeDebit)
	_, err = db.InsertTransaction(again)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestFingerprintIndexIgnoresEmpty(t *testing.T) {
	db := openTestDB(t)

	// Bank rows leave the fingerprint empty; any number of them may coexist.
	_, err := db.InsertTransaction(makeTx(jan(1), "FIRST", "100.00", models.TypeDebit))
	require.NoError(t, err)
	_, err = db.InsertTransaction(makeTx(jan(2), "SECOND", "200.00", models.TypeDebit))
	require.NoError(t, err)

	// Card rows share the fingerprint across both hash columns; a repeat trips
	// the partial index even when the primary hash differs.
	card := makeTx(jan(3), "AMAZON IN", "1299.00", models.TypeDebit)
	card.IsCreditCardTransaction = true
	card.FingerprintHash = "fp-1"
	card.TransactionHash = "fp-1"
	_, err = db.InsertTransaction(card)
	require.NoError(t, err)

	repeat := makeTx(jan(3), "AMAZON IN REPEAT", "1299.00", models.TypeDebit)
	repeat.FingerprintHash = "fp-1"
	_, err = db.InsertTransaction(repeat)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestListTransactionsFilters(t *testing.T) {
	db := openTestDB(t)

	swiggy := makeTx(jan(15), "SWIGGY BANGALORE", "450.00", models.TypeDebit)
	swiggy.Category = "Food"
	salary := makeTx(jan(31), "NEFT CR SALARY JAN", "50000.00", models.TypeCredit)
	salary.Category = "Income"
	card := makeTx(jan(20), "AMAZON IN", "1299.00", models.TypeDebit)
	card.Category = "Shopping"
	card.IsCreditCardTransaction = true
	card.FingerprintHash = "fp-amz"

	for _, tx := range []*models.Transaction{swiggy, salary, card} {
		_, err := db.InsertTransaction(tx)
		require.NoError(t, err)
	}

	list, total, err := db.ListTransactions(TransactionFilter{Search: "swiggy"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)
	require.Equal(t, "SWIGGY BANGALORE", list[0].Description)

	_, total, err = db.ListTransactions(TransactionFilter{Category: "Income"})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	_, total, err = db.ListTransactions(TransactionFilter{Type: models.TypeDebit})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	isCard := true
	list, total, err = db.ListTransactions(TransactionFilter{CreditCard: &isCard})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "AMAZON IN", list[0].Description)

	_, total, err = db.ListTransactions(TransactionFilter{FromDate: "2024-01-16", ToDate: "2024-01-31"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestListTransactionsSortAmountNumeric(t *testing.T) {
	db := openTestDB(t)

	// Lexicographic ordering would put "9.00" after "100.00".
	_, err := db.InsertTransaction(makeTx(jan(1), "SMALL", "9.00", models.TypeDebit))
	require.NoError(t, err)
	_, err = db.InsertTransaction(makeTx(jan(2), "BIG", "100.00", models.TypeDebit))
	require.NoError(t, err)

	list, _, err := db.ListTransactions(TransactionFilter{SortBy: "amount", SortDir: "asc"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "SMALL", list[0].Description)
	require.Equal(t, "BIG", list[1].Description)
}

func TestListTransactionsPagination(t *testing.T) {
	db := openTestDB(t)

	for day := 1; day <= 5; day++ {
		_, err := db.InsertTransaction(makeTx(jan(day), "TX", "10.00", models.TypeDebit))
		require.NoError(t, err)
	}

	page, total, err := db.ListTransactions(TransactionFilter{SortBy: "date", SortDir: "asc", Page: 1, Size: 2})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, page, 2)
	require.Equal(t, jan(3), page[0].Date)
	require.Equal(t, jan(4), page[1].Date)
}

func TestUpdateTransactionCategory(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertTransaction(makeTx(jan(15), "SWIGGY", "450.00", models.TypeDebit))
	require.NoError(t, err)

	require.NoError(t, db.UpdateTransactionCategory(id, "Food"))
	got, err := db.GetTransaction(id)
	require.NoError(t, err)
	require.Equal(t, "Food", got.Category)

	require.Error(t, db.UpdateTransactionCategory(9999, "Food"))
}

func TestUpdateCategorization(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertTransaction(makeTx(jan(15), "TRANSFER TO OWN ACCOUNT", "5000.00", models.TypeDebit))
	require.NoError(t, err)

	require.NoError(t, db.UpdateCategorization(id, models.CategoryTransfers, false))
	got, err := db.GetTransaction(id)
	require.NoError(t, err)
	require.Equal(t, models.CategoryTransfers, got.Category)
	require.False(t, got.IncludeInTotals)
}

func TestDistinctCategoriesAndWipe(t *testing.T) {
	db := openTestDB(t)

	a := makeTx(jan(1), "A", "10.00", models.TypeDebit)
	a.Category = "Food"
	b := makeTx(jan(2), "B", "20.00", models.TypeDebit)
	b.Category = "Food"
	c := makeTx(jan(3), "C", "30.00", models.TypeDebit)
	c.Category = "Bills"
	for _, tx := range []*models.Transaction{a, b, c} {
		_, err := db.InsertTransaction(tx)
		require.NoError(t, err)
	}

	categories, err := db.DistinctCategories()
	require.NoError(t, err)
	require.Equal(t, []string{"Bills", "Food"}, categories)

	n, err := db.CountTransactions()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	deleted, err := db.DeleteAllTransactions()
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)
	n, err = db.CountTransactions()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRuleCRUD(t *testing.T) {
	db := openTestDB(t)

	rule := &models.RuleDefinition{
		RuleName:        "Swiggy",
		CategoryName:    "Food",
		Pattern:         "swiggy",
		Priority:        5,
		Enabled:         true,
		IncludeInTotals: true,
	}
	id, err := db.CreateRule(rule)
	require.NoError(t, err)

	got, err := db.GetRule(id)
	require.NoError(t, err)
	require.Equal(t, "Swiggy", got.RuleName)
	require.Equal(t, 5, got.Priority)

	byName, err := db.GetRuleByName("Swiggy")
	require.NoError(t, err)
	require.NotNil(t, byName)
	require.Equal(t, id, byName.ID)

	missing, err := db.GetRuleByName("Nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	_, err = db.CreateRule(&models.RuleDefinition{RuleName: "Swiggy", CategoryName: "X", Pattern: "x", Enabled: true})
	require.ErrorIs(t, err, ErrDuplicate)

	got.CategoryName = "Food Delivery"
	got.Priority = 9
	require.NoError(t, db.UpdateRule(got))
	updated, err := db.GetRule(id)
	require.NoError(t, err)
	require.Equal(t, "Food Delivery", updated.CategoryName)
	require.Equal(t, 9, updated.Priority)

	require.NoError(t, db.DeleteRule(id))
	require.Error(t, db.DeleteRule(id))

	n, err := db.CountRules()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestListRulesInsertionOrder(t *testing.T) {
	db := openTestDB(t)

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := db.CreateRule(&models.RuleDefinition{
			RuleName: name, CategoryName: "X", Pattern: "x", Enabled: true, IncludeInTotals: true,
		})
		require.NoError(t, err)
	}

	rules, err := db.ListRules()
	require.NoError(t, err)
	require.Len(t, rules, 3)
	require.Equal(t, "Zeta", rules[0].RuleName)
	require.Equal(t, "Alpha", rules[1].RuleName)
	require.Equal(t, "Mid", rules[2].RuleName)
}

func TestTagUpsertIncrements(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.UpsertTag("swiggy"))
	require.NoError(t, db.UpsertTag("swiggy"))
	require.NoError(t, db.UpsertTag("amazon"))

	tags, err := db.TopTags(10)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "swiggy", tags[0].Name)
	require.Equal(t, 2, tags[0].UsageCount)
	require.Equal(t, "amazon", tags[1].Name)
	require.Equal(t, 1, tags[1].UsageCount)

	deleted, err := db.DeleteAllTags()
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
	tags, err = db.TopTags(10)
	require.NoError(t, err)
	require.Empty(t, tags)
}

func seedReportData(t *testing.T, db *DB) {
	t.Helper()
	salary := makeTx(jan(31), "SALARY", "50000.00", models.TypeCredit)
	salary.Category = "Income"
	food := makeTx(jan(15), "SWIGGY", "450.00", models.TypeDebit)
	food.Category = "Food"
	shopping := makeTx(civil.Date{Year: 2024, Month: time.February, Day: 10}, "AMAZON", "1299.00", models.TypeDebit)
	shopping.Category = "Shopping"
	transfer := makeTx(jan(20), "CREDIT CARD PAYMENT", "5000.00", models.TypeDebit)
	transfer.Category = models.CategoryTransfers
	transfer.IncludeInTotals = false

	for _, tx := range []*models.Transaction{salary, food, shopping, transfer} {
		_, err := db.InsertTransaction(tx)
		require.NoError(t, err)
	}
}

func TestTotalsExcludesFlaggedRows(t *testing.T) {
	db := openTestDB(t)
	seedReportData(t, db)

	totals, err := db.Totals(TotalsFilter{})
	require.NoError(t, err)
	require.True(t, totals.TotalIncome.Equal(decimal.RequireFromString("50000")))
	require.True(t, totals.TotalExpense.Equal(decimal.RequireFromString("1749")))
	require.True(t, totals.Balance.Equal(decimal.RequireFromString("48251")))
}

func TestTotalsFilters(t *testing.T) {
	db := openTestDB(t)
	seedReportData(t, db)

	january, err := db.Totals(TotalsFilter{FromDate: "2024-01-01", ToDate: "2024-01-31"})
	require.NoError(t, err)
	require.True(t, january.TotalExpense.Equal(decimal.RequireFromString("450")))

	food, err := db.Totals(TotalsFilter{Category: "Food"})
	require.NoError(t, err)
	require.True(t, food.TotalExpense.Equal(decimal.RequireFromString("450")))
	require.True(t, food.TotalIncome.IsZero())

	search, err := db.Totals(TotalsFilter{Search: "amazon"})
	require.NoError(t, err)
	require.True(t, search.TotalExpense.Equal(decimal.RequireFromString("1299")))
}

func TestSummaryDateRange(t *testing.T) {
	db := openTestDB(t)
	seedReportData(t, db)

	all, err := db.Summary("", "")
	require.NoError(t, err)
	require.Equal(t, 4, all.TransactionCount)

	january, err := db.Summary("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Equal(t, 3, january.TransactionCount)
	require.True(t, january.TotalExpense.Equal(decimal.RequireFromString("450")))
	require.True(t, january.TotalIncome.Equal(decimal.RequireFromString("50000")))
	require.Len(t, january.Categories, 1)
	require.Equal(t, "Food", january.Categories[0].Category)
}

func TestSummaryBalances(t *testing.T) {
	db := openTestDB(t)

	first := makeTx(jan(1), "OPENING SPEND", "500.00", models.TypeDebit)
	first.Balance = decimal.NullDecimal{Decimal: decimal.RequireFromString("11500"), Valid: true}
	middle := makeTx(jan(10), "NO BALANCE ROW", "200.00", models.TypeDebit)
	last := makeTx(jan(31), "SALARY", "50000.00", models.TypeCredit)
	last.Balance = decimal.NullDecimal{Decimal: decimal.RequireFromString("61300"), Valid: true}
	for _, tx := range []*models.Transaction{first, middle, last} {
		_, err := db.InsertTransaction(tx)
		require.NoError(t, err)
	}

	summary, err := db.Summary("", "")
	require.NoError(t, err)
	require.True(t, summary.OpeningBalance.Valid)
	require.True(t, summary.OpeningBalance.Decimal.Equal(decimal.RequireFromString("11500")))
	require.True(t, summary.ClosingBalance.Valid)
	require.True(t, summary.ClosingBalance.Decimal.Equal(decimal.RequireFromString("61300")))
}

func TestMonthlyTrendsEmitsAllMonths(t *testing.T) {
	db := openTestDB(t)
	seedReportData(t, db)

	trends, err := db.MonthlyTrends(2024)
	require.NoError(t, err)
	require.Len(t, trends, 12)
	require.Equal(t, 1, trends[0].Month)
	require.True(t, trends[0].Income.Equal(decimal.RequireFromString("50000")))
	require.True(t, trends[0].Expense.Equal(decimal.RequireFromString("450")))
	require.True(t, trends[1].Expense.Equal(decimal.RequireFromString("1299")))
	require.True(t, trends[11].Income.IsZero())
}

func TestDailyTrendsEmitsEveryDay(t *testing.T) {
	db := openTestDB(t)
	seedReportData(t, db)

	days, err := db.DailyTrends(2024, 2)
	require.NoError(t, err)
	require.Len(t, days, 29)
	require.Equal(t, "2024-02-01", days[0].Date)
	require.True(t, days[9].Expense.Equal(decimal.RequireFromString("1299")))
	require.True(t, days[0].Expense.IsZero())
}

func TestCategoryExpensesSortedDescending(t *testing.T) {
	db := openTestDB(t)
	seedReportData(t, db)

	expenses, err := db.CategoryExpenses(0, 0)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	require.Equal(t, "Shopping", expenses[0].Category)
	require.True(t, expenses[0].Total.Equal(decimal.RequireFromString("1299")))
	require.Equal(t, "Food", expenses[1].Category)
}

func TestCategoryExpensesMonthFilter(t *testing.T) {
	db := openTestDB(t)
	seedReportData(t, db)

	expenses, err := db.CategoryExpenses(2024, 1)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.Equal(t, "Food", expenses[0].Category)

	expenses, err = db.CategoryExpenses(2023, 0)
	require.NoError(t, err)
	require.Empty(t, expenses)
}
