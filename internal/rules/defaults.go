package rules

import (
	"strings"

	"github.com/insightdelivered/expense-tracker/internal/models"
)

var defaultKeywords = []struct {
	category string
	priority int
	keywords []string
}{
	{"Income", 10, []string{
		"salary", "credited", "neft cr", "imps cr", "ach cr", "rtgs cr",
		"credit", "refund", "cashback", "interest", "dividend",
		"bonus", "income", "payment received",
	}},
	{"Food", 0, []string{
		"swiggy", "zomato", "dominos", "kfc", "pizza hut", "mcdonald",
		"burger king", "subway", "starbucks", "cafe", "restaurant",
		"food", "dining", "eatery", "pizza", "biryani",
	}},
	{"Groceries", 0, []string{
		"dmart", "bigbasket", "reliance fresh", "supermarket",
		"grocery", "vegetables", "fruits", "market", "blinkit",
		"instamart", "zepto", "dunzo",
	}},
	{"Shopping", 0, []string{
		"amazon", "flipkart", "myntra", "ajio", "meesho", "snapdeal",
		"nykaa", "shopping", "mall", "retail", "store", "fashion",
		"clothing", "apparel", "accessories",
	}},
	{"Travel", 0, []string{
		"uber", "ola", "rapido", "irctc", "makemytrip", "goibibo",
		"redbus", "yatra", "cleartrip", "travel", "flight", "hotel",
		"train", "bus", "cab", "taxi", "airport",
	}},
	{"Bills", 0, []string{
		"electricity", "water bill", "gas bill", "postpaid", "prepaid",
		"recharge", "mobile", "broadband", "internet", "wifi", "utility",
		"bill payment", "bses", "adani", "airtel", "jio", "vodafone",
	}},
	{"Fuel", 0, []string{
		"petrol", "diesel", "fuel", "hpcl", "bpcl", "iocl", "shell",
		"essar", "gas station", "cng", "petroleum",
	}},
	{"Medical", 0, []string{
		"hospital", "pharmacy", "apollo", "medplus", "clinic", "doctor",
		"medical", "medicine", "health", "diagnostic", "lab", "pharma",
		"wellness", "healthcare",
	}},
	{"Rent", 0, []string{
		"rent", "lease", "housing", "apartment", "flat rent", "house rent",
	}},
	{"Entertainment", 0, []string{
		"netflix", "hotstar", "prime video", "sony liv", "zee5", "disney",
		"youtube", "spotify", "amazon prime", "movie", "cinema", "pvr",
		"inox", "entertainment", "gaming", "game", "subscription",
	}},
	{"Insurance", 0, []string{
		"insurance", "lic", "policy", "premium", "health insurance",
		"life insurance", "car insurance",
	}},
	{"Investment", 0, []string{
		"mutual fund", "sip", "stock", "equity", "investment", "zerodha",
		"groww", "upstox", "trading", "shares",
	}},
	{"Education", 0, []string{
		"education", "school", "college", "university", "course", "tuition",
		"udemy", "coursera", "books", "study", "training",
	}},
}

// DefaultRules returns the starter rule set seeded into an empty database:
// one alternation pattern per category, Income ranked above the spend
// categories so "NEFT CR SALARY" lands as Income, not Bills.
func DefaultRules() []models.RuleDefinition {
	defs := make([]models.RuleDefinition, 0, len(defaultKeywords))
	for _, dk := range defaultKeywords {
		defs = append(defs, models.RuleDefinition{
			RuleName:        "Default " + dk.category,
			CategoryName:    dk.category,
			Pattern:         strings.Join(dk.keywords, "|"),
			Priority:        dk.priority,
			Enabled:         true,
			IncludeInTotals: true,
		})
	}
	return defs
}
