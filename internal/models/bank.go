package models

// BankType identifies the institution a statement came from.
type BankType string

const (
	BankHDFC    BankType = "HDFC"
	BankICICI   BankType = "ICICI"
	BankSBI     BankType = "SBI"
	BankAxis    BankType = "AXIS"
	BankKotak   BankType = "KOTAK"
	BankUnknown BankType = "UNKNOWN"
)

// bankInfo carries the display name and the case-insensitive header
// identifiers used for detection.
type bankInfo struct {
	display     string
	identifiers []string
}

var bankTable = map[BankType]bankInfo{
	BankHDFC:    {"HDFC Bank", []string{"HDFC", "HDFC BANK"}},
	BankICICI:   {"ICICI Bank", []string{"ICICI", "ICICI BANK"}},
	BankSBI:     {"State Bank of India", []string{"SBI", "STATE BANK", "STATE BANK OF INDIA"}},
	BankAxis:    {"Axis Bank", []string{"AXIS", "AXIS BANK"}},
	BankKotak:   {"Kotak Mahindra Bank", []string{"KOTAK", "KOTAK MAHINDRA", "KOTAK BANK"}},
	BankUnknown: {"Unknown Bank", nil},
}

// Banks lists the known banks in detection order. UNKNOWN is not a candidate.
var Banks = []BankType{BankHDFC, BankICICI, BankSBI, BankAxis, BankKotak}

// DisplayName returns the human-readable bank name.
func (b BankType) DisplayName() string {
	if info, ok := bankTable[b]; ok {
		return info.display
	}
	return bankTable[BankUnknown].display
}

// Identifiers returns the uppercase header substrings that identify the bank.
func (b BankType) Identifiers() []string {
	return bankTable[b].identifiers
}
