package parser

// Section tags which financial statement a page region belongs to. It feeds
// record descriptions and diagnostics; metric classification itself does not
// depend on it.
type Section string

const (
	SectionBalanceSheet Section = "balance_sheet"
	SectionProfitLoss   Section = "profit_loss"
	SectionCashFlow     Section = "cash_flow"
)

// sectionMarkers lists header phrases in priority order. Longer phrases come
// first so "statement of profit and loss" is not shadowed by a generic match.
var sectionMarkers = []struct {
	phrase  string
	section Section
}{
	{"statement of profit and loss", SectionProfitLoss},
	{"statement of cash flows", SectionCashFlow},
	{"cash flow statement", SectionCashFlow},
	{"income statement", SectionProfitLoss},
	{"profit and loss", SectionProfitLoss},
	{"balance sheet", SectionBalanceSheet},
}

// DetectSection reports the statement section a header line announces, if
// any. Data rows never match: marker phrases do not occur in line items.
func DetectSection(line string) (Section, bool) {
	words := splitWords(line)
	if len(words) == 0 {
		return "", false
	}
	for _, m := range sectionMarkers {
		if containsWordSeq(words, splitWords(m.phrase)) {
			return m.section, true
		}
	}
	return "", false
}
