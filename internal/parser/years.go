package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FiscalYear is one accounting period. Start is the first calendar year of
// the period; Ranged keeps the surface form, so "2023-24" and a bare "2024"
// survive round trips as-is.
type FiscalYear struct {
	Start  int
	Ranged bool
}

// Label renders the canonical fiscal-year string, "2023-24" or "2024".
func (fy FiscalYear) Label() string {
	if fy.Ranged {
		return fmt.Sprintf("%d-%02d", fy.Start, (fy.Start+1)%100)
	}
	return strconv.Itoa(fy.Start)
}

// Previous returns the immediately preceding period in the same form.
func (fy FiscalYear) Previous() FiscalYear {
	return FiscalYear{Start: fy.Start - 1, Ranged: fy.Ranged}
}

var (
	// yearCoreRe finds year expressions inside running text: "2023-24",
	// "FY 2023-24", "2023/24", "2023-2024" or a bare "2024". Digit
	// neighbors are rejected separately since filenames put word
	// characters right next to the year ("report_2023-24.pdf").
	yearCoreRe = regexp.MustCompile(`(20\d{2})(?:\s*[-/]\s*(20\d{2}|\d{2}))?`)

	// yearOnlyRe matches tokens that are nothing but a year expression,
	// with an optional FY prefix.
	yearOnlyRe = regexp.MustCompile(`^(?i:fy)?\s*(20\d{2})(?:\s*[-/]\s*(20\d{2}|\d{2}))?$`)
)

// FindFiscalYears extracts every fiscal-year expression from text in order
// of appearance. A dash pair whose second half is not the following year
// ("2023-45") is read as a bare year.
func FindFiscalYears(text string) []FiscalYear {
	var years []FiscalYear
	for _, idx := range yearCoreRe.FindAllStringSubmatchIndex(text, -1) {
		if idx[0] > 0 && isDigit(text[idx[0]-1]) {
			continue
		}
		if idx[1] < len(text) && isDigit(text[idx[1]]) {
			continue
		}
		endPart := ""
		if idx[4] >= 0 {
			endPart = text[idx[4]:idx[5]]
		}
		years = append(years, yearFromMatch(text[idx[2]:idx[3]], endPart))
	}
	return years
}

// IsYearToken reports whether the whole token is a single year expression,
// e.g. a column header like "FY 2023-24". Value tokens such as "1,234" or
// "2024.5" do not qualify. Trailing punctuation is tolerated.
func IsYearToken(token string) bool {
	return yearOnlyRe.MatchString(trimTokenPunct(token))
}

// ParseYearToken parses a token that IsYearToken accepted.
func ParseYearToken(token string) (FiscalYear, bool) {
	m := yearOnlyRe.FindStringSubmatch(trimTokenPunct(token))
	if m == nil {
		return FiscalYear{}, false
	}
	return yearFromMatch(m[1], m[2]), true
}

func trimTokenPunct(token string) string {
	return strings.TrimRight(token, ".,:;")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func yearFromMatch(startPart, endPart string) FiscalYear {
	start, _ := strconv.Atoi(startPart)
	if endPart == "" {
		return FiscalYear{Start: start}
	}
	end, _ := strconv.Atoi(endPart)
	switch len(endPart) {
	case 2:
		if (start+1)%100 == end {
			return FiscalYear{Start: start, Ranged: true}
		}
	case 4:
		if start+1 == end {
			return FiscalYear{Start: start, Ranged: true}
		}
	}
	return FiscalYear{Start: start}
}

// AssignYears maps n value columns onto fiscal years. Known years fill the
// leftmost columns in the order they appeared; missing columns extend by
// decrementing from the last known year, which assumes the table is ordered
// most-recent-first. The second return reports whether that recency
// assumption was needed, so callers can surface it as a diagnostic.
func AssignYears(known []FiscalYear, n int) ([]FiscalYear, bool) {
	if len(known) == 0 || n <= 0 {
		return nil, false
	}
	if len(known) >= n {
		return known[:n], false
	}
	years := make([]FiscalYear, 0, n)
	years = append(years, known...)
	for len(years) < n {
		years = append(years, years[len(years)-1].Previous())
	}
	return years, true
}
