package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numberRe matches the numeric core of a value token: optional sign, digits
// with arbitrary comma grouping (Indian 1,23,456 and western 1,234,567 both
// pass) and an optional decimal part.
var numberRe = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)

// Normalizer converts raw value tokens into float64 amounts in the canonical
// unit (Crore). Parenthesized amounts are negative, currency markers and
// comma grouping are ignored, and a recognized unit word scales the amount.
type Normalizer struct {
	factors map[string]decimal.Decimal
}

func NewNormalizer(vocab *Vocabulary) (*Normalizer, error) {
	n := &Normalizer{factors: make(map[string]decimal.Decimal)}
	for _, u := range vocab.Units {
		f, err := decimal.NewFromString(u.ToCrore)
		if err != nil {
			return nil, fmt.Errorf("unit %q: bad factor %q: %w", u.Unit, u.ToCrore, err)
		}
		for _, alias := range u.Aliases {
			n.factors[strings.ToLower(alias)] = f
		}
	}
	return n, nil
}

// Normalize parses one value token. Scaling happens in decimal arithmetic so
// "50 Lakh" lands exactly on 0.5 rather than a float approximation.
func (n *Normalizer) Normalize(token string) (float64, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return 0, &ValueParseError{Token: token}
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	factor := decimal.NewFromInt(1)
	for _, w := range splitWords(s) {
		if f, ok := n.factors[w]; ok {
			factor = f
			break
		}
	}

	core := numberRe.FindString(s)
	if core == "" {
		return 0, &ValueParseError{Token: token}
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(core, ",", ""))
	if err != nil {
		return 0, &ValueParseError{Token: token}
	}

	v = v.Mul(factor)
	if neg {
		v = v.Neg()
	}
	return v.InexactFloat64(), nil
}

// HasAmount reports whether the token contains something Normalize could
// parse. The row splitter uses it to find where labels end and values begin.
func (n *Normalizer) HasAmount(token string) bool {
	return numberRe.MatchString(token)
}

// IsUnitWord reports whether the token is purely a unit marker ("Cr",
// "crores") with no amount of its own.
func (n *Normalizer) IsUnitWord(token string) bool {
	words := splitWords(token)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if _, ok := n.factors[w]; !ok {
			return false
		}
	}
	return true
}
