package parser

import (
	"strings"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// Classifier maps free-form row labels onto canonical metric types using the
// vocabulary's phrase tables. Matching is case-insensitive and punctuation
// blind ("Non-Current Assets" and "non current assets" are the same phrase),
// and phrases only match on word boundaries, so "PAT" never fires inside
// "patents".
type Classifier struct {
	entries []phraseEntry
}

// phraseEntry is one (metric, phrase) pair with the phrase pre-split into
// normalized words. Entries keep vocabulary order, which is the priority
// order when several phrases occur in the same label.
type phraseEntry struct {
	metric constants.MetricType
	words  []string
}

func NewClassifier(vocab *Vocabulary) *Classifier {
	c := &Classifier{}
	for _, m := range vocab.Metrics {
		for _, p := range m.Phrases {
			words := splitWords(p)
			if len(words) == 0 {
				continue
			}
			c.entries = append(c.entries, phraseEntry{metric: m.Metric, words: words})
		}
	}
	return c
}

// Classify returns the metric type for a row label, or false when no phrase
// matches. The first matching phrase in vocabulary order wins, so more
// specific phrases ("non current assets") must be listed before the shorter
// ones they contain ("current assets").
func (c *Classifier) Classify(label string) (constants.MetricType, bool) {
	words := splitWords(label)
	if len(words) == 0 {
		return "", false
	}
	for _, e := range c.entries {
		if containsWordSeq(words, e.words) {
			return e.metric, true
		}
	}
	return "", false
}

// splitWords lowercases s, treats every non-alphanumeric rune as a separator
// and returns the resulting words.
func splitWords(s string) []string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte(' ')
		}
	}
	return strings.Fields(sb.String())
}

// containsWordSeq reports whether seq occurs as a contiguous run in words.
func containsWordSeq(words, seq []string) bool {
	if len(seq) == 0 || len(seq) > len(words) {
		return false
	}
	for i := 0; i+len(seq) <= len(words); i++ {
		ok := true
		for j := range seq {
			if words[i+j] != seq[j] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
