package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// CanonicalUnit is the unit every extracted value is expressed in.
const CanonicalUnit = "Crore"

// RecordCandidate is one extracted metric value, not yet persisted.
type RecordCandidate struct {
	MetricType  constants.MetricType
	FiscalYear  string
	Value       float64
	Unit        string
	Description string
	Section     Section
	Page        int
}

// Diagnostic records a skipped or ambiguous input line for operator review.
type Diagnostic struct {
	Page    int     `json:"page,omitempty"`
	Line    string  `json:"line,omitempty"`
	Section Section `json:"section,omitempty"`
	Reason  string  `json:"reason"`
}

// Result is the outcome of one pipeline run. Zero records is a valid
// outcome; the diagnostics say why.
type Result struct {
	Records      []RecordCandidate
	Diagnostics  []Diagnostic
	Pages        int
	LinesScanned int
}

// Pipeline turns a balance-sheet PDF into record candidates. All lookup
// tables are immutable after construction, so one Pipeline is safe for
// concurrent use across uploads.
type Pipeline struct {
	extractor  *Extractor
	classifier *Classifier
	normalizer *Normalizer
	logger     *slog.Logger
}

func New(vocab *Vocabulary, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	normalizer, err := NewNormalizer(vocab)
	if err != nil {
		return nil, fmt.Errorf("build normalizer: %w", err)
	}
	return &Pipeline{
		extractor:  NewExtractor(logger),
		classifier: NewClassifier(vocab),
		normalizer: normalizer,
		logger:     logger,
	}, nil
}

// Run processes one document. Per-line problems become diagnostics and the
// run continues; only a document-level read failure is returned as an error.
// Identical input bytes always produce the identical result.
func (p *Pipeline) Run(ctx context.Context, rs io.ReadSeeker, filename string) (*Result, error) {
	start := time.Now()
	r := &run{
		p:             p,
		res:           &Result{},
		seen:          make(map[recordKey]struct{}),
		filenameYears: FindFiscalYears(filename),
	}

	pages, err := p.extractor.ForEachPage(ctx, rs, func(pg Page) error {
		for _, line := range pg.Lines {
			r.res.LinesScanned++
			r.line(pg.Number, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.res.Pages = pages

	if r.res.LinesScanned == 0 {
		r.diag(0, "", "no extractable text in document")
	} else if len(r.res.Records) == 0 {
		r.diag(0, "", "no financial metrics recognized")
	}
	if r.assumedRows > 0 {
		r.diag(0, "", fmt.Sprintf("fiscal years assigned most-recent-first for %d row(s) without per-column year headers", r.assumedRows))
	}

	p.logger.Info("pipeline.run.ok",
		"filename", filename,
		"pages", pages,
		"lines", r.res.LinesScanned,
		"records", len(r.res.Records),
		"diagnostics", len(r.res.Diagnostics),
		"elapsed_ms", time.Since(start).Milliseconds())
	return r.res, nil
}

// recordKey dedupes candidates within one document.
type recordKey struct {
	metric constants.MetricType
	year   string
}

// run is the mutable state of a single Run invocation.
type run struct {
	p             *Pipeline
	res           *Result
	seen          map[recordKey]struct{}
	filenameYears []FiscalYear
	contextYears  []FiscalYear
	section       Section
	assumedRows   int
}

func (r *run) line(page int, line string) {
	if sec, ok := DetectSection(line); ok {
		r.section = sec
		if years := FindFiscalYears(line); len(years) > 0 {
			r.contextYears = years
		}
		return
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	if years, isHeader := r.headerYears(fields); isHeader {
		r.contextYears = years
		return
	}

	// Split the row into a label prefix and a trailing values region.
	cut := len(fields)
	for cut > 0 && r.valueish(fields[cut-1]) {
		cut--
	}
	values := fields[cut:]
	if len(values) == 0 {
		return // prose line, nothing numeric
	}
	label := strings.Join(fields[:cut], " ")

	metric, ok := r.p.classifier.Classify(label)
	if !ok {
		return // no vocabulary match, dropped silently
	}

	groups, inRowYears := r.groupValues(values)
	if len(groups) == 0 {
		return // numeric region held only years or unit markers
	}

	years, assumed := r.resolveYears(inRowYears, len(groups))
	if len(years) == 0 {
		r.diag(page, line, "no fiscal year evidence for row")
		return
	}
	if assumed {
		r.assumedRows++
	}

	for i, g := range groups {
		v, err := r.p.normalizer.Normalize(g)
		if err != nil {
			r.diag(page, line, fmt.Sprintf("unparseable value %q", g))
			continue
		}
		r.add(page, line, RecordCandidate{
			MetricType:  metric,
			FiscalYear:  years[i].Label(),
			Value:       v,
			Unit:        CanonicalUnit,
			Description: label,
			Section:     r.section,
			Page:        page,
		})
	}
}

// headerYears reports whether the row is a pure year header (years present,
// no other amounts), e.g. "Particulars FY 2023-24 FY 2022-23".
func (r *run) headerYears(fields []string) ([]FiscalYear, bool) {
	var years []FiscalYear
	amounts := 0
	for _, f := range fields {
		switch {
		case IsYearToken(f):
			if fy, ok := ParseYearToken(f); ok {
				years = append(years, fy)
			}
		case r.p.normalizer.HasAmount(f):
			amounts++
		}
	}
	if len(years) > 0 && amounts == 0 {
		return years, true
	}
	return nil, false
}

// valueish reports whether a token belongs to the values region of a row.
func (r *run) valueish(token string) bool {
	return IsYearToken(token) ||
		r.p.normalizer.HasAmount(token) ||
		r.p.normalizer.IsUnitWord(token) ||
		isCurrencyMarker(token)
}

// groupValues joins the values region back into parseable value tokens:
// currency markers and unit words attach to their neighboring amount, year
// tokens are pulled out as in-row year evidence.
func (r *run) groupValues(tokens []string) (groups []string, years []FiscalYear) {
	var cur []string
	curHasAmount := false
	flush := func() {
		if curHasAmount {
			groups = append(groups, strings.Join(cur, " "))
		}
		cur = nil
		curHasAmount = false
	}
	for _, t := range tokens {
		switch {
		case IsYearToken(t):
			flush()
			if fy, ok := ParseYearToken(t); ok {
				years = append(years, fy)
			}
		case r.p.normalizer.IsUnitWord(t) || isCurrencyMarker(t):
			cur = append(cur, t)
			if curHasAmount {
				flush() // unit suffix closes the amount
			}
		case r.p.normalizer.HasAmount(t):
			if curHasAmount {
				flush()
			}
			cur = append(cur, t)
			curHasAmount = true
		default:
			flush()
		}
	}
	flush()
	return groups, years
}

// resolveYears picks fiscal years for n value columns: explicit in-row years
// win, then the latest year header seen, then a year in the filename.
func (r *run) resolveYears(inRow []FiscalYear, n int) ([]FiscalYear, bool) {
	if len(inRow) > 0 {
		return AssignYears(inRow, n)
	}
	if len(r.contextYears) > 0 {
		return AssignYears(r.contextYears, n)
	}
	return AssignYears(r.filenameYears, n)
}

func (r *run) add(page int, line string, rec RecordCandidate) {
	key := recordKey{metric: rec.MetricType, year: rec.FiscalYear}
	if _, dup := r.seen[key]; dup {
		r.diag(page, line, fmt.Sprintf("duplicate %s for %s dropped, first occurrence wins", rec.MetricType, rec.FiscalYear))
		return
	}
	r.seen[key] = struct{}{}
	r.res.Records = append(r.res.Records, rec)
}

func (r *run) diag(page int, line, reason string) {
	const maxLine = 160
	if len(line) > maxLine {
		line = line[:maxLine]
	}
	r.res.Diagnostics = append(r.res.Diagnostics, Diagnostic{
		Page:    page,
		Line:    line,
		Section: r.section,
		Reason:  reason,
	})
}

var currencyMarkers = map[string]struct{}{
	"₹": {}, "rs": {}, "rs.": {}, "inr": {}, "$": {},
}

func isCurrencyMarker(token string) bool {
	_, ok := currencyMarkers[strings.ToLower(token)]
	return ok
}
