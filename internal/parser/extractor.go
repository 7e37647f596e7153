package parser

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Page holds the visual text lines recovered from one PDF page.
type Page struct {
	Number int
	Lines  []string
}

// Extractor pulls text lines out of PDF content streams. Image-only or
// scanned pages yield no lines; that is reported by the caller as a
// diagnostic, not an error.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ForEachPage reads the document and invokes fn once per page in order,
// including pages without recoverable text, so page numbers stay aligned.
// Pages stream one at a time; a long document never holds all its lines in
// memory at once. A document that cannot be read at all (corrupt, encrypted)
// returns an ExtractionError before fn is ever called; an error from fn
// stops the walk.
func (e *Extractor) ForEachPage(ctx context.Context, rs io.ReadSeeker, fn func(Page) error) (int, error) {
	start := time.Now()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return 0, &ExtractionError{Reason: "unreadable document", Err: err}
	}

	lineCount := 0
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return pdfCtx.PageCount, err
		}
		lines := e.pageLines(pdfCtx, pageNr)
		lineCount += len(lines)
		if err := fn(Page{Number: pageNr, Lines: lines}); err != nil {
			return pdfCtx.PageCount, err
		}
	}

	e.logger.Debug("extract.pdf.ok",
		"pages", pdfCtx.PageCount,
		"lines", lineCount,
		"elapsed_ms", time.Since(start).Milliseconds())
	return pdfCtx.PageCount, nil
}

// pageLines extracts the text lines of a single page via its content stream.
func (e *Extractor) pageLines(pdfCtx *model.Context, pageNr int) []string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		e.logger.Debug("extract.pdf.page_skipped", "page", pageNr, "error", err)
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return nil
	}
	return linesFromContentStream(data)
}
