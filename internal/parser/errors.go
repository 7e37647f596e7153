package parser

import "fmt"

// ExtractionError is a document-level failure: the PDF is encrypted, corrupt,
// or otherwise unreadable. It is the only error kind that fails a whole run.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return "extraction failed: " + e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ValueParseError is a line-level failure: the token holds no parseable
// number. The offending line is skipped and recorded as a diagnostic.
type ValueParseError struct {
	Token string
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("no parseable number in token %q", e.Token)
}
