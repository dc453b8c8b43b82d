package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks every fatal parse failure. The caller receives no response.
	ErrParse = errors.New("parse failed")
	// ErrMissingQueryMetadata is reported for a Query element without SearchTerms.
	ErrMissingQueryMetadata = errors.New("query element without SearchTerms")
	// ErrUnknownElement is reported for an element that is neither a result,
	// a query nor a response and appears outside any open result.
	ErrUnknownElement = errors.New("unknown element")
	// ErrResponseCreate is reported when a response creation callback fails.
	ErrResponseCreate = errors.New("response creation failed")
	// ErrBundleCreate is reported when the synthetic bundle cannot be created.
	ErrBundleCreate = errors.New("bundle creation failed")
	// ErrMismatchedEnd is reported for an end element that does not close the
	// innermost open element.
	ErrMismatchedEnd = errors.New("mismatched end element")
	// ErrUnterminated is reported by Finish while elements are still open.
	ErrUnterminated = errors.New("unterminated element")
	// ErrNoResponse is reported by Finish when the stream held no response.
	ErrNoResponse = errors.New("no response element")
)

// ParseError describes a fatal parse failure.
type ParseError struct {
	// Element is the element being processed, empty for stream-level failures.
	Element string
	Line    int
	Column  int
	Err     error
}

func (e *ParseError) Error() string {
	var where string
	if e.Line > 0 {
		where = fmt.Sprintf(" at %d:%d", e.Line, e.Column)
	}
	if e.Element != "" {
		return fmt.Sprintf("parse <%s>%s: %v", e.Element, where, e.Err)
	}
	return fmt.Sprintf("parse%s: %v", where, e.Err)
}

// Unwrap exposes both ErrParse and the cause to errors.Is and errors.As.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
