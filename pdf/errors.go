package pdf

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSelector is returned for malformed page selection syntax or type
	ErrInvalidSelector = errors.New("invalid page selector")

	// ErrUnsupportedInput is returned when an input source is not a recognized variant
	ErrUnsupportedInput = errors.New("unsupported input type")

	// ErrFetch is returned when a file or URL cannot be retrieved
	ErrFetch = errors.New("fetch failed")

	// ErrLoad is returned when a source cannot be parsed as a PDF
	ErrLoad = errors.New("load failed")

	// ErrPageOutOfRange is returned when a reference resolves outside the source document
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrInvalidRange is returned when the end of a range precedes its start
	ErrInvalidRange = errors.New("invalid page range")

	// ErrCopy is returned in strict mode when some pages could not be copied
	ErrCopy = errors.New("page copy failed")

	// ErrNoPages is returned when saving an output document without pages
	ErrNoPages = errors.New("document has no pages")
)

// SelectorError describes a selector that could not be parsed or resolved.
// It matches ErrInvalidSelector and, when set, the more specific Kind.
type SelectorError struct {
	Input  string
	Reason string
	Kind   error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidSelector, e.Input, e.Reason)
}

// Unwrap exposes both the selector sentinel and the specific kind to errors.Is
func (e *SelectorError) Unwrap() []error {
	if e.Kind == nil {
		return []error{ErrInvalidSelector}
	}
	return []error{ErrInvalidSelector, e.Kind}
}

func selectorError(input any, format string, args ...any) *SelectorError {
	return &SelectorError{Input: fmt.Sprintf("%v", input), Reason: fmt.Sprintf(format, args...)}
}
