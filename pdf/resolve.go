package pdf

import "fmt"

// Index converts the reference into a zero-based page index for a document
// with pageCount pages. References outside the document are an error, never clamped.
func (r PageRef) Index(pageCount int) (int, error) {
	var idx int
	switch {
	case r > 0:
		idx = int(r) - 1
	case r < 0:
		idx = pageCount + int(r)
	default:
		return 0, fmt.Errorf("%w: page 0 is not a valid reference", ErrPageOutOfRange)
	}

	if idx < 0 || idx >= pageCount {
		return 0, fmt.Errorf("%w: page %s, document has %d pages", ErrPageOutOfRange, r, pageCount)
	}
	return idx, nil
}

// Resolve maps the selector onto concrete zero-based indices for a document
// with pageCount pages, preserving order and duplicates.
func (s Selector) Resolve(pageCount int) ([]int, error) {
	if s.all {
		return naturalIndices(pageCount), nil
	}

	indices := make([]int, 0, len(s.spans))
	for _, sp := range s.spans {
		from, err := sp.From.Index(pageCount)
		if err != nil {
			return nil, err
		}
		if sp.Single() {
			indices = append(indices, from)
			continue
		}

		to, err := sp.To.Index(pageCount)
		if err != nil {
			return nil, err
		}
		if to < from {
			return nil, &SelectorError{
				Input:  sp.String(),
				Reason: fmt.Sprintf("end page %d precedes start page %d in a %d page document", to+1, from+1, pageCount),
				Kind:   ErrInvalidRange,
			}
		}
		for i := from; i <= to; i++ {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// ValidateIndices checks that all zero-based indices are valid for a document with totalPages pages
func ValidateIndices(indices []int, totalPages int) error {
	for _, idx := range indices {
		if idx < 0 || idx >= totalPages {
			return fmt.Errorf("%w: index %d, document has %d pages", ErrPageOutOfRange, idx, totalPages)
		}
	}
	return nil
}
