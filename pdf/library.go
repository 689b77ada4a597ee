package pdf

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LoadOptions controls how source documents are opened
type LoadOptions struct {
	// TolerateEncryption opens encrypted documents that need no user password
	TolerateEncryption bool
}

// Page is a page copied out of a source document, ready to be added to an output document
type Page interface{}

// Document is a PDF document managed by a Library
type Document interface {
	// PageCount returns the number of pages
	PageCount() int

	// PageIndices returns the natural zero-based index sequence
	PageIndices() []int

	// AddPage appends a copied page
	AddPage(page Page)

	SetProducer(producer string)
	SetAuthor(author string)
	SetTitle(title string)
	SetCreator(creator string)
	SetCreationDate(t time.Time)

	// Save serializes the document
	Save() ([]byte, error)

	// SaveAsBase64 serializes the document as base64, optionally as a data URI
	SaveAsBase64(dataURI bool) (string, error)
}

// Library is the PDF engine the merger delegates parsing, copying and writing to
type Library interface {
	// Create returns a new empty document
	Create() (Document, error)

	// Load parses data as a PDF document
	Load(data []byte, opts LoadOptions) (Document, error)

	// CopyPages copies the pages at indices from src for use in dst, in order.
	// When some pages fail, the pages that copied are returned together with a *CopyError.
	CopyPages(dst, src Document, indices []int) ([]Page, error)
}

// CopyError reports pages that could not be copied, keyed by zero-based source index
type CopyError struct {
	Failed map[int]error
}

func (e *CopyError) Error() string {
	indices := e.Indices()
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("page %d: %v", idx+1, e.Failed[idx])
	}
	return fmt.Sprintf("%s: %s", ErrCopy, strings.Join(parts, "; "))
}

func (e *CopyError) Unwrap() error {
	return ErrCopy
}

// Indices returns the failed indices in ascending order
func (e *CopyError) Indices() []int {
	indices := make([]int, 0, len(e.Failed))
	for idx := range e.Failed {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

func naturalIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
