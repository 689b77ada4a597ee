package pdf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Metadata of the output document. Empty fields leave existing values untouched.
type Metadata struct {
	Producer string `json:"producer,omitempty" yaml:"producer,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Creator  string `json:"creator,omitempty" yaml:"creator,omitempty"`
}

// Merger accumulates pages from source documents into a single output document.
//
// A Merger is not safe for concurrent use. Every call mutates the same output
// document, so each Add must return before the next one is issued.
//
// Pages the library fails to copy are skipped by default: the pages that did
// copy are appended and the failure is logged at warn level. A successful Add
// therefore does not guarantee every requested page made it into the output;
// use WithStrictCopy to turn such failures into errors.
type Merger struct {
	library  Library
	resolver Resolver
	parser   *Parser
	logger   hclog.Logger
	load     LoadOptions
	strict   bool
	producer string
	now      func() time.Time

	doc Document // nil until first use and after Reset
}

// Option configures a Merger
type Option func(*Merger)

// WithLibrary sets the PDF engine
func WithLibrary(library Library) Option {
	return func(m *Merger) { m.library = library }
}

// WithResolver sets how inputs are turned into bytes
func WithResolver(resolver Resolver) Option {
	return func(m *Merger) { m.resolver = resolver }
}

// WithParser sets the page selector parser
func WithParser(parser *Parser) Option {
	return func(m *Merger) { m.parser = parser }
}

// WithLogger sets the logger
func WithLogger(logger hclog.Logger) Option {
	return func(m *Merger) { m.logger = logger }
}

// WithStrictCopy makes page copy failures fail the whole Add
func WithStrictCopy(strict bool) Option {
	return func(m *Merger) { m.strict = strict }
}

// WithProducer sets the producer stamped on new output documents
func WithProducer(producer string) Option {
	return func(m *Merger) { m.producer = producer }
}

// WithClock sets the clock used for creation dates
func WithClock(now func() time.Time) Option {
	return func(m *Merger) { m.now = now }
}

// WithLoadOptions sets how source documents are opened
func WithLoadOptions(opts LoadOptions) Option {
	return func(m *Merger) { m.load = opts }
}

// New creates a Merger backed by pdfcpu, reading files and URLs
func New(opts ...Option) *Merger {
	m := &Merger{
		library:  NewPDFCPU(),
		resolver: NewResolver(),
		parser:   defaultParser,
		logger:   hclog.NewNullLogger(),
		load:     LoadOptions{TolerateEncryption: true},
		producer: DefaultProducer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Reset drops the output document; the next call starts a new one
func (m *Merger) Reset() {
	m.doc = nil
}

// PageCount returns the number of pages merged so far
func (m *Merger) PageCount() int {
	if m.doc == nil {
		return 0
	}
	return m.doc.PageCount()
}

// Add appends pages of input to the output document.
// pages accepts everything Parser.Parse does; nil or "all" adds every page.
func (m *Merger) Add(ctx context.Context, input any, pages any) error {
	if err := m.ensureDoc(); err != nil {
		return err
	}

	selector, err := m.parser.Parse(pages)
	if err != nil {
		return err
	}

	source := describe(input)
	data, err := m.resolver.Resolve(ctx, input)
	if err != nil {
		return err
	}

	src, err := m.library.Load(data, m.load)
	if err != nil {
		if errors.Is(err, ErrLoad) {
			return fmt.Errorf("%s: %w", source, err)
		}
		return fmt.Errorf("%s: %w: %w", source, ErrLoad, err)
	}

	indices, err := selector.Resolve(src.PageCount())
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	if len(indices) == 0 {
		m.logger.Debug("empty page selection", "source", source)
		return nil
	}

	copied, err := m.library.CopyPages(m.doc, src, indices)
	if err != nil {
		var copyErr *CopyError
		if !errors.As(err, &copyErr) {
			return fmt.Errorf("%s: failed to copy pages: %w", source, err)
		}
		if m.strict {
			return fmt.Errorf("%s: %w", source, err)
		}
		m.logger.Warn("skipped pages that failed to copy",
			"source", source, "pages", pageNumbers(copyErr.Indices()), "error", err)
	}

	for _, page := range copied {
		m.doc.AddPage(page)
	}
	m.logger.Debug("added pages", "source", source, "selector", selector.String(),
		"requested", len(indices), "added", len(copied))
	return nil
}

// SetMetadata sets the non-empty fields of meta on the output document
func (m *Merger) SetMetadata(meta Metadata) error {
	if err := m.ensureDoc(); err != nil {
		return err
	}
	if meta.Producer != "" {
		m.doc.SetProducer(meta.Producer)
	}
	if meta.Author != "" {
		m.doc.SetAuthor(meta.Author)
	}
	if meta.Title != "" {
		m.doc.SetTitle(meta.Title)
	}
	if meta.Creator != "" {
		m.doc.SetCreator(meta.Creator)
	}
	return nil
}

// SaveAsBuffer serializes the output document. It may be called repeatedly.
func (m *Merger) SaveAsBuffer() ([]byte, error) {
	if err := m.ensureDoc(); err != nil {
		return nil, err
	}
	return m.doc.Save()
}

// SaveAsBase64 serializes the output document as a base64 data URI
func (m *Merger) SaveAsBase64() (string, error) {
	if err := m.ensureDoc(); err != nil {
		return "", err
	}
	return m.doc.SaveAsBase64(true)
}

// Save writes the output document to path
func (m *Merger) Save(path string) error {
	data, err := m.SaveAsBuffer()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, DefaultOutputPermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (m *Merger) ensureDoc() error {
	if m.doc != nil {
		return nil
	}
	doc, err := m.library.Create()
	if err != nil {
		return fmt.Errorf("failed to create output document: %w", err)
	}
	doc.SetProducer(m.producer)
	doc.SetCreationDate(m.now())
	m.doc = doc
	return nil
}

// describe names an input for logs and error messages
func describe(input any) string {
	switch src := input.(type) {
	case string:
		if u, err := url.Parse(src); err == nil && u.User != nil {
			return u.Redacted()
		}
		return src
	case *url.URL:
		if src != nil {
			return src.Redacted()
		}
	case url.URL:
		return src.Redacted()
	case []byte:
		return fmt.Sprintf("[]byte(%d)", len(src))
	}
	return fmt.Sprintf("%T", input)
}

// pageNumbers converts zero-based indices to page numbers
func pageNumbers(indices []int) []int {
	numbers := make([]int, len(indices))
	for i, idx := range indices {
		numbers[i] = idx + 1
	}
	return numbers
}
