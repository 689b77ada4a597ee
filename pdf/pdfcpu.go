package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Info dictionary keys written by the pdfcpu backend
const (
	infoTitle        = "Title"
	infoAuthor       = "Author"
	infoCreator      = "Creator"
	infoProducer     = "Producer"
	infoCreationDate = "CreationDate"
)

// Info contains information about a serialized PDF
type Info struct {
	PageCount int    `json:"page_count"`
	FileSize  int64  `json:"file_size"`
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Creator   string `json:"creator,omitempty"`
	Producer  string `json:"producer,omitempty"`
	Encrypted bool   `json:"encrypted"`
}

// PDFCPU implements Library with github.com/pdfcpu/pdfcpu.
// Copied pages are held as single-page PDFs and stitched together on Save.
type PDFCPU struct{}

// NewPDFCPU creates the pdfcpu backed library
func NewPDFCPU() *PDFCPU {
	return &PDFCPU{}
}

// newConfiguration returns a fresh pdfcpu configuration; pdfcpu mutates it per command
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Create returns an empty output document
func (l *PDFCPU) Create() (Document, error) {
	return &cpuDocument{info: map[string]string{}}, nil
}

// Load parses data into a source document
func (l *PDFCPU) Load(data []byte, opts LoadOptions) (Document, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}
	if ctx.Encrypt != nil && !opts.TolerateEncryption {
		return nil, fmt.Errorf("%w: document is encrypted", ErrLoad)
	}
	return &cpuDocument{ctx: ctx, info: map[string]string{}}, nil
}

// CopyPages extracts each requested page of src as its own single-page PDF.
// Failing pages are skipped and reported through *CopyError.
func (l *PDFCPU) CopyPages(dst, src Document, indices []int) ([]Page, error) {
	source, ok := src.(*cpuDocument)
	if !ok || source.ctx == nil {
		return nil, fmt.Errorf("source document was not loaded by pdfcpu")
	}
	if err := ValidateIndices(indices, source.ctx.PageCount); err != nil {
		return nil, err
	}

	extracted := map[int][]byte{}
	failed := map[int]error{}
	pages := make([]Page, 0, len(indices))
	for _, idx := range indices {
		if _, seen := failed[idx]; seen {
			continue
		}
		data, seen := extracted[idx]
		if !seen {
			var err error
			data, err = source.extract(idx)
			if err != nil {
				failed[idx] = err
				continue
			}
			extracted[idx] = data
		}
		pages = append(pages, cpuPage{data: data})
	}

	if len(failed) > 0 {
		return pages, &CopyError{Failed: failed}
	}
	return pages, nil
}

// ReadInfo reads page count and document information from a serialized PDF
func ReadInfo(data []byte) (*Info, error) {
	ctx, err := readContext(data)
	if err != nil {
		return nil, err
	}

	info := &Info{
		PageCount: ctx.PageCount,
		FileSize:  int64(len(data)),
		Encrypted: ctx.Encrypt != nil,
	}
	if ctx.Info == nil {
		return info, nil
	}

	dict, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || dict == nil {
		return info, nil
	}
	info.Title = infoString(dict, infoTitle)
	info.Author = infoString(dict, infoAuthor)
	info.Creator = infoString(dict, infoCreator)
	info.Producer = infoString(dict, infoProducer)
	return info, nil
}

func readContext(data []byte) (*model.Context, error) {
	if mtype := mimetype.Detect(data); !mtype.Is(MimeTypePDF) {
		return nil, fmt.Errorf("%w: content is %s, not %s", ErrLoad, mtype.String(), MimeTypePDF)
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return ctx, nil
}

func infoString(dict types.Dict, key string) string {
	if v, ok := dict[key].(types.StringLiteral); ok {
		return unescapeString(string(v))
	}
	return ""
}

type cpuPage struct {
	data []byte
}

type cpuDocument struct {
	ctx   *model.Context // loaded sources only
	pages []Page
	info  map[string]string
}

func (d *cpuDocument) PageCount() int {
	n := len(d.pages)
	if d.ctx != nil {
		n += d.ctx.PageCount
	}
	return n
}

func (d *cpuDocument) PageIndices() []int {
	return naturalIndices(d.PageCount())
}

func (d *cpuDocument) AddPage(page Page) {
	d.pages = append(d.pages, page)
}

func (d *cpuDocument) SetProducer(producer string) { d.info[infoProducer] = producer }
func (d *cpuDocument) SetAuthor(author string)     { d.info[infoAuthor] = author }
func (d *cpuDocument) SetTitle(title string)       { d.info[infoTitle] = title }
func (d *cpuDocument) SetCreator(creator string)   { d.info[infoCreator] = creator }

func (d *cpuDocument) SetCreationDate(t time.Time) {
	d.info[infoCreationDate] = types.DateString(t)
}

// Save merges the copied pages and writes the information dictionary.
// pdfcpu stamps its own Producer and ModDate while writing.
func (d *cpuDocument) Save() ([]byte, error) {
	parts, err := d.parts()
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrNoPages
	}

	conf := newConfiguration()
	merged := parts[0]
	if len(parts) > 1 {
		readers := make([]io.ReadSeeker, len(parts))
		for i, part := range parts {
			readers[i] = bytes.NewReader(part)
		}
		var buf bytes.Buffer
		if err := api.MergeRaw(readers, &buf, false, conf); err != nil {
			return nil, fmt.Errorf("failed to merge pages: %w", err)
		}
		merged = buf.Bytes()
	}

	ctx, err := api.ReadContext(bytes.NewReader(merged), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged document: %w", err)
	}
	if err := d.writeInfo(ctx); err != nil {
		return nil, fmt.Errorf("failed to write document info: %w", err)
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return out.Bytes(), nil
}

func (d *cpuDocument) SaveAsBase64(dataURI bool) (string, error) {
	data, err := d.Save()
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	if dataURI {
		return DataURIPrefix + encoded, nil
	}
	return encoded, nil
}

// parts returns the serialized pieces making up the document, in page order
func (d *cpuDocument) parts() ([][]byte, error) {
	var parts [][]byte
	if d.ctx != nil && d.ctx.PageCount > 0 {
		var buf bytes.Buffer
		if err := api.WriteContext(d.ctx, &buf); err != nil {
			return nil, fmt.Errorf("failed to write source document: %w", err)
		}
		parts = append(parts, buf.Bytes())
	}
	for i, page := range d.pages {
		p, ok := page.(cpuPage)
		if !ok {
			return nil, fmt.Errorf("page %d was not copied by pdfcpu (%T)", i+1, page)
		}
		parts = append(parts, p.data)
	}
	return parts, nil
}

// extract writes page idx (zero-based) of a loaded document as a single-page PDF
func (d *cpuDocument) extract(idx int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu: %v", r)
		}
	}()

	pageCtx, err := pdfcpu.ExtractPages(d.ctx, []int{idx + 1}, false)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := api.WriteContext(pageCtx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *cpuDocument) writeInfo(ctx *model.Context) error {
	if len(d.info) == 0 {
		return nil
	}
	if ctx.Info == nil {
		ir, err := ctx.IndRefForNewObject(types.NewDict())
		if err != nil {
			return err
		}
		ctx.Info = ir
	}

	dict, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil {
		return err
	}
	if dict == nil {
		return fmt.Errorf("info dictionary is missing")
	}
	for key, value := range d.info {
		dict.Update(key, types.StringLiteral(escapeString(value)))
	}
	return nil
}

var (
	stringEscaper   = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	stringUnescaper = strings.NewReplacer(`\\`, `\`, `\(`, `(`, `\)`, `)`)
)

func escapeString(s string) string   { return stringEscaper.Replace(s) }
func unescapeString(s string) string { return stringUnescaper.Replace(s) }
