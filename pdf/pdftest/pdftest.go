// Package pdftest builds small synthetic PDF documents for tests.
//
// Page i (1-based) of a generated document is Width(i) points wide, which lets
// tests identify pages after they have been copied into another document.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// BaseWidth is added to the page number to obtain a page's width
const BaseWidth = 200

// PageHeight of every generated page
const PageHeight = 300

// Width returns the width of page (1-based) in a generated document
func Width(page int) float64 {
	return float64(BaseWidth + page)
}

// Document returns a PDF with the given number of pages
func Document(pages int) []byte {
	return DocumentWithTitle(pages, "")
}

// DocumentWithTitle returns a PDF with the given number of pages and, if not empty, a title
func DocumentWithTitle(pages int, title string) []byte {
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))

	for i := 1; i <= pages; i++ {
		content := fmt.Sprintf("0 0 %d %d re f", i, i)
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> /Contents %d 0 R >>",
			int(Width(i)), PageHeight, 4+2*(i-1)))
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	info := ""
	if title != "" {
		object(fmt.Sprintf("<< /Title (%s) /Producer (pdftest) >>", title))
		info = fmt.Sprintf(" /Info %d 0 R", len(offsets))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, info, xref)
	return buf.Bytes()
}

// Corrupt returns bytes that carry a PDF header but no document
func Corrupt() []byte {
	return []byte("%PDF-1.4\nthis is not a document\n%%EOF\n")
}

// PageNumbers reads a document and maps each page back to the page number of
// the generated source it came from, using page widths.
func PageNumbers(data []byte) ([]int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, err
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, err
	}
	numbers := make([]int, len(dims))
	for i, dim := range dims {
		numbers[i] = int(dim.Width) - BaseWidth
	}
	return numbers, nil
}
