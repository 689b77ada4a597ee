package pdf

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PageRef is a signed page reference. Positive values count from the first
// page (1-based), negative values count from the last page (-1 is the last page).
// Zero is never valid.
type PageRef int

// String formats the reference with DefaultPlaceholder
func (r PageRef) String() string {
	return r.format(DefaultPlaceholder)
}

func (r PageRef) format(placeholder string) string {
	switch {
	case r == -1:
		return placeholder
	case r < 0:
		return placeholder + strconv.Itoa(-int(r))
	default:
		return strconv.Itoa(int(r))
	}
}

// Span is one term of a selector. A single page has From == To.
type Span struct {
	From PageRef `json:"from"`
	To   PageRef `json:"to"`
}

// Single reports whether the span names exactly one reference
func (s Span) Single() bool {
	return s.From == s.To
}

// String formats the span with DefaultPlaceholder
func (s Span) String() string {
	return s.format(DefaultPlaceholder)
}

// Len returns the number of references the span expands to when both bounds
// are positive, and 2 otherwise.
func (s Span) Len() int64 {
	switch {
	case s.Single():
		return 1
	case s.From > 0 && s.To > 0:
		return int64(s.To) - int64(s.From) + 1
	}
	return 2
}

func (s Span) format(placeholder string) string {
	if s.Single() {
		return s.From.format(placeholder)
	}
	return s.From.format(placeholder) + "-" + s.To.format(placeholder)
}

// Selector is a parsed page selection: either every page of a source (All)
// or an ordered list of spans. Order is significant and duplicates are kept.
type Selector struct {
	all         bool
	spans       []Span
	placeholder string // symbol used by String; DefaultPlaceholder when empty
}

// All selects every page in natural order
var All = Selector{all: true}

// Pages builds a selector of single references
func Pages(refs ...PageRef) Selector {
	spans := make([]Span, len(refs))
	for i, r := range refs {
		spans[i] = Span{From: r, To: r}
	}
	return Selector{spans: spans}
}

// Ranges builds a selector from spans
func Ranges(spans ...Span) Selector {
	return Selector{spans: append([]Span{}, spans...)}
}

// IsAll reports whether the selector means the entire document
func (s Selector) IsAll() bool {
	return s.all
}

// Spans returns a copy of the selector terms
func (s Selector) Spans() []Span {
	return append([]Span{}, s.spans...)
}

// RefCount returns len(s.Refs()) without expanding any range
func (s Selector) RefCount() int64 {
	var n int64
	for _, sp := range s.spans {
		n += sp.Len()
	}
	return n
}

// Refs flattens the selector into references. Ranges with two positive bounds
// are expanded; ranges involving a from-the-end bound cannot be expanded without
// a page count and are reported as their [From, To] pair.
// Check RefCount first when the selector comes from untrusted input.
func (s Selector) Refs() []PageRef {
	refs := make([]PageRef, 0, len(s.spans))
	for _, sp := range s.spans {
		switch {
		case sp.Single():
			refs = append(refs, sp.From)
		case sp.From > 0 && sp.To > 0:
			for r := sp.From; r <= sp.To; r++ {
				refs = append(refs, r)
			}
		default:
			refs = append(refs, sp.From, sp.To)
		}
	}
	return refs
}

func (s Selector) String() string {
	if s.all {
		return AllPages
	}
	placeholder := s.placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	terms := make([]string, len(s.spans))
	for i, sp := range s.spans {
		terms[i] = sp.format(placeholder)
	}
	return strings.Join(terms, ",")
}

// Parser turns user supplied page selections into selectors.
type Parser struct {
	placeholder string
	strict      bool
	whitelist   *regexp.Regexp
	single      *regexp.Regexp
}

var defaultParser = mustParser(DefaultPlaceholder, false)

// NewParser creates a parser using placeholder as the last-page symbol.
// A strict parser rejects open ranges without a placeholder, e.g. "2-".
func NewParser(placeholder string, strict bool) (*Parser, error) {
	if utf8.RuneCountInString(placeholder) != 1 {
		return nil, fmt.Errorf("placeholder must be a single character, got %q", placeholder)
	}
	r, _ := utf8.DecodeRuneInString(placeholder)
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == ',' || r == '-' {
		return nil, fmt.Errorf("placeholder %q collides with selector syntax", placeholder)
	}

	p := regexp.QuoteMeta(placeholder)
	fromEnd := p + `\d*`
	term := `(?:` +
		`\d+(?:(?:-|to)(?:\d+|` + fromEnd + `))?` + // 3, 2-6, 2to6, 2-$
		`|\d+-` + // 2- (open end)
		`|` + fromEnd + `(?:(?:-|to)` + fromEnd + `)?` + // $, $2, $3-$
		`|` + fromEnd + `-` + // $3- (last three pages)
		`|-` + fromEnd + // -$3 (last three pages)
		`)`

	return &Parser{
		placeholder: placeholder,
		strict:      strict,
		whitelist:   regexp.MustCompile(`^` + term + `(?:,` + term + `)*$`),
		single:      regexp.MustCompile(`^(?:\d+|` + fromEnd + `)$`),
	}, nil
}

func mustParser(placeholder string, strict bool) *Parser {
	p, err := NewParser(placeholder, strict)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePages parses v with the default parser ("$" placeholder, open ranges allowed)
func ParsePages(v any) (Selector, error) {
	return defaultParser.Parse(v)
}

// Parse accepts nil, "all", integers, integral floats, selector strings and
// slices of integers or single-value strings.
func (p *Parser) Parse(v any) (Selector, error) {
	switch x := v.(type) {
	case nil:
		return All, nil
	case Selector:
		return x, nil
	case *Selector:
		if x == nil {
			return All, nil
		}
		return *x, nil
	case string:
		return p.ParseString(x)
	case PageRef:
		return p.fromInt(v, int64(x))
	case int:
		return p.fromInt(v, int64(x))
	case int8:
		return p.fromInt(v, int64(x))
	case int16:
		return p.fromInt(v, int64(x))
	case int32:
		return p.fromInt(v, int64(x))
	case int64:
		return p.fromInt(v, x)
	case uint:
		return p.fromUint(v, uint64(x))
	case uint8:
		return p.fromUint(v, uint64(x))
	case uint16:
		return p.fromUint(v, uint64(x))
	case uint32:
		return p.fromUint(v, uint64(x))
	case uint64:
		return p.fromUint(v, x)
	case float32:
		return p.fromFloat(v, float64(x))
	case float64:
		return p.fromFloat(v, x)
	case []int:
		items := make([]any, len(x))
		for i, n := range x {
			items[i] = n
		}
		return p.fromSlice(v, items)
	case []PageRef:
		items := make([]any, len(x))
		for i, n := range x {
			items[i] = n
		}
		return p.fromSlice(v, items)
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return p.fromSlice(v, items)
	case []any:
		return p.fromSlice(v, x)
	}
	return Selector{}, selectorError(v, "unsupported selector type %T", v)
}

// ParseString parses the string form, e.g. "1,3-5,7", "2 to 6", "$2", "3-$".
func (p *Parser) ParseString(raw string) (Selector, error) {
	if strings.EqualFold(strings.TrimSpace(raw), AllPages) {
		return All, nil
	}

	normalized := normalize(raw)
	if !p.whitelist.MatchString(normalized) {
		return Selector{}, selectorError(raw, `must be a list of pages or ranges like "1,2,3", "1-3", "1to3" or "2-%s"`, p.placeholder)
	}

	var spans []Span
	for _, term := range strings.Split(normalized, ",") {
		span, err := p.parseTerm(raw, term)
		if err != nil {
			return Selector{}, err
		}
		spans = append(spans, span)
	}
	return Selector{spans: spans, placeholder: p.placeholder}, nil
}

func (p *Parser) parseTerm(raw, term string) (Span, error) {
	// -$3: the last three pages
	if rest, ok := strings.CutPrefix(term, "-"); ok {
		ref, err := p.parseRef(raw, rest)
		if err != nil {
			return Span{}, err
		}
		return Span{From: ref, To: -1}, nil
	}

	// 2- or $3-: through the last page
	if rest, ok := strings.CutSuffix(term, "-"); ok {
		ref, err := p.parseRef(raw, rest)
		if err != nil {
			return Span{}, err
		}
		if ref > 0 && p.strict {
			return Span{}, selectorError(raw, "open range %q needs an explicit end, e.g. %q", term, term+p.placeholder)
		}
		return Span{From: ref, To: -1}, nil
	}

	sep := "to"
	idx := strings.Index(term, sep)
	if idx < 0 {
		sep = "-"
		idx = strings.Index(term, sep)
	}
	if idx < 0 {
		ref, err := p.parseRef(raw, term)
		if err != nil {
			return Span{}, err
		}
		return Span{From: ref, To: ref}, nil
	}

	from, err := p.parseRef(raw, term[:idx])
	if err != nil {
		return Span{}, err
	}
	to, err := p.parseRef(raw, term[idx+len(sep):])
	if err != nil {
		return Span{}, err
	}
	if from > 0 && to > 0 && to < from {
		e := selectorError(raw, "end page %d precedes start page %d", to, from)
		e.Kind = ErrInvalidRange
		return Span{}, e
	}
	return Span{From: from, To: to}, nil
}

// parseRef parses "7", "$" or "$2"
func (p *Parser) parseRef(raw, s string) (PageRef, error) {
	digits, fromEnd := strings.CutPrefix(s, p.placeholder)
	if fromEnd && digits == "" {
		return -1, nil
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, selectorError(raw, "invalid page number %q", s)
	}
	if n == 0 {
		return 0, selectorError(raw, "page numbers start at 1")
	}
	if n > math.MaxInt32 {
		return 0, selectorError(raw, "page number %q out of bounds", s)
	}
	if fromEnd {
		return PageRef(-n), nil
	}
	return PageRef(n), nil
}

func (p *Parser) fromInt(input any, n int64) (Selector, error) {
	if n == 0 {
		return Selector{}, selectorError(input, "page numbers start at 1")
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return Selector{}, selectorError(input, "page number out of bounds")
	}
	sel := Pages(PageRef(n))
	sel.placeholder = p.placeholder
	return sel, nil
}

func (p *Parser) fromUint(input any, n uint64) (Selector, error) {
	if n > math.MaxInt32 {
		return Selector{}, selectorError(input, "page number out of bounds")
	}
	return p.fromInt(input, int64(n))
}

func (p *Parser) fromFloat(input any, f float64) (Selector, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return Selector{}, selectorError(input, "page numbers must be integers")
	}
	return p.fromInt(input, int64(f))
}

// fromSlice parses each element as a single value and concatenates the results
func (p *Parser) fromSlice(input any, items []any) (Selector, error) {
	spans := make([]Span, 0, len(items))
	for _, item := range items {
		var sel Selector
		var err error
		switch x := item.(type) {
		case string:
			sel, err = p.parseSingle(x)
		case nil, []any, []int, []string, []PageRef, Selector, *Selector:
			err = selectorError(input, "unsupported element %v (%T)", item, item)
		default:
			sel, err = p.Parse(x)
		}
		if err != nil {
			return Selector{}, err
		}
		spans = append(spans, sel.spans...)
	}
	return Selector{spans: spans, placeholder: p.placeholder}, nil
}

func (p *Parser) parseSingle(raw string) (Selector, error) {
	normalized := normalize(raw)
	if !p.single.MatchString(normalized) {
		return Selector{}, selectorError(raw, "list elements must be page numbers or %q references", p.placeholder)
	}
	ref, err := p.parseRef(raw, normalized)
	if err != nil {
		return Selector{}, err
	}
	sel := Pages(ref)
	sel.placeholder = p.placeholder
	return sel, nil
}

// normalize lower-cases s and removes all whitespace
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
