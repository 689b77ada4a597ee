package pdf

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(r ...PageRef) []PageRef { return r }

func TestParsePagesLists(t *testing.T) {
	cases := map[string][]PageRef{
		"2":               refs(2),
		" 2 ":             refs(2),
		"1,2,3":           refs(1, 2, 3),
		" 1,2,3 ":         refs(1, 2, 3),
		" 1, 2, 3 ":       refs(1, 2, 3),
		" 1 , 2 , 3 ":     refs(1, 2, 3),
		" 2,4,6 ":         refs(2, 4, 6),
		"1,1,2":           refs(1, 1, 2),
		"\t10,\n1":        refs(10, 1),
		"3,2,1":           refs(3, 2, 1),
		"001":             refs(1),
		"12345":           refs(12345),
		"10,1-3":          refs(10, 1, 2, 3),
		"9,1-3,5-7":       refs(9, 1, 2, 3, 5, 6, 7),
		"2-6,8":           refs(2, 3, 4, 5, 6, 8),
		"1,3-5,7":         refs(1, 3, 4, 5, 7),
		"1-3,4":           refs(1, 2, 3, 4),
		" 1-3 , 4 , 5":    refs(1, 2, 3, 4, 5),
		" 1 - 3, 5-7 ":    refs(1, 2, 3, 5, 6, 7),
		"11-13,5,8,16-18": refs(11, 12, 13, 5, 8, 16, 17, 18),
		" 9,8,1 - 3, 5-6 ,8,9": refs(9, 8, 1, 2, 3, 5, 6, 8, 9),
	}

	for input, expected := range cases {
		t.Run(input, func(t *testing.T) {
			sel, err := ParsePages(input)
			require.NoError(t, err)
			assert.False(t, sel.IsAll())
			assert.Equal(t, expected, sel.Refs())
		})
	}
}

func TestParsePagesRanges(t *testing.T) {
	for _, input := range []string{"1-3", " 1-3 ", " 1 - 3 ", "1to3", " 1to3 ", " 1 to 3 ", "1 TO 3", "1To3", "1-1,2-3"} {
		t.Run(input, func(t *testing.T) {
			sel, err := ParsePages(input)
			require.NoError(t, err)
			assert.Equal(t, refs(1, 2, 3), sel.Refs())
		})
	}

	sel, err := ParsePages("2 to 6")
	require.NoError(t, err)
	assert.Equal(t, refs(2, 3, 4, 5, 6), sel.Refs())

	sel, err = ParsePages("4-4")
	require.NoError(t, err)
	assert.Equal(t, refs(4), sel.Refs())
}

func TestParsePagesFromEnd(t *testing.T) {
	cases := []struct {
		input string
		spans []Span
	}{
		{"$", []Span{{-1, -1}}},
		{"$2", []Span{{-2, -2}}},
		{" $ 2 ", []Span{{-2, -2}}},
		{"2-$", []Span{{2, -1}}},
		{"2to$", []Span{{2, -1}}},
		{"2-$2", []Span{{2, -2}}},
		{"2-", []Span{{2, -1}}},
		{"$3-", []Span{{-3, -1}}},
		{"-$3", []Span{{-3, -1}}},
		{"$3-$", []Span{{-3, -1}}},
		{"$3 to $2", []Span{{-3, -2}}},
		{"1,$", []Span{{1, 1}, {-1, -1}}},
		{"1,3-$,$2", []Span{{1, 1}, {3, -1}, {-2, -2}}},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			sel, err := ParsePages(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.spans, sel.Spans())
		})
	}
}

func TestParsePagesRefsKeepsOpenRangePairs(t *testing.T) {
	sel, err := ParsePages("2-")
	require.NoError(t, err)
	assert.Equal(t, refs(2, -1), sel.Refs())

	sel, err = ParsePages("1,$2-$")
	require.NoError(t, err)
	assert.Equal(t, refs(1, -2, -1), sel.Refs())
}

func TestParsePagesAll(t *testing.T) {
	for _, input := range []any{nil, "all", " ALL ", "All", All, (*Selector)(nil)} {
		sel, err := ParsePages(input)
		require.NoError(t, err, "%v", input)
		assert.True(t, sel.IsAll(), "%v", input)
		assert.Equal(t, "all", sel.String())
	}
}

func TestParsePagesNumbers(t *testing.T) {
	cases := []struct {
		input any
		refs  []PageRef
	}{
		{2, refs(2)},
		{-1, refs(-1)},
		{int64(7), refs(7)},
		{uint8(3), refs(3)},
		{float64(4), refs(4)},
		{PageRef(-2), refs(-2)},
		{[]int{2, 3, 6}, refs(2, 3, 6)},
		{[]int{3, -1, 3}, refs(3, -1, 3)},
		{[]string{"2", "3", "6"}, refs(2, 3, 6)},
		{[]string{" 2", "$", "$2"}, refs(2, -1, -2)},
		{[]any{1, "2", float64(3), "$"}, refs(1, 2, 3, -1)},
		{[]PageRef{5, 1}, refs(5, 1)},
		{[]int{}, []PageRef{}},
	}

	for _, tc := range cases {
		sel, err := ParsePages(tc.input)
		require.NoError(t, err, "%v", tc.input)
		assert.False(t, sel.IsAll())
		assert.Equal(t, tc.refs, sel.Refs(), "%v", tc.input)
	}
}

func TestParsePagesInvalid(t *testing.T) {
	invalid := []any{
		"",
		"   ",
		"-1to-3",
		"1--3",
		"1 until 3",
		"10e3",
		"-3",
		"$-3",
		"0",
		"1,0",
		"$0",
		"1,,2",
		",1",
		"1,",
		"1-2-3",
		"a",
		"1.5",
		"$$",
		"+1",
		"to3",
		"1to",
		map[string]int{},
		struct{}{},
		true,
		0,
		1.5,
		[]string{"1-3"},
		[]string{"all"},
		[]string{""},
		[]any{[]int{1}},
		[]any{nil},
		[]int{1, 0},
	}

	for _, input := range invalid {
		_, err := ParsePages(input)
		require.Error(t, err, "%#v", input)
		assert.True(t, errors.Is(err, ErrInvalidSelector), "%#v: %v", input, err)
	}
}

func TestParsePagesErrorNamesInput(t *testing.T) {
	_, err := ParsePages("1 until 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"1 until 3"`)

	var selErr *SelectorError
	require.True(t, errors.As(err, &selErr))
	assert.Equal(t, "1 until 3", selErr.Input)
}

func TestParsePagesReversedRange(t *testing.T) {
	_, err := ParsePages("5-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSelector)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = ParsePages("1,6 to 3")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestStrictParserRejectsBareOpenRanges(t *testing.T) {
	parser, err := NewParser("$", true)
	require.NoError(t, err)

	_, err = parser.Parse("1-")
	assert.ErrorIs(t, err, ErrInvalidSelector)

	sel, err := parser.Parse("1-$")
	require.NoError(t, err)
	assert.Equal(t, []Span{{1, -1}}, sel.Spans())

	sel, err = parser.Parse("$2-")
	require.NoError(t, err)
	assert.Equal(t, []Span{{-2, -1}}, sel.Spans())
}

func TestParserCustomPlaceholder(t *testing.T) {
	parser, err := NewParser("#", false)
	require.NoError(t, err)

	sel, err := parser.Parse("1,#2,3-#")
	require.NoError(t, err)
	assert.Equal(t, []Span{{1, 1}, {-2, -2}, {3, -1}}, sel.Spans())

	_, err = parser.Parse("$")
	assert.ErrorIs(t, err, ErrInvalidSelector)

	sel, err = parser.Parse([]string{"#"})
	require.NoError(t, err)
	assert.Equal(t, refs(-1), sel.Refs())
}

func TestNewParserRejectsAmbiguousPlaceholders(t *testing.T) {
	for _, placeholder := range []string{"", "ab", "t", "7", "-", ",", " "} {
		_, err := NewParser(placeholder, false)
		assert.Error(t, err, "%q", placeholder)
	}
}

func TestSelectorString(t *testing.T) {
	sel, err := ParsePages(" 1, 3 - 5, $2, 7-$ ")
	require.NoError(t, err)
	assert.Equal(t, "1,3-5,$2,7-$", sel.String())

	assert.Equal(t, "2,$", Pages(2, -1).String())
	assert.Equal(t, "$3-$", Ranges(Span{-3, -1}).String())
}

func TestParsePagesRejectsHugeNumbers(t *testing.T) {
	for _, input := range []any{
		"2147483648",
		"1-9999999999999",
		"1-2147483648",
		"$2147483648",
		"99999999999999999999999",
		int64(math.MaxInt32) + 1,
		uint(math.MaxUint64),
		uint64(math.MaxUint64),
		uint32(math.MaxUint32),
		[]any{uint(math.MaxUint64)},
	} {
		_, err := ParsePages(input)
		assert.ErrorIs(t, err, ErrInvalidSelector, "%v", input)
	}

	sel, err := ParsePages("2147483647")
	require.NoError(t, err)
	assert.Equal(t, refs(math.MaxInt32), sel.Refs())

	sel, err = ParsePages(uint16(7))
	require.NoError(t, err)
	assert.Equal(t, refs(7), sel.Refs())
}

func TestSelectorRefCount(t *testing.T) {
	cases := map[string]int64{
		"1":             1,
		"1,2,3":         3,
		"1-3,5":         4,
		"2-$":           2,
		"-$3":           2,
		"1-2147483647":  math.MaxInt32,
		"1-10,20-30,$2": 22,
	}
	for input, expected := range cases {
		sel, err := ParsePages(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, sel.RefCount(), input)
		if expected < 1000 {
			assert.Len(t, sel.Refs(), int(expected), input)
		}
	}
	assert.Zero(t, All.RefCount())
}

func TestSelectorStringUsesParserPlaceholder(t *testing.T) {
	parser, err := NewParser("#", false)
	require.NoError(t, err)

	for input, expected := range map[any]string{
		"1,#2,3-#": "1,#2,3-#",
		"-#3":      "#3-#",
		"#":        "#",
	} {
		sel, err := parser.Parse(input)
		require.NoError(t, err)
		assert.Equal(t, expected, sel.String())

		// the output parses back to the same spans
		again, err := parser.Parse(sel.String())
		require.NoError(t, err)
		assert.Equal(t, sel.Spans(), again.Spans())
	}

	sel, err := parser.Parse([]string{"#2", "1"})
	require.NoError(t, err)
	assert.Equal(t, "#2,1", sel.String())

	sel, err = parser.Parse(-1)
	require.NoError(t, err)
	assert.Equal(t, "#", sel.String())

	assert.Equal(t, "$2", Pages(-2).String())
}
