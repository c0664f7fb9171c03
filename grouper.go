package linse

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultMissing is the template for segments missing from a conversion
// table. "{}" is replaced by the segment.
const DefaultMissing = "«{}»"

// Inventory is a set of known multi-character segments.
type Inventory interface {
	Has(segment string) bool
}

// Graphemes is a plain set of segments.
type Graphemes map[string]struct{}

// NewGraphemes builds a set from segments.
func NewGraphemes(segments ...string) Graphemes {
	g := make(Graphemes, len(segments))
	for _, s := range segments {
		g[s] = struct{}{}
	}
	return g
}

// Has reports whether segment is in the set.
func (g Graphemes) Has(segment string) bool {
	_, ok := g[segment]
	return ok
}

// ConversionTable maps a segment to its row of column values.
type ConversionTable map[string]map[string]string

// Has reports whether segment has a row.
func (t ConversionTable) Has(segment string) bool {
	_, ok := t[segment]
	return ok
}

// Segment splits word into the longest segments known to inv, scanning left
// to right. A character that starts no known segment becomes a segment of
// its own. The empty word yields a single empty segment.
func Segment(word string, inv Inventory) []string {
	if word == "" {
		return []string{""}
	}
	rs := []rune(word)
	var out []string
	for i := 0; i < len(rs); {
		j := len(rs)
		for ; j > i+1; j-- {
			if inv.Has(string(rs[i:j])) {
				break
			}
		}
		out = append(out, string(rs[i:j]))
		i = j
	}
	return out
}

// Convert maps every segment to its value in column. A segment without a
// row is rendered through the missing template; a row without the column
// renders "column--<column>-not-found" through the same template.
func Convert(segments []string, table ConversionTable, column, missing string) []string {
	if missing == "" {
		missing = DefaultMissing
	}
	out := make([]string, len(segments))
	for i, seg := range segments {
		row, ok := table[seg]
		if !ok {
			out[i] = fillMissing(missing, seg)
			continue
		}
		v, ok := row[column]
		if !ok {
			out[i] = fillMissing(missing, "column--"+column+"-not-found")
			continue
		}
		out[i] = v
	}
	return out
}

func fillMissing(template, segment string) string {
	return strings.ReplaceAll(template, "{}", segment)
}

// Unorm applies the named Unicode normalization form ("NFC", "NFD",
// "NFKC", "NFKD") to s. An empty form leaves s unchanged.
func Unorm(form, s string) (string, error) {
	switch strings.ToUpper(form) {
	case "":
		return s, nil
	case "NFC":
		return norm.NFC.String(s), nil
	case "NFD":
		return norm.NFD.String(s), nil
	case "NFKC":
		return norm.NFKC.String(s), nil
	case "NFKD":
		return norm.NFKD.String(s), nil
	}
	return "", fmt.Errorf("%w: unknown normalization form %q", ErrInvalidInput, form)
}

// SegmentGrouper segments text with a conversion table and converts the
// segments to one of the table's columns.
type SegmentGrouper struct {
	table    ConversionTable
	order    []string
	columns  []string
	form     string
	missing  string
	null     string
	grapheme string
}

// GrouperOption configures a SegmentGrouper.
type GrouperOption func(*SegmentGrouper)

// WithNormalization sets the Unicode normalization applied to table values
// and input text. Default "NFD"; "" disables normalization.
func WithNormalization(form string) GrouperOption {
	return func(g *SegmentGrouper) { g.form = form }
}

// WithMissing sets the template for unknown segments. Default DefaultMissing.
func WithMissing(template string) GrouperOption {
	return func(g *SegmentGrouper) { g.missing = template }
}

// WithNull sets the value that marks a segment to be dropped from the
// output. Default "NULL".
func WithNull(null string) GrouperOption {
	return func(g *SegmentGrouper) { g.null = null }
}

// WithGraphemeColumn sets the column holding the source segments.
// Default "Sequence".
func WithGraphemeColumn(column string) GrouperOption {
	return func(g *SegmentGrouper) { g.grapheme = column }
}

// NewSegmentGrouper builds a grouper from table rows. The columns are the
// grapheme column followed by the remaining columns of the first row in
// sorted order. Later rows override earlier rows for the same grapheme.
func NewSegmentGrouper(rows []map[string]string, opts ...GrouperOption) (*SegmentGrouper, error) {
	g := &SegmentGrouper{
		table:    make(ConversionTable, len(rows)),
		form:     "NFD",
		missing:  DefaultMissing,
		null:     "NULL",
		grapheme: "Sequence",
	}
	for _, o := range opts {
		o(g)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty conversion table", ErrInvalidInput)
	}
	if _, err := Unorm(g.form, ""); err != nil {
		return nil, err
	}

	var rest []string
	for k := range rows[0] {
		if k != g.grapheme {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	g.columns = append([]string{g.grapheme}, rest...)

	for i, row := range rows {
		src, ok := row[g.grapheme]
		if !ok {
			return nil, fmt.Errorf("%w: row %d has no %q column", ErrUnknownColumn, i+1, g.grapheme)
		}
		key := g.norm(src)
		if _, seen := g.table[key]; !seen {
			g.order = append(g.order, key)
		}
		conv := make(map[string]string, len(g.columns))
		for _, c := range g.columns {
			if v, ok := row[c]; ok {
				conv[c] = g.norm(v)
			}
		}
		g.table[key] = conv
	}
	return g, nil
}

// GrouperFromFile reads the conversion table from a delimited file.
func GrouperFromFile(path, delim string, opts ...GrouperOption) (*SegmentGrouper, error) {
	t, err := ReadTableFile(path, delim)
	if err != nil {
		return nil, err
	}
	return NewSegmentGrouper(t.Rows, opts...)
}

// GrouperFromTable builds a grouper from a header row followed by data rows.
func GrouperFromTable(table [][]string, opts ...GrouperOption) (*SegmentGrouper, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty conversion table", ErrInvalidInput)
	}
	header := table[0]
	rows := make([]map[string]string, 0, len(table)-1)
	for _, r := range table[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(r) {
				row[h] = r[i]
			}
		}
		rows = append(rows, row)
	}
	return NewSegmentGrouper(rows, opts...)
}

// GrouperFromWords builds a grouper whose table lists every segment of the
// segmented words with its frequency.
func GrouperFromWords(words [][]string, opts ...GrouperOption) (*SegmentGrouper, error) {
	return NewSegmentGrouper(RetrieveConverter(words, "Sequence", "Frequency"), opts...)
}

// RetrieveConverter counts the segments of words. Rows are returned in
// order of first occurrence.
func RetrieveConverter(words [][]string, graphemeColumn, frequencyColumn string) []map[string]string {
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		for _, seg := range w {
			if _, ok := counts[seg]; !ok {
				order = append(order, seg)
			}
			counts[seg]++
		}
	}
	rows := make([]map[string]string, len(order))
	for i, seg := range order {
		rows[i] = map[string]string{
			graphemeColumn:  seg,
			frequencyColumn: strconv.Itoa(counts[seg]),
		}
	}
	return rows
}

func (g *SegmentGrouper) norm(s string) string {
	out, err := Unorm(g.form, s)
	if err != nil {
		return s
	}
	return out
}

// Columns returns the table columns, grapheme column first.
func (g *SegmentGrouper) Columns() []string {
	return append([]string(nil), g.columns...)
}

// Row returns the table row of a normalized grapheme.
func (g *SegmentGrouper) Row(grapheme string) (map[string]string, bool) {
	row, ok := g.table[grapheme]
	if !ok {
		return nil, false
	}
	cp := make(map[string]string, len(row))
	for k, v := range row {
		cp[k] = v
	}
	return cp, true
}

// Table returns the underlying conversion table.
func (g *SegmentGrouper) Table() ConversionTable { return g.table }

// Group normalizes text, segments it with the table and converts the
// segments to column. An empty column selects the grapheme column. Segments
// converting to the null marker are dropped.
func (g *SegmentGrouper) Group(text, column string) ([]string, error) {
	if column == "" {
		column = g.grapheme
	}
	found := false
	for _, c := range g.columns {
		if c == column {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: the column %q is not available", ErrUnknownColumn, column)
	}
	converted := Convert(Segment(g.norm(text), g.table), g.table, column, g.missing)
	out := converted[:0]
	for _, c := range converted {
		if c != g.null {
			out = append(out, c)
		}
	}
	return out, nil
}

// ToTable returns the header row followed by one row per grapheme in
// insertion order.
func (g *SegmentGrouper) ToTable() [][]string {
	out := [][]string{g.Columns()}
	for _, key := range g.order {
		row := g.table[key]
		r := make([]string, len(g.columns))
		for i, c := range g.columns {
			r[i] = row[c]
		}
		out = append(out, r)
	}
	return out
}

// Write stores the table as a delimited file.
func (g *SegmentGrouper) Write(path, delim string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	t := g.ToTable()
	if err := WriteTable(f, t[0], t[1:], delim); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
