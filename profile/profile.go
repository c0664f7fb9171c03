// Package profile drafts orthography profiles: tables of the graphemes
// found in a word list, with their frequency, examples and suggested
// sound-class and IPA values.
//
// A DraftProfile is safe for concurrent use.
package profile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lingpy/linse"
)

// Form is one word of a word list: its transcription plus arbitrary
// metadata such as ID or Language_ID.
type Form struct {
	Text   string
	Fields map[string]string
}

// Field returns a metadata value, or "" when absent.
func (f Form) Field(name string) string {
	return f.Fields[name]
}

// Segmenter splits a transcription into graphemes.
type Segmenter func(text string) ([]string, error)

// Column computes one profile cell for a grapheme from the forms it
// occurs in.
type Column func(grapheme string, forms []Form) string

// Option configures a DraftProfile.
type Option func(*DraftProfile)

// WithPreceding sets a marker prepended to the first grapheme of each form.
func WithPreceding(marker string) Option {
	return func(p *DraftProfile) { p.preceding = marker }
}

// WithFollowing sets a marker appended to the last grapheme of each form.
func WithFollowing(marker string) Option {
	return func(p *DraftProfile) { p.following = marker }
}

// WithSegmenter replaces the IPA tokenizer with a custom segmenter.
func WithSegmenter(seg Segmenter) Option {
	return func(p *DraftProfile) { p.segment = seg }
}

// WithTokenizeOptions adds options to the default IPA tokenizer. They are
// applied after the profile defaults, so they can override them.
func WithTokenizeOptions(opts ...linse.TokenizeOption) Option {
	return func(p *DraftProfile) { p.tokenize = append(p.tokenize, opts...) }
}

// WithWorkers bounds the number of forms segmented concurrently.
func WithWorkers(n int) Option {
	return func(p *DraftProfile) { p.workers = n }
}

// WithLogger sets the logger used for per-form diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *DraftProfile) { p.log = l }
}

type exceptionKey struct {
	form string
	err  string
}

// DraftProfile collects graphemes over a word list.
type DraftProfile struct {
	store     *linse.Store
	segment   Segmenter
	tokenize  []linse.TokenizeOption
	preceding string
	following string
	workers   int
	log       logrus.FieldLogger

	mu         sync.Mutex
	graphemes  map[string][]Form
	exceptions map[exceptionKey][]Form
	excOrder   []exceptionKey
	counter    int
}

// New returns an empty profile backed by store.
func New(store *linse.Store, opts ...Option) *DraftProfile {
	p := &DraftProfile{
		store:      store,
		tokenize:   linse.ProfileTokenizeOptions(),
		workers:    runtime.GOMAXPROCS(0),
		log:        store.Logger(),
		graphemes:  make(map[string][]Form),
		exceptions: make(map[exceptionKey][]Form),
	}
	for _, o := range opts {
		o(p)
	}
	if p.segment == nil {
		tok := p.tokenize
		p.segment = func(text string) ([]string, error) {
			return store.IPA(text, tok...)
		}
	}
	return p
}

// AddTexts adds plain transcriptions, numbering them with running IDs.
func (p *DraftProfile) AddTexts(ctx context.Context, texts ...string) error {
	p.mu.Lock()
	forms := make([]Form, len(texts))
	for i, t := range texts {
		p.counter++
		forms[i] = Form{Text: t, Fields: map[string]string{"ID": strconv.Itoa(p.counter)}}
	}
	p.mu.Unlock()
	return p.AddForms(ctx, forms...)
}

type segmented struct {
	segments []string
	err      error
}

// AddForms segments forms concurrently and adds their graphemes. A form
// that cannot be segmented is recorded as an exception. Only cancellation
// of ctx returns an error.
func (p *DraftProfile) AddForms(ctx context.Context, forms ...Form) error {
	results := make([]segmented, len(forms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.workers, 1))
	for i, f := range forms {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			segs, err := p.segment(f.Text)
			results[i] = segmented{segments: segs, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, f := range forms {
		r := results[i]
		if r.err == nil && len(r.segments) == 0 {
			r.err = errors.New("no segments")
		}
		if r.err != nil {
			key := exceptionKey{form: f.Text, err: r.err.Error()}
			if _, ok := p.exceptions[key]; !ok {
				p.excOrder = append(p.excOrder, key)
			}
			p.exceptions[key] = append(p.exceptions[key], f)
			p.log.WithField("form", f.Text).WithError(r.err).Debug("form not segmented")
			continue
		}
		segs := append([]string(nil), r.segments...)
		segs[0] = p.preceding + segs[0]
		segs[len(segs)-1] += p.following
		for _, s := range segs {
			if s != "" {
				p.graphemes[s] = append(p.graphemes[s], f)
			}
		}
	}
	return nil
}

// Frequencies returns the number of occurrences of every grapheme.
func (p *DraftProfile) Frequencies() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]int, len(p.graphemes))
	for g, forms := range p.graphemes {
		out[g] = len(forms)
	}
	return out
}

// ExceptionCounts returns the number of forms per (form, error) pair.
func (p *DraftProfile) ExceptionCounts() map[[2]string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[[2]string]int, len(p.exceptions))
	for k, forms := range p.exceptions {
		out[[2]string{k.form, k.err}] = len(forms)
	}
	return out
}

// Columns available without custom transforms.
const (
	ColGrapheme   = "Grapheme"
	ColSCA        = "SCA"
	ColIPA        = "IPA"
	ColCLTS       = "CLTS"
	ColUnicode    = "Unicode"
	ColExamples   = "Examples"
	ColFrequency  = "Frequency"
	ColLanguages  = "Languages"
	ColSuggestion = "Suggestion"
)

func (p *DraftProfile) builtinColumns() map[string]Column {
	classify := func(model string) Column {
		return func(g string, _ []Form) string {
			c, err := p.store.Classify(g, model)
			if err != nil {
				return "?"
			}
			return c
		}
	}
	return map[string]Column{
		ColGrapheme: func(g string, _ []Form) string { return g },
		ColSCA:      classify("sca"),
		ColIPA:      classify("bipa"),
		ColCLTS:     classify("clts"),
		ColUnicode: func(g string, _ []Form) string {
			return linse.Codepoints([]string{g})[0]
		},
		ColExamples: func(_ string, forms []Form) string {
			texts := uniqueSorted(forms, func(f Form) string { return f.Text })
			if len(texts) > 3 {
				texts = texts[:3]
			}
			return strings.Join(texts, ", ")
		},
		ColFrequency: func(_ string, forms []Form) string {
			return strconv.Itoa(len(forms))
		},
		ColLanguages: func(_ string, forms []Form) string {
			return strings.Join(uniqueSorted(forms, func(f Form) string { return f.Field("Language_ID") }), ", ")
		},
		ColSuggestion: func(g string, _ []Form) string {
			if c, err := p.store.Classify(g, "sca"); err == nil && c != linse.Replacement {
				return ""
			}
			sugg, err := p.store.Suggest(g, "sca", 1)
			if err != nil || len(sugg) == 0 {
				return ""
			}
			return sugg[0].Grapheme
		},
	}
}

func uniqueSorted(forms []Form, get func(Form) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range forms {
		v := get(f)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Profile returns the profile as a header row followed by one row per
// grapheme. Without columns only the Grapheme column is produced.
// transforms add or override columns. Rows are sorted lexicographically
// unless less is given.
func (p *DraftProfile) Profile(columns []string, transforms map[string]Column, less func(a, b []string) bool) ([][]string, error) {
	if len(columns) == 0 {
		columns = []string{ColGrapheme}
	}
	available := p.builtinColumns()
	for name, col := range transforms {
		available[name] = col
	}
	var unknown []string
	for _, c := range columns {
		if _, ok := available[c]; !ok {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", linse.ErrUnknownColumn, strings.Join(unknown, ", "))
	}

	p.mu.Lock()
	rows := make([][]string, 0, len(p.graphemes))
	for g, forms := range p.graphemes {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = available[c](g, forms)
		}
		rows = append(rows, row)
	}
	p.mu.Unlock()

	if less == nil {
		less = lexicographic
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	return append([][]string{append([]string(nil), columns...)}, rows...), nil
}

func lexicographic(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Exceptions returns the forms that could not be segmented as a table with
// the columns Lexeme, Replacement and Comment.
func (p *DraftProfile) Exceptions() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	table := [][]string{{"Lexeme", "Replacement", "Comment"}}
	for _, k := range p.excOrder {
		n := len(p.exceptions[k])
		table = append(table, []string{k.form, "?", fmt.Sprintf("%s (%d cases)", k.err, n)})
	}
	return table
}

// Write stores the profile as a tab-separated file.
func (p *DraftProfile) Write(path string, columns []string, transforms map[string]Column) error {
	table, err := p.Profile(columns, transforms, nil)
	if err != nil {
		return err
	}
	return writeTSV(path, table)
}

// WriteExceptions stores the exception table as a tab-separated file.
func (p *DraftProfile) WriteExceptions(path string) error {
	return writeTSV(path, p.Exceptions())
}

func writeTSV(path string, table [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := linse.WriteTable(f, table[0], table[1:], "\t"); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadCLDF reads the forms of a CLDF FormTable (comma separated, with a
// header row). textColumn selects the transcription column, "Form" when
// empty. A non-empty language keeps only rows with that Language_ID.
func ReadCLDF(r io.Reader, textColumn, language string) ([]Form, error) {
	if textColumn == "" {
		textColumn = "Form"
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	textIdx := -1
	for i, h := range header {
		if h == textColumn {
			textIdx = i
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("%w: %q", linse.ErrUnknownColumn, textColumn)
	}

	var forms []Form
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				fields[h] = rec[i]
			}
		}
		if language != "" && fields["Language_ID"] != language {
			continue
		}
		forms = append(forms, Form{Text: fields[textColumn], Fields: fields})
	}
	return forms, nil
}

// FromCLDF builds a profile from a CLDF forms file on disk.
func FromCLDF(ctx context.Context, store *linse.Store, path, textColumn, language string, opts ...Option) (*DraftProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	forms, err := ReadCLDF(f, textColumn, language)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p := New(store, opts...)
	if err := p.AddForms(ctx, forms...); err != nil {
		return nil, err
	}
	return p, nil
}
