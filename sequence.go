package linse

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Codec converts between the items of a Sequence and their textual form.
type Codec[T any] struct {
	// Name is used in error messages.
	Name string
	// Parse converts a single whitespace-free field to an item.
	Parse func(string) (T, error)
	// Format renders an item. Formatted items must parse back to the same value.
	Format func(T) string
	// Validate, if set, checks items added without parsing.
	Validate func(T) error
}

// Ints is the codec for integer sequences such as sonority profiles.
var Ints = Codec[int]{
	Name:   "int",
	Parse:  strconv.Atoi,
	Format: strconv.Itoa,
}

// Floats is the codec for float sequences such as prosodic weights.
// Whole numbers are rendered with a trailing ".0".
var Floats = Codec[float64]{
	Name: "float",
	Parse: func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	},
	Format: formatFloat,
}

// Segments is the codec for segment sequences: every item is a non-empty
// string without whitespace.
var Segments = Codec[string]{
	Name: "segment",
	Parse: func(s string) (string, error) {
		return s, validSegment(s)
	},
	Format:   func(s string) string { return s },
	Validate: validSegment,
}

func validSegment(s string) error {
	if s == "" || strings.ContainsAny(s, " \t\n\r") {
		return &InvalidInputError{Input: s, Reason: "invalid segment"}
	}
	return nil
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(s, ".eE") {
		return s
	}
	return s + ".0"
}

// Sequence is an ordered list of items of one type with a canonical
// space-separated string form.
type Sequence[T any] struct {
	codec Codec[T]
	items []T
}

// NewSequence returns a sequence holding items.
func NewSequence[T any](c Codec[T], items ...T) Sequence[T] {
	return Sequence[T]{codec: c, items: append([]T(nil), items...)}
}

// ParseSequence splits s on whitespace and parses every field.
func ParseSequence[T any](c Codec[T], s string) (Sequence[T], error) {
	fields := strings.Fields(s)
	q := Sequence[T]{codec: c, items: make([]T, 0, len(fields))}
	for _, f := range fields {
		v, err := c.Parse(f)
		if err != nil {
			return Sequence[T]{}, fmt.Errorf("parse %s %q: %w", c.Name, f, err)
		}
		q.items = append(q.items, v)
	}
	return q, nil
}

// FromValues builds a sequence from arbitrary values. Values that already
// have type T are taken as they are. Other values are rejected in strict
// mode and otherwise coerced by parsing their default text form.
func FromValues[T any](c Codec[T], values []any, strict bool) (Sequence[T], error) {
	q := Sequence[T]{codec: c, items: make([]T, 0, len(values))}
	for _, v := range values {
		item, err := q.coerce(v, strict)
		if err != nil {
			return Sequence[T]{}, err
		}
		q.items = append(q.items, item)
	}
	return q, nil
}

func (q Sequence[T]) coerce(v any, strict bool) (T, error) {
	var zero T
	if item, ok := v.(T); ok {
		if q.codec.Validate != nil {
			if err := q.codec.Validate(item); err != nil {
				return zero, err
			}
		}
		return item, nil
	}
	if strict {
		return zero, fmt.Errorf("%w: %v (%T) is not a %s", ErrInvalidInput, v, v, q.codec.Name)
	}
	item, err := q.codec.Parse(fmt.Sprint(v))
	if err != nil {
		return zero, fmt.Errorf("coerce %v to %s: %w", v, q.codec.Name, err)
	}
	return item, nil
}

// Len returns the number of items.
func (q Sequence[T]) Len() int { return len(q.items) }

// At returns the item at index i.
func (q Sequence[T]) At(i int) T { return q.items[i] }

// Items returns a copy of the items.
func (q Sequence[T]) Items() []T { return append([]T(nil), q.items...) }

// Slice returns the sub-sequence [i:j] with the same codec.
func (q Sequence[T]) Slice(i, j int) Sequence[T] {
	return NewSequence(q.codec, q.items[i:j]...)
}

// Concat returns a new sequence holding q followed by other.
func (q Sequence[T]) Concat(other Sequence[T]) Sequence[T] {
	out := NewSequence(q.codec, q.items...)
	out.items = append(out.items, other.items...)
	return out
}

// Append adds items to the end of the sequence.
func (q *Sequence[T]) Append(items ...T) error {
	for _, it := range items {
		if q.codec.Validate != nil {
			if err := q.codec.Validate(it); err != nil {
				return err
			}
		}
	}
	q.items = append(q.items, items...)
	return nil
}

// Set replaces the item at index i.
func (q *Sequence[T]) Set(i int, item T) error {
	if q.codec.Validate != nil {
		if err := q.codec.Validate(item); err != nil {
			return err
		}
	}
	q.items[i] = item
	return nil
}

// Delete removes the item at index i.
func (q *Sequence[T]) Delete(i int) {
	q.items = append(q.items[:i], q.items[i+1:]...)
}

// String joins the formatted items with single spaces. The result parses
// back to an equal sequence.
func (q Sequence[T]) String() string {
	parts := make([]string, len(q.items))
	for i, it := range q.items {
		parts[i] = q.codec.Format(it)
	}
	return strings.Join(parts, " ")
}

// MarshalJSON encodes the items as a JSON array.
func (q Sequence[T]) MarshalJSON() ([]byte, error) {
	if q.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q.items)
}

// DefaultMorphemeSeparator separates morphemes in the text form of a Word.
const DefaultMorphemeSeparator = " + "

// Word is a segment sequence divided into morphemes.
type Word struct {
	sep       string
	morphemes []Sequence[string]
}

// ParseWord reads a word such as "t a + b a". An empty sep selects
// DefaultMorphemeSeparator.
func ParseWord(text, sep string) (Word, error) {
	if sep == "" {
		sep = DefaultMorphemeSeparator
	}
	w := Word{sep: sep}
	if strings.TrimSpace(text) == "" {
		return w, nil
	}
	for _, part := range strings.Split(text, sep) {
		m, err := ParseSequence(Segments, part)
		if err != nil {
			return Word{}, err
		}
		w.morphemes = append(w.morphemes, m)
	}
	return w, nil
}

// Morphemes returns the morphemes of the word.
func (w Word) Morphemes() []Sequence[string] {
	return append([]Sequence[string](nil), w.morphemes...)
}

// Segments returns all segments without morpheme boundaries.
func (w Word) Segments() []string {
	var out []string
	for _, m := range w.morphemes {
		out = append(out, m.items...)
	}
	return out
}

// Len returns the number of segments.
func (w Word) Len() int {
	n := 0
	for _, m := range w.morphemes {
		n += m.Len()
	}
	return n
}

// AddMorpheme appends m as a new morpheme. Empty morphemes are ignored.
func (w *Word) AddMorpheme(m Sequence[string]) {
	if m.Len() == 0 {
		return
	}
	w.morphemes = append(w.morphemes, NewSequence(Segments, m.items...))
}

// Append adds a segment to the last morpheme, starting one if needed.
func (w *Word) Append(segment string) error {
	if err := validSegment(segment); err != nil {
		return err
	}
	if len(w.morphemes) == 0 {
		w.morphemes = append(w.morphemes, NewSequence(Segments))
	}
	return w.morphemes[len(w.morphemes)-1].Append(segment)
}

// Replace swaps morpheme i for m.
func (w *Word) Replace(i int, m Sequence[string]) error {
	if i < 0 || i >= len(w.morphemes) {
		return fmt.Errorf("%w: morpheme index %d out of range", ErrInvalidInput, i)
	}
	w.morphemes[i] = NewSequence(Segments, m.items...)
	return nil
}

func (w Word) String() string {
	sep := w.sep
	if sep == "" {
		sep = DefaultMorphemeSeparator
	}
	parts := make([]string, len(w.morphemes))
	for i, m := range w.morphemes {
		parts[i] = m.String()
	}
	return strings.Join(parts, sep)
}
