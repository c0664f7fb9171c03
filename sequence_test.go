package linse

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSequence(t *testing.T) {
	ints, err := ParseSequence(Ints, "1 2  3")
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	if got := ints.String(); got != "1 2 3" {
		t.Errorf("String() = %q, want %q", got, "1 2 3")
	}
	again, err := ParseSequence(Ints, ints.String())
	if err != nil || !cmp.Equal(ints.Items(), again.Items()) {
		t.Errorf("round trip = %v, %v, want %v", again.Items(), err, ints.Items())
	}
	if _, err := ParseSequence(Ints, "1 x"); err == nil {
		t.Error("ParseSequence(Ints, \"1 x\") returned nil error")
	}

	floats, err := ParseSequence(Floats, "0 1.5 2")
	if err != nil {
		t.Fatalf("ParseSequence(Floats): %v", err)
	}
	if got, want := floats.String(), "0.0 1.5 2.0"; got != want {
		t.Errorf("Floats String() = %q, want %q", got, want)
	}
}

func TestFromValues(t *testing.T) {
	if _, err := FromValues(Ints, []any{1, "2"}, true); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("strict FromValues error = %v, want ErrInvalidInput", err)
	}
	q, err := FromValues(Ints, []any{1, "2", 3.0}, false)
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, q.Items()); diff != "" {
		t.Errorf("FromValues mismatch (-want +got):\n%s", diff)
	}
	if _, err := FromValues(Segments, []any{"a", ""}, true); err == nil {
		t.Error("FromValues with an empty segment returned nil error")
	}
}

func TestSequence_Edit(t *testing.T) {
	q := NewSequence(Segments, "a", "b")
	if err := q.Append("2 3"); err == nil {
		t.Error("Append(\"2 3\") returned nil error")
	}
	if err := q.Append("c"); err != nil {
		t.Errorf("Append(\"c\"): %v", err)
	}
	if err := q.Set(0, ""); err == nil {
		t.Error("Set(0, \"\") returned nil error")
	}
	q.Delete(1)
	if got := q.String(); got != "a c" {
		t.Errorf("after edits String() = %q, want %q", got, "a c")
	}
	if got := q.Concat(NewSequence(Segments, "d")).Slice(1, 3).String(); got != "c d" {
		t.Errorf("Concat+Slice = %q, want %q", got, "c d")
	}
	b, err := json.Marshal(NewSequence(Ints))
	if err != nil || string(b) != "[]" {
		t.Errorf("Marshal(empty) = %s, %v, want []", b, err)
	}
}

func TestParseWord(t *testing.T) {
	w, err := ParseWord("a b c + d e f", "")
	if err != nil {
		t.Fatalf("ParseWord: %v", err)
	}
	ms := w.Morphemes()
	if len(ms) != 2 || ms[0].String() != "a b c" {
		t.Errorf("Morphemes() = %v, want [a b c] [d e f]", ms)
	}
	if got := w.Len(); got != 6 {
		t.Errorf("Len() = %d, want 6", got)
	}
	if got := w.String(); got != "a b c + d e f" {
		t.Errorf("String() = %q", got)
	}
	if err := w.Append("g"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e", "f", "g"}, w.Segments()); diff != "" {
		t.Errorf("Segments mismatch (-want +got):\n%s", diff)
	}
	if err := w.Replace(5, NewSequence(Segments, "x")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Replace(5) error = %v, want ErrInvalidInput", err)
	}
	w.AddMorpheme(NewSequence(Segments))
	if got := len(w.Morphemes()); got != 2 {
		t.Errorf("AddMorpheme(empty) gave %d morphemes, want 2", got)
	}

	empty, err := ParseWord("  ", "")
	if err != nil || empty.Len() != 0 {
		t.Errorf("ParseWord(blank) = %v, %v", empty, err)
	}
}
