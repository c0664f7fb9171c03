package linse

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnnotateWord(t *testing.T) {
	s := testStore(t)
	got := s.AnnotateWord("manta", AnnotateOptions{Format: FormatCV})
	want := Annotation{
		Word:      "manta",
		Segments:  []string{"m", "a", "n", "t", "a"},
		Classes:   []string{"M", "A", "N", "T", "A"},
		Prosody:   []string{"C", "V", "C", "C", "V"},
		Syllables: [][]string{{"m", "a", "n"}, {"t", "a"}},
	}
	if diff := cmp.Diff(want, got, cmpIgnoreWeights); diff != "" {
		t.Errorf("AnnotateWord(manta) mismatch (-want +got):\n%s", diff)
	}
	if len(got.Weights) != len(got.Segments) {
		t.Errorf("len(Weights) = %d, want %d", len(got.Weights), len(got.Segments))
	}
}

var cmpIgnoreWeights = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".Weights"
}, cmp.Ignore())

func TestAnnotate(t *testing.T) {
	s := testStore(t)
	words := []string{"manta", "", "tʰoŋ", "jabloko"}
	got, err := s.Annotate(context.Background(), words, AnnotateOptions{Workers: 2})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(got) != len(words) {
		t.Fatalf("Annotate returned %d results, want %d", len(got), len(words))
	}
	for i, a := range got {
		if a.Word != words[i] {
			t.Errorf("result %d is for %q, want %q", i, a.Word, words[i])
		}
	}
	if got[1].Err == "" || got[1].Kind != "invalid_input" {
		t.Errorf("empty word: Err = %q, Kind = %q", got[1].Err, got[1].Kind)
	}
	if got[2].Err != "" || len(got[2].Segments) != 3 {
		t.Errorf("tʰoŋ = %+v", got[2])
	}
}

func TestAnnotate_Cancelled(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Annotate(ctx, []string{"a", "b"}, AnnotateOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Annotate with cancelled context error = %v, want context.Canceled", err)
	}
}
