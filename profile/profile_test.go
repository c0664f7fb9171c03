package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lingpy/linse"
)

func store(t *testing.T) *linse.Store {
	t.Helper()
	s, err := linse.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return s
}

func TestAddTexts(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		opts  []Option
		want  map[string]int
	}{
		{
			name:  "digraph",
			texts: []string{"khanti"},
			want:  map[string]int{"kh": 1, "a": 1, "n": 1, "t": 1, "i": 1},
		},
		{
			name:  "context markers",
			texts: []string{"khanti"},
			opts:  []Option{WithPreceding("^"), WithFollowing("$")},
			want:  map[string]int{"^kh": 1, "a": 1, "n": 1, "t": 1, "i$": 1},
		},
		{
			name:  "geminates",
			texts: []string{"khantiitta"},
			want:  map[string]int{"kh": 1, "a": 2, "n": 1, "t": 1, "ii": 1, "tt": 1},
		},
		{
			name:  "plain tokenizer",
			texts: []string{"khantiitta"},
			opts: []Option{WithTokenizeOptions(
				linse.WithMergeGeminates(false),
				linse.WithMergeVowels(false),
				linse.WithSemiDiacritics(""),
			)},
			want: map[string]int{"k": 1, "h": 1, "a": 2, "n": 1, "t": 3, "i": 2},
		},
		{
			name:  "several words",
			texts: []string{"jeden", "morgen", "waŋ", "wingTsun", "wàtúvhaks", "hhhatun"},
			want: map[string]int{
				"j": 1, "e": 3, "d": 1, "n": 5, "m": 1, "o": 1, "r": 1, "g": 2,
				"w": 3, "a": 3, "ŋ": 1, "i": 1, "Ts": 1, "u": 2, "à": 1, "t": 2,
				"ú": 1, "vh": 1, "ks": 1, "hhh": 1,
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := New(store(t), tc.opts...)
			if err := p.AddTexts(context.Background(), tc.texts...); err != nil {
				t.Fatalf("AddTexts: %v", err)
			}
			if diff := cmp.Diff(tc.want, p.Frequencies()); diff != "" {
				t.Errorf("frequencies mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExceptions(t *testing.T) {
	p := New(store(t))
	if err := p.AddTexts(context.Background(), "kha pt a", "", "kha pt a"); err != nil {
		t.Fatalf("AddTexts: %v", err)
	}
	if got := len(p.Frequencies()); got != 0 {
		t.Errorf("len(Frequencies()) = %d, want 0", got)
	}
	counts := p.ExceptionCounts()
	if len(counts) != 2 {
		t.Fatalf("len(ExceptionCounts()) = %d, want 2: %v", len(counts), counts)
	}
	table := p.Exceptions()
	if diff := cmp.Diff([]string{"Lexeme", "Replacement", "Comment"}, table[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if table[1][0] != "kha pt a" || !strings.HasSuffix(table[1][2], "(2 cases)") {
		t.Errorf("first exception = %q, want kha pt a with 2 cases", table[1])
	}
}

func TestCustomSegmenter(t *testing.T) {
	p := New(store(t), WithSegmenter(func(text string) ([]string, error) {
		return strings.Split(text, "."), nil
	}))
	if err := p.AddTexts(context.Background(), "ch.a.ch"); err != nil {
		t.Fatalf("AddTexts: %v", err)
	}
	if diff := cmp.Diff(map[string]int{"ch": 2, "a": 1}, p.Frequencies()); diff != "" {
		t.Errorf("frequencies mismatch (-want +got):\n%s", diff)
	}
}

func TestProfile(t *testing.T) {
	p := New(store(t))
	forms := []Form{
		{Text: "tʰaka", Fields: map[string]string{"ID": "1", "Language_ID": "a"}},
		{Text: "tʰoŋ", Fields: map[string]string{"ID": "2", "Language_ID": "b"}},
	}
	if err := p.AddForms(context.Background(), forms...); err != nil {
		t.Fatalf("AddForms: %v", err)
	}
	table, err := p.Profile([]string{ColGrapheme, ColSCA, ColFrequency, ColLanguages, ColExamples, "Upper"},
		map[string]Column{"Upper": func(g string, _ []Form) string { return strings.ToUpper(g) }}, nil)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	want := [][]string{
		{"Grapheme", "SCA", "Frequency", "Languages", "Examples", "Upper"},
		{"a", "A", "2", "a", "tʰaka", "A"},
		{"k", "K", "1", "a", "tʰaka", "K"},
		{"o", "U", "1", "b", "tʰoŋ", "O"},
		{"tʰ", "T", "2", "a, b", "tʰaka, tʰoŋ", "Tʰ"},
		{"ŋ", "N", "1", "b", "tʰoŋ", "Ŋ"},
	}
	if diff := cmp.Diff(want, table); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestProfile_UnknownColumn(t *testing.T) {
	p := New(store(t))
	_, err := p.Profile([]string{"Grapheme", "Nope"}, nil, nil)
	if !errors.Is(err, linse.ErrUnknownColumn) {
		t.Errorf("Profile(Nope) error = %v, want ErrUnknownColumn", err)
	}
}

func TestProfile_Suggestion(t *testing.T) {
	p := New(store(t), WithSegmenter(func(text string) ([]string, error) {
		return []string{text}, nil
	}))
	if err := p.AddTexts(context.Background(), "A", "p"); err != nil {
		t.Fatalf("AddTexts: %v", err)
	}
	table, err := p.Profile([]string{ColGrapheme, ColSCA, ColSuggestion}, nil, nil)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if got := table[1]; got[0] != "A" || got[1] != linse.Replacement || got[2] == "" {
		t.Errorf("row for A = %q, want a suggestion", got)
	}
	if got := table[2]; got[2] != "" {
		t.Errorf("row for p = %q, want no suggestion", got)
	}
}

func TestAddForms_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(store(t))
	if err := p.AddTexts(ctx, "khanti"); !errors.Is(err, context.Canceled) {
		t.Errorf("AddTexts(cancelled) = %v, want context.Canceled", err)
	}
}

func TestReadCLDF(t *testing.T) {
	in := "ID,Language_ID,Parameter_ID,Form\n1,ger,hand,\"hant\"\n2,eng,hand,hænd\n"
	forms, err := ReadCLDF(strings.NewReader(in), "", "ger")
	if err != nil {
		t.Fatalf("ReadCLDF: %v", err)
	}
	if len(forms) != 1 || forms[0].Text != "hant" || forms[0].Field("Parameter_ID") != "hand" {
		t.Errorf("forms = %+v, want one german form", forms)
	}
	if _, err := ReadCLDF(strings.NewReader(in), "Segments", ""); !errors.Is(err, linse.ErrUnknownColumn) {
		t.Errorf("ReadCLDF(Segments) error = %v, want ErrUnknownColumn", err)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	forms := filepath.Join(dir, "forms.csv")
	if err := os.WriteFile(forms, []byte("ID,Language_ID,Form\n1,a,khat\n2,a,\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := FromCLDF(context.Background(), store(t), forms, "Form", "")
	if err != nil {
		t.Fatalf("FromCLDF: %v", err)
	}

	out := filepath.Join(dir, "profile.tsv")
	if err := p.Write(out, []string{ColGrapheme, ColFrequency}, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	tbl, err := linse.ReadTableFile(out, "\t")
	if err != nil {
		t.Fatalf("ReadTableFile: %v", err)
	}
	if len(tbl.Rows) != 3 || tbl.Rows[0]["Grapheme"] != "a" {
		t.Errorf("rows = %v, want a, kh, t", tbl.Rows)
	}

	excPath := filepath.Join(dir, "exceptions.tsv")
	if err := p.WriteExceptions(excPath); err != nil {
		t.Fatalf("WriteExceptions: %v", err)
	}
	exc, err := linse.ReadTableFile(excPath, "\t")
	if err != nil {
		t.Fatalf("ReadTableFile: %v", err)
	}
	if len(exc.Rows) != 1 || exc.Rows[0]["Replacement"] != "?" {
		t.Errorf("exceptions = %v, want the empty form", exc.Rows)
	}
}
