package linse

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const dataDir = "data"

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s, err := New(dataDir)
	if err != nil {
		t.Fatalf("New(%q): %v", dataDir, err)
	}
	want := []string{"art", "asjp", "bipa", "clts", "cv", "dolgo", "sca"}
	if diff := cmp.Diff(want, s.Models()); diff != "" {
		t.Errorf("Models() mismatch (-want +got):\n%s", diff)
	}
	t.Logf("Loaded %d diacritics, %d vowels, %d tones",
		len(s.diacritics), len(s.vowels), len(s.tones))
}

func TestNew_MissingDir(t *testing.T) {
	if _, err := New("no-such-dir"); err == nil {
		t.Error("New(no-such-dir) returned nil error")
	}
}

func TestDefault_Shared(t *testing.T) {
	a, b := MustDefault(), MustDefault()
	if a != b {
		t.Error("MustDefault returned different stores")
	}
}

func TestModel(t *testing.T) {
	s := testStore(t)
	m, err := s.Model("sca")
	if err != nil {
		t.Fatalf("Model(sca): %v", err)
	}
	if got, ok := m.Lookup("p"); !ok || got != "P" {
		t.Errorf("Lookup(%q) = %q, %v, want %q", "p", got, ok, "P")
	}
	if !m.Contains("ŋ") {
		t.Error("sca does not contain ŋ")
	}
	if m.Info.Vowels != "AEIOUY" {
		t.Errorf("Info.Vowels = %q, want %q", m.Info.Vowels, "AEIOUY")
	}
	if !strings.HasPrefix(m.String(), "Model:    sca") {
		t.Errorf("String() = %q", m.String())
	}

	if _, err := s.Model("klingon"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Model(klingon) error = %v, want ErrUnknownModel", err)
	}
}

func TestCharacterSets(t *testing.T) {
	s := testStore(t)
	tests := []struct {
		name string
		set  string
		r    string
	}{
		{"Vowels", s.Vowels(), "ɔ"},
		{"Vowels", s.Vowels(), "ã"},
		{"Vowels", s.Vowels(), "é"},
		{"Diacritics", s.Diacritics(), "ʰ"},
		{"Diacritics", s.Diacritics(), "\u0303"},
		{"Tones", s.Tones(), "⁵"},
		{"Tones", s.Tones(), "˥"},
	}
	for _, tc := range tests {
		if !strings.Contains(tc.set, tc.r) {
			t.Errorf("%s() does not contain %q", tc.name, tc.r)
		}
	}
	if strings.Contains(s.Vowels(), "ʰ") {
		t.Error("Vowels() contains a diacritic")
	}
}

// minimalData is a complete data tree with a single model.
func minimalData(converter string) fstest.MapFS {
	return fstest.MapFS{
		"models/dvt/diacritics": {Data: []byte("ʰ ʲ\n-\u0303\n")},
		"models/dvt/vowels":     {Data: []byte("a e i o u\n")},
		"models/dvt/tones":      {Data: []byte("¹²³\n")},
		"models/tiny/INFO":      {Data: []byte("@description: tiny\n@vowels: V\n@tones: T\n")},
		"models/tiny/converter": {Data: []byte(converter)},
		"normalize.tsv":         {Data: []byte("GRAPHEME\tREPLACEMENT\n:\tː\n")},
		"clts.tsv":              {Data: []byte("GRAPHEME\tBIPA\tCLTS\nt\tt\tvoiceless alveolar stop consonant\n")},
		"sampa.tsv":             {Data: []byte("Sequence\tIPA\nt\tt\n")},
		"xsampa.tsv":            {Data: []byte("Sequence\tBIPA\nt\tt\n")},
	}
}

func TestNewFS(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s, err := NewFS(minimalData("# tiny\nC : t, k\nV : a, i\n"), WithLogger(log))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if diff := cmp.Diff([]string{"bipa", "clts", "tiny"}, s.Models()); diff != "" {
		t.Errorf("Models() mismatch (-want +got):\n%s", diff)
	}
	got, err := s.SoundClass([]string{"t", "a", "ka"}, "tiny")
	if err != nil {
		t.Fatalf("SoundClass: %v", err)
	}
	if diff := cmp.Diff([]string{"C", "V", "C"}, got); diff != "" {
		t.Errorf("SoundClass mismatch (-want +got):\n%s", diff)
	}
	if len(hook.AllEntries()) == 0 {
		t.Error("no load diagnostics logged")
	}
}

func TestNewFS_Errors(t *testing.T) {
	tests := []struct {
		name      string
		converter string
		line      int
	}{
		{"conflict", "C : t, k\nV : a, t\n", 2},
		{"separator", "C : t\nV a\n", 2},
		{"empty", "# nothing\n", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFS(minimalData(tc.converter))
			if !errors.Is(err, ErrModelLoad) {
				t.Fatalf("NewFS error = %v, want ErrModelLoad", err)
			}
			var le *ModelLoadError
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not a *ModelLoadError", err)
			}
			if le.Path != "models/tiny/converter" || le.Line != tc.line {
				t.Errorf("error at %s:%d, want models/tiny/converter:%d", le.Path, le.Line, tc.line)
			}
			if Kind(err) != "model_load" {
				t.Errorf("Kind = %q, want model_load", Kind(err))
			}
		})
	}
}

func TestNewFS_MissingFile(t *testing.T) {
	data := minimalData("C : t\n")
	delete(data, "clts.tsv")
	if _, err := NewFS(data); !errors.Is(err, ErrModelLoad) {
		t.Errorf("NewFS without clts.tsv error = %v, want ErrModelLoad", err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&InvalidInputError{Input: "", Reason: "invalid empty string"}, "invalid_input"},
		{&UnresolvedSequenceError{Model: "sca", Tokens: []string{"A"}}, "unresolved"},
		{ErrUnknownModel, "unknown_model"},
		{ErrUnknownColumn, "unknown_column"},
		{&ProsodyError{}, "prosody"},
		{errors.New("boom"), "internal"},
	}
	for _, tc := range tests {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
