package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenizeCmd(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"tokenize", "t͡sɔyɡə"}, "t͡sɔyɡə\tt͡s ɔy ɡ ə\n"},
		{[]string{"tokenize", "--merge-vowels=false", "t͡sɔyɡə"}, "t͡sɔyɡə\tt͡s ɔ y ɡ ə\n"},
		{[]string{"tokenize", "--scheme", "sampa", "t_hOxt@r"}, "t_hOxt@r\tt ʰ ɔ x t ə r\n"},
	}
	for _, tc := range tests {
		got, err := run(t, tc.args...)
		if err != nil {
			t.Errorf("%v: %v", tc.args, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%v = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestTokenizeCmd_JSON(t *testing.T) {
	got, err := run(t, "-o", "json", "tokenize", "ba⁵", "")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	var rs []result
	if err := json.Unmarshal([]byte(got), &rs); err != nil {
		t.Fatalf("unmarshal %q: %v", got, err)
	}
	if len(rs) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(rs))
	}
	if diff := cmp.Diff([]string{"b", "a", "⁵"}, rs[0].Output); diff != "" {
		t.Errorf("results[0] mismatch (-want +got):\n%s", diff)
	}
	if rs[1].Error == "" {
		t.Error("empty word did not record an error")
	}
}

func TestClassifyCmd(t *testing.T) {
	got, err := run(t, "classify", "-m", "cv", "th", "o", "?/x", "a")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if want := "th o ?/x a\tC V C V\n"; got != want {
		t.Errorf("classify = %q, want %q", got, want)
	}
	if _, err := run(t, "classify", "A", "O"); err == nil {
		t.Error("classify of unknown tokens in strict mode returned nil error")
	}
	if _, err := run(t, "classify", "--strictness", "lenient", "A", "O"); err != nil {
		t.Errorf("lenient classify: %v", err)
	}
}

func TestProsodyCmd(t *testing.T) {
	got, err := run(t, "prosody", "--format", "cv", "tʰ", "ɔ", "x", "t", "ə", "r")
	if err != nil {
		t.Fatalf("prosody: %v", err)
	}
	if want := "tʰ ɔ x t ə r\tC V C C V C\n"; got != want {
		t.Errorf("prosody = %q, want %q", got, want)
	}
	got, err = run(t, "prosody", "--weights", "b", "a", "⁵")
	if err != nil {
		t.Fatalf("prosody --weights: %v", err)
	}
	if !strings.HasPrefix(got, "b a ⁵\t1.6 ") {
		t.Errorf("weights = %q, want prefix %q", got, "b a ⁵\t1.6 ")
	}
}

func TestSyllablesCmd_YAML(t *testing.T) {
	got, err := run(t, "-o", "yaml", "syllables", "j", "a", "b", "l", "o", "k", "o")
	if err != nil {
		t.Fatalf("syllables: %v", err)
	}
	var p parts
	if err := yaml.Unmarshal([]byte(got), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := [][]string{{"j", "a"}, {"b", "l", "o"}, {"k", "o"}}
	if diff := cmp.Diff(want, p.Parts); diff != "" {
		t.Errorf("syllables mismatch (-want +got):\n%s", diff)
	}
}

func TestMorphemesCmd(t *testing.T) {
	got, err := run(t, "morphemes", "t", "a", "+", "b", "a")
	if err != nil {
		t.Fatalf("morphemes: %v", err)
	}
	if want := "t a . b a\n"; got != want {
		t.Errorf("morphemes = %q, want %q", got, want)
	}
}

func TestConvertCmd(t *testing.T) {
	table := filepath.Join(t.TempDir(), "profile.tsv")
	content := "Sequence\tIPA\nth\ttʰ\na\ta\nx\tNULL\n"
	if err := os.WriteFile(table, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := run(t, "convert", "--table", table, "--column", "IPA", "thaxa", "thaq")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := "thaxa\ttʰ a a\nthaq\ttʰ a «q»\n"
	if got != want {
		t.Errorf("convert = %q, want %q", got, want)
	}
}

func TestProfileCmd(t *testing.T) {
	dir := t.TempDir()
	forms := filepath.Join(dir, "forms.csv")
	content := "ID,Language_ID,Form\n1,german,khanti\n2,german,kha pt a\n3,dutch,khat\n"
	if err := os.WriteFile(forms, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	exc := filepath.Join(dir, "exceptions.tsv")
	got, err := run(t, "profile", "--language", "german", "--columns", "Grapheme,Frequency", "--exceptions", exc, forms)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	want := "Grapheme\tFrequency\na\t1\ni\t1\nkh\t1\nn\t1\nt\t1\n"
	if got != want {
		t.Errorf("profile = %q, want %q", got, want)
	}
	data, err := os.ReadFile(exc)
	if err != nil {
		t.Fatalf("read exceptions: %v", err)
	}
	if !strings.Contains(string(data), "kha pt a\t?\t") {
		t.Errorf("exceptions = %q, want a row for %q", data, "kha pt a")
	}
}

func TestUnknownOutput(t *testing.T) {
	if _, err := run(t, "-o", "xml", "tokenize", "a"); err == nil {
		t.Error("unknown output format returned nil error")
	}
}
