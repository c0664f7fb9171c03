package linse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	s := testStore(t)
	tests := []struct {
		in, want string
	}{
		{"ta:", "taː"},
		{"kʸa", "kʲa"},
		{"tǝ", "tə"},
		{"'t\u03b5\u03b3a", "ˈtɛɣa"},
		{"taː", "taː"},
	}
	for _, tc := range tests {
		got := s.Normalize(tc.in)
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if again := s.Normalize(got); again != got {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", tc.in, again, got)
		}
	}
}

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]string{"a": "x", "ab": "y"})
	if got := n.Normalize("abac"); got != "yxc" {
		t.Errorf("Normalize(%q) = %q, want %q", "abac", got, "yxc")
	}
	if got, ok := n.Lookup("ab"); !ok || got != "y" {
		t.Errorf("Lookup(ab) = %q, %v", got, ok)
	}
	if n.Len() != 2 {
		t.Errorf("Len() = %d, want 2", n.Len())
	}
	// composed and decomposed input normalize alike
	if a, b := n.Normalize("\u00e9"), n.Normalize("e\u0301"); a != b {
		t.Errorf("Normalize(NFC) = %q, Normalize(NFD) = %q", a, b)
	}
}

func TestReadTable(t *testing.T) {
	in := "GRAPHEME\tCLASS\n\n\"\tX\nt͡s\r\nk\tK\n"
	tbl, err := ReadTable(strings.NewReader(in), "")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	want := []map[string]string{
		{"GRAPHEME": `"`, "CLASS": "X"},
		{"GRAPHEME": "t͡s", "CLASS": ""},
		{"GRAPHEME": "k", "CLASS": "K"},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadTable(strings.NewReader("A\tB\n1\t2\t3\n"), "\t"); err == nil {
		t.Error("ReadTable with a long row returned nil error")
	}
	if _, err := ReadTable(strings.NewReader("\n\n"), "\t"); err == nil {
		t.Error("ReadTable without header returned nil error")
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, []string{"A", "B"}, [][]string{{"1", "2"}, {"3", ""}}, ",")
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if got, want := buf.String(), "A,B\n1,2\n3,\n"; got != want {
		t.Errorf("WriteTable = %q, want %q", got, want)
	}
	tbl, err := ReadTable(&buf, ",")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B"}, tbl.Header); diff != "" {
		t.Errorf("Header mismatch (-want +got):\n%s", diff)
	}
}
