package linse

import (
	"fmt"
	"sort"
)

// ModelInfo holds the metadata read from a model's INFO file.
type ModelInfo struct {
	Description string
	Compiler    string
	Source      string
	Date        string
	// Vowels lists the class labels that denote vowels in this model.
	Vowels string
	// Tones lists the class labels that denote tones in this model.
	Tones string
}

// Model is an immutable sound-class model: a mapping from graphemes to class
// labels plus its metadata. Models are built by the loader and never
// modified afterwards, so they are safe for concurrent use.
type Model struct {
	// Name is the directory name the model was loaded from (e.g. "sca").
	Name string
	// Info is the parsed INFO file.
	Info ModelInfo

	// converter maps NFC graphemes to class labels.
	converter map[string]string
}

// newModel creates an empty Model with the given name.
func newModel(name string) *Model {
	return &Model{
		Name:      name,
		converter: make(map[string]string),
	}
}

// Lookup returns the class label of an exact grapheme.
func (m *Model) Lookup(grapheme string) (string, bool) {
	c, ok := m.converter[grapheme]
	return c, ok
}

// Contains reports whether grapheme has an exact entry in the model.
func (m *Model) Contains(grapheme string) bool {
	_, ok := m.converter[grapheme]
	return ok
}

// Len returns the number of graphemes defined by the model.
func (m *Model) Len() int { return len(m.converter) }

// Graphemes returns all graphemes of the model in sorted order.
func (m *Model) Graphemes() []string {
	out := make([]string, 0, len(m.converter))
	for g := range m.converter {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Classes returns the distinct class labels of the model in sorted order.
func (m *Model) Classes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range m.converter {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func (m *Model) String() string {
	return fmt.Sprintf("Model:    %s\nInfo:     %s\nSource:   %s\nCompiler: %s\nDate:     %s",
		m.Name, m.Info.Description, m.Info.Source, m.Info.Compiler, m.Info.Date)
}

// add registers grapheme under class, failing on a conflicting redefinition.
func (m *Model) add(grapheme, class string) error {
	if prev, ok := m.converter[grapheme]; ok && prev != class {
		return fmt.Errorf("grapheme %q is mapped to both %q and %q", grapheme, prev, class)
	}
	m.converter[grapheme] = class
	return nil
}
