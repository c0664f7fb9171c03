package linse

import (
	"bufio"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// loadDVT reads models/dvt/{diacritics,vowels,tones}. Each file lists
// characters one or more per line; dashes only carry combining marks and
// are dropped.
func (s *Store) loadDVT(fsys fs.FS) error {
	sets := []struct {
		name string
		dst  *charSet
	}{
		{"diacritics", &s.diacritics},
		{"vowels", &s.vowels},
		{"tones", &s.tones},
	}
	for _, set := range sets {
		p := path.Join("models", "dvt", set.name)
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return &ModelLoadError{Path: p, Err: err}
		}
		chars := strings.Map(func(r rune) rune {
			if r == '-' || unicode.IsSpace(r) {
				return -1
			}
			return r
		}, string(data))
		if chars == "" {
			return &ModelLoadError{Path: p, Msg: "empty character set"}
		}
		*set.dst = newCharSet(chars)
	}
	s.vowels = s.vowels.union(composedVowels(s.vowels))
	return nil
}

// composedVowels returns the precomposed Latin letters whose canonical
// decomposition is a vowel followed only by combining marks (e.g. "ã", "é").
func composedVowels(vowels charSet) charSet {
	out := make(charSet)
	ranges := [][2]rune{{0x00C0, 0x024F}, {0x1E00, 0x1EFF}}
	for _, rg := range ranges {
		for r := rg[0]; r <= rg[1]; r++ {
			d := []rune(norm.NFD.String(string(r)))
			if len(d) < 2 || !vowels.has(d[0]) {
				continue
			}
			marks := true
			for _, m := range d[1:] {
				if !unicode.Is(unicode.Mn, m) {
					marks = false
					break
				}
			}
			if marks {
				out[r] = struct{}{}
			}
		}
	}
	return out
}

// loadModels reads every model directory under models/ except dvt.
func (s *Store) loadModels(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, "models")
	if err != nil {
		return &ModelLoadError{Path: "models", Err: err}
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "dvt" {
			continue
		}
		m, err := loadModel(fsys, e.Name())
		if err != nil {
			return err
		}
		s.models[m.Name] = m
	}
	return nil
}

// loadModel reads models/<name>/INFO and models/<name>/converter.
//
// converter format, one class per line:
//
//	CLASS : grapheme1, grapheme2, ...
//
// Lines starting with "#" are comments.
func loadModel(fsys fs.FS, name string) (*Model, error) {
	m := newModel(name)

	infoPath := path.Join("models", name, "INFO")
	info, err := fs.ReadFile(fsys, infoPath)
	if err != nil {
		return nil, &ModelLoadError{Path: infoPath, Err: err}
	}
	m.Info = parseInfo(string(info))

	convPath := path.Join("models", name, "converter")
	f, err := fsys.Open(convPath)
	if err != nil {
		return nil, &ModelLoadError{Path: convPath, Err: err}
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		class, graphemes, ok := strings.Cut(line, " : ")
		if !ok {
			return nil, &ModelLoadError{Path: convPath, Line: lineNo, Msg: "missing \" : \" separator"}
		}
		class = strings.TrimSpace(class)
		for _, g := range strings.Split(graphemes, ", ") {
			g = norm.NFC.String(strings.TrimSpace(g))
			if g == "" {
				continue
			}
			if err := m.add(g, class); err != nil {
				return nil, &ModelLoadError{Path: convPath, Line: lineNo, Err: err}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ModelLoadError{Path: convPath, Err: err}
	}
	if m.Len() == 0 {
		return nil, &ModelLoadError{Path: convPath, Msg: "model defines no graphemes"}
	}
	return m, nil
}

// parseInfo reads "@key: value" lines.
func parseInfo(text string) ModelInfo {
	var info ModelInfo
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "@") {
			continue
		}
		key, value, _ := strings.Cut(line[1:], ":")
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "description":
			info.Description = value
		case "compiler":
			info.Compiler = value
		case "source":
			info.Source = value
		case "date":
			info.Date = value
		case "vowels":
			info.Vowels = value
		case "tones":
			info.Tones = value
		}
	}
	return info
}

// loadNormalizer reads normalize.tsv (GRAPHEME, REPLACEMENT).
func (s *Store) loadNormalizer(fsys fs.FS) error {
	const p = "normalize.tsv"
	t, err := readTableFS(fsys, p, "\t")
	if err != nil {
		return err
	}
	pairs := make(map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		src, dst := norm.NFC.String(row["GRAPHEME"]), norm.NFC.String(row["REPLACEMENT"])
		if src == "" {
			return &ModelLoadError{Path: p, Line: i + 2, Msg: "empty grapheme"}
		}
		if prev, ok := pairs[src]; ok && prev != dst {
			return &ModelLoadError{Path: p, Line: i + 2,
				Msg: fmt.Sprintf("grapheme %q is mapped to both %q and %q", src, prev, dst)}
		}
		pairs[src] = dst
	}
	s.normalizer = NewNormalizer(pairs)
	return nil
}

// loadCLTS reads clts.tsv (GRAPHEME, BIPA, CLTS) into the "bipa" and
// "clts" models.
func (s *Store) loadCLTS(fsys fs.FS) error {
	const p = "clts.tsv"
	t, err := readTableFS(fsys, p, "\t")
	if err != nil {
		return err
	}
	bipa, clts := newModel("bipa"), newModel("clts")
	bipa.Info = ModelInfo{Description: "broad IPA transcription", Source: "CLTS", Compiler: "linse"}
	clts.Info = ModelInfo{Description: "phonetic feature names", Source: "CLTS", Compiler: "linse"}
	for i, row := range t.Rows {
		g := norm.NFC.String(row["GRAPHEME"])
		if g == "" {
			return &ModelLoadError{Path: p, Line: i + 2, Msg: "empty grapheme"}
		}
		if err := bipa.add(g, norm.NFC.String(row["BIPA"])); err != nil {
			return &ModelLoadError{Path: p, Line: i + 2, Err: err}
		}
		if err := clts.add(g, row["CLTS"]); err != nil {
			return &ModelLoadError{Path: p, Line: i + 2, Err: err}
		}
	}
	s.models[bipa.Name] = bipa
	s.models[clts.Name] = clts
	return nil
}

// loadSAMPA reads sampa.tsv and xsampa.tsv into segment groupers.
func (s *Store) loadSAMPA(fsys fs.FS) error {
	for _, spec := range []struct {
		path string
		dst  **SegmentGrouper
	}{
		{"sampa.tsv", &s.sampa},
		{"xsampa.tsv", &s.xsampa},
	} {
		t, err := readTableFS(fsys, spec.path, "\t")
		if err != nil {
			return err
		}
		g, err := NewSegmentGrouper(t.Rows, WithNormalization(""))
		if err != nil {
			return &ModelLoadError{Path: spec.path, Err: err}
		}
		*spec.dst = g
	}
	return nil
}

// readTableFS opens and parses a delimited file inside fsys.
func readTableFS(fsys fs.FS, p, delim string) (*Table, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, &ModelLoadError{Path: p, Err: err}
	}
	defer f.Close()
	t, err := ReadTable(f, delim)
	if err != nil {
		return nil, &ModelLoadError{Path: p, Err: err}
	}
	return t, nil
}
