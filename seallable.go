package linse

import (
	"strings"
)

// DefaultMedials are the segments accepted in the medial slot of a
// South-East Asian syllable.
var DefaultMedials = []string{
	"j", "w", "jw", "wj", "i̯", "u̯", "i̯u̯", "u̯i̯", "iu", "ui", "y", "ɥ", "l",
	"lj", "lʲ", "r", "rj", "rʲ", "ʐ", "ʑ", "ʂ",
}

type seallableConfig struct {
	medials map[string]bool
	unknown string
}

// SeallableOption configures Seallable.
type SeallableOption func(*seallableConfig)

// WithMedials replaces the medial inventory.
func WithMedials(medials ...string) SeallableOption {
	return func(c *seallableConfig) {
		c.medials = make(map[string]bool, len(medials))
		for _, m := range medials {
			c.medials[m] = true
		}
	}
}

// WithUnknownSlot sets the label used for every slot of a syllable that is
// too long to analyse. Default Replacement.
func WithUnknownSlot(label string) SeallableOption {
	return func(c *seallableConfig) { c.unknown = label }
}

// Seallable checks a syllable against the South-East Asian template
// initial, medial, nucleus, coda, tone. It returns one label per segment:
// "i", "m", "n", "c" or "t" for a filled slot, "?" for a segment that does
// not fit the slot it occupies. Syllables of more than five segments get
// the unknown label everywhere.
func (s *Store) Seallable(syllable []string, opts ...SeallableOption) ([]string, error) {
	cfg := seallableConfig{unknown: Replacement}
	WithMedials(DefaultMedials...)(&cfg)
	for _, o := range opts {
		o(&cfg)
	}
	if len(syllable) == 0 {
		return nil, &InvalidInputError{Input: "", Reason: "empty syllable"}
	}
	if len(syllable) > 5 {
		out := make([]string, len(syllable))
		for i := range out {
			out[i] = cfg.unknown
		}
		return out, nil
	}

	cv, err := s.SoundClass(syllable, "cv", WithStrictness(Lenient))
	if err != nil {
		return nil, err
	}
	is := func(i int, class string) bool { return cv[i] == class }
	pick := func(ok bool, label string) string {
		if ok {
			return label
		}
		return "?"
	}

	var ini, med, nuc, cod, ton string
	n := len(syllable)
	if n >= 3 {
		ini = pick(is(0, "C"), "i")
		ton = pick(is(n-1, "T"), "t")
	}
	switch n {
	case 5:
		med = pick(cfg.medials[syllable[1]], "m")
		nuc = pick(is(2, "V"), "n")
		cod = pick(is(3, "C"), "c")
	case 4:
		if cfg.medials[syllable[1]] {
			med = "m"
			nuc = pick(is(2, "V"), "n")
		} else {
			nuc = pick(is(1, "V"), "n")
			cod = pick(is(2, "C"), "c")
		}
	case 3:
		switch {
		case is(1, "V"):
			nuc = "n"
		case is(0, "V"):
			ini = ""
			nuc = "n"
			cod = pick(is(1, "C"), "c")
		default:
			nuc = "?"
		}
	case 2:
		nuc = pick(is(0, "V"), "n")
		ton = pick(is(1, "T"), "t")
	default:
		nuc = pick(is(0, "V"), "n")
	}

	out := make([]string, 0, n)
	for _, slot := range []string{ini, med, nuc, cod, ton} {
		if slot != "" {
			out = append(out, slot)
		}
	}
	return out, nil
}

// Form is one transcribed word of a word list.
type Form struct {
	ID       string
	Doculect string
	Segments []string
}

// SyllableInventory maps doculect → segment → syllable template → form IDs.
// Templates are prosodic strings with the segment's own position wrapped
// in "**", e.g. "**C**v".
type SyllableInventory map[string]map[string]map[string][]string

// SyllableInventories collects, per doculect and segment, the syllable
// templates the segment occurs in and the forms showing them.
func (s *Store) SyllableInventories(forms []Form, format ProsodyFormat) (SyllableInventory, error) {
	inv := make(SyllableInventory)
	for _, f := range forms {
		bySegment, ok := inv[f.Doculect]
		if !ok {
			bySegment = make(map[string]map[string][]string)
			inv[f.Doculect] = bySegment
		}
		morphemes, err := s.Morphemes(f.Segments)
		if err != nil {
			return nil, err
		}
		for _, m := range morphemes {
			syllables, err := s.Syllables(m)
			if err != nil {
				return nil, err
			}
			for _, syl := range syllables {
				cv, err := s.Prosody(syl, format)
				if err != nil {
					return nil, err
				}
				for i, seg := range syl {
					tpl := highlight(cv, i)
					if bySegment[seg] == nil {
						bySegment[seg] = make(map[string][]string)
					}
					bySegment[seg][tpl] = append(bySegment[seg][tpl], f.ID)
				}
			}
		}
	}
	return inv, nil
}

func highlight(template []string, i int) string {
	var b strings.Builder
	for j, t := range template {
		if j == i {
			b.WriteString("**" + t + "**")
		} else {
			b.WriteString(t)
		}
	}
	return b.String()
}
