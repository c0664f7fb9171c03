package linse

import (
	"fmt"
	"strconv"
)

// Sonority ranks of the "art" model.
const (
	rankUnknown   = 0
	rankVowel     = 7
	rankTone      = 8
	rankBoundary  = 9
	sonorityModel = "art"
)

// ProsodyFormat selects the alphabet of a prosodic string.
type ProsodyFormat string

// Prosodic string formats.
const (
	// FormatRaw returns the fine-grained roles A B C L M N X Y Z T _.
	FormatRaw ProsodyFormat = ""
	// FormatCV collapses roles to consonant, vowel and tone.
	FormatCV ProsodyFormat = "cv"
	// FormatCcV also distinguishes coda consonants (c) and final vowels (v).
	FormatCcV ProsodyFormat = "CcV"
	// FormatNative is the legacy alphabet with # for word onsets and $ and >
	// for word-final segments.
	FormatNative ProsodyFormat = "native"
)

var prosodyFormats = map[ProsodyFormat]map[string]string{
	FormatCV: {
		"A": "C", "B": "C", "C": "C", "M": "C", "L": "C", "N": "C",
		"X": "V", "Y": "V", "Z": "V", "T": "T", "_": "_",
	},
	FormatCcV: {
		"A": "C", "B": "C", "C": "C", "M": "c", "L": "c", "N": "c",
		"X": "V", "Y": "V", "Z": "v", "T": "T", "_": "_",
	},
	FormatNative: {
		"A": "#", "B": "C", "C": "C", "M": "c", "L": "c", "N": "$",
		"X": "V", "Y": "v", "Z": ">",
	},
}

// ParseProsodyFormat validates a format name. "raw" is accepted as an
// alias for FormatRaw.
func ParseProsodyFormat(s string) (ProsodyFormat, error) {
	switch f := ProsodyFormat(s); f {
	case FormatRaw, FormatCV, FormatCcV, FormatNative:
		return f, nil
	case "raw":
		return FormatRaw, nil
	}
	return FormatRaw, fmt.Errorf("%w: unknown prosody format %q", ErrInvalidInput, s)
}

// Sonority returns the sonority rank of every token: 1 stops, 2 affricates,
// 3 fricatives, 4 nasals, 5 liquids, 6 glides, 7 vowels, 8 tones and 9
// boundary markers. Unresolved tokens get rank 0.
func (s *Store) Sonority(tokens []string, opts ...ClassifyOption) (Sequence[int], error) {
	classes, err := s.SoundClass(tokens, sonorityModel, opts...)
	if err != nil {
		return Sequence[int]{}, err
	}
	ranks := make([]int, len(classes))
	for i, c := range classes {
		ranks[i] = sonorityRank(c)
	}
	return NewSequence(Ints, ranks...), nil
}

func sonorityRank(label string) int {
	n, err := strconv.Atoi(label)
	if err != nil {
		return rankUnknown
	}
	return n
}

// Prosody returns the prosodic string of tokens, one role per token, in
// the requested format. An empty sequence yields an empty result.
func (s *Store) Prosody(tokens []string, format ProsodyFormat, opts ...ClassifyOption) ([]string, error) {
	if len(tokens) == 0 {
		return []string{}, nil
	}
	roles, err := s.rawProsody(tokens, opts...)
	if err != nil {
		return nil, err
	}
	conv := prosodyFormats[format]
	out := make([]string, len(roles))
	for i, r := range roles {
		if v, ok := conv[r]; ok {
			out[i] = v
		} else {
			out[i] = r
		}
	}
	return out, nil
}

func (s *Store) rawProsody(tokens []string, opts ...ClassifyOption) ([]string, error) {
	son, err := s.Sonority(tokens, opts...)
	if err != nil {
		return nil, err
	}
	profile := make([]int, 0, son.Len()+2)
	profile = append(profile, rankBoundary)
	profile = append(profile, son.Items()...)
	profile = append(profile, rankBoundary)
	return processProsody(profile)
}

// processProsody assigns a prosodic role to every interior position of a
// sonority profile bracketed by boundary ranks. Roles:
//
//	A  sequence-initial consonant
//	B  syllable-initial consonant in ascending sonority
//	C  non-initial consonant in ascending sonority
//	L  consonant in descending sonority
//	M  syllable-final consonant in descending sonority
//	N  word-final consonant
//	X  first vowel, Y non-final vowel, Z final vowel
//	T  tone
//	_  boundary marker
func processProsody(son []int) ([]string, error) {
	roles := make([]string, 0, len(son)-2)
	first := true

	for i := 1; i < len(son)-1; i++ {
		a, b, c := son[i-1], son[i], son[i+1]

		switch {
		case b == rankBoundary:
			roles = append(roles, "_")
			first = true

		case b == rankVowel:
			switch {
			case first:
				roles = append(roles, "X")
				first = false
			case c == rankBoundary:
				roles = append(roles, "Z")
			default:
				roles = append(roles, "Y")
			}

		case b == rankTone:
			roles = append(roles, "T")

		case a >= b && b >= c || c == rankTone: // descending
			switch {
			case c == rankBoundary:
				roles = append(roles, "N")
			case first:
				first = false
				roles = append(roles, "A")
			default:
				roles = append(roles, "L")
			}

		case b < c || a > b && b <= c || a < b && b <= c: // ascending
			switch {
			case a == rankBoundary:
				roles = append(roles, "A")
			case a >= b && c == rankBoundary:
				roles = append(roles, "N")
			case a >= b && roles[len(roles)-1] != "A":
				// the previous consonant closed a syllable
				if roles[len(roles)-1] == "L" {
					roles[len(roles)-1] = "M"
				}
				roles = append(roles, "B")
			default:
				roles = append(roles, "C")
			}

		case a < b && b > c: // consonant peak
			if first {
				roles = append(roles, "X")
				first = false
			} else {
				roles = append(roles, "Y")
			}

		default:
			return nil, &ProsodyError{
				Triple:   [3]int{a, b, c},
				Sonority: append([]int(nil), son...),
				Partial:  roles,
			}
		}
	}
	return roles, nil
}

// Default prosodic weight tables.
var (
	// TonalWeights is used when the sequence contains a tone.
	TonalWeights = map[string]float64{
		"#": 1.6, "V": 3.0, "c": 1.1, "v": 3.0, "<": 0.8, "$": 0.5, ">": 0.7,
		"A": 1.6, "B": 1.3, "C": 1.2, "L": 1.1, "M": 1.1, "N": 0.5,
		"X": 3.0, "Y": 3.0, "Z": 0.7, "T": 1.0, "_": 0.0,
	}
	// DefaultWeights is used for sequences without tones.
	DefaultWeights = map[string]float64{
		"#": 2.0, "V": 1.5, "c": 1.1, "v": 1.3, "<": 0.8, "$": 0.8, ">": 0.7,
		"A": 2.0, "B": 1.75, "C": 1.5, "L": 1.1, "M": 1.1, "N": 0.8,
		"X": 1.5, "Y": 1.3, "Z": 0.8, "T": 0.0, "_": 0.0,
	}
)

// ProsodicWeight returns a weight per token derived from its prosodic
// role. A non-empty transform table replaces the defaults entirely; it must
// contain every role that occurs.
func (s *Store) ProsodicWeight(tokens []string, transform map[string]float64, opts ...ClassifyOption) (Sequence[float64], error) {
	if len(tokens) == 0 {
		return NewSequence(Floats), nil
	}
	roles, err := s.rawProsody(tokens, opts...)
	if err != nil {
		return Sequence[float64]{}, err
	}
	table := transform
	if len(table) == 0 {
		table = DefaultWeights
		for _, r := range roles {
			if r == "T" {
				table = TonalWeights
				break
			}
		}
	}
	weights := make([]float64, len(roles))
	for i, r := range roles {
		w, ok := table[r]
		if !ok {
			return Sequence[float64]{}, fmt.Errorf("%w: no weight for prosodic role %q", ErrInvalidInput, r)
		}
		weights[i] = w
	}
	return NewSequence(Floats, weights...), nil
}
