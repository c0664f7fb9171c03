package linse

import (
	"regexp"
	"strings"
	"unicode"
)

// Default tokenizer parameters.
const (
	DefaultStress           = "ˈˌ'"
	DefaultCombiners        = "\u0361\u035c"
	DefaultBreaks           = "-."
	DefaultNogos            = "_◦+"
	DefaultNasals           = "ãũẽĩõ"
	DefaultNasalChar        = '\u0303'
	DefaultNasalPlaceholder = "∼"
	DefaultProfileSemi      = "shʃʂɕɦʐʑʒw"
)

// tokenizeConfig holds the effective parameters of one IPA call.
type tokenizeConfig struct {
	diacritics     charSet
	vowels         charSet
	tones          charSet
	combiners      charSet
	breaks         charSet
	stress         charSet
	semiDiacritics charSet
	nogos          charSet
	nasals         charSet

	nasalChar        rune
	nasalPlaceholder string

	mergeVowels    bool
	mergeGeminates bool
	expandNasals   bool
	allowEmpty     bool
}

// TokenizeOption configures the IPA tokenizer.
type TokenizeOption func(*tokenizeConfig)

// WithDiacritics replaces the diacritic set.
func WithDiacritics(chars string) TokenizeOption {
	return func(c *tokenizeConfig) { c.diacritics = newCharSet(chars) }
}

// WithVowels replaces the vowel set.
func WithVowels(chars string) TokenizeOption {
	return func(c *tokenizeConfig) { c.vowels = newCharSet(chars) }
}

// WithTones replaces the tone set.
func WithTones(chars string) TokenizeOption {
	return func(c *tokenizeConfig) { c.tones = newCharSet(chars) }
}

// WithCombiners replaces the tie bars that join two characters into one segment.
func WithCombiners(chars string) TokenizeOption {
	return func(c *tokenizeConfig) { c.combiners = newCharSet(chars) }
}

// WithBreaks replaces the characters that force a boundary and are dropped.
func WithBreaks(chars string) TokenizeOption {
	return func(c *tokenizeConfig) { c.breaks = newCharSet(chars) }
}

// WithStress replaces the stress marks, which attach to the following segment.
func WithStress(chars string) TokenizeOption {
	return func(c *tokenizeConfig) { c.stress = newCharSet(chars) }
}

// WithSemiDiacritics sets letters that attach to a preceding consonant
// (e.g. "h" in "th").
func WithSemiDiacritics(chars string) TokenizeOption {
	return func(c *tokenizeConfig) { c.semiDiacritics = newCharSet(chars) }
}

// WithNogos sets the segments after which a semi-diacritic never attaches.
func WithNogos(chars string) TokenizeOption {
	return func(c *tokenizeConfig) { c.nogos = newCharSet(chars) }
}

// WithMergeVowels controls whether adjacent vowels form one segment.
// Enabled by default.
func WithMergeVowels(merge bool) TokenizeOption {
	return func(c *tokenizeConfig) { c.mergeVowels = merge }
}

// WithMergeGeminates controls whether identical adjacent segments are
// joined after tokenization.
func WithMergeGeminates(merge bool) TokenizeOption {
	return func(c *tokenizeConfig) { c.mergeGeminates = merge }
}

// WithExpandNasals makes a nasalized vowel emit a placeholder segment
// after it, marking the nasal feature as its own slot.
func WithExpandNasals(nasals string, nasalChar rune, placeholder string) TokenizeOption {
	return func(c *tokenizeConfig) {
		c.expandNasals = true
		c.nasals = newCharSet(nasals)
		c.nasalChar = nasalChar
		c.nasalPlaceholder = placeholder
	}
}

// AllowEmpty makes IPA return an empty sequence for an empty word instead
// of an InvalidInputError.
func AllowEmpty() TokenizeOption {
	return func(c *tokenizeConfig) { c.allowEmpty = true }
}

// ProfileTokenizeOptions returns the options used when drafting
// orthography profiles: typical digraph letters as semi-diacritics,
// merged vowels and merged geminates.
func ProfileTokenizeOptions() []TokenizeOption {
	return []TokenizeOption{
		WithSemiDiacritics(DefaultProfileSemi),
		WithMergeVowels(true),
		WithMergeGeminates(true),
	}
}

func (s *Store) tokenizeDefaults() tokenizeConfig {
	return tokenizeConfig{
		diacritics:       s.diacritics,
		vowels:           s.vowels,
		tones:            s.tones,
		combiners:        newCharSet(DefaultCombiners),
		breaks:           newCharSet(DefaultBreaks),
		stress:           newCharSet(DefaultStress),
		semiDiacritics:   charSet{},
		nogos:            newCharSet(DefaultNogos),
		nasals:           newCharSet(DefaultNasals),
		nasalChar:        DefaultNasalChar,
		nasalPlaceholder: DefaultNasalPlaceholder,
		mergeVowels:      true,
	}
}

// ValidWord checks that word is a single non-empty word.
func ValidWord(word string) error {
	if word == "" {
		return &InvalidInputError{Input: word, Reason: "invalid empty string"}
	}
	if len(strings.Fields(word)) > 1 {
		return &InvalidInputError{Input: word, Reason: "invalid multi-word string"}
	}
	if strings.IndexFunc(word, unicode.IsSpace) >= 0 {
		return &InvalidInputError{Input: word, Reason: "invalid string with whitespace"}
	}
	return nil
}

// IPA splits an IPA transcription of a single word into segments.
// Diacritics attach to their base, stress marks and tie bars attach to the
// following character, adjacent vowels merge into one segment and
// consecutive tone letters form one tone segment. Break characters force a
// boundary and are dropped.
func (s *Store) IPA(word string, opts ...TokenizeOption) ([]string, error) {
	cfg := s.tokenizeDefaults()
	for _, o := range opts {
		o(&cfg)
	}
	if word == "" && cfg.allowEmpty {
		return []string{}, nil
	}
	if err := ValidWord(word); err != nil {
		return nil, err
	}
	return tokenizeIPA(word, &cfg), nil
}

// tokenizeIPA is the character state machine behind IPA. The order of the
// cases is significant.
func tokenizeIPA(word string, c *tokenizeConfig) []string {
	out := make([]string, 0, len(word))
	extend := func(r rune) { out[len(out)-1] += string(r) }

	start := true
	var vowel, tone, merge, nasal bool
	for _, r := range word {
		if nasal && !c.vowels.has(r) && !c.diacritics.has(r) {
			out = append(out, c.nasalPlaceholder)
			nasal = false
		}

		switch {
		case c.breaks.has(r):
			start, vowel, tone, merge = true, false, false, false

		case c.combiners.has(r):
			if len(out) == 0 {
				out = append(out, string(r))
			} else {
				extend(r)
			}
			merge = true

		case c.stress.has(r):
			out = append(out, string(r))
			merge = true
			tone, vowel, start = false, false, false

		case merge:
			extend(r)
			if c.vowels.has(r) {
				vowel = true
			}
			merge = false

		case c.expandNasals && r == c.nasalChar && vowel:
			extend(r)
			start = false
			nasal = true

		case c.semiDiacritics.has(r) && !start && !vowel && !tone && !c.nogos.hasString(out[len(out)-1]):
			extend(r)

		case c.diacritics.has(r):
			if !start {
				extend(r)
			} else {
				out = append(out, string(r))
				start = false
				merge = true
			}

		case c.vowels.has(r):
			if vowel && c.mergeVowels {
				extend(r)
			} else {
				out = append(out, string(r))
				vowel = true
			}
			start, tone = false, false
			if c.expandNasals && c.nasals.has(r) {
				nasal = true
			}

		case c.tones.has(r):
			vowel = false
			if tone {
				extend(r)
			} else {
				out = append(out, string(r))
				tone = true
			}
			start = false

		default:
			vowel = false
			out = append(out, string(r))
			start, tone = false, false
		}
	}
	if nasal {
		out = append(out, c.nasalPlaceholder)
	}

	if c.mergeGeminates && len(out) > 1 {
		merged := []string{out[0]}
		for i := 1; i < len(out); i++ {
			if out[i] == out[i-1] {
				merged[len(merged)-1] += out[i]
			} else {
				merged = append(merged, out[i])
			}
		}
		out = merged
	}
	return out
}

// ASJP code symbols that modify their neighbours.
const (
	asjpDiacritics = "*$~\""
	asjpVowels     = "aeiouE3"
)

var (
	asjpSwapMarker = regexp.MustCompile(`(["*])([~$])`)
	asjpTwoMerge   = regexp.MustCompile(`([^ ]) ([^ ])~`)
	asjpThreeMerge = regexp.MustCompile(`([^ ]) ([^ ]) ([^ ])\$`)
)

// ASJP splits a word written in ASJP code into segments. "~" merges the
// two preceding symbols into one segment and "$" the three preceding ones.
// An empty word yields an empty sequence.
func (s *Store) ASJP(word string, mergeVowels bool) ([]string, error) {
	if word == "" {
		return []string{}, nil
	}
	if err := ValidWord(word); err != nil {
		return nil, err
	}
	cfg := s.tokenizeDefaults()
	cfg.diacritics = newCharSet(asjpDiacritics)
	cfg.vowels = newCharSet(asjpVowels)
	cfg.tones = charSet{}
	cfg.combiners = charSet{}
	cfg.mergeVowels = mergeVowels
	joined := strings.Join(tokenizeIPA(word, &cfg), " ")
	joined = asjpSwapMarker.ReplaceAllString(joined, "${2}${1}")
	joined = asjpTwoMerge.ReplaceAllString(joined, "${1}${2}~")
	joined = asjpThreeMerge.ReplaceAllString(joined, "${1}${2}${3}$$")
	return strings.Fields(joined), nil
}

// SAMPA converts a SAMPA transcription to IPA segments.
func (s *Store) SAMPA(text string) ([]string, error) {
	return s.sampa.Group(text, "IPA")
}

// XSAMPA converts an X-SAMPA transcription to broad IPA segments.
func (s *Store) XSAMPA(text string) ([]string, error) {
	return s.xsampa.Group(text, "BIPA")
}

// SAMPASegments splits a SAMPA transcription into its symbols without
// converting them.
func (s *Store) SAMPASegments(text string) ([]string, error) {
	return s.sampa.Group(text, "")
}
