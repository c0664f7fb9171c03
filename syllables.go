package linse

import (
	"fmt"
	"strconv"
)

type syllableConfig struct {
	model     string
	gap       string
	maxVowels int
	vowels    map[int]bool
	tones     map[int]bool
	classify  []ClassifyOption
}

// SyllableOption configures Syllables.
type SyllableOption func(*syllableConfig)

// WithSyllableModel selects the numeric sound-class model used for the
// sonority profile. Default "art".
func WithSyllableModel(name string) SyllableOption {
	return func(c *syllableConfig) { c.model = name }
}

// WithGap sets the alignment gap symbol that is ignored while computing
// boundaries and re-inserted afterwards. Default "-".
func WithGap(symbol string) SyllableOption {
	return func(c *syllableConfig) { c.gap = symbol }
}

// WithMaxVowels sets the number of vowels after which a new vowel opens a
// new syllable. Default 2.
func WithMaxVowels(n int) SyllableOption {
	return func(c *syllableConfig) { c.maxVowels = n }
}

// WithVowelRanks sets the sonority ranks treated as vowels. Default 7.
func WithVowelRanks(ranks ...int) SyllableOption {
	return func(c *syllableConfig) { c.vowels = rankSet(ranks) }
}

// WithToneRanks sets the sonority ranks treated as tones. Default 8.
func WithToneRanks(ranks ...int) SyllableOption {
	return func(c *syllableConfig) { c.tones = rankSet(ranks) }
}

// WithSyllableClassify passes options to the sound-class lookup.
func WithSyllableClassify(opts ...ClassifyOption) SyllableOption {
	return func(c *syllableConfig) { c.classify = append(c.classify, opts...) }
}

func rankSet(ranks []int) map[int]bool {
	m := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		m[r] = true
	}
	return m
}

// Syllables splits tokens into syllables using sonority as a proxy. A new
// syllable starts before position i when the next rank is not a tone and
//
//	(a) rank(i-1) >= rank(i) < rank(i+1), the open syllable has a vowel
//	    and a vowel follows later in the sequence, or
//	(b) the previous token is a tone, or
//	(c) token i is a vowel and the open syllable would exceed the vowel limit.
//
// Gap symbols are skipped for the analysis and re-inserted afterwards, each
// in the syllable of the next non-gap token.
func (s *Store) Syllables(tokens []string, opts ...SyllableOption) ([][]string, error) {
	cfg := syllableConfig{
		model:     sonorityModel,
		gap:       "-",
		maxVowels: 2,
		vowels:    rankSet([]int{rankVowel}),
		tones:     rankSet([]int{rankTone}),
	}
	for _, o := range opts {
		o(&cfg)
	}
	if len(tokens) == 0 {
		return [][]string{}, nil
	}

	// owner[i] is the index into seq of tokens[i], or -1 for a gap
	owner := make([]int, len(tokens))
	seq := make([]string, 0, len(tokens))
	for i, t := range tokens {
		if t == cfg.gap {
			owner[i] = -1
			continue
		}
		owner[i] = len(seq)
		seq = append(seq, t)
	}
	if len(seq) == 0 {
		return [][]string{append([]string(nil), tokens...)}, nil
	}

	classes, err := s.SoundClass(seq, cfg.model, cfg.classify...)
	if err != nil {
		return nil, err
	}
	profile := make([]int, len(classes))
	for i, c := range classes {
		if c == Replacement {
			profile[i] = rankUnknown
			continue
		}
		n, err := strconv.Atoi(c)
		if err != nil {
			return nil, fmt.Errorf("%w: model %q is not numeric (class %q)", ErrInvalidInput, cfg.model, c)
		}
		profile[i] = n
	}

	bounds := syllableStarts(profile, &cfg)

	// syllable index of every non-gap token
	sylOf := make([]int, len(seq))
	cur := 0
	for i := range seq {
		if i > 0 && bounds[i] {
			cur++
		}
		sylOf[i] = cur
	}
	out := make([][]string, cur+1)
	var pending []string
	for i, t := range tokens {
		if owner[i] < 0 {
			pending = append(pending, t)
			continue
		}
		k := sylOf[owner[i]]
		out[k] = append(out[k], pending...)
		out[k] = append(out[k], t)
		pending = pending[:0]
	}
	out[cur] = append(out[cur], pending...)
	return out, nil
}

// syllableStarts marks every position of profile that opens a new syllable.
func syllableStarts(profile []int, cfg *syllableConfig) []bool {
	n := len(profile)
	starts := make([]bool, n)
	rank := func(i int) int {
		if i < 0 || i >= n {
			return 0
		}
		return profile[i]
	}
	vowelAfter := make([]bool, n+1)
	for i := n - 1; i >= 0; i-- {
		vowelAfter[i] = vowelAfter[i+1] || cfg.vowels[profile[i]]
	}

	vowels := 0
	for i := 0; i < n; i++ {
		prev, pro, next := rank(i-1), profile[i], rank(i+1)
		isVowel := cfg.vowels[pro]
		if isVowel {
			vowels++
		}
		if i == 0 || cfg.tones[next] {
			continue
		}
		cut := prev >= pro && pro < next && vowels > 0 && vowelAfter[i+1] ||
			cfg.tones[prev] ||
			isVowel && vowels > cfg.maxVowels
		if cut {
			starts[i] = true
			vowels = 0
			if isVowel {
				vowels = 1
			}
		}
	}
	return starts
}

type morphemeConfig struct {
	separators   map[string]bool
	splitOnTones bool
	syllable     []SyllableOption
}

// MorphemeOption configures Morphemes.
type MorphemeOption func(*morphemeConfig)

// WithSeparators replaces the morpheme separators. Default "+", "_", "#".
func WithSeparators(seps ...string) MorphemeOption {
	return func(c *morphemeConfig) {
		c.separators = make(map[string]bool, len(seps))
		for _, s := range seps {
			c.separators[s] = true
		}
	}
}

// WithSplitOnTones makes Morphemes fall back to syllables when the sequence
// contains no separator.
func WithSplitOnTones(split bool, opts ...SyllableOption) MorphemeOption {
	return func(c *morphemeConfig) {
		c.splitOnTones = split
		c.syllable = opts
	}
}

// Morphemes splits tokens on separator tokens, dropping the separators and
// empty morphemes.
func (s *Store) Morphemes(tokens []string, opts ...MorphemeOption) ([][]string, error) {
	cfg := morphemeConfig{separators: map[string]bool{"+": true, "_": true, "#": true}}
	for _, o := range opts {
		o(&cfg)
	}
	var out [][]string
	var cur []string
	found := false
	for _, t := range tokens {
		if cfg.separators[t] {
			found = true
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	if !found && cfg.splitOnTones && len(tokens) > 0 {
		return s.Syllables(tokens, cfg.syllable...)
	}
	if out == nil {
		out = [][]string{}
	}
	return out, nil
}

// Flatten joins morphemes into one sequence with sep between them. Empty
// morphemes are skipped.
func Flatten(morphemes [][]string, sep string) []string {
	out := []string{}
	for _, m := range morphemes {
		if len(m) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, sep)
		}
		out = append(out, m...)
	}
	return out
}
