package linse

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/unicode/norm"
)

// Replacement is the class label of a token no model entry could resolve.
const Replacement = "\ufffd"

// Strictness controls what happens when every token of a sequence is
// unresolved.
type Strictness int

const (
	// Strict returns an UnresolvedSequenceError.
	Strict Strictness = iota
	// Warn logs a warning and returns the Replacement labels.
	Warn
	// Lenient silently returns the Replacement labels.
	Lenient
)

func (s Strictness) String() string {
	switch s {
	case Strict:
		return "strict"
	case Warn:
		return "warn"
	case Lenient:
		return "lenient"
	}
	return fmt.Sprintf("Strictness(%d)", int(s))
}

// ParseStrictness parses "strict", "warn" or "lenient".
func ParseStrictness(s string) (Strictness, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return Strict, nil
	case "warn":
		return Warn, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, fmt.Errorf("%w: unknown strictness %q", ErrInvalidInput, s)
}

type classifyConfig struct {
	stress     charSet
	diacritics charSet
	slash      bool
	strictness Strictness
}

// ClassifyOption configures sound-class lookups.
type ClassifyOption func(*classifyConfig)

// WithClassStress replaces the stress marks stripped before a retry.
func WithClassStress(chars string) ClassifyOption {
	return func(c *classifyConfig) { c.stress = newCharSet(chars) }
}

// WithClassDiacritics replaces the diacritics stripped before a retry.
func WithClassDiacritics(chars string) ClassifyOption {
	return func(c *classifyConfig) { c.diacritics = newCharSet(chars) }
}

// WithSlashNotation controls whether "source/target" tokens are reduced to
// their target side. Enabled by default.
func WithSlashNotation(enabled bool) ClassifyOption {
	return func(c *classifyConfig) { c.slash = enabled }
}

// WithStrictness sets the behaviour for fully unresolved sequences.
func WithStrictness(s Strictness) ClassifyOption {
	return func(c *classifyConfig) { c.strictness = s }
}

func (s *Store) classifyDefaults() classifyConfig {
	return classifyConfig{
		stress:     newCharSet(DefaultStress),
		diacritics: s.diacritics,
		slash:      true,
		strictness: Strict,
	}
}

// classifier resolves single tokens against one model by trying a chain of
// strategies in order.
type classifier struct {
	model      *Model
	cfg        classifyConfig
	strategies []func(token string) (string, bool)
}

func newClassifier(m *Model, cfg classifyConfig) *classifier {
	c := &classifier{model: m, cfg: cfg}
	c.strategies = []func(string) (string, bool){
		c.exact,
		c.firstRune,
		c.decomposed,
		c.stripMarker,
	}
	return c
}

// classify returns the class label of token, or Replacement.
func (c *classifier) classify(token string) string {
	if c.cfg.slash {
		if _, target, ok := strings.Cut(token, "/"); ok {
			token = target
			if token == "" {
				token = "?"
			}
		}
	}
	return c.lookup(token)
}

func (c *classifier) lookup(token string) string {
	if token == "" {
		return Replacement
	}
	for _, strategy := range c.strategies {
		if class, ok := strategy(token); ok {
			return class
		}
	}
	return Replacement
}

func (c *classifier) exact(token string) (string, bool) {
	return c.model.Lookup(token)
}

func (c *classifier) firstRune(token string) (string, bool) {
	r, _ := utf8.DecodeRuneInString(token)
	return c.model.Lookup(string(r))
}

// decomposed retries with the canonical decomposition, so precomposed
// letters such as "ã" resolve through their base letter.
func (c *classifier) decomposed(token string) (string, bool) {
	d := norm.NFD.String(token)
	if d == token {
		return "", false
	}
	if class, ok := c.model.Lookup(d); ok {
		return class, true
	}
	return c.firstRune(d)
}

// stripMarker drops a leading stress mark or diacritic and resolves the
// remainder from the start of the chain.
func (c *classifier) stripMarker(token string) (string, bool) {
	r, size := utf8.DecodeRuneInString(token)
	if !c.cfg.stress.has(r) && !c.cfg.diacritics.has(r) {
		return "", false
	}
	rest := token[size:]
	if rest == "" {
		return "", false
	}
	class := c.lookup(rest)
	return class, class != Replacement
}

// SoundClass maps each token to its class label in the named model.
// Tokens that cannot be resolved become Replacement. If every token is
// unresolved the result depends on the configured Strictness.
// An empty sequence yields an empty result.
func (s *Store) SoundClass(tokens []string, model string, opts ...ClassifyOption) ([]string, error) {
	m, err := s.Model(model)
	if err != nil {
		return nil, err
	}
	cfg := s.classifyDefaults()
	for _, o := range opts {
		o(&cfg)
	}
	c := newClassifier(m, cfg)

	out := make([]string, len(tokens))
	unresolved := 0
	for i, tok := range tokens {
		out[i] = c.classify(tok)
		if out[i] == Replacement {
			unresolved++
		}
	}
	if len(tokens) > 0 && unresolved == len(tokens) {
		switch cfg.strictness {
		case Strict:
			return nil, &UnresolvedSequenceError{Model: model, Tokens: append([]string(nil), tokens...)}
		case Warn:
			s.log.WithField("model", model).
				WithField("tokens", strings.Join(tokens, " ")).
				Warn("sequence contains only unknown characters")
		}
	}
	return out, nil
}

// Classify resolves a single token against the named model.
func (s *Store) Classify(token, model string, opts ...ClassifyOption) (string, error) {
	m, err := s.Model(model)
	if err != nil {
		return "", err
	}
	cfg := s.classifyDefaults()
	for _, o := range opts {
		o(&cfg)
	}
	return newClassifier(m, cfg).classify(token), nil
}

// Bipa converts each segment to its broad IPA form. The segment is
// normalized first; a segment that is not in the table falls back to its
// first character, and to "?" when that is unknown too.
func (s *Store) Bipa(segments []string) []string {
	return s.tableLookup(segments, "bipa")
}

// CLTS converts each segment to its phonetic feature name, with the same
// fallbacks as Bipa.
func (s *Store) CLTS(segments []string) []string {
	return s.tableLookup(segments, "clts")
}

func (s *Store) tableLookup(segments []string, model string) []string {
	m := s.models[model]
	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = "?"
		n := s.normalizer.Normalize(seg)
		if v, ok := m.Lookup(n); ok {
			out[i] = v
			continue
		}
		if seg == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(seg)
		if v, ok := m.Lookup(s.normalizer.Normalize(string(r))); ok {
			out[i] = v
		}
	}
	return out
}

// NormalizeSegments applies Normalize to every segment.
func (s *Store) NormalizeSegments(segments []string) []string {
	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = s.normalizer.Normalize(seg)
	}
	return out
}

// Codepoints renders every segment as space separated "U+XXXX" code points.
func Codepoints(segments []string) []string {
	out := make([]string, len(segments))
	for i, seg := range segments {
		cps := make([]string, 0, utf8.RuneCountInString(seg))
		for _, r := range seg {
			cps = append(cps, fmt.Sprintf("U+%04X", r))
		}
		out[i] = strings.Join(cps, " ")
	}
	return out
}

// Suggestion is a known grapheme close to an unresolved token.
type Suggestion struct {
	Grapheme string  `json:"grapheme"`
	Class    string  `json:"class"`
	Score    float64 `json:"score"`
	Distance int     `json:"distance"`
}

// Suggest ranks the graphemes of the named model by similarity to token:
// Jaro-Winkler similarity first, then Damerau-Levenshtein distance, then
// grapheme order. At most n suggestions are returned.
func (s *Store) Suggest(token, model string, n int) ([]Suggestion, error) {
	m, err := s.Model(model)
	if err != nil {
		return nil, err
	}
	if token == "" || n <= 0 {
		return nil, nil
	}
	token = norm.NFC.String(token)
	all := make([]Suggestion, 0, m.Len())
	for _, g := range m.Graphemes() {
		class, _ := m.Lookup(g)
		all = append(all, Suggestion{
			Grapheme: g,
			Class:    class,
			Score:    matchr.JaroWinkler(token, g, false),
			Distance: matchr.DamerauLevenshtein(token, g),
		})
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].Grapheme < all[j].Grapheme
	})
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}
