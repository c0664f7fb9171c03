package linse

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer maps common mis-codings (ASCII colon for length, superscript
// y for palatalization, look-alike Greek letters) to canonical IPA.
// Input is brought to NFC first. Replacement targets are never themselves
// replaced, so Normalize is idempotent.
type Normalizer struct {
	replacer *strings.Replacer
	pairs    map[string]string
}

// NewNormalizer builds a Normalizer from grapheme → replacement pairs.
func NewNormalizer(pairs map[string]string) *Normalizer {
	// strings.Replacer prefers earlier pairs on a tie, so longer keys go first.
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	oldnew := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		oldnew = append(oldnew, k, pairs[k])
	}
	cp := make(map[string]string, len(pairs))
	for k, v := range pairs {
		cp[k] = v
	}
	return &Normalizer{replacer: strings.NewReplacer(oldnew...), pairs: cp}
}

// Normalize returns text in NFC with all known mis-codings replaced.
func (n *Normalizer) Normalize(text string) string {
	return n.replacer.Replace(norm.NFC.String(text))
}

// Len returns the number of replacement pairs.
func (n *Normalizer) Len() int { return len(n.pairs) }

// Lookup returns the replacement for a single grapheme.
func (n *Normalizer) Lookup(grapheme string) (string, bool) {
	r, ok := n.pairs[grapheme]
	return r, ok
}
