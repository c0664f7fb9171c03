package linse

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// charSet is a set of runes.
type charSet map[rune]struct{}

// newCharSet builds a set from every rune of chars.
func newCharSet(chars string) charSet {
	cs := make(charSet, utf8.RuneCountInString(chars))
	for _, r := range chars {
		cs[r] = struct{}{}
	}
	return cs
}

func (cs charSet) has(r rune) bool {
	_, ok := cs[r]
	return ok
}

// hasString reports whether s is a single rune contained in the set.
func (cs charSet) hasString(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return false
	}
	return cs.has(r)
}

// hasFirst reports whether the first rune of s is in the set.
func (cs charSet) hasFirst(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && cs.has(r)
}

func (cs charSet) union(other charSet) charSet {
	out := make(charSet, len(cs)+len(other))
	for r := range cs {
		out[r] = struct{}{}
	}
	for r := range other {
		out[r] = struct{}{}
	}
	return out
}

// String returns the members in code point order.
func (cs charSet) String() string {
	rs := make([]rune, 0, len(cs))
	for r := range cs {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	var b strings.Builder
	for _, r := range rs {
		b.WriteRune(r)
	}
	return b.String()
}
