package linse

// Affixes returns seq followed by its proper prefixes and suffixes,
// alternating and in decreasing length: for "abc" that is
// abc, ab, bc, a, c.
func Affixes[S ~[]E, E any](seq S) []S {
	out := []S{seq}
	for i := 1; i < len(seq); i++ {
		out = append(out, seq[:len(seq)-i], seq[i:])
	}
	return out
}

// Prefixes returns seq and its proper prefixes in decreasing length.
func Prefixes[S ~[]E, E any](seq S) []S {
	out := []S{seq}
	for i := 1; i < len(seq); i++ {
		out = append(out, seq[:len(seq)-i])
	}
	return out
}

// Suffixes returns seq and its proper suffixes in decreasing length.
func Suffixes[S ~[]E, E any](seq S) []S {
	out := []S{seq}
	for i := 1; i < len(seq); i++ {
		out = append(out, seq[i:])
	}
	return out
}

// Substrings returns every contiguous n-gram of seq, longest first and
// left to right within one length.
func Substrings[S ~[]E, E any](seq S) []S {
	n := len(seq)
	out := make([]S, 0, n*(n+1)/2)
	for size := n; size > 0; size-- {
		for start := 0; start+size <= n; start++ {
			out = append(out, seq[start:start+size])
		}
	}
	return out
}
