package storage

import "strings"

// MatchGlob reports whether candidate matches pattern, where pattern
// may contain '*' meaning zero or more characters and any other rune
// meaning an exact character match. Implemented as the classic
// dynamic-programming table[i][j] = "candidate[:i] matches pattern[:j]".
//
// Grounded on
// original_source/server/src/storage/wildcard.rs's wildcard_match.
func MatchGlob(candidate, pattern string) bool {
	c := []rune(candidate)
	p := []rune(pattern)
	n, m := len(c), len(p)

	table := make([][]bool, n+1)
	for i := range table {
		table[i] = make([]bool, m+1)
	}
	table[0][0] = true
	for j := 1; j <= m; j++ {
		table[0][j] = p[j-1] == '*' && table[0][j-1]
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			switch {
			case p[j-1] == '*':
				table[i][j] = table[i-1][j-1] || table[i-1][j] || table[i][j-1]
			case p[j-1] == c[i-1]:
				table[i][j] = table[i-1][j-1]
			}
		}
	}

	return table[n][m]
}

// ExactPrefix returns the substring of pattern before its first '*',
// or the whole pattern if it contains none. A non-empty result can be
// used to seek an ordered key-value scan directly to the first
// possibly-matching key instead of scanning from the start.
func ExactPrefix(pattern string) string {
	if idx := strings.IndexByte(pattern, '*'); idx >= 0 {
		return pattern[:idx]
	}
	return pattern
}
