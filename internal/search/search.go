// Package search ranks already-materialized paths against a fuzzy
// subsequence query. It operates purely on the snapshot it is handed
// and never touches the disk.
package search

import (
	"path/filepath"
	"sort"
	"strings"
)

// MaxResults caps the number of matches returned per query.
const MaxResults = 50

// Match pairs a candidate path with its score.
type Match struct {
	Path  string
	Score int
}

// Score matches query against candidate as a case-insensitive
// subsequence and reports the score and whether every query character
// was matched in order. Matches at separator boundaries score 10,
// continuations of an unbroken run score 5, scattered hits score 1.
// An empty query matches everything with score 0.
func Score(candidate, query string) (int, bool) {
	needle := []rune(strings.ToLower(query))
	if len(needle) == 0 {
		return 0, true
	}

	score := 0
	idx := 0
	prevMatch := false
	prevWasSeparator := true

	for _, c := range strings.ToLower(candidate) {
		isSeparator := c == '/' || c == '.' || c == '_' || c == '-' || c == ' '
		if idx < len(needle) && c == needle[idx] {
			switch {
			case prevWasSeparator:
				score += 10
			case prevMatch:
				score += 5
			default:
				score++
			}
			idx++
			prevMatch = true
		} else {
			prevMatch = false
		}
		prevWasSeparator = isSeparator
	}

	if idx != len(needle) {
		return 0, false
	}
	return score, true
}

// Rank scores the basename of every path against query, drops
// non-qualifiers, and returns matches sorted descending by score
// (ties keep their original order), truncated to MaxResults.
func Rank(paths []string, query string) []Match {
	matches := make([]Match, 0, len(paths))
	for _, p := range paths {
		if score, ok := Score(filepath.Base(p), query); ok {
			matches = append(matches, Match{Path: p, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}
	return matches
}
