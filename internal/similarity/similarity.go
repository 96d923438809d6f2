// Package similarity scores name closeness with normalized edit distance
// and finds duplicate candidate pairs within one entity kind's list.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the similarity score at or above which a pair is
// considered a duplicate candidate.
const DefaultThreshold = 0.7

// Distance is the case-folded edit distance between a and b: insertions,
// deletions and substitutions each cost 1.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
}

// Score normalizes edit distance to [0,1]: 1 − distance/max(len(a), len(b)),
// defined as 1 when both strings are empty.
func Score(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(longest)
}

// Candidate is a duplicate candidate pair: indices into the scanned list
// plus the similarity score. Ephemeral; consumed by consolidation.
type Candidate struct {
	I     int
	J     int
	Score float64
}

// FindDuplicates compares all pairs in names and returns candidates whose
// score meets the threshold, ordered by ascending i then j.
func FindDuplicates(names []string, threshold float64) []Candidate {
	var out []Candidate
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if s := Score(names[i], names[j]); s >= threshold {
				out = append(out, Candidate{I: i, J: j, Score: s})
			}
		}
	}
	return out
}
