package util

import "github.com/sahilm/fuzzy"

// RankFuzzy returns the indexes of candidates matching input, best first,
// capped at n when n > 0. An empty input matches nothing.
func RankFuzzy(input string, candidates []string, n int) []int {
	if input == "" {
		return nil
	}
	matches := fuzzy.Find(input, candidates)
	limit := len(matches)
	if n > 0 && n < limit {
		limit = n
	}
	out := make([]int, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Index
	}
	return out
}

// ScoreCompletions returns the top N candidate strings for shell completion.
// An empty input returns every candidate.
func ScoreCompletions(input string, candidates []string, n int) []string {
	if input == "" {
		return candidates
	}
	idx := RankFuzzy(input, candidates, n)
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = candidates[j]
	}
	return out
}
