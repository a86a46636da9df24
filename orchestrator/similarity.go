package orchestrator

// Ratio computes a normalized similarity between two strings derived from
// Levenshtein edit distance: 1 - distance/max(len). It ranges over [0, 1]
// with 1 meaning equal. Planner output is model-generated and may carry
// slightly misspelled agent names; this metric is the default used to
// recover them, with the acceptance threshold calibrated separately
// (DefaultMatchCutoff).
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}

	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes the edit distance with the classic two-row DP.
func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
