package bayes

import "cmp"

// Classification pairs a feature set with the category it was assigned to.
// Learned observations carry a Probability of 1.
type Classification[F comparable, C cmp.Ordered] struct {
	Features    []F
	Category    C
	Probability float64
	LogScore    float64
}

// Compare orders classifications by probability ascending. Equal probabilities
// fall back to the log score, then to the category in descending order, so the
// greatest element of a tie is always the lexically smallest category.
func Compare[F comparable, C cmp.Ordered](a, b Classification[F, C]) int {
	if c := cmp.Compare(a.Probability, b.Probability); c != 0 {
		return c
	}
	if c := cmp.Compare(a.LogScore, b.LogScore); c != 0 {
		return c
	}
	return cmp.Compare(b.Category, a.Category)
}
