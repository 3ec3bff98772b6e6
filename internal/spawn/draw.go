package spawn

import "errors"

var ErrInvalidWeights = errors.New("invalid weights; need at least one positive finite weight and no negatives")

// Pick draws an index with probability weights[i] / sum(weights).
// Zero-weight entries are never chosen.
func Pick(weights []float64, rng RandomSource) (int, error) {
	if err := validateWeights(weights); err != nil {
		return 0, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return i, nil
		}
		r -= w
		last = i
	}
	// float rounding can leave r marginally >= the final weight
	return last, nil
}
