package spawn

import (
	"math"
)

func validateWeights(ws []float64) error {
	if len(ws) == 0 {
		return ErrInvalidWeights
	}
	var sum float64
	for _, w := range ws {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return ErrInvalidWeights
		}
		sum += w
	}
	if sum <= 0 || math.IsInf(sum, 0) {
		return ErrInvalidWeights
	}
	return nil
}
