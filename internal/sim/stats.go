package sim

import (
	"math"
	"slices"
)

// Stats summarizes integer samples.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Samples keeps the raw values for histograms.
	Samples []int `json:"-"`
}

func calcStats(xs []int) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	sorted := slices.Sorted(slices.Values(xs))
	st := Stats{
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		P50:     percentile(sorted, 0.50),
		P90:     percentile(sorted, 0.90),
		P99:     percentile(sorted, 0.99),
		Samples: xs,
	}
	for _, v := range xs {
		st.Mean += float64(v)
	}
	st.Mean /= float64(len(xs))
	for _, v := range xs {
		d := float64(v) - st.Mean
		st.Var += d * d
	}
	st.Var /= float64(len(xs)) // population
	st.StdDev = math.Sqrt(st.Var)
	return st
}

// percentile interpolates linearly between the closest ranks of a sorted,
// non-empty sample. p is clamped to [0,1].
func percentile(sorted []int, p float64) float64 {
	rank := min(max(p, 0), 1) * float64(len(sorted)-1)
	lo := int(rank)
	hi := min(lo+1, len(sorted)-1)
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[hi]-sorted[lo])
}
