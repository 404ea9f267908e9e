package scoring

import (
	"math"
	"sort"
)

// Neutral is the normalized value given to every candidate when a column
// cannot discriminate between them.
const Neutral = 0.5

type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

// Strategy selects how a raw column is mapped onto [0,1].
type Strategy string

const (
	StrategyMinMax     Strategy = "minmax"
	StrategyPercentile Strategy = "percentile"
)

// Normalize maps values onto [0,1] so that 1 is always the best value.
func (s Strategy) Normalize(values []float64, dir Direction) []float64 {
	if s == StrategyPercentile {
		return PercentileRank(values, dir)
	}
	return MinMax(values, dir)
}

func spread(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// MinMax scales by the column range. A zero range yields Neutral everywhere.
func MinMax(values []float64, dir Direction) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := spread(values)
	if hi == lo {
		for i := range out {
			out[i] = Neutral
		}
		return out
	}
	span := hi - lo
	halved := math.IsInf(span, 0)
	for i, v := range values {
		var n float64
		if halved {
			// the range overflows float64; halving every term keeps it finite
			n = (v/2 - lo/2) / (hi/2 - lo/2)
		} else {
			n = (v - lo) / span
		}
		if dir == LowerIsBetter {
			n = 1 - n
		}
		out[i] = clamp(n, 0, 1)
	}
	return out
}

// PercentileRank scores by (rank-1)/(n-1) with ties sharing their average rank.
func PercentileRank(values []float64, dir Direction) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	lo, hi := spread(values)
	if n == 1 || hi == lo {
		for i := range out {
			out[i] = Neutral
		}
		return out
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	for start := 0; start < n; {
		end := start
		for end+1 < n && values[idx[end+1]] == values[idx[start]] {
			end++
		}
		// ranks are 1-based; a tie group spanning [start,end] shares the mean
		avgRank := float64(start+end)/2 + 1
		for k := start; k <= end; k++ {
			p := (avgRank - 1) / float64(n-1)
			if dir == LowerIsBetter {
				p = 1 - p
			}
			out[idx[k]] = p
		}
		start = end + 1
	}
	return out
}

// clamp bounds v to [min, max]. NaN maps to min so an undefined value can
// never outrank a defined one.
func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
