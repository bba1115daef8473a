package analysis

import "math"

// shiftColumn returns a copy of col with every value relocated s rows
// forward (s > 0) or backward (s < 0). A positive shift pushes the leading
// series later in time, so today's leading value is compared against the
// target s periods ahead. The |s| vacated boundary rows become NaN; values
// never wrap around or duplicate.
func shiftColumn(col []float64, s int) []float64 {
	n := len(col)
	out := make([]float64, n)

	if s == 0 {
		copy(out, col)
		return out
	}

	for i := range out {
		out[i] = math.NaN()
	}

	if abs(s) >= n {
		return out
	}

	if s > 0 {
		for i := s; i < n; i++ {
			out[i] = col[i-s]
		}
	} else {
		for i := 0; i < n+s; i++ {
			out[i] = col[i-s]
		}
	}

	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
