package analysis

import "math"

// pearsonPairs computes the Pearson correlation over the rows of x and y
// where both values are present, ignoring rows with a NaN in either column.
// It returns NaN when fewer than two pairs exist or when either column has
// zero variance over the pairs; a constant series has no defined
// correlation. The pair count is returned alongside.
func pearsonPairs(x, y []float64) (float64, int) {
	var (
		n                   float64
		sumX, sumY          float64
		sumXX, sumYY, sumXY float64
	)

	for i := range x {
		xv, yv := x[i], y[i]
		if math.IsNaN(xv) || math.IsNaN(yv) {
			continue
		}
		n++
		sumX += xv
		sumY += yv
		sumXX += xv * xv
		sumYY += yv * yv
		sumXY += xv * yv
	}

	pairs := int(n)
	if pairs < 2 {
		return math.NaN(), pairs
	}

	varX := n*sumXX - sumX*sumX
	varY := n*sumYY - sumY*sumY
	if varX <= 0 || varY <= 0 {
		return math.NaN(), pairs
	}

	r := (n*sumXY - sumX*sumY) / math.Sqrt(varX*varY)
	return clampCorrelation(r), pairs
}

// clampCorrelation bounds r to [-1, 1]; floating-point rounding can push it
// marginally past the ends.
func clampCorrelation(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
