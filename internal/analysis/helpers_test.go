package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leadlag/internal/timeseries"
)

// monthlySeries builds a series with consecutive month-start timestamps.
func monthlySeries(t *testing.T, name string, year int, month time.Month, values []float64) *timeseries.Series {
	t.Helper()

	points := make([]timeseries.Point, len(values))
	for i, v := range values {
		points[i] = timeseries.Point{
			Date:  time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0),
			Value: v,
		}
	}

	s, err := timeseries.NewSeries(name, points)
	require.NoError(t, err)
	return s
}

// weeklySeries builds a series with 7-day spacing from start.
func weeklySeries(t *testing.T, name string, start time.Time, values []float64) *timeseries.Series {
	t.Helper()

	points := make([]timeseries.Point, len(values))
	for i, v := range values {
		points[i] = timeseries.Point{Date: start.AddDate(0, 0, 7*i), Value: v}
	}

	s, err := timeseries.NewSeries(name, points)
	require.NoError(t, err)
	return s
}

// dailySeries builds a series with 1-day spacing from start.
func dailySeries(t *testing.T, name string, start time.Time, values []float64) *timeseries.Series {
	t.Helper()

	points := make([]timeseries.Point, len(values))
	for i, v := range values {
		points[i] = timeseries.Point{Date: start.AddDate(0, 0, i), Value: v}
	}

	s, err := timeseries.NewSeries(name, points)
	require.NoError(t, err)
	return s
}

// ramp returns [0, 1, 2, ...] of length n.
func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// wobble returns a deterministic non-collinear sequence of length n.
func wobble(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64((i*i)%17) + float64(i%5)
	}
	return out
}
