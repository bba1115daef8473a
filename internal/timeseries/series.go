package timeseries

import (
	"math"
	"sort"
	"time"

	apperrors "leadlag/internal/errors"
)

// Point is a single observation. A missing value is carried explicitly via
// Missing; it is never coerced to zero.
type Point struct {
	Date    time.Time `json:"date"`
	Value   float64   `json:"value"`
	Missing bool      `json:"missing,omitempty"`
}

// Series is an ordered sequence of observations with strictly increasing
// timestamps. Immutable after construction.
type Series struct {
	name   string
	points []Point
}

// NewSeries builds a series from points. Points are sorted by date; two
// points sharing a timestamp are rejected.
func NewSeries(name string, points []Point) (*Series, error) {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, &apperrors.InvalidParameterError{
				Component: "timeseries",
				Parameter: "points",
				Value:     sorted[i].Date.Format("2006-01-02"),
				Reason:    "duplicate timestamp in series " + name,
			}
		}
	}

	return &Series{name: name, points: sorted}, nil
}

// Name returns the series name.
func (s *Series) Name() string {
	return s.name
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.points)
}

// At returns the i-th observation.
func (s *Series) At(i int) Point {
	return s.points[i]
}

// Points returns a copy of the observations.
func (s *Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Dates returns a copy of the timestamp axis.
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Date
	}
	return out
}

// ValueAt returns the value of the i-th observation, or NaN when missing.
func (s *Series) ValueAt(i int) float64 {
	if s.points[i].Missing {
		return math.NaN()
	}
	return s.points[i].Value
}

// First returns the earliest observation. Panics on an empty series.
func (s *Series) First() Point {
	return s.points[0]
}

// Last returns the latest observation. Panics on an empty series.
func (s *Series) Last() Point {
	return s.points[len(s.points)-1]
}
