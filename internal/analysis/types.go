package analysis

import (
	"math"
	"time"

	apperrors "leadlag/internal/errors"
	"leadlag/internal/timeseries"
)

// ShiftRange defines the symmetric candidate set {-Max, ..., -1, 0, 1, ..., Max}.
type ShiftRange struct {
	Max int
}

// NewShiftRange validates the maximum shift. Values below 1 are rejected.
func NewShiftRange(max int) (ShiftRange, error) {
	if max < 1 {
		return ShiftRange{}, &apperrors.InvalidParameterError{
			Component: "shift_engine",
			Parameter: "max_shift",
			Value:     max,
			Reason:    "must be at least 1",
		}
	}
	return ShiftRange{Max: max}, nil
}

// Shifts returns every candidate shift in ascending order.
func (r ShiftRange) Shifts() []int {
	out := make([]int, 0, 2*r.Max+1)
	for s := -r.Max; s <= r.Max; s++ {
		out = append(out, s)
	}
	return out
}

// AlignedFrame holds the Leading and Target series re-expressed on one
// common ordered timestamp axis. Rows with a missing value in either column
// are dropped during alignment, so a constructed frame is fully populated.
// Immutable once constructed.
type AlignedFrame struct {
	dates   []time.Time
	leading []float64
	target  []float64
	freq    timeseries.Frequency
}

// Len returns the number of rows.
func (f *AlignedFrame) Len() int {
	return len(f.dates)
}

// Frequency returns the common grid frequency, or Irregular when alignment
// happened on raw timestamps.
func (f *AlignedFrame) Frequency() timeseries.Frequency {
	return f.freq
}

// Dates returns a copy of the timestamp axis.
func (f *AlignedFrame) Dates() []time.Time {
	out := make([]time.Time, len(f.dates))
	copy(out, f.dates)
	return out
}

// DateAt returns the timestamp of row i.
func (f *AlignedFrame) DateAt(i int) time.Time {
	return f.dates[i]
}

// LeadingAt returns the Leading value of row i.
func (f *AlignedFrame) LeadingAt(i int) float64 {
	return f.leading[i]
}

// TargetAt returns the Target value of row i.
func (f *AlignedFrame) TargetAt(i int) float64 {
	return f.target[i]
}

// leadingColumn returns a copy of the Leading column for shifting.
func (f *AlignedFrame) leadingColumn() []float64 {
	out := make([]float64, len(f.leading))
	copy(out, f.leading)
	return out
}

// ShiftResult is the whole-sample score for one candidate shift. RSquared is
// meaningful only when Defined; a shift is undefined when fewer than two
// overlapping rows exist or the overlap has zero variance.
type ShiftResult struct {
	Shift    int
	RSquared float64
	Defined  bool
}

// StaticResult is the static scorer output: one ShiftResult per candidate in
// ascending shift order, plus the selected best shift. Best is meaningful
// only when at least one shift is defined.
type StaticResult struct {
	Results []ShiftResult
	Best    ShiftResult
}

// CorrelationPoint is one time step of a correlation track.
type CorrelationPoint struct {
	Date    time.Time
	Value   float64
	Defined bool
}

// CorrelationMatrix maps each shift to a correlation value per timestamp.
// The timestamp axis is the AlignedFrame's axis; undefined cells are stored
// as NaN. The shift is the explicit key, never derived from a display label.
type CorrelationMatrix struct {
	dates  []time.Time
	shifts []int
	cols   map[int][]float64
}

func newCorrelationMatrix(dates []time.Time, shifts []int) *CorrelationMatrix {
	cols := make(map[int][]float64, len(shifts))
	for _, s := range shifts {
		cols[s] = make([]float64, len(dates))
	}
	return &CorrelationMatrix{dates: dates, shifts: shifts, cols: cols}
}

// Dates returns a copy of the timestamp axis.
func (m *CorrelationMatrix) Dates() []time.Time {
	out := make([]time.Time, len(m.dates))
	copy(out, m.dates)
	return out
}

// Shifts returns the candidate shifts in ascending order.
func (m *CorrelationMatrix) Shifts() []int {
	out := make([]int, len(m.shifts))
	copy(out, m.shifts)
	return out
}

// At returns the correlation for a shift at row i and whether it is defined.
func (m *CorrelationMatrix) At(shift, i int) (float64, bool) {
	col, ok := m.cols[shift]
	if !ok {
		return math.NaN(), false
	}
	v := col[i]
	return v, !math.IsNaN(v)
}

// Column returns the full track for one shift.
func (m *CorrelationMatrix) Column(shift int) []CorrelationPoint {
	col, ok := m.cols[shift]
	if !ok {
		return nil
	}
	out := make([]CorrelationPoint, len(col))
	for i, v := range col {
		out[i] = CorrelationPoint{Date: m.dates[i], Value: v, Defined: !math.IsNaN(v)}
	}
	return out
}

// Final returns the correlation at the last timestamp for a shift.
func (m *CorrelationMatrix) Final(shift int) (float64, bool) {
	if len(m.dates) == 0 {
		return math.NaN(), false
	}
	return m.At(shift, len(m.dates)-1)
}

// Result bundles everything one analysis run produces.
type Result struct {
	Frame      *AlignedFrame
	Static     *StaticResult
	Rolling    *CorrelationMatrix
	Cumulative *CorrelationMatrix
}
