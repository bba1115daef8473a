package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlag/internal/diagnostics"
	apperrors "leadlag/internal/errors"
	"leadlag/internal/timeseries"
)

func TestAlignIdempotence(t *testing.T) {
	// Aligning two already-aligned dense monthly series is a no-op.
	leading := monthlySeries(t, "leading", 2023, time.January, wobble(12))
	target := monthlySeries(t, "target", 2023, time.January, ramp(12))

	frame, err := Align(context.Background(), leading, target, nil)
	require.NoError(t, err)

	require.Equal(t, 12, frame.Len())
	for i := 0; i < frame.Len(); i++ {
		assert.Equal(t, leading.At(i).Date, frame.DateAt(i))
		assert.Equal(t, leading.At(i).Value, frame.LeadingAt(i))
		assert.Equal(t, target.At(i).Value, frame.TargetAt(i))
	}
	assert.Equal(t, timeseries.Monthly, frame.Frequency())
}

func TestAlignWeeklyOntoMonthly(t *testing.T) {
	// Weekly leading, monthly target over the same 12 months: the leading
	// series is resampled to monthly taking the last observation per month.
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	leading := weeklySeries(t, "leading", start, ramp(52))
	target := monthlySeries(t, "target", 2023, time.January, ramp(12))

	frame, err := Align(context.Background(), leading, target, nil)
	require.NoError(t, err)

	require.Equal(t, 12, frame.Len())
	assert.Equal(t, timeseries.Monthly, frame.Frequency())

	// January 2023 has weekly observations on the 2nd, 9th, 16th, 23rd and
	// 30th; the last one carries index value 4.
	assert.Equal(t, 4.0, frame.LeadingAt(0))
	// February: 6th, 13th, 20th, 27th; last index value 8.
	assert.Equal(t, 8.0, frame.LeadingAt(1))

	// Row timestamps come from the series natively on the monthly grid.
	assert.Equal(t, target.At(0).Date, frame.DateAt(0))
}

func TestAlignMixedMonthLabels(t *testing.T) {
	// One series labeled at month starts, the other at month ends: both are
	// monthly, so rows join on the calendar period rather than the label.
	startLabeled := monthlySeries(t, "leading", 2024, time.January, wobble(6))

	endPoints := make([]timeseries.Point, 6)
	for i := range endPoints {
		first := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		endPoints[i] = timeseries.Point{Date: first.AddDate(0, 1, -1), Value: float64(i)}
	}
	endLabeled, err := timeseries.NewSeries("target", endPoints)
	require.NoError(t, err)

	frame, alignErr := Align(context.Background(), startLabeled, endLabeled, nil)
	require.NoError(t, alignErr)
	assert.Equal(t, 6, frame.Len())
}

func TestAlignIrregularJoinsExactTimestamps(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 29, 0, 0, 0, 0, time.UTC),
	}

	leadPoints := make([]timeseries.Point, len(dates))
	for i, d := range dates {
		leadPoints[i] = timeseries.Point{Date: d, Value: float64(i + 1)}
	}
	leading, err := timeseries.NewSeries("leading", leadPoints)
	require.NoError(t, err)

	// Target shares only two of the leading timestamps.
	target, err := timeseries.NewSeries("target", []timeseries.Point{
		{Date: dates[1], Value: 10},
		{Date: dates[3], Value: 20},
		{Date: time.Date(2024, time.April, 11, 0, 0, 0, 0, time.UTC), Value: 30},
	})
	require.NoError(t, err)

	frame, alignErr := Align(context.Background(), leading, target, nil)
	require.NoError(t, alignErr)

	require.Equal(t, 2, frame.Len())
	assert.Equal(t, dates[1], frame.DateAt(0))
	assert.Equal(t, dates[3], frame.DateAt(1))
	assert.Equal(t, timeseries.Irregular, frame.Frequency())
}

func TestAlignDropsRowsWithMissingValues(t *testing.T) {
	leadPoints := []timeseries.Point{
		{Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), Value: 1},
		{Date: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), Missing: true},
		{Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Value: 3},
		{Date: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), Value: 4},
	}
	leading, err := timeseries.NewSeries("leading", leadPoints)
	require.NoError(t, err)

	target := monthlySeries(t, "target", 2024, time.January, []float64{5, 6, 7, 8})

	frame, alignErr := Align(context.Background(), leading, target, nil)
	require.NoError(t, alignErr)

	require.Equal(t, 3, frame.Len())
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), frame.DateAt(1))
}

func TestAlignEmptyInput(t *testing.T) {
	empty, err := timeseries.NewSeries("leading", nil)
	require.NoError(t, err)
	target := monthlySeries(t, "target", 2024, time.January, ramp(3))

	_, alignErr := Align(context.Background(), empty, target, nil)

	var emptyErr *apperrors.EmptyInputError
	require.ErrorAs(t, alignErr, &emptyErr)
	assert.Equal(t, "frequency_aligner", emptyErr.Component)
	assert.Equal(t, "leading", emptyErr.Series)
}

func TestAlignInsufficientOverlap(t *testing.T) {
	leading := monthlySeries(t, "leading", 2024, time.January, []float64{1, 2})
	target := monthlySeries(t, "target", 2024, time.February, []float64{3, 4})

	_, alignErr := Align(context.Background(), leading, target, nil)

	var insufficientErr *apperrors.InsufficientDataError
	require.ErrorAs(t, alignErr, &insufficientErr)
	assert.Equal(t, 1, insufficientErr.Rows)
	assert.Equal(t, 2, insufficientErr.Required)
}

func TestAlignEmitsFrequencyDiagnostics(t *testing.T) {
	collector := diagnostics.NewCollector()
	leading := monthlySeries(t, "leading", 2024, time.January, wobble(6))
	target := monthlySeries(t, "target", 2024, time.January, ramp(6))

	_, err := Align(context.Background(), leading, target, collector)
	require.NoError(t, err)

	events := collector.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "frequency_aligner", events[0].Component)
	assert.Equal(t, "monthly", events[0].Fields["leading"])
}
