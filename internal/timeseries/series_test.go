package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "leadlag/internal/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSeriesSortsByDate(t *testing.T) {
	s, err := NewSeries("indicator", []Point{
		{Date: day(2024, time.March, 1), Value: 3},
		{Date: day(2024, time.January, 1), Value: 1},
		{Date: day(2024, time.February, 1), Value: 2},
	})
	require.NoError(t, err)

	require.Equal(t, 3, s.Len())
	assert.Equal(t, 1.0, s.At(0).Value)
	assert.Equal(t, 2.0, s.At(1).Value)
	assert.Equal(t, 3.0, s.At(2).Value)
	assert.Equal(t, day(2024, time.January, 1), s.First().Date)
	assert.Equal(t, day(2024, time.March, 1), s.Last().Date)
}

func TestNewSeriesRejectsDuplicateTimestamps(t *testing.T) {
	_, err := NewSeries("indicator", []Point{
		{Date: day(2024, time.January, 1), Value: 1},
		{Date: day(2024, time.January, 1), Value: 2},
	})

	var paramErr *apperrors.InvalidParameterError
	require.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "points", paramErr.Parameter)
}

func TestValueAtMissingIsNaN(t *testing.T) {
	s, err := NewSeries("indicator", []Point{
		{Date: day(2024, time.January, 1), Value: 1},
		{Date: day(2024, time.February, 1), Missing: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, s.ValueAt(0))
	assert.True(t, math.IsNaN(s.ValueAt(1)))
}

func TestPointsReturnsACopy(t *testing.T) {
	s, err := NewSeries("indicator", []Point{
		{Date: day(2024, time.January, 1), Value: 1},
	})
	require.NoError(t, err)

	pts := s.Points()
	pts[0].Value = 99
	assert.Equal(t, 1.0, s.At(0).Value)
}
