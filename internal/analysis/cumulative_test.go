package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCumulativeBecomesDefinedAtTwoPairs(t *testing.T) {
	leading := monthlySeries(t, "leading", 2023, time.January,
		[]float64{3, 1, 4, 1, 5, 9, 2, 6})
	target := monthlySeries(t, "target", 2023, time.January,
		[]float64{2, 7, 1, 8, 2, 8, 1, 8})

	frame, err := Align(context.Background(), leading, target, nil)
	require.NoError(t, err)

	a, err := New(1, 4)
	require.NoError(t, err)

	cumulative, err := a.cumulativeCorrelations(context.Background(), frame)
	require.NoError(t, err)

	// Unshifted: one pair at row 0, two at row 1. Two points always fit a
	// line exactly, here a falling one.
	_, defined := cumulative.At(0, 0)
	assert.False(t, defined)

	v, defined := cumulative.At(0, 1)
	require.True(t, defined)
	assert.InDelta(t, -1.0, v, 1e-12)

	// Shift +1 blanks row 0, so the second pair only arrives at row 2.
	_, defined = cumulative.At(1, 1)
	assert.False(t, defined)

	_, defined = cumulative.At(1, 2)
	assert.True(t, defined)
}

func TestCumulativeFinalMatchesWholeSample(t *testing.T) {
	leading := monthlySeries(t, "leading", 2023, time.January, wobble(18))
	target := monthlySeries(t, "target", 2023, time.January,
		[]float64{2, 7, 1, 8, 2, 8, 1, 8, 2, 8, 4, 5, 9, 0, 4, 5, 2, 3})

	frame, err := Align(context.Background(), leading, target, nil)
	require.NoError(t, err)

	a, err := New(1, 6)
	require.NoError(t, err)

	cumulative, err := a.cumulativeCorrelations(context.Background(), frame)
	require.NoError(t, err)

	want, _ := pearsonPairs(frame.leading, frame.target)

	got, defined := cumulative.Final(0)
	require.True(t, defined)
	assert.InDelta(t, want, got, 1e-12)
}

func TestCumulativeConstantTargetStaysUndefined(t *testing.T) {
	leading := monthlySeries(t, "leading", 2023, time.January, wobble(6))
	target := monthlySeries(t, "target", 2023, time.January,
		[]float64{4, 4, 4, 4, 4, 4})

	frame, err := Align(context.Background(), leading, target, nil)
	require.NoError(t, err)

	a, err := New(1, 4)
	require.NoError(t, err)

	cumulative, err := a.cumulativeCorrelations(context.Background(), frame)
	require.NoError(t, err)

	for _, s := range cumulative.Shifts() {
		for i := 0; i < frame.Len(); i++ {
			_, defined := cumulative.At(s, i)
			assert.False(t, defined, "shift %d row %d", s, i)
		}
	}
}
