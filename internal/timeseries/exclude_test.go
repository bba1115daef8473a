package timeseries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlag/internal/diagnostics"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "full dates",
			spec:      "2020-03-01:2020-04-30",
			wantStart: day(2020, time.March, 1),
			wantEnd:   day(2020, time.April, 30),
		},
		{
			name:      "month-only bounds cover whole months",
			spec:      "2020-03:2020-04",
			wantStart: day(2020, time.March, 1),
			wantEnd:   day(2020, time.April, 30),
		},
		{
			name:      "month-only end in a leap february",
			spec:      "2024-01-15:2024-02",
			wantStart: day(2024, time.January, 15),
			wantEnd:   day(2024, time.February, 29),
		},
		{
			name:      "single-day interval",
			spec:      "2020-03-01:2020-03-01",
			wantStart: day(2020, time.March, 1),
			wantEnd:   day(2020, time.March, 1),
		},
		{
			name:    "missing separator",
			spec:    "2020-03-01",
			wantErr: true,
		},
		{
			name:    "unparseable bound",
			spec:    "2020-03-01:soon",
			wantErr: true,
		},
		{
			name:    "start after end",
			spec:    "2020-05-01:2020-03-01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := ParseInterval(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, iv.Start)
			assert.Equal(t, tt.wantEnd, iv.End)
		})
	}
}

func TestParseIntervalsSkipsMalformedSpecs(t *testing.T) {
	collector := diagnostics.NewCollector()

	intervals := ParseIntervals(context.Background(),
		[]string{"2020-03:2020-04", "not-a-date:2020-05", "2021-01-01:2021-01-31"},
		collector)

	require.Len(t, intervals, 2)
	assert.Equal(t, day(2020, time.March, 1), intervals[0].Start)
	assert.Equal(t, day(2021, time.January, 1), intervals[1].Start)

	events := collector.Events()
	require.Len(t, events, 1)
	assert.Equal(t, diagnostics.SeverityWarn, events[0].Severity)
	assert.Equal(t, "exclusion_filter", events[0].Component)
}

func TestValidIntervalsDropsBackwardsBounds(t *testing.T) {
	collector := diagnostics.NewCollector()

	valid := ValidIntervals(context.Background(), []Interval{
		{Start: day(2020, time.March, 1), End: day(2020, time.April, 30)},
		{Start: day(2020, time.June, 1), End: day(2020, time.May, 1)},
	}, collector)

	require.Len(t, valid, 1)
	assert.Equal(t, day(2020, time.March, 1), valid[0].Start)
	require.Len(t, collector.Events(), 1)
}

func TestExclude(t *testing.T) {
	s, err := NewSeries("indicator", []Point{
		{Date: day(2020, time.February, 28), Value: 1},
		{Date: day(2020, time.March, 1), Value: 2},
		{Date: day(2020, time.April, 30), Value: 3},
		{Date: day(2020, time.May, 1), Value: 4},
	})
	require.NoError(t, err)

	out := s.Exclude([]Interval{
		{Start: day(2020, time.March, 1), End: day(2020, time.April, 30)},
	})

	// Both interval bounds are inclusive.
	require.Equal(t, 2, out.Len())
	assert.Equal(t, day(2020, time.February, 28), out.At(0).Date)
	assert.Equal(t, day(2020, time.May, 1), out.At(1).Date)

	// The original series is untouched.
	assert.Equal(t, 4, s.Len())
}

func TestExcludeMatchingNothingIsANoOp(t *testing.T) {
	s, err := NewSeries("indicator", []Point{
		{Date: day(2022, time.January, 1), Value: 1},
		{Date: day(2022, time.February, 1), Value: 2},
	})
	require.NoError(t, err)

	out := s.Exclude([]Interval{
		{Start: day(1999, time.January, 1), End: day(1999, time.December, 31)},
	})
	assert.Equal(t, 2, out.Len())
}
