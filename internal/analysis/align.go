package analysis

import (
	"context"
	"math"
	"sort"
	"time"

	"leadlag/internal/diagnostics"
	apperrors "leadlag/internal/errors"
	"leadlag/internal/timeseries"
)

const alignerComponent = "frequency_aligner"

// minAlignedRows is the smallest frame any scorer can work with.
const minAlignedRows = 2

// Align normalizes the leading and target series onto one common period
// grid. When both native frequencies are detected and differ, the finer
// series is resampled onto the coarser grid, taking the last observation
// inside each coarser period as that period's representative value. When
// either frequency is irregular, the series are aligned on their raw
// timestamps. Rows missing a value in either column are dropped.
func Align(ctx context.Context, leading, target *timeseries.Series, emit diagnostics.Emitter) (*AlignedFrame, error) {
	if emit == nil {
		emit = diagnostics.Nop()
	}

	if leading == nil || leading.Len() == 0 {
		return nil, &apperrors.EmptyInputError{Component: alignerComponent, Series: "leading"}
	}
	if target == nil || target.Len() == 0 {
		return nil, &apperrors.EmptyInputError{Component: alignerComponent, Series: "target"}
	}

	leadFreq := timeseries.Detect(leading)
	targetFreq := timeseries.Detect(target)

	emit.Emit(ctx, diagnostics.New(diagnostics.SeverityInfo, alignerComponent,
		"detected native frequencies", map[string]any{
			"leading": leadFreq.String(),
			"target":  targetFreq.String(),
		}))

	gridFreq, resampled := chooseGrid(ctx, leadFreq, targetFreq, emit)

	var frame *AlignedFrame
	if gridFreq == timeseries.Irregular {
		frame = joinExact(leading, target)
	} else {
		frame = joinOnGrid(leading, target, gridFreq, targetFreq == gridFreq)
	}

	if resampled {
		emit.Emit(ctx, diagnostics.New(diagnostics.SeverityInfo, alignerComponent,
			"resampled finer series onto coarser grid", map[string]any{
				"grid": gridFreq.String(),
			}))
	}

	emit.Emit(ctx, diagnostics.New(diagnostics.SeverityInfo, alignerComponent,
		"aligned series", map[string]any{
			"rows":      frame.Len(),
			"frequency": frame.Frequency().String(),
		}))

	if frame.Len() < minAlignedRows {
		return nil, &apperrors.InsufficientDataError{
			Component: alignerComponent,
			Rows:      frame.Len(),
			Required:  minAlignedRows,
		}
	}

	return frame, nil
}

// chooseGrid picks the common grid frequency. Irregular means the series are
// joined as-is on raw timestamps. The second return reports whether one
// series will be resampled.
func chooseGrid(ctx context.Context, leadFreq, targetFreq timeseries.Frequency, emit diagnostics.Emitter) (timeseries.Frequency, bool) {
	if leadFreq == timeseries.Irregular || targetFreq == timeseries.Irregular {
		return timeseries.Irregular, false
	}

	leadRank, leadOK := leadFreq.Rank()
	targetRank, targetOK := targetFreq.Rank()
	if !leadOK || !targetOK {
		emit.Emit(ctx, diagnostics.New(diagnostics.SeverityWarn, alignerComponent,
			"cannot order frequencies, skipping resampling", map[string]any{
				"leading": leadFreq.String(),
				"target":  targetFreq.String(),
			}))
		return timeseries.Irregular, false
	}

	if leadRank == targetRank {
		return leadFreq, false
	}
	if leadRank > targetRank {
		// Leading is the coarser series; target gets resampled.
		return leadFreq, true
	}
	return targetFreq, true
}

type gridObs struct {
	date  time.Time
	value float64
}

// bucketByPeriod maps each series observation to its period on the grid,
// keeping the last observation inside each period.
func bucketByPeriod(s *timeseries.Series, freq timeseries.Frequency) map[int64]gridObs {
	out := make(map[int64]gridObs, s.Len())
	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		key := timeseries.PeriodKey(p.Date, freq)
		out[key] = gridObs{date: p.Date, value: s.ValueAt(i)}
	}
	return out
}

// joinOnGrid inner-joins the two series on their period keys at the grid
// frequency and drops rows missing a value in either column. Row timestamps
// come from the series that natively lives on the grid; targetOnGrid selects
// which one wins when both do.
func joinOnGrid(leading, target *timeseries.Series, freq timeseries.Frequency, targetOnGrid bool) *AlignedFrame {
	leadObs := bucketByPeriod(leading, freq)
	targetObs := bucketByPeriod(target, freq)

	keys := make([]int64, 0, len(leadObs)+len(targetObs))
	seen := make(map[int64]bool, len(leadObs)+len(targetObs))
	for k := range leadObs {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range targetObs {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	frame := &AlignedFrame{freq: freq}
	for _, k := range keys {
		lo, lok := leadObs[k]
		to, tok := targetObs[k]
		if !lok || !tok || math.IsNaN(lo.value) || math.IsNaN(to.value) {
			continue
		}

		date := lo.date
		if targetOnGrid {
			date = to.date
		}

		frame.dates = append(frame.dates, date)
		frame.leading = append(frame.leading, lo.value)
		frame.target = append(frame.target, to.value)
	}

	return frame
}

// joinExact inner-joins the two series on identical raw timestamps, used
// when at least one frequency is undetectable.
func joinExact(leading, target *timeseries.Series) *AlignedFrame {
	targetByDay := make(map[int64]int, target.Len())
	for i := 0; i < target.Len(); i++ {
		targetByDay[dayKey(target.At(i).Date)] = i
	}

	frame := &AlignedFrame{freq: timeseries.Irregular}
	for i := 0; i < leading.Len(); i++ {
		p := leading.At(i)
		j, ok := targetByDay[dayKey(p.Date)]
		if !ok {
			continue
		}

		lv := leading.ValueAt(i)
		tv := target.ValueAt(j)
		if math.IsNaN(lv) || math.IsNaN(tv) {
			continue
		}

		frame.dates = append(frame.dates, p.Date)
		frame.leading = append(frame.leading, lv)
		frame.target = append(frame.target, tv)
	}

	return frame
}

func dayKey(t time.Time) int64 {
	return timeseries.PeriodKey(t, timeseries.Daily)
}
