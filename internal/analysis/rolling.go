package analysis

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"leadlag/internal/diagnostics"
)

const rollingComponent = "rolling_tracker"

// rollingCoverage is the fraction of a window that must hold paired
// observations before a rolling cell is defined. Tolerating a few missing
// rows avoids losing the whole window, while near-empty windows stay
// undefined instead of producing spuriously confident correlations.
const rollingCoverage = 0.9

// rollingCorrelations computes, for every shift and every timestamp, the
// correlation over the trailing window of consecutive periods ending at that
// timestamp. A cell is defined only once at least ceil(0.9 * window) paired
// observations exist inside the window.
func (a *Analyzer) rollingCorrelations(ctx context.Context, frame *AlignedFrame) (*CorrelationMatrix, error) {
	minPeriods := int(math.Ceil(rollingCoverage * float64(a.window)))
	matrix := newCorrelationMatrix(frame.Dates(), a.shifts.Shifts())
	leadingCol := frame.leadingColumn()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, s := range matrix.shifts {
		col := matrix.cols[s]
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			shifted := shiftColumn(leadingCol, s)
			for t := 0; t < frame.Len(); t++ {
				lo := t - a.window + 1
				if lo < 0 {
					lo = 0
				}

				r, pairs := pearsonPairs(shifted[lo:t+1], frame.target[lo:t+1])
				if pairs >= minPeriods && !math.IsNaN(r) {
					col[t] = r
				} else {
					col[t] = math.NaN()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.emit.Emit(ctx, diagnostics.New(diagnostics.SeverityInfo, rollingComponent,
		"computed rolling correlations", map[string]any{
			"window":      a.window,
			"min_periods": minPeriods,
			"shifts":      len(matrix.shifts),
			"rows":        frame.Len(),
		}))

	return matrix, nil
}
