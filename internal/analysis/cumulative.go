package analysis

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"leadlag/internal/diagnostics"
)

const cumulativeComponent = "cumulative_tracker"

// minCumulativePairs is the constant observation threshold for the expanding
// window, unlike the rolling tracker's window-relative one.
const minCumulativePairs = 2

// cumulativeCorrelations computes, for every shift and every timestamp, the
// correlation over all data from the start of the series through that
// timestamp. Cells become defined once two paired observations have
// accumulated. Running sums make each shift a single pass.
func (a *Analyzer) cumulativeCorrelations(ctx context.Context, frame *AlignedFrame) (*CorrelationMatrix, error) {
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

			var n, sumX, sumY, sumXX, sumYY, sumXY float64
			for t := 0; t < frame.Len(); t++ {
				xv, yv := shifted[t], frame.target[t]
				if !math.IsNaN(xv) && !math.IsNaN(yv) {
					n++
					sumX += xv
					sumY += yv
					sumXX += xv * xv
					sumYY += yv * yv
					sumXY += xv * yv
				}

				if int(n) < minCumulativePairs {
					col[t] = math.NaN()
					continue
				}

				varX := n*sumXX - sumX*sumX
				varY := n*sumYY - sumY*sumY
				if varX <= 0 || varY <= 0 {
					col[t] = math.NaN()
					continue
				}

				r := (n*sumXY - sumX*sumY) / math.Sqrt(varX*varY)
				col[t] = clampCorrelation(r)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.emit.Emit(ctx, diagnostics.New(diagnostics.SeverityInfo, cumulativeComponent,
		"computed cumulative correlations", map[string]any{
			"shifts": len(matrix.shifts),
			"rows":   frame.Len(),
		}))

	return matrix, nil
}
