package analysis

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"leadlag/internal/diagnostics"
	apperrors "leadlag/internal/errors"
)

const staticComponent = "static_scorer"

// minOverlapRows is the minimum overlap for a defined whole-sample score.
const minOverlapRows = 2

// scoreShifts computes the whole-sample R-squared for every candidate shift
// and selects the best one. A shift is undefined when fewer than two
// overlapping rows survive or the overlap has zero variance. The best shift
// is the maximum defined R-squared; ties prefer the smallest absolute shift,
// then the most negative. When every shift is undefined the populated table
// is returned together with a NoValidShiftError.
func (a *Analyzer) scoreShifts(ctx context.Context, frame *AlignedFrame) (*StaticResult, error) {
	shifts := a.shifts.Shifts()
	results := make([]ShiftResult, len(shifts))
	leadingCol := frame.leadingColumn()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for idx, s := range shifts {
		idx, s := idx, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			shifted := shiftColumn(leadingCol, s)
			r, pairs := pearsonPairs(shifted, frame.target)

			res := ShiftResult{Shift: s}
			if pairs >= minOverlapRows && !math.IsNaN(r) {
				res.RSquared = r * r
				res.Defined = true
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	best, found := selectBest(results)
	static := &StaticResult{Results: results, Best: best}

	if !found {
		a.emit.Emit(ctx, diagnostics.New(diagnostics.SeverityError, staticComponent,
			"every candidate shift produced an undefined R-squared", map[string]any{
				"max_shift": a.shifts.Max,
			}))
		return static, &apperrors.NoValidShiftError{MaxShift: a.shifts.Max}
	}

	a.emit.Emit(ctx, diagnostics.New(diagnostics.SeverityInfo, staticComponent,
		"selected best shift", map[string]any{
			"shift":     best.Shift,
			"r_squared": best.RSquared,
		}))

	return static, nil
}

// selectBest applies the tie-break rules over the per-shift table: maximum
// defined R-squared, then smallest |shift|, then smallest shift value.
func selectBest(results []ShiftResult) (ShiftResult, bool) {
	var best ShiftResult
	found := false

	for _, res := range results {
		if !res.Defined {
			continue
		}
		if !found {
			best = res
			found = true
			continue
		}

		switch {
		case res.RSquared > best.RSquared:
			best = res
		case res.RSquared == best.RSquared:
			if abs(res.Shift) < abs(best.Shift) ||
				(abs(res.Shift) == abs(best.Shift) && res.Shift < best.Shift) {
				best = res
			}
		}
	}

	return best, found
}
