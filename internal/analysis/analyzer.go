package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"leadlag/internal/diagnostics"
	apperrors "leadlag/internal/errors"
	"leadlag/internal/timeseries"
)

// Analyzer orchestrates one lead/lag analysis run: exclusion filtering,
// frequency alignment, static scoring, and the rolling plus cumulative
// correlation trackers.
type Analyzer struct {
	shifts  ShiftRange
	window  int
	workers int
	logger  *slog.Logger
	emit    diagnostics.Emitter
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithEmitter sets the diagnostic event sink.
func WithEmitter(emit diagnostics.Emitter) Option {
	return func(a *Analyzer) {
		if emit != nil {
			a.emit = emit
		}
	}
}

// WithWorkers bounds the per-shift worker pool.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// New validates the analysis parameters and creates an Analyzer. maxShift
// below 1 and window below 2 are rejected, never coerced to defaults.
func New(maxShift, window int, opts ...Option) (*Analyzer, error) {
	shiftRange, err := NewShiftRange(maxShift)
	if err != nil {
		return nil, err
	}

	if window <= 1 {
		return nil, &apperrors.InvalidParameterError{
			Component: "rolling_tracker",
			Parameter: "window",
			Value:     window,
			Reason:    "must be greater than 1",
		}
	}

	a := &Analyzer{
		shifts:  shiftRange,
		window:  window,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
		emit:    diagnostics.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Window returns the rolling window size.
func (a *Analyzer) Window() int {
	return a.window
}

// MaxShift returns the maximum candidate shift.
func (a *Analyzer) MaxShift() int {
	return a.shifts.Max
}

// Run executes the full pipeline on two raw series. Exclusion intervals are
// applied before alignment; malformed intervals are skipped with a
// diagnostic. When every candidate shift is undefined, Run returns the
// populated Result together with a NoValidShiftError so the caller can still
// inspect the per-shift table.
func (a *Analyzer) Run(ctx context.Context, leading, target *timeseries.Series, exclude []timeseries.Interval) (*Result, error) {
	start := time.Now()

	a.logger.InfoContext(ctx, "starting lead/lag analysis",
		"max_shift", a.shifts.Max,
		"window", a.window,
		"leading_rows", seriesLen(leading),
		"target_rows", seriesLen(target),
		"exclusions", len(exclude),
	)

	if intervals := timeseries.ValidIntervals(ctx, exclude, a.emit); len(intervals) > 0 {
		leadBefore, targetBefore := leading.Len(), target.Len()
		leading = leading.Exclude(intervals)
		target = target.Exclude(intervals)

		a.emit.Emit(ctx, diagnostics.New(diagnostics.SeverityInfo, "exclusion_filter",
			"applied exclusion intervals", map[string]any{
				"intervals":       len(intervals),
				"leading_removed": leadBefore - leading.Len(),
				"target_removed":  targetBefore - target.Len(),
			}))
	}

	frame, err := Align(ctx, leading, target, a.emit)
	if err != nil {
		return nil, fmt.Errorf("align series: %w", err)
	}

	static, staticErr := a.scoreShifts(ctx, frame)
	if staticErr != nil {
		var noShift *apperrors.NoValidShiftError
		if !errors.As(staticErr, &noShift) {
			return nil, fmt.Errorf("score shifts: %w", staticErr)
		}
	}

	rolling, err := a.rollingCorrelations(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("rolling correlations: %w", err)
	}

	cumulative, err := a.cumulativeCorrelations(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("cumulative correlations: %w", err)
	}

	result := &Result{
		Frame:      frame,
		Static:     static,
		Rolling:    rolling,
		Cumulative: cumulative,
	}

	a.logger.InfoContext(ctx, "lead/lag analysis completed",
		"duration", time.Since(start),
		"aligned_rows", frame.Len(),
		"shifts", len(static.Results),
	)

	return result, staticErr
}

func seriesLen(s *timeseries.Series) int {
	if s == nil {
		return 0
	}
	return s.Len()
}
