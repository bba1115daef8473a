package timeseries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadlag/internal/diagnostics"
)

// Interval is a closed date range [Start, End]; both bounds are inclusive.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// Valid reports whether the interval bounds are ordered.
func (iv Interval) Valid() bool {
	return !iv.Start.After(iv.End)
}

func (iv Interval) String() string {
	return iv.Start.Format("2006-01-02") + ":" + iv.End.Format("2006-01-02")
}

// ParseInterval parses an exclusion interval of the form "START:END" where
// each bound is YYYY-MM-DD or YYYY-MM. A month-only start expands to the
// first day of the month and a month-only end to the last, so
// "2020-03:2020-04" covers all of March and April.
func ParseInterval(spec string) (Interval, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("interval %q: expected START:END", spec)
	}

	start, err := parseBound(strings.TrimSpace(parts[0]), false)
	if err != nil {
		return Interval{}, fmt.Errorf("interval %q: %w", spec, err)
	}
	end, err := parseBound(strings.TrimSpace(parts[1]), true)
	if err != nil {
		return Interval{}, fmt.Errorf("interval %q: %w", spec, err)
	}

	iv := Interval{Start: start, End: end}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("interval %q: start is after end", spec)
	}
	return iv, nil
}

func parseBound(s string, endOfPeriod bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		if endOfPeriod {
			return t.UTC().AddDate(0, 1, -1), nil
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// ParseIntervals parses a list of interval specs. Malformed specs are
// rejected individually: a diagnostic is emitted and the spec is skipped,
// never aborting the whole pass.
func ParseIntervals(ctx context.Context, specs []string, emit diagnostics.Emitter) []Interval {
	if emit == nil {
		emit = diagnostics.Nop()
	}

	var intervals []Interval
	for _, spec := range specs {
		iv, err := ParseInterval(spec)
		if err != nil {
			emit.Emit(ctx, diagnostics.New(diagnostics.SeverityWarn, "exclusion_filter",
				"skipping malformed exclusion interval", map[string]any{
					"spec":  spec,
					"error": err.Error(),
				}))
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals
}

// ValidIntervals drops intervals whose bounds are not ordered, emitting a
// diagnostic per rejected interval.
func ValidIntervals(ctx context.Context, intervals []Interval, emit diagnostics.Emitter) []Interval {
	if emit == nil {
		emit = diagnostics.Nop()
	}

	var valid []Interval
	for _, iv := range intervals {
		if !iv.Valid() {
			emit.Emit(ctx, diagnostics.New(diagnostics.SeverityWarn, "exclusion_filter",
				"skipping exclusion interval with start after end", map[string]any{
					"start": iv.Start.Format("2006-01-02"),
					"end":   iv.End.Format("2006-01-02"),
				}))
			continue
		}
		valid = append(valid, iv)
	}
	return valid
}

// Exclude returns a copy of the series without every observation whose
// timestamp falls in any of the intervals. An interval matching zero rows is
// not an error.
func (s *Series) Exclude(intervals []Interval) *Series {
	if len(intervals) == 0 {
		return s
	}

	kept := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		excluded := false
		for _, iv := range intervals {
			if iv.Contains(p.Date) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, p)
		}
	}

	return &Series{name: s.name, points: kept}
}
