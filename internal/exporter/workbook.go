package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"leadlag/internal/analysis"
	"leadlag/internal/timeseries"
)

// Sheet names in the exported workbook.
const (
	SheetShiftTable = "R2 Results"
	SheetOptimal    = "Optimal Shift Data"
	SheetRolling    = "Rolling Correlations"
	SheetCumulative = "Cumulative Correlations"
	SheetSummary    = "Summary"
)

// Metadata labels the exported workbook with the run parameters.
type Metadata struct {
	LeadingName string
	TargetName  string
	MaxShift    int
	Window      int
	GeneratedAt time.Time
}

// Workbook writes a full analysis result to a multi-sheet xlsx file.
type Workbook struct {
	logger *slog.Logger
}

// NewWorkbook creates a workbook exporter. A nil logger falls back to
// slog.Default.
func NewWorkbook(logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{logger: logger}
}

// Write renders the result into path. The per-shift table is written even
// when no shift was defined; the optimal-shift sheet then carries a status
// row instead of data, so a run that ended in NoValidShiftError still
// produces an inspectable report.
func (w *Workbook) Write(path string, result *analysis.Result, meta Metadata) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetShiftTable); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetOptimal, SheetRolling, SheetCumulative, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	if err := w.writeShiftTable(f, result.Static); err != nil {
		return err
	}
	if err := w.writeOptimal(f, result, meta); err != nil {
		return err
	}
	if err := w.writeMatrix(f, SheetRolling, result.Rolling); err != nil {
		return err
	}
	if err := w.writeMatrix(f, SheetCumulative, result.Cumulative); err != nil {
		return err
	}
	if err := w.writeSummary(f, result, meta); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("exported analysis workbook",
		"path", path,
		"rows", result.Frame.Len(),
		"shifts", len(result.Static.Results),
	)
	return nil
}

func (w *Workbook) writeShiftTable(f *excelize.File, static *analysis.StaticResult) error {
	if err := setRow(f, SheetShiftTable, 1, []interface{}{"Shift", "R-Squared"}); err != nil {
		return err
	}
	for i, res := range static.Results {
		row := []interface{}{res.Shift, nil}
		if res.Defined {
			row[1] = res.RSquared
		}
		if err := setRow(f, SheetShiftTable, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// writeOptimal writes the target next to the leading series relocated by the
// best shift. A positive best shift gets one projected row past the end of
// the axis: the freshest leading value predicts a period with no target
// observation yet, which is the row an analyst actually wants to see.
func (w *Workbook) writeOptimal(f *excelize.File, result *analysis.Result, meta Metadata) error {
	if !result.Static.Best.Defined {
		return setRow(f, SheetOptimal, 1, []interface{}{"Status", "Optimal shift data unavailable"})
	}

	frame := result.Frame
	best := result.Static.Best.Shift

	header := []interface{}{"Date", meta.TargetName, shiftedColumnName(meta.LeadingName, best)}
	if err := setRow(f, SheetOptimal, 1, header); err != nil {
		return err
	}

	for i := 0; i < frame.Len(); i++ {
		row := []interface{}{formatDate(frame.DateAt(i)), frame.TargetAt(i), nil}
		if j := i - best; j >= 0 && j < frame.Len() {
			row[2] = frame.LeadingAt(j)
		}
		if err := setRow(f, SheetOptimal, i+2, row); err != nil {
			return err
		}
	}

	if best > 0 && best <= frame.Len() {
		if next, ok := nextPeriodDate(frame); ok {
			row := []interface{}{formatDate(next), nil, frame.LeadingAt(frame.Len() - best)}
			if err := setRow(f, SheetOptimal, frame.Len()+2, row); err != nil {
				return err
			}
			w.logger.Info("added projected row for positive best shift",
				"date", formatDate(next),
				"shift", best,
			)
		}
	}

	return nil
}

func (w *Workbook) writeMatrix(f *excelize.File, sheet string, matrix *analysis.CorrelationMatrix) error {
	shifts := matrix.Shifts()

	header := make([]interface{}, 0, len(shifts)+1)
	header = append(header, "Date")
	for _, s := range shifts {
		header = append(header, shiftHeader(s))
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, date := range matrix.Dates() {
		row := make([]interface{}, 0, len(shifts)+1)
		row = append(row, formatDate(date))
		for _, s := range shifts {
			v, defined := matrix.At(s, i)
			if defined {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) writeSummary(f *excelize.File, result *analysis.Result, meta Metadata) error {
	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}

	frame := result.Frame
	rows := [][]interface{}{
		{"Leading series", meta.LeadingName},
		{"Target series", meta.TargetName},
		{"Aligned rows", frame.Len()},
		{"Grid frequency", frame.Frequency().String()},
		{"Date range", formatDate(frame.DateAt(0)) + " to " + formatDate(frame.DateAt(frame.Len()-1))},
		{"Max shift", meta.MaxShift},
		{"Rolling window", meta.Window},
		{"Generated at", generated.Format(time.RFC3339)},
	}

	if result.Static.Best.Defined {
		rows = append(rows,
			[]interface{}{"Best shift", result.Static.Best.Shift},
			[]interface{}{"Best R-squared", result.Static.Best.RSquared},
		)
	} else {
		rows = append(rows, []interface{}{"Best shift", "none: every candidate undefined"})
	}

	for i, row := range rows {
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

// nextPeriodDate returns the canonical end of the period following the last
// frame row. Irregular frames have no next period to project onto.
func nextPeriodDate(frame *analysis.AlignedFrame) (time.Time, bool) {
	freq := frame.Frequency()
	if _, ok := freq.Rank(); !ok {
		return time.Time{}, false
	}
	last := frame.DateAt(frame.Len() - 1)
	key := timeseries.PeriodKey(last, freq)
	return timeseries.PeriodEnd(key+1, freq), true
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}
