package loader

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "leadlag/internal/errors"
	"leadlag/internal/timeseries"
)

const component = "loader"

// Request selects what to read out of a workbook or CSV file. Sheet is
// ignored for CSV input; an empty Sheet means the first sheet. HeaderRow is
// the zero-indexed row holding the column names.
type Request struct {
	Path          string
	Sheet         string
	HeaderRow     int
	DateColumn    string
	LeadingColumn string
	TargetColumn  string
}

// Loaded is the pair of series a load produces, plus bookkeeping about rows
// that were dropped on the way in.
type Loaded struct {
	Leading *timeseries.Series
	Target  *timeseries.Series
	Dropped int
}

// SheetNames lists the sheets of a workbook, in workbook order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// Columns returns the header row of a sheet so a caller can offer column
// choices before a full load.
func Columns(path, sheet string, headerRow int) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}
	if headerRow >= len(rows) {
		return nil, &apperrors.InvalidParameterError{
			Component: component,
			Parameter: "header_row",
			Value:     headerRow,
			Reason:    fmt.Sprintf("sheet has only %d rows", len(rows)),
		}
	}

	header := make([]string, len(rows[headerRow]))
	for i, cell := range rows[headerRow] {
		header[i] = strings.TrimSpace(cell)
	}
	return header, nil
}

// LoadWorkbook reads the requested sheet and produces the leading and target
// series. Rows missing a parseable date or either value are dropped; the
// count of dropped rows is reported, matching how an analyst would expect a
// spreadsheet with blanks to behave.
func LoadWorkbook(req Request, logger *slog.Logger) (*Loaded, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := sheetRows(f, req.Sheet)
	if err != nil {
		return nil, err
	}

	return buildSeries(req, rows, logger)
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, &apperrors.EmptyInputError{Component: component}
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &apperrors.InvalidParameterError{
			Component: component,
			Parameter: "sheet",
			Value:     sheet,
			Reason:    "sheet not found in workbook",
		}
	}
	return rows, nil
}

// buildSeries runs the shared tail of the pipeline: locate columns in the
// header row, parse each data row, drop incomplete rows, and sort by date.
func buildSeries(req Request, rows [][]string, logger *slog.Logger) (*Loaded, error) {
	if req.HeaderRow >= len(rows) {
		return nil, &apperrors.InvalidParameterError{
			Component: component,
			Parameter: "header_row",
			Value:     req.HeaderRow,
			Reason:    fmt.Sprintf("input has only %d rows", len(rows)),
		}
	}

	header := rows[req.HeaderRow]
	dateIdx, err := columnIndex(header, req.DateColumn, "date_column")
	if err != nil {
		return nil, err
	}
	leadIdx, err := columnIndex(header, req.LeadingColumn, "leading_column")
	if err != nil {
		return nil, err
	}
	targetIdx, err := columnIndex(header, req.TargetColumn, "target_column")
	if err != nil {
		return nil, err
	}

	type row struct {
		date    time.Time
		leading float64
		target  float64
	}

	var (
		parsed  []row
		dropped int
	)
	for i := req.HeaderRow + 1; i < len(rows); i++ {
		r := rows[i]
		date, ok := parseDate(cellAt(r, dateIdx))
		if !ok {
			dropped++
			continue
		}

		leading := parseNumber(cellAt(r, leadIdx))
		target := parseNumber(cellAt(r, targetIdx))
		if math.IsNaN(leading) || math.IsNaN(target) {
			dropped++
			continue
		}

		parsed = append(parsed, row{date: date, leading: leading, target: target})
	}

	if dropped > 0 {
		logger.Info("dropped rows with missing or unparseable values",
			"dropped", dropped,
			"kept", len(parsed),
		)
	}

	if len(parsed) == 0 {
		return nil, &apperrors.EmptyInputError{Component: component, Series: req.LeadingColumn}
	}

	// Duplicate dates keep the last occurrence, consistent with last-wins
	// resampling downstream.
	byDate := make(map[time.Time]row, len(parsed))
	var order []time.Time
	for _, r := range parsed {
		if _, seen := byDate[r.date]; !seen {
			order = append(order, r.date)
		}
		byDate[r.date] = r
	}
	if len(order) < len(parsed) {
		logger.Warn("duplicate dates collapsed, keeping the last occurrence",
			"duplicates", len(parsed)-len(order))
	}

	leadPoints := make([]timeseries.Point, 0, len(order))
	targetPoints := make([]timeseries.Point, 0, len(order))
	for _, d := range order {
		r := byDate[d]
		leadPoints = append(leadPoints, timeseries.Point{Date: r.date, Value: r.leading})
		targetPoints = append(targetPoints, timeseries.Point{Date: r.date, Value: r.target})
	}

	leading, err := timeseries.NewSeries(req.LeadingColumn, leadPoints)
	if err != nil {
		return nil, err
	}
	target, err := timeseries.NewSeries(req.TargetColumn, targetPoints)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded series",
		"rows", leading.Len(),
		"from", leading.First().Date.Format("2006-01-02"),
		"to", leading.Last().Date.Format("2006-01-02"),
	)

	return &Loaded{Leading: leading, Target: target, Dropped: dropped}, nil
}

func columnIndex(header []string, name, parameter string) (int, error) {
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), strings.TrimSpace(name)) {
			return i, nil
		}
	}
	return 0, &apperrors.InvalidParameterError{
		Component: component,
		Parameter: parameter,
		Value:     name,
		Reason:    "column not found in header row",
	}
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// dateLayouts are tried in order. Workbooks exported from different tools
// label the same monthly series as "2024-01-31", "01/31/2024", "Jan-24" or
// "01/24", so all of them are accepted.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"02-Jan-06",
	"Jan-06",
	"2006-01",
	"01/06",
}

// parseDate tries the known layouts, then falls back to an Excel serial
// number (days since the 1899-12-30 epoch).
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}

	return time.Time{}, false
}

// parseNumber coerces a cell to a float, tolerating thousands separators and
// surrounding whitespace. Anything unparseable becomes NaN so the row is
// dropped rather than silently zeroed.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
