package loader

import (
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "leadlag/internal/errors"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// writeWorkbook builds a small xlsx fixture on disk.
func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadWorkbook(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"Date", "PMI", "GDP"},
		{"2023-01-31", "48.2", "1.1"},
		{"2023-02-28", "49.5", "1.3"},
		{"2023-03-31", "", "1.2"},       // missing leading value
		{"2023-04-30", "51.0", "n/a"},   // unparseable target value
		{"not a date", "50.1", "1.4"},    // unparseable date
		{"2023-05-31", "1,203.5", "1.6"}, // thousands separator
	})

	loaded, err := LoadWorkbook(Request{
		Path:          path,
		Sheet:         "Data",
		DateColumn:    "Date",
		LeadingColumn: "PMI",
		TargetColumn:  "GDP",
	}, testLogger)
	require.NoError(t, err)

	require.Equal(t, 3, loaded.Leading.Len())
	assert.Equal(t, 3, loaded.Dropped)
	assert.Equal(t, "PMI", loaded.Leading.Name())
	assert.Equal(t, "GDP", loaded.Target.Name())

	assert.Equal(t, time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC), loaded.Leading.First().Date)
	assert.Equal(t, 48.2, loaded.Leading.ValueAt(0))
	assert.Equal(t, 1203.5, loaded.Leading.ValueAt(2))
	assert.Equal(t, 1.6, loaded.Target.ValueAt(2))

	// Leading and target share one timestamp axis.
	assert.Equal(t, loaded.Leading.Dates(), loaded.Target.Dates())
}

func TestLoadWorkbookColumnNotFound(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"Date", "PMI", "GDP"},
		{"2023-01-31", "48.2", "1.1"},
	})

	_, err := LoadWorkbook(Request{
		Path:          path,
		DateColumn:    "Date",
		LeadingColumn: "Orders",
		TargetColumn:  "GDP",
	}, testLogger)

	var paramErr *apperrors.InvalidParameterError
	require.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "leading_column", paramErr.Parameter)
}

func TestLoadWorkbookSheetNotFound(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"Date", "PMI", "GDP"},
	})

	_, err := LoadWorkbook(Request{
		Path:          path,
		Sheet:         "Missing",
		DateColumn:    "Date",
		LeadingColumn: "PMI",
		TargetColumn:  "GDP",
	}, testLogger)

	var paramErr *apperrors.InvalidParameterError
	require.ErrorAs(t, err, &paramErr)
	assert.Equal(t, "sheet", paramErr.Parameter)
}

func TestLoadWorkbookAllRowsDropped(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"Date", "PMI", "GDP"},
		{"2023-01-31", "", "1.1"},
		{"2023-02-28", "49.5", ""},
	})

	_, err := LoadWorkbook(Request{
		Path:          path,
		DateColumn:    "Date",
		LeadingColumn: "PMI",
		TargetColumn:  "GDP",
	}, testLogger)

	var emptyErr *apperrors.EmptyInputError
	require.ErrorAs(t, err, &emptyErr)
}

func TestLoadWorkbookDuplicateDatesKeepLast(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"Date", "PMI", "GDP"},
		{"2023-01-31", "48.0", "1.0"},
		{"2023-01-31", "48.5", "1.1"},
		{"2023-02-28", "49.0", "1.2"},
	})

	loaded, err := LoadWorkbook(Request{
		Path:          path,
		DateColumn:    "Date",
		LeadingColumn: "PMI",
		TargetColumn:  "GDP",
	}, testLogger)
	require.NoError(t, err)

	require.Equal(t, 2, loaded.Leading.Len())
	assert.Equal(t, 48.5, loaded.Leading.ValueAt(0))
}

func TestSheetNames(t *testing.T) {
	path := writeWorkbook(t, "Indicators", [][]interface{}{
		{"Date", "PMI", "GDP"},
	})

	names, err := SheetNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Indicators"}, names)
}

func TestColumns(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"Date", " PMI ", "GDP"},
		{"2023-01-31", "48.2", "1.1"},
	})

	cols, err := Columns(path, "Data", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "PMI", "GDP"}, cols)
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-31", time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{"03/31/2024", time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{"3/31/2024", time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{"Mar-24", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"03/24", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"45382", time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)}, // Excel serial
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := parseDate("whenever")
	assert.False(t, ok)
	_, ok = parseDate("")
	assert.False(t, ok)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 1203.5, parseNumber("1,203.5"))
	assert.Equal(t, -4.0, parseNumber(" -4 "))
	assert.True(t, math.IsNaN(parseNumber("")))
	assert.True(t, math.IsNaN(parseNumber("n/a")))
}
