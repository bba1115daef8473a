package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Strip the UTF-8 BOM the writer adds for Excel.
	content := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	records, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteSimpleCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteSimpleCSV("out/table.csv",
		[]string{"a", "b"},
		[][]string{{"1", "2"}, {"3", "4"}}))

	records := readCSV(t, filepath.Join(dir, "out", "table.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"a", "b"}, records[0])
	assert.Equal(t, []string{"3", "4"}, records[2])
}

func TestWriteShiftTable(t *testing.T) {
	result := resultWithPositiveBestShift(t)

	dir := t.TempDir()
	w := NewCSVWriter(dir)
	require.NoError(t, w.WriteShiftTable("shift_table.csv", result.Static))

	records := readCSV(t, filepath.Join(dir, "shift_table.csv"))
	require.Len(t, records, 8) // header + shifts -3..3
	assert.Equal(t, []string{"Shift", "R-Squared"}, records[0])

	// The +1 row carries the perfect fit.
	assert.Equal(t, "1", records[5][0])
	r2, err := strconv.ParseFloat(records[5][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-9)
}

func TestWriteMatrix(t *testing.T) {
	result := resultWithPositiveBestShift(t)

	dir := t.TempDir()
	w := NewCSVWriter(dir)
	require.NoError(t, w.WriteMatrix("rolling.csv", result.Rolling))

	records := readCSV(t, filepath.Join(dir, "rolling.csv"))
	require.Len(t, records, result.Frame.Len()+1)
	assert.Equal(t, "Date", records[0][0])
	assert.Equal(t, "Shift -3", records[0][1])

	// Early rows are undefined and rendered as empty cells.
	assert.Empty(t, records[1][1])
}

func TestWriteCSVAppend(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteSimpleCSV("log.csv", []string{"a"}, [][]string{{"1"}}))
	require.NoError(t, w.WriteCSV("log.csv", WriteOptions{
		Records: [][]string{{"2"}},
		Append:  true,
	}))

	records := readCSV(t, filepath.Join(dir, "log.csv"))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2"}, records[2])
}
