package exporter

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// formatCorrelation formats a correlation or R-squared value with six decimal
// places; undefined values become an empty cell rather than a zero.
func formatCorrelation(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// formatValue formats a raw series value, trimming trailing zeros.
func formatValue(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatDate renders timestamps the way the rest of the tooling expects them.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// shiftHeader labels a shift column, e.g. "Shift -3".
func shiftHeader(s int) string {
	return fmt.Sprintf("Shift %d", s)
}

// shiftedColumnName labels the relocated leading column in the optimal-shift
// sheet, e.g. "PMI_Shifted_2p".
func shiftedColumnName(leadingName string, shift int) string {
	return fmt.Sprintf("%s_Shifted_%dp", leadingName, shift)
}
