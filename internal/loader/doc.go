// Package loader ingests raw time series from Excel workbooks and CSV files.
// It selects a date column plus one value column per series, parses dates
// across the formats that show up in real workbooks, coerces values to
// numbers, and drops rows that are missing either before handing ordered
// series to the analysis engine.
package loader
