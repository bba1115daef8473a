// Package exporter writes analysis results to disk.
//
// This package contains two main components:
//
// Workbook: builds the multi-sheet Excel report with the per-shift R-squared
// table, the target against the optimally shifted leading series, the rolling
// and cumulative correlation tracks, and a run summary.
//
// CSVWriter: core CSV writing functionality with support for headers,
// appending, and UTF-8 BOM for Excel compatibility, plus record builders for
// the individual result tables.
//
// Example usage:
//
//	wb := exporter.NewWorkbook(logger)
//	err := wb.Write("results/analysis_results.xlsx", result, exporter.Metadata{
//		LeadingName: "PMI",
//		TargetName:  "GDP",
//	})
package exporter
