// Command analyzer runs a lead/lag correlation analysis from the command
// line and writes the results workbook.
//
// Usage:
//
//	analyzer -r 12 -w 24 [-sheet Data] [-header 0] [-x 2020-03:2020-04] \
//	    [-o results] <file> <date-column> <leading-column> <target-column>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"leadlag/internal/analysis"
	"leadlag/internal/config"
	"leadlag/internal/diagnostics"
	"leadlag/internal/exporter"
	"leadlag/internal/infrastructure"
	"leadlag/internal/loader"
	"leadlag/internal/timeseries"
)

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	maxShift := flag.Int("r", 0, "maximum shift to evaluate in both directions (required)")
	window := flag.Int("w", 0, "rolling correlation window in periods (required)")
	sheet := flag.String("sheet", "", "workbook sheet name (defaults to the first sheet)")
	headerRow := flag.Int("header", 0, "zero-indexed header row")
	outDir := flag.String("o", "results", "output directory for the results workbook")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	var exclusions stringList
	flag.Var(&exclusions, "x", "date interval to exclude, YYYY-MM[-DD]:YYYY-MM[-DD] (repeatable)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: analyzer -r <max-shift> -w <window> [options] <file> <date-column> <leading-column> <target-column>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *maxShift < 1 {
		fmt.Fprintln(os.Stderr, "analyzer: -r is required and must be at least 1")
		os.Exit(2)
	}
	if *window < 2 {
		fmt.Fprintln(os.Stderr, "analyzer: -w is required and must be at least 2")
		os.Exit(2)
	}

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  *logLevel,
		Format: "text",
		Output: "console",
	})
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if err := run(logger, args, *sheet, *headerRow, *maxShift, *window, exclusions, *outDir); err != nil {
		logger.Error("analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, args []string, sheet string, headerRow, maxShift, window int, exclusions []string, outDir string) error {
	path, dateCol, leadingCol, targetCol := args[0], args[1], args[2], args[3]
	ctx := context.Background()
	emit := diagnostics.NewSlogEmitter(logger)

	req := loader.Request{
		Path:          path,
		Sheet:         sheet,
		HeaderRow:     headerRow,
		DateColumn:    dateCol,
		LeadingColumn: leadingCol,
		TargetColumn:  targetCol,
	}

	var (
		loaded *loader.Loaded
		err    error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		loaded, err = loader.LoadCSV(req, logger)
	} else {
		loaded, err = loader.LoadWorkbook(req, logger)
	}
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}

	analyzer, err := analysis.New(maxShift, window,
		analysis.WithLogger(logger),
		analysis.WithEmitter(emit),
	)
	if err != nil {
		return err
	}

	intervals := timeseries.ParseIntervals(ctx, exclusions, emit)

	result, runErr := analyzer.Run(ctx, loaded.Leading, loaded.Target, intervals)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("no candidate shift produced a defined score; the table is still exported",
			slog.String("reason", runErr.Error()))
	}

	printTable(result)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	outPath := filepath.Join(outDir, fmt.Sprintf("leadlag_%s.xlsx", time.Now().Format("20060102_150405")))
	wb := exporter.NewWorkbook(logger)
	if err := wb.Write(outPath, result, exporter.Metadata{
		LeadingName: leadingCol,
		TargetName:  targetCol,
		MaxShift:    maxShift,
		Window:      window,
		GeneratedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	logger.Info("results written", slog.String("path", outPath))
	return nil
}

func printTable(result *analysis.Result) {
	fmt.Printf("%-8s %s\n", "Shift", "R-squared")
	for _, sr := range result.Static.Results {
		if sr.Defined {
			fmt.Printf("%-8d %.6f\n", sr.Shift, sr.RSquared)
		} else {
			fmt.Printf("%-8d %s\n", sr.Shift, "n/a")
		}
	}

	if result.Static.Best.Defined {
		fmt.Printf("\nBest shift: %+d (R-squared %.6f)\n", result.Static.Best.Shift, result.Static.Best.RSquared)
	} else {
		fmt.Println("\nNo shift produced a defined score.")
	}
}
