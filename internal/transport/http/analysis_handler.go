package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"leadlag/internal/analysis"
	"leadlag/internal/config"
	"leadlag/internal/diagnostics"
	apierrors "leadlag/internal/errors"
	"leadlag/internal/exporter"
	"leadlag/internal/infrastructure"
	"leadlag/internal/loader"
	"leadlag/internal/timeseries"
)

// AnalyzeRequest is the body of POST /api/analyze. MaxShift and Window fall
// back to the configured defaults when zero.
type AnalyzeRequest struct {
	Path          string   `json:"path" validate:"required"`
	Sheet         string   `json:"sheet"`
	HeaderRow     int      `json:"header_row" validate:"gte=0"`
	DateColumn    string   `json:"date_column" validate:"required"`
	LeadingColumn string   `json:"leading_column" validate:"required"`
	TargetColumn  string   `json:"target_column" validate:"required"`
	MaxShift      int      `json:"max_shift" validate:"omitempty,gte=1"`
	Window        int      `json:"window" validate:"omitempty,gte=2"`
	Exclusions    []string `json:"exclusions"`
	Export        bool     `json:"export"`
}

// Bind implements render.Binder
func (req *AnalyzeRequest) Bind(r *http.Request) error {
	return nil
}

// ShiftScore is one row of the per-shift table in JSON form. RSquared is
// null when the shift is undefined.
type ShiftScore struct {
	Shift    int      `json:"shift"`
	RSquared *float64 `json:"r_squared"`
}

// MatrixColumn is one shift's correlation track. Undefined cells are null.
type MatrixColumn struct {
	Shift  int        `json:"shift"`
	Values []*float64 `json:"values"`
}

// MatrixJSON is the wire form of a correlation matrix.
type MatrixJSON struct {
	Dates   []string       `json:"dates"`
	Columns []MatrixColumn `json:"columns"`
}

// AnalyzeResponse is the body returned by POST /api/analyze. Best is null
// when no candidate shift produced a defined score; the per-shift table is
// still populated in that case.
type AnalyzeResponse struct {
	Frequency   string       `json:"frequency"`
	AlignedRows int          `json:"aligned_rows"`
	DroppedRows int          `json:"dropped_rows"`
	Shifts      []ShiftScore `json:"shifts"`
	Best        *ShiftScore  `json:"best"`
	Rolling     *MatrixJSON  `json:"rolling"`
	Cumulative  *MatrixJSON  `json:"cumulative"`
	ExportPath  string       `json:"export_path,omitempty"`
	Warning     string       `json:"warning,omitempty"`
}

// AnalysisHandler runs lead/lag analyses on uploaded or server-side files.
type AnalysisHandler struct {
	cfg          *config.Config
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	emitter      diagnostics.Emitter
	metrics      *infrastructure.EngineMetrics
	validate     *validator.Validate
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(cfg *config.Config, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, emitter diagnostics.Emitter, metrics *infrastructure.EngineMetrics) *AnalysisHandler {
	if emitter == nil {
		emitter = diagnostics.Nop()
	}
	return &AnalysisHandler{
		cfg:          cfg,
		logger:       logger.With(slog.String("handler", "analysis")),
		errorHandler: errorHandler,
		emitter:      emitter,
		metrics:      metrics,
		validate:     validator.New(),
	}
}

// Analyze handles POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := render.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", err.Error()))
		return
	}

	if req.MaxShift == 0 {
		req.MaxShift = h.cfg.Analysis.MaxShift
	}
	if req.Window == 0 {
		req.Window = h.cfg.Analysis.Window
	}

	ctx := r.Context()
	start := time.Now()

	loaded, err := h.load(req)
	if err != nil {
		infrastructure.RecordAnalysisRun(ctx, h.metrics, time.Since(start), 0, 0, err)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	analyzer, err := analysis.New(req.MaxShift, req.Window,
		analysis.WithLogger(h.logger),
		analysis.WithEmitter(h.emitter),
		analysis.WithWorkers(h.cfg.Analysis.Workers),
	)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	intervals := timeseries.ParseIntervals(ctx, req.Exclusions, h.emitter)

	result, runErr := analyzer.Run(ctx, loaded.Leading, loaded.Target, intervals)
	if result == nil {
		infrastructure.RecordAnalysisRun(ctx, h.metrics, time.Since(start), 0, 0, runErr)
		h.errorHandler.HandleError(w, r, runErr)
		return
	}

	resp := buildResponse(result, loaded.Dropped)
	if runErr != nil {
		// NoValidShift: the table is still useful, so report it alongside
		// the warning instead of failing the request.
		resp.Warning = runErr.Error()
	}

	if req.Export {
		path, err := h.export(result, req)
		if err != nil {
			h.logger.ErrorContext(ctx, "export failed", slog.String("error", err.Error()))
			h.errorHandler.HandleError(w, r, err)
			return
		}
		resp.ExportPath = path
		if h.metrics != nil {
			h.metrics.ExportsTotal.Add(ctx, 1)
		}
	}

	infrastructure.RecordAnalysisRun(ctx, h.metrics, time.Since(start), result.Frame.Len(), len(result.Static.Results), nil)
	render.JSON(w, r, resp)
}

func (h *AnalysisHandler) load(req AnalyzeRequest) (*loader.Loaded, error) {
	loadReq := loader.Request{
		Path:          req.Path,
		Sheet:         req.Sheet,
		HeaderRow:     req.HeaderRow,
		DateColumn:    req.DateColumn,
		LeadingColumn: req.LeadingColumn,
		TargetColumn:  req.TargetColumn,
	}

	if strings.EqualFold(filepath.Ext(req.Path), ".csv") {
		return loader.LoadCSV(loadReq, h.logger)
	}
	return loader.LoadWorkbook(loadReq, h.logger)
}

func (h *AnalysisHandler) export(result *analysis.Result, req AnalyzeRequest) (string, error) {
	name := fmt.Sprintf("leadlag_%s_%s_%s.xlsx",
		sanitizeName(req.LeadingColumn),
		sanitizeName(req.TargetColumn),
		time.Now().Format("20060102_150405"))
	path := filepath.Join(h.cfg.Paths.ResultsDir, name)

	wb := exporter.NewWorkbook(h.logger)
	err := wb.Write(path, result, exporter.Metadata{
		LeadingName: req.LeadingColumn,
		TargetName:  req.TargetColumn,
		MaxShift:    req.MaxShift,
		Window:      req.Window,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func buildResponse(result *analysis.Result, dropped int) *AnalyzeResponse {
	resp := &AnalyzeResponse{
		Frequency:   result.Frame.Frequency().String(),
		AlignedRows: result.Frame.Len(),
		DroppedRows: dropped,
		Shifts:      make([]ShiftScore, 0, len(result.Static.Results)),
		Rolling:     matrixJSON(result.Rolling),
		Cumulative:  matrixJSON(result.Cumulative),
	}

	for _, sr := range result.Static.Results {
		resp.Shifts = append(resp.Shifts, shiftScore(sr))
	}
	if result.Static.Best.Defined {
		best := shiftScore(result.Static.Best)
		resp.Best = &best
	}

	return resp
}

func shiftScore(sr analysis.ShiftResult) ShiftScore {
	score := ShiftScore{Shift: sr.Shift}
	if sr.Defined {
		v := sr.RSquared
		score.RSquared = &v
	}
	return score
}

func matrixJSON(m *analysis.CorrelationMatrix) *MatrixJSON {
	if m == nil {
		return nil
	}

	dates := m.Dates()
	out := &MatrixJSON{
		Dates:   make([]string, len(dates)),
		Columns: make([]MatrixColumn, 0, len(m.Shifts())),
	}
	for i, d := range dates {
		out.Dates[i] = d.Format("2006-01-02")
	}

	for _, shift := range m.Shifts() {
		col := MatrixColumn{Shift: shift, Values: make([]*float64, len(dates))}
		for i := range dates {
			if v, ok := m.At(shift, i); ok {
				value := v
				col.Values[i] = &value
			}
		}
		out.Columns = append(out.Columns, col)
	}

	return out
}

func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
	if s == "" {
		return "series"
	}
	return s
}
