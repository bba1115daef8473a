package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	apierrors "leadlag/internal/errors"
	"leadlag/internal/loader"
)

// maxUploadBytes bounds workbook uploads at 50MB.
const maxUploadBytes = 50 << 20

// FilesHandler exposes workbook upload and inspection endpoints so the
// front end can offer sheet and column pickers before a run.
type FilesHandler struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	dataDir      string
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(logger *slog.Logger, errorHandler *apierrors.ErrorHandler, dataDir string) *FilesHandler {
	return &FilesHandler{
		logger:       logger.With(slog.String("handler", "files")),
		errorHandler: errorHandler,
		dataDir:      dataDir,
	}
}

// Upload handles POST /api/files/upload (multipart field "file"). The stored
// path is returned so the client can reference it in an analyze request.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "a multipart file field named 'file' is required"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".xlsx", ".xls", ".csv":
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", fmt.Sprintf("unsupported file type %q", ext)))
		return
	}

	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	path := filepath.Join(h.dataDir, name)

	dst, err := os.Create(path)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "workbook uploaded",
		slog.String("filename", header.Filename),
		slog.String("stored_as", path),
		slog.Int64("bytes", written))

	render.JSON(w, r, map[string]any{
		"path":     path,
		"filename": header.Filename,
		"bytes":    written,
	})
}

// Sheets handles GET /api/files/sheets?path=...
func (h *FilesHandler) Sheets(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("path", "path query parameter is required"))
		return
	}

	sheets, err := loader.SheetNames(path)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"sheets": sheets})
}

// Columns handles GET /api/files/columns?path=...&sheet=...&header_row=N
func (h *FilesHandler) Columns(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("path", "path query parameter is required"))
		return
	}

	headerRow := 0
	if raw := r.URL.Query().Get("header_row"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("header_row", "must be a non-negative integer"))
			return
		}
		headerRow = parsed
	}

	columns, err := loader.Columns(path, r.URL.Query().Get("sheet"), headerRow)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{"columns": columns})
}
