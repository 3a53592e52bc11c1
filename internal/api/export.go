package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cscottle7/content-tracker/internal/contentservice"
	"github.com/cscottle7/content-tracker/internal/export"
	"github.com/cscottle7/content-tracker/internal/models"
)

// ExportHandler generates and serves report files.
type ExportHandler struct {
	svc      *contentservice.Service
	exporter *export.Exporter
	maxItems int
}

// NewExportHandler creates an ExportHandler. maxItems caps how many items a
// single export may contain.
func NewExportHandler(svc *contentservice.Service, exporter *export.Exporter, maxItems int) *ExportHandler {
	if maxItems <= 0 {
		maxItems = 1000
	}
	return &ExportHandler{svc: svc, exporter: exporter, maxItems: maxItems}
}

// Export handles POST /export: filter items and render them to a file.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	format := export.Format(req.Format)
	if format == "" {
		format = export.FormatMarkdown
	}

	f := models.Filter{
		Query:      req.Query,
		Types:      req.Types,
		Statuses:   req.Statuses,
		Tags:       req.Tags,
		Categories: req.Categories,
		Author:     req.Author,
		Client:     req.Client,
		Limit:      h.maxItems,
	}
	if req.DateFrom != "" {
		d, err := models.ParseDate(req.DateFrom)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("date_from must be YYYY-MM-DD"))
			return
		}
		f.DateFrom = d
	}
	if req.DateTo != "" {
		d, err := models.ParseDate(req.DateTo)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("date_to must be YYYY-MM-DD"))
			return
		}
		f.DateTo = d
	}

	items, _, err := h.svc.ListWithBody(r.Context(), f)
	if err != nil {
		slog.Error("export query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusNotFound, errorBody("no content items found matching filters"))
		return
	}

	result, err := h.exporter.Export(items, export.Options{Title: req.Title, Format: format})
	if err != nil {
		slog.Error("export failed", slog.String("format", string(format)), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, ExportResponse{
		Result:  *result,
		Message: fmt.Sprintf("exported %d items to %s", result.ItemCount, result.Format),
	})
}

// Download handles GET /export/{filename}.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.exporter.FilePath(filename)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("export file not found or expired"))
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, abs)
}

// Cleanup handles DELETE /export: remove files older than max_age_hours.
func (h *ExportHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	hours, _ := strconv.Atoi(r.URL.Query().Get("max_age_hours"))
	if hours < 1 {
		hours = 1
	}
	if hours > 24 {
		hours = 24
	}
	deleted, err := h.exporter.Cleanup(time.Duration(hours) * time.Hour)
	if err != nil {
		slog.Error("export cleanup failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{DeletedCount: deleted})
}
