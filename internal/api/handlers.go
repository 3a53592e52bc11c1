package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cscottle7/content-tracker/internal/apperr"
	"github.com/cscottle7/content-tracker/internal/contentservice"
	"github.com/cscottle7/content-tracker/internal/models"
)

const maxBodyBytes = 10 << 20 // 10 MB

// Handler holds content API route handlers.
type Handler struct {
	svc *contentservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service) *Handler {
	return &Handler{svc: svc}
}

// parseFilter extracts filter parameters shared by list, search, and export.
func parseFilter(q url.Values) (models.Filter, error) {
	f := models.Filter{
		Query:      q.Get("q"),
		Types:      q["content_type"],
		Statuses:   q["status"],
		Tags:       q["tag"],
		Categories: q["category"],
		Author:     q.Get("author"),
		Client:     q.Get("client"),
	}
	if v := q.Get("date_from"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return f, errors.New("date_from must be YYYY-MM-DD")
		}
		f.DateFrom = d
	}
	if v := q.Get("date_to"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return f, errors.New("date_to must be YYYY-MM-DD")
		}
		f.DateTo = d
	}
	return f, nil
}

// ListContent handles GET /content: filterable, paginated item listing.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f, err := parseFilter(q)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = 50
	}
	if perPage > 100 {
		perPage = 100
	}
	f.Limit = perPage
	f.Offset = (page - 1) * perPage

	items, total, err := h.svc.List(r.Context(), f)
	if err != nil {
		slog.Error("list content failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ContentListResponse{
		Items: items,
		Pagination: Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   total,
			Pages:   (total + perPage - 1) / perPage,
		},
	})
}

// GetContent handles GET /content/{id}.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("content item not found"))
		} else {
			slog.Error("get content failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateContent handles POST /content.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	item, err := h.svc.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("create content failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateContent handles PUT /content/{id}: partial update, absent fields untouched.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")

	var req UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	item, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("content item not found"))
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("update content failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteContent handles DELETE /content/{id}.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("content item not found"))
		} else {
			slog.Error("delete content failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search: full-text search with filters.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("q") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}

	f, err := parseFilter(q)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	f.Limit = limit

	results, total, err := h.svc.Search(r.Context(), f)
	if err != nil {
		slog.Error("search failed", slog.String("query", f.Query), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Total: total})
}

// Facets handles GET /facets: distinct metadata values for filter dropdowns.
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.svc.Facets(r.Context())
	if err != nil {
		slog.Error("facets failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

// Reindex handles POST /reindex: full index rebuild from library files.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Reindex(r.Context())
	if err != nil {
		slog.Error("reindex failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Indexed: count})
}
