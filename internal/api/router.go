package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cscottle7/content-tracker/internal/contentservice"
	"github.com/cscottle7/content-tracker/internal/export"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// libraryRoot is used to resolve the attachments directory.
func NewRouter(svc *contentservice.Service, exporter *export.Exporter, maxExportItems int,
	authEnabled bool, token string, sseHandler http.Handler, libraryRoot string) chi.Router {
	h := NewHandler(svc)
	eh := NewExportHandler(svc, exporter, maxExportItems)
	ah := NewAttachmentHandler(libraryRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Content CRUD.
	r.Get("/content", h.ListContent)
	r.Post("/content", h.CreateContent)
	r.Get("/content/{id}", h.GetContent)
	r.Put("/content/{id}", h.UpdateContent)
	r.Delete("/content/{id}", h.DeleteContent)

	// Search and filter support.
	r.Get("/search", h.Search)
	r.Get("/facets", h.Facets)
	r.Post("/reindex", h.Reindex)

	// Exports.
	r.Post("/export", eh.Export)
	r.Get("/export/{filename}", eh.Download)
	r.Delete("/export", eh.Cleanup)

	// Attachments.
	r.Post("/attachments", ah.Upload)
	r.Get("/attachments/{filename}", ah.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
