package api

import (
	"github.com/cscottle7/content-tracker/internal/contentservice"
	"github.com/cscottle7/content-tracker/internal/export"
	"github.com/cscottle7/content-tracker/internal/index"
	"github.com/cscottle7/content-tracker/internal/models"
)

// CreateContentRequest is the request body for creating a content item.
type CreateContentRequest = contentservice.CreateRequest

// UpdateContentRequest is the request body for a partial update.
type UpdateContentRequest = contentservice.UpdateRequest

// Pagination describes the page window of a list response.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

// ContentListResponse wraps paginated content listings.
type ContentListResponse struct {
	Items      []models.Item `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
	Total   int                  `json:"total"`
}

// ReindexResponse reports a completed index rebuild.
type ReindexResponse struct {
	Indexed int `json:"indexed"`
}

// ExportRequest is the request body for generating an export.
type ExportRequest struct {
	Title  string `json:"title"`
	Format string `json:"format"`

	// Filter parameters, same semantics as GET /content.
	Query      string   `json:"query"`
	Types      []string `json:"content_types"`
	Statuses   []string `json:"statuses"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
	Author     string   `json:"author"`
	Client     string   `json:"client"`
	DateFrom   string   `json:"date_from"`
	DateTo     string   `json:"date_to"`
}

// ExportResponse is returned after a successful export.
type ExportResponse struct {
	export.Result
	Message string `json:"message"`
}

// CleanupResponse reports deleted export files.
type CleanupResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
