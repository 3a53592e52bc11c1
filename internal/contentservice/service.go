// Package contentservice coordinates library storage and index operations
// for content items.
package contentservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/cscottle7/content-tracker/internal/apperr"
	"github.com/cscottle7/content-tracker/internal/checksum"
	"github.com/cscottle7/content-tracker/internal/index"
	"github.com/cscottle7/content-tracker/internal/markdown"
	"github.com/cscottle7/content-tracker/internal/models"
	"github.com/cscottle7/content-tracker/internal/storage"
)

// slugRe constrains content_type and status values: they become directory
// names and filter keys, so only lowercase slugs are accepted.
var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// CreateRequest carries the fields for a new content item.
type CreateRequest struct {
	Title        string         `json:"title"`
	ContentType  string         `json:"content_type"`
	Status       string         `json:"status"`
	Description  string         `json:"description"`
	Author       string         `json:"author"`
	Client       string         `json:"client"`
	URL          string         `json:"url"`
	PublishDate  *models.Date   `json:"publish_date"`
	Categories   []string       `json:"categories"`
	Tags         []string       `json:"tags"`
	CustomFields map[string]any `json:"custom_fields"`
	Body         string         `json:"body"`
}

// Validate checks field constraints.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.ContentType, validation.Required, validation.Match(slugRe)),
		validation.Field(&r.Status, validation.Match(slugRe)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Author, validation.Length(0, 200)),
		validation.Field(&r.Client, validation.Length(0, 200)),
		validation.Field(&r.URL, validation.Length(0, 1000)),
	)
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Title        *string         `json:"title"`
	ContentType  *string         `json:"content_type"`
	Status       *string         `json:"status"`
	Description  *string         `json:"description"`
	Author       *string         `json:"author"`
	Client       *string         `json:"client"`
	URL          *string         `json:"url"`
	PublishDate  *models.Date    `json:"publish_date"`
	Categories   *[]string       `json:"categories"`
	Tags         *[]string       `json:"tags"`
	CustomFields *map[string]any `json:"custom_fields"`
	Body         *string         `json:"body"`
}

// Validate checks field constraints on the provided fields.
func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 500)),
		validation.Field(&r.ContentType, validation.NilOrNotEmpty, validation.By(func(v any) error {
			if p, ok := v.(*string); ok && p != nil && !slugRe.MatchString(*p) {
				return errors.New("must be a lowercase slug")
			}
			return nil
		})),
	)
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     *index.DB
	logger *slog.Logger
}

// NewService creates a new content service.
func NewService(store storage.Provider, db *index.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, db: db, logger: logger}
}

// itemPath returns the canonical library path for an item.
func itemPath(contentType, id string) string {
	return contentType + "/" + id + ".md"
}

// Create writes a new item file and indexes it synchronously.
func (s *Service) Create(_ context.Context, req CreateRequest) (*models.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	status := req.Status
	if status == "" {
		status = "draft"
	}
	today := models.Today()

	fm := models.Frontmatter{
		ID:           uuid.NewString(),
		Title:        req.Title,
		ContentType:  req.ContentType,
		Status:       status,
		Description:  req.Description,
		Author:       req.Author,
		Client:       req.Client,
		URL:          req.URL,
		CreatedDate:  today,
		UpdatedDate:  today,
		PublishDate:  req.PublishDate,
		Categories:   req.Categories,
		Tags:         req.Tags,
		CustomFields: req.CustomFields,
	}

	path := itemPath(fm.ContentType, fm.ID)
	return s.writeAndIndex(path, fm, req.Body)
}

// Get resolves the item path through the index and reads the file. When the
// index has no entry (e.g. a file dropped in while the server was down), it
// falls back to scanning the library before reporting not found.
func (s *Service) Get(_ context.Context, id string) (*models.Item, error) {
	path, err := s.resolvePath(id)
	if err != nil {
		return nil, err
	}

	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Stale index entry; drop it so the invariant holds.
			_ = s.db.DeleteItem(id)
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	item, err := markdown.ParseItem(path, data)
	if err != nil {
		return nil, err
	}
	item.Checksum = checksum.Sum(data)
	return item, nil
}

// Update applies a partial update, bumps updated_date, moves the file when
// the content type changes, and rewrites the index entry.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*models.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fm := existing.Frontmatter
	body := existing.Body

	if req.Title != nil {
		fm.Title = *req.Title
	}
	if req.ContentType != nil {
		fm.ContentType = *req.ContentType
	}
	if req.Status != nil {
		fm.Status = *req.Status
	}
	if req.Description != nil {
		fm.Description = *req.Description
	}
	if req.Author != nil {
		fm.Author = *req.Author
	}
	if req.Client != nil {
		fm.Client = *req.Client
	}
	if req.URL != nil {
		fm.URL = *req.URL
	}
	if req.PublishDate != nil {
		fm.PublishDate = req.PublishDate
	}
	if req.Categories != nil {
		fm.Categories = *req.Categories
	}
	if req.Tags != nil {
		fm.Tags = *req.Tags
	}
	if req.CustomFields != nil {
		fm.CustomFields = *req.CustomFields
	}
	if req.Body != nil {
		body = *req.Body
	}
	fm.UpdatedDate = models.Today()

	newPath := itemPath(fm.ContentType, fm.ID)
	if newPath != existing.Path {
		if err := s.store.Move(existing.Path, newPath); err != nil {
			return nil, err
		}
	}
	return s.writeAndIndex(newPath, fm, body)
}

// Delete removes the item file and its index entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	path, err := s.resolvePath(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_ = s.db.DeleteItem(id)
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteItem(id)
}

// List returns items matching the filter plus the total count.
func (s *Service) List(_ context.Context, f models.Filter) ([]models.Item, int, error) {
	items, total, err := s.db.List(f)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, total, nil
}

// ListWithBody returns matching items with their bodies included. Exports
// render full documents and so cannot use the metadata-only listing.
func (s *Service) ListWithBody(_ context.Context, f models.Filter) ([]models.Item, int, error) {
	items, total, err := s.db.ListWithBody(f)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, f models.Filter) ([]index.SearchResult, int, error) {
	return s.db.Search(f)
}

// Facets returns distinct metadata values for filter dropdowns.
func (s *Service) Facets(_ context.Context) (*models.Facets, error) {
	return s.db.Facets()
}

// Reindex rebuilds the whole index from the library files.
func (s *Service) Reindex(_ context.Context) (int, error) {
	return index.Rebuild(s.db, s.store, s.logger)
}

// writeAndIndex renders, atomically writes, and synchronously indexes an item.
func (s *Service) writeAndIndex(path string, fm models.Frontmatter, body string) (*models.Item, error) {
	data, err := markdown.Render(fm, body)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}

	item := &models.Item{
		Frontmatter: fm,
		Path:        path,
		Body:        body,
		Checksum:    checksum.Sum(data),
	}
	if err := s.db.UpsertItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// resolvePath maps an item id to its library path.
func (s *Service) resolvePath(id string) (string, error) {
	path, err := s.db.GetPath(id)
	if err != nil {
		return "", err
	}
	if path != "" {
		return path, nil
	}

	// Index miss: scan the library for a file carrying this id.
	metas, err := s.store.List("")
	if err != nil {
		return "", err
	}
	for _, m := range metas {
		data, readErr := s.store.Read(m.Path)
		if readErr != nil {
			continue
		}
		fm, _, parseErr := markdown.Parse(data)
		if parseErr != nil || fm.ID != id {
			continue
		}
		return m.Path, nil
	}
	return "", apperr.ErrNotFound
}
