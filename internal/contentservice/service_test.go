package contentservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/cscottle7/content-tracker/internal/apperr"
	"github.com/cscottle7/content-tracker/internal/index"
	"github.com/cscottle7/content-tracker/internal/markdown"
	"github.com/cscottle7/content-tracker/internal/models"
	"github.com/cscottle7/content-tracker/internal/storage"
	"github.com/cscottle7/content-tracker/internal/testutil"
)

func newTestService(t *testing.T) (*Service, storage.Provider, *index.DB) {
	t.Helper()
	_, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, db, logger), store, db
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	svc, store, db := newTestService(t)

	item, err := svc.Create(context.Background(), CreateRequest{
		Title:       "Launch Announcement",
		ContentType: "blog",
		Author:      "alice",
		Tags:        []string{"launch"},
		Body:        "# Big News\n\nWe shipped.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.ID == "" {
		t.Error("missing id")
	}
	if item.Status != "draft" {
		t.Errorf("status = %q, want default draft", item.Status)
	}
	if item.CreatedDate.IsZero() || item.UpdatedDate.IsZero() {
		t.Error("dates not set")
	}
	if item.Path != "blog/"+item.ID+".md" {
		t.Errorf("path = %q", item.Path)
	}

	// File exists and round-trips.
	data, err := store.Read(item.Path)
	if err != nil {
		t.Fatalf("item file not written: %v", err)
	}
	fm, body, err := markdown.Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if fm.ID != item.ID || fm.Title != "Launch Announcement" {
		t.Errorf("file frontmatter = %+v", fm)
	}
	if !strings.Contains(body, "We shipped.") {
		t.Errorf("file body = %q", body)
	}

	// Index row exists in the same request.
	path, err := db.GetPath(item.ID)
	if err != nil || path != item.Path {
		t.Errorf("GetPath = %q, %v", path, err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing title", CreateRequest{ContentType: "blog"}},
		{"missing content type", CreateRequest{Title: "T"}},
		{"uppercase content type", CreateRequest{Title: "T", ContentType: "Blog"}},
		{"content type with spaces", CreateRequest{Title: "T", ContentType: "my type"}},
		{"bad status", CreateRequest{Title: "T", ContentType: "blog", Status: "In Review"}},
		{"title too long", CreateRequest{Title: strings.Repeat("x", 501), ContentType: "blog"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.Create(context.Background(), CreateRequest{
		Title: "Readable", ContentType: "blog", Body: "text",
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Readable" || got.ID != created.ID {
		t.Errorf("got = %+v", got)
	}
	if got.Checksum == "" {
		t.Error("missing checksum")
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Get(context.Background(), "no-such-id"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGet_IndexMissFallsBackToScan(t *testing.T) {
	// A file dropped into the library while the index was empty must
	// still be retrievable by id.
	svc, store, _ := newTestService(t)
	data, err := markdown.Render(models.Frontmatter{
		ID: "orphan-id", Title: "Orphan", ContentType: "blog", Status: "draft",
	}, "body")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write("blog/orphan-id.md", data); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(context.Background(), "orphan-id")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Orphan" {
		t.Errorf("got = %+v", got)
	}
}

func TestGet_StaleIndexEntry(t *testing.T) {
	svc, store, db := newTestService(t)
	created, err := svc.Create(context.Background(), CreateRequest{Title: "Gone", ContentType: "blog"})
	if err != nil {
		t.Fatal(err)
	}

	// Remove the file behind the index's back.
	if err := store.Delete(created.Path); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(context.Background(), created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	// The stale row was dropped.
	if path, _ := db.GetPath(created.ID); path != "" {
		t.Error("stale index entry survived")
	}
}

func TestUpdate_Partial(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.Create(context.Background(), CreateRequest{
		Title: "Original", ContentType: "blog", Author: "alice",
		Tags: []string{"keep"}, Body: "original body",
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{
		Title:  strPtr("Renamed"),
		Status: strPtr("published"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Renamed" || updated.Status != "published" {
		t.Errorf("updated = %+v", updated)
	}
	// Untouched fields survive.
	if updated.Author != "alice" || len(updated.Tags) != 1 || updated.Body != "original body" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.CreatedDate != created.CreatedDate {
		t.Error("created_date must not change on update")
	}
}

func TestUpdate_ContentTypeMovesFile(t *testing.T) {
	svc, store, db := newTestService(t)
	created, err := svc.Create(context.Background(), CreateRequest{Title: "Mover", ContentType: "blog"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{
		ContentType: strPtr("video"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	wantPath := "video/" + created.ID + ".md"
	if updated.Path != wantPath {
		t.Errorf("path = %q, want %q", updated.Path, wantPath)
	}
	if _, err := store.Read(created.Path); err == nil {
		t.Error("old file still exists")
	}
	if _, err := store.Read(wantPath); err != nil {
		t.Errorf("new file missing: %v", err)
	}
	if path, _ := db.GetPath(created.ID); path != wantPath {
		t.Errorf("index path = %q", path)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "ghost", UpdateRequest{Title: strPtr("X")})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestUpdate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.Create(context.Background(), CreateRequest{Title: "V", ContentType: "blog"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Update(context.Background(), created.ID, UpdateRequest{
		ContentType: strPtr("NOT A SLUG"),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestDelete(t *testing.T) {
	svc, store, db := newTestService(t)
	created, err := svc.Create(context.Background(), CreateRequest{Title: "Doomed", ContentType: "blog"})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Read(created.Path); err == nil {
		t.Error("file still exists")
	}
	if path, _ := db.GetPath(created.ID); path != "" {
		t.Error("index entry still exists")
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestListAndSearch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateRequest{Title: "Alpha Post", ContentType: "blog", Body: "banana smoothie recipe"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, CreateRequest{Title: "Beta Video", ContentType: "video", Status: "published"}); err != nil {
		t.Fatal(err)
	}

	items, total, err := svc.List(ctx, models.Filter{Types: []string{"blog"}})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || items[0].Title != "Alpha Post" {
		t.Errorf("list = %+v (total %d)", items, total)
	}

	results, total, err := svc.Search(ctx, models.Filter{Query: "banana"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || results[0].Title != "Alpha Post" {
		t.Errorf("search = %+v (total %d)", results, total)
	}

	// The body-carrying listing returns full items for export rendering.
	full, total, err := svc.ListWithBody(ctx, models.Filter{Types: []string{"blog"}})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || full[0].Body != "banana smoothie recipe" {
		t.Errorf("full list = %+v (total %d)", full, total)
	}
}

func TestReindex(t *testing.T) {
	svc, store, db := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateRequest{Title: "Indexed", ContentType: "blog"}); err != nil {
		t.Fatal(err)
	}

	// Drop a file in manually; only a rebuild will pick it up.
	data, _ := markdown.Render(models.Frontmatter{
		ID: "manual-1", Title: "Manual", ContentType: "blog", Status: "draft",
	}, "")
	if err := store.Write("blog/manual-1.md", data); err != nil {
		t.Fatal(err)
	}

	count, err := svc.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if path, _ := db.GetPath("manual-1"); path != "blog/manual-1.md" {
		t.Errorf("manual file not indexed: %q", path)
	}
}
