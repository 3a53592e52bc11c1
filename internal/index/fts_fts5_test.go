//go:build sqlite_fts5

package index

import (
	"strings"
	"testing"

	"github.com/cscottle7/content-tracker/internal/models"
)

func TestSearch_FTS5Snippets(t *testing.T) {
	db := testDB(t)
	item := testItem("f1", "Tokenised Title", "blog", "draft")
	item.Body = strings.Repeat("filler words here. ", 20) + "the searchterm appears deep in the body."
	if err := db.UpsertItem(item); err != nil {
		t.Fatal(err)
	}

	results, total, err := db.Search(models.Filter{Query: "searchterm"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d", total)
	}
	if !strings.Contains(results[0].Snippet, "<b>searchterm</b>") {
		t.Errorf("snippet not highlighted: %q", results[0].Snippet)
	}
}

func TestSearch_FTS5Prefix(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertItem(testItem("f2", "Quarterly Planning", "blog", "draft")); err != nil {
		t.Fatal(err)
	}

	_, total, err := db.Search(models.Filter{Query: "quart*"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 {
		t.Errorf("prefix query total = %d", total)
	}
}

func TestDelete_RemovesFTSRow(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertItem(testItem("f3", "Ephemeral", "blog", "draft")); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteItem("f3"); err != nil {
		t.Fatal(err)
	}
	_, total, err := db.Search(models.Filter{Query: "Ephemeral"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("deleted item still searchable, total = %d", total)
	}
}
