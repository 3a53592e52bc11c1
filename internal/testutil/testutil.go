// Package testutil provides shared test helpers for setting up libraries and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/cscottle7/content-tracker/internal/index"
	"github.com/cscottle7/content-tracker/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "tracker-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary library directory with a storage.Provider.
func TestLibrary(t *testing.T) (string, storage.Provider) {
	t.Helper()
	libraryDir := t.TempDir()
	store, err := storage.NewFS(libraryDir)
	if err != nil {
		t.Fatal(err)
	}
	return libraryDir, store
}
