package index

import (
	"fmt"
	"log/slog"

	"github.com/cscottle7/content-tracker/internal/checksum"
	"github.com/cscottle7/content-tracker/internal/markdown"
	"github.com/cscottle7/content-tracker/internal/storage"
)

// Sync walks the library and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteItemByPath(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// Rebuild clears the index and re-indexes every library file from scratch.
// Returns the number of files indexed.
func Rebuild(db *DB, store storage.Provider, logger *slog.Logger) (int, error) {
	if err := db.Clear(); err != nil {
		return 0, err
	}

	metas, err := store.List("")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("rebuild: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("rebuild: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		count++
	}
	return count, nil
}

// indexFile parses item file bytes and upserts the result.
// Files without an id in their frontmatter cannot be indexed.
func indexFile(db *DB, path string, data []byte) error {
	item, err := markdown.ParseItem(path, data)
	if err != nil {
		return err
	}
	if item.ID == "" {
		return fmt.Errorf("index: %s has no id in frontmatter", path)
	}
	item.Checksum = checksum.Sum(data)
	return db.UpsertItem(item)
}
