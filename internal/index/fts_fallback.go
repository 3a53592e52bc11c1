//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search falls back to LIKE over the items table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string, _ []string) error {
	// Body is already stored in the items table; nothing extra to do.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

func ftsClear(_ *sql.Tx) {}

// searchPredicate matches the query as a substring of title, description,
// body, or tags (LIKE fallback when FTS5 is not compiled in).
func searchPredicate(query, alias string) (string, []any) {
	like := "%" + query + "%"
	cond := `(` + alias + `.title LIKE ? OR ` + alias + `.description LIKE ? OR ` +
		alias + `.body LIKE ? OR ` + alias + `.tags LIKE ?)`
	return cond, []any{like, like, like, like}
}

// snippets returns a leading slice of each item's body in place of
// highlighted FTS snippets.
func (db *DB) snippets(_ string, ids []string) (map[string]string, error) {
	q := `SELECT id, substr(body, 1, 200) FROM items WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: snippets: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, snip string
		if err := rows.Scan(&id, &snip); err != nil {
			return nil, err
		}
		out[id] = snip
	}
	return out, rows.Err()
}
