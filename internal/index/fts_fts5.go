//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			id UNINDEXED,
			title,
			description,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, title, description, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM items_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO items_fts (id, title, description, body, tags) VALUES (?, ?, ?, ?, ?)`,
		id, title, description, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM items_fts WHERE id = ?`, id)
}

func ftsClear(tx *sql.Tx) {
	_, _ = tx.Exec(`DELETE FROM items_fts`)
}

// searchPredicate restricts rows to FTS5 matches for the query.
func searchPredicate(query, alias string) (string, []any) {
	return alias + `.id IN (SELECT id FROM items_fts WHERE items_fts MATCH ?)`, []any{query}
}

// snippets returns highlighted match snippets for the given item ids.
func (db *DB) snippets(query string, ids []string) (map[string]string, error) {
	q := `SELECT id, snippet(items_fts, 3, '<b>', '</b>', '...', 64)
		FROM items_fts
		WHERE items_fts MATCH ? AND id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, query)
	for _, id := range ids {
		args = append(args, id)
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
