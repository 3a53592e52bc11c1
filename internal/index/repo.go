package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cscottle7/content-tracker/internal/models"
)

// itemColumns is the column list selected when materialising items from the
// index. Body is deliberately excluded; list and search responses are
// metadata-only and the file remains the source for full content.
const itemColumns = `id, path, title, content_type, status, description, author, client, url,
	created_date, updated_date, publish_date, categories, tags, custom_fields, checksum`

// UpsertItem inserts or replaces an item row and its FTS entry within a transaction.
func (db *DB) UpsertItem(item *models.Item) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	categoriesJSON, _ := json.Marshal(nonNil(item.Categories))
	tagsJSON, _ := json.Marshal(nonNil(item.Tags))
	customJSON, _ := json.Marshal(item.CustomFields)
	if item.CustomFields == nil {
		customJSON = []byte(`{}`)
	}

	publish := ""
	if item.PublishDate != nil {
		publish = item.PublishDate.String()
	}

	_, err = tx.Exec(`
		INSERT INTO items (id, path, title, content_type, status, description, author, client, url,
			created_date, updated_date, publish_date, categories, tags, custom_fields, body, checksum,
			indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			path          = excluded.path,
			title         = excluded.title,
			content_type  = excluded.content_type,
			status        = excluded.status,
			description   = excluded.description,
			author        = excluded.author,
			client        = excluded.client,
			url           = excluded.url,
			created_date  = excluded.created_date,
			updated_date  = excluded.updated_date,
			publish_date  = excluded.publish_date,
			categories    = excluded.categories,
			tags          = excluded.tags,
			custom_fields = excluded.custom_fields,
			body          = excluded.body,
			checksum      = excluded.checksum,
			indexed_at    = CURRENT_TIMESTAMP
	`, item.ID, item.Path, item.Title, item.ContentType, item.Status, item.Description,
		item.Author, item.Client, item.URL,
		item.CreatedDate.String(), item.UpdatedDate.String(), publish,
		string(categoriesJSON), string(tagsJSON), string(customJSON),
		item.Body, item.Checksum)
	if err != nil {
		return fmt.Errorf("index: upsert item: %w", err)
	}

	if err := ftsUpsert(tx, item.ID, item.Title, item.Description, item.Body, item.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteItem removes an item row and its FTS entry by id.
func (db *DB) DeleteItem(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete item: %w", err)
	}

	return tx.Commit()
}

// DeleteItemByPath removes the row indexed for the given file path, if any.
// Used by the watcher and sync, which observe paths rather than ids.
func (db *DB) DeleteItemByPath(path string) error {
	id, err := db.idByPath(path)
	if err != nil || id == "" {
		return err
	}
	return db.DeleteItem(id)
}

// idByPath returns the item id indexed for a path, or "" when not indexed.
func (db *DB) idByPath(path string) (string, error) {
	var id string
	err := db.conn.QueryRow(`SELECT id FROM items WHERE path = ?`, path).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("index: lookup by path: %w", err)
	}
	return id, nil
}

// GetPath returns the indexed file path for an item id, or "" when not indexed.
func (db *DB) GetPath(id string) (string, error) {
	var p string
	err := db.conn.QueryRow(`SELECT path FROM items WHERE id = ?`, id).Scan(&p)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("index: get path: %w", err)
	}
	return p, nil
}

// GetChecksum returns the stored checksum for a path, or "" when not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM items WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed item.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM items`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Clear removes every row from the index. Used before a full rebuild.
func (db *DB) Clear() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsClear(tx)
	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}
	return tx.Commit()
}

// List returns items matching the filter, newest first, plus the total count
// before pagination.
func (db *DB) List(f models.Filter) ([]models.Item, int, error) {
	where, args := filterClause(f, "items")

	var total int
	countSQL := `SELECT COUNT(*) FROM items` + where
	if err := db.conn.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + itemColumns + ` FROM items` + where +
		` ORDER BY updated_date DESC, id LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	return out, total, rows.Err()
}

// ListWithBody is List with each item's body attached. Exports render the
// full document, so they cannot use the metadata-only column set.
func (db *DB) ListWithBody(f models.Filter) ([]models.Item, int, error) {
	items, total, err := db.List(f)
	if err != nil || len(items) == 0 {
		return items, total, err
	}

	ids := make([]any, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	rows, err := db.conn.Query(
		`SELECT id, body FROM items WHERE id IN (`+placeholders(len(ids))+`)`, ids...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list bodies: %w", err)
	}
	defer rows.Close()

	bodies := make(map[string]string, len(ids))
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, 0, err
		}
		bodies[id] = body
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range items {
		items[i].Body = bodies[items[i].ID]
	}
	return items, total, nil
}

// Facets returns distinct metadata values for filter dropdowns.
func (db *DB) Facets() (*models.Facets, error) {
	facets := &models.Facets{
		ContentTypes: []string{},
		Statuses:     []string{},
		Authors:      []string{},
		Clients:      []string{},
		Tags:         []string{},
	}

	for col, dst := range map[string]*[]string{
		"content_type": &facets.ContentTypes,
		"status":       &facets.Statuses,
		"author":       &facets.Authors,
		"client":       &facets.Clients,
	} {
		values, err := db.distinct(col)
		if err != nil {
			return nil, err
		}
		*dst = values
	}

	// Tags are stored as JSON arrays; collect distinct values in Go.
	rows, err := db.conn.Query(`SELECT tags FROM items WHERE tags != '[]'`)
	if err != nil {
		return nil, fmt.Errorf("index: tag facets: %w", err)
	}
	defer rows.Close()
	seen := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			continue
		}
		for _, t := range tags {
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				facets.Tags = append(facets.Tags, t)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(facets.Tags)
	return facets, nil
}

func (db *DB) distinct(column string) ([]string, error) {
	// column comes from a fixed internal set, never from user input.
	rows, err := db.conn.Query(
		`SELECT DISTINCT ` + column + ` FROM items WHERE ` + column + ` != '' ORDER BY ` + column)
	if err != nil {
		return nil, fmt.Errorf("index: distinct %s: %w", column, err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// filterClause builds a WHERE clause for the given filter against the named
// table alias. The Query field is handled by the build-specific search
// predicate (FTS5 MATCH or LIKE fallback).
func filterClause(f models.Filter, alias string) (string, []any) {
	var conds []string
	var args []any

	if f.Query != "" {
		cond, qargs := searchPredicate(f.Query, alias)
		conds = append(conds, cond)
		args = append(args, qargs...)
	}
	if len(f.Types) > 0 {
		conds = append(conds, alias+`.content_type IN (`+placeholders(len(f.Types))+`)`)
		for _, v := range f.Types {
			args = append(args, v)
		}
	}
	if len(f.Statuses) > 0 {
		conds = append(conds, alias+`.status IN (`+placeholders(len(f.Statuses))+`)`)
		for _, v := range f.Statuses {
			args = append(args, v)
		}
	}
	if len(f.Tags) > 0 {
		// Any-of semantics over the JSON-encoded tag list.
		var tagConds []string
		for _, t := range f.Tags {
			tagConds = append(tagConds, alias+`.tags LIKE ?`)
			args = append(args, `%"`+t+`"%`)
		}
		conds = append(conds, `(`+strings.Join(tagConds, ` OR `)+`)`)
	}
	if len(f.Categories) > 0 {
		var catConds []string
		for _, c := range f.Categories {
			catConds = append(catConds, alias+`.categories LIKE ?`)
			args = append(args, `%"`+c+`"%`)
		}
		conds = append(conds, `(`+strings.Join(catConds, ` OR `)+`)`)
	}
	if f.Author != "" {
		conds = append(conds, alias+`.author = ?`)
		args = append(args, f.Author)
	}
	if f.Client != "" {
		conds = append(conds, alias+`.client = ?`)
		args = append(args, f.Client)
	}
	if !f.DateFrom.IsZero() {
		conds = append(conds, alias+`.created_date >= ?`)
		args = append(args, f.DateFrom.String())
	}
	if !f.DateTo.IsZero() {
		conds = append(conds, alias+`.created_date <= ?`)
		args = append(args, f.DateTo.String())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// scanItem reads one row selected with itemColumns into a models.Item.
func scanItem(rows *sql.Rows) (*models.Item, error) {
	var (
		item                      models.Item
		created, updated, publish string
		categories, tags, custom  string
	)
	if err := rows.Scan(&item.ID, &item.Path, &item.Title, &item.ContentType, &item.Status,
		&item.Description, &item.Author, &item.Client, &item.URL,
		&created, &updated, &publish,
		&categories, &tags, &custom, &item.Checksum); err != nil {
		return nil, fmt.Errorf("index: scan item: %w", err)
	}

	if created != "" {
		if d, err := models.ParseDate(created); err == nil {
			item.CreatedDate = d
		}
	}
	if updated != "" {
		if d, err := models.ParseDate(updated); err == nil {
			item.UpdatedDate = d
		}
	}
	if publish != "" {
		if d, err := models.ParseDate(publish); err == nil {
			item.PublishDate = &d
		}
	}
	_ = json.Unmarshal([]byte(categories), &item.Categories)
	_ = json.Unmarshal([]byte(tags), &item.Tags)
	_ = json.Unmarshal([]byte(custom), &item.CustomFields)
	item.Categories = nonNil(item.Categories)
	item.Tags = nonNil(item.Tags)
	return &item, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
