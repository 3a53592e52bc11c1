package index

import "github.com/cscottle7/content-tracker/internal/models"

// ItemIndex defines the interface for index operations. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type ItemIndex interface {
	UpsertItem(item *models.Item) error
	DeleteItem(id string) error
	DeleteItemByPath(path string) error
	GetPath(id string) (string, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	List(f models.Filter) ([]models.Item, int, error)
	ListWithBody(f models.Filter) ([]models.Item, int, error)
	Search(f models.Filter) ([]SearchResult, int, error)
	Facets() (*models.Facets, error)
	Clear() error
	Close() error
}

// Verify *DB satisfies ItemIndex at compile time.
var _ ItemIndex = (*DB)(nil)

// SearchResult is one full-text search hit: the indexed item plus a
// highlighted snippet of the matching text.
type SearchResult struct {
	models.Item
	Snippet string `json:"snippet"`
}

// Search returns items matching the filter (which must carry a Query)
// decorated with text snippets, plus the total hit count before pagination.
func (db *DB) Search(f models.Filter) ([]SearchResult, int, error) {
	items, total, err := db.List(f)
	if err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return []SearchResult{}, total, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	snips, err := db.snippets(f.Query, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]SearchResult, len(items))
	for i, item := range items {
		out[i] = SearchResult{Item: item, Snippet: snips[item.ID]}
	}
	return out, total, nil
}
