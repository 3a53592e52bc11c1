// Package markdown reads and writes content item files: YAML frontmatter
// between --- delimiters followed by a markdown body.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cscottle7/content-tracker/internal/models"
)

const delim = "---"

// Parse extracts frontmatter and body from raw item file bytes.
// A file without frontmatter yields an empty Frontmatter and the whole
// content as body.
func Parse(data []byte) (models.Frontmatter, string, error) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return models.Frontmatter{}, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return models.Frontmatter{}, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm models.Frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return models.Frontmatter{}, "", fmt.Errorf("markdown: parse frontmatter: %w", err)
	}
	return fm, body, nil
}

// ParseItem parses data into a full Item with the given path.
func ParseItem(path string, data []byte) (*models.Item, error) {
	fm, body, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &models.Item{
		Frontmatter: fm,
		Path:        path,
		Body:        body,
	}, nil
}

// Render serialises frontmatter and body into canonical item file bytes.
// The output always carries a frontmatter block, ends with a trailing
// newline, and round-trips through Parse.
func Render(fm models.Frontmatter, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("markdown: encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("markdown: close encoder: %w", err)
	}

	buf.WriteString(delim + "\n")
	body = strings.TrimRight(body, "\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
