// Package models defines the domain types for the content tracker.
package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the ISO-8601 date format used in frontmatter and API payloads.
const DateLayout = "2006-01-02"

// Date is a calendar date (no time component) that marshals to YYYY-MM-DD
// in both YAML frontmatter and JSON.
type Date struct {
	time.Time
}

// Today returns the current date truncated to day precision.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates t to day precision.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("models: parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String returns the date in YYYY-MM-DD form, or "" for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `null` || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(DateLayout), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Accepts both plain YYYY-MM-DD
// strings and full timestamps (yaml parses unquoted dates as timestamps).
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		if s == "" {
			*d = Date{}
			return nil
		}
		parsed, perr := ParseDate(s)
		if perr == nil {
			*d = parsed
			return nil
		}
	}
	var t time.Time
	if err := node.Decode(&t); err != nil {
		return fmt.Errorf("models: invalid date %q", node.Value)
	}
	*d = DateOf(t)
	return nil
}

// Frontmatter is the YAML metadata block of a content item file.
// Field order here is the canonical order written to disk.
type Frontmatter struct {
	ID           string         `yaml:"id" json:"id"`
	Title        string         `yaml:"title" json:"title"`
	ContentType  string         `yaml:"content_type" json:"content_type"`
	Status       string         `yaml:"status" json:"status"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	Author       string         `yaml:"author,omitempty" json:"author,omitempty"`
	Client       string         `yaml:"client,omitempty" json:"client,omitempty"`
	URL          string         `yaml:"url,omitempty" json:"url,omitempty"`
	CreatedDate  Date           `yaml:"created_date" json:"created_date"`
	UpdatedDate  Date           `yaml:"updated_date" json:"updated_date"`
	PublishDate  *Date          `yaml:"publish_date,omitempty" json:"publish_date,omitempty"`
	Categories   []string       `yaml:"categories,omitempty" json:"categories"`
	Tags         []string       `yaml:"tags,omitempty" json:"tags"`
	CustomFields map[string]any `yaml:"custom_fields,omitempty" json:"custom_fields"`
}

// Item is a fully materialised content item: canonical frontmatter plus
// body and derived fields.
type Item struct {
	Frontmatter `yaml:",inline"`

	Path     string `json:"path"`
	Body     string `json:"body"`
	Checksum string `json:"checksum"`
}

// ItemMetadata is a lightweight per-file record returned by storage listings.
type ItemMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter narrows list and search operations.
type Filter struct {
	Query      string
	Types      []string
	Statuses   []string
	Tags       []string
	Categories []string
	Author     string
	Client     string
	DateFrom   Date
	DateTo     Date
	Limit      int
	Offset     int
}

// Facets holds distinct metadata values used to populate filter dropdowns.
type Facets struct {
	ContentTypes []string `json:"content_types"`
	Statuses     []string `json:"statuses"`
	Authors      []string `json:"authors"`
	Clients      []string `json:"clients"`
	Tags         []string `json:"tags"`
}
