package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2025-03-14" {
		t.Errorf("String() = %q, want 2025-03-14", d.String())
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"not-a-date", "2025-13-01", "14/03/2025", "2025-03-14T10:00:00Z"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) should fail", s)
		}
	}
}

func TestDate_ZeroString(t *testing.T) {
	var d Date
	if got := d.String(); got != "" {
		t.Errorf("zero date String() = %q, want empty", got)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := DateOf(time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC))
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"2025-06-01"` {
		t.Errorf("marshal = %s, want \"2025-06-01\"", out)
	}

	var back Date
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back.String() != "2025-06-01" {
		t.Errorf("round trip = %q", back.String())
	}
}

func TestDate_JSONNull(t *testing.T) {
	var d Date
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "null" {
		t.Errorf("zero date marshals to %s, want null", out)
	}

	var back Date
	if err := json.Unmarshal([]byte("null"), &back); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !back.IsZero() {
		t.Error("null should unmarshal to zero date")
	}
}

func TestDate_YAMLRoundTrip(t *testing.T) {
	type doc struct {
		When Date `yaml:"when"`
	}
	d, _ := ParseDate("2024-12-31")
	out, err := yaml.Marshal(doc{When: d})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "2024-12-31") {
		t.Errorf("yaml output missing date: %s", out)
	}

	var back doc
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back.When.String() != "2024-12-31" {
		t.Errorf("round trip = %q", back.When.String())
	}
}

func TestDate_YAMLUnquotedTimestamp(t *testing.T) {
	// Unquoted dates in YAML parse as timestamps; the Date type must
	// accept both forms since hand-edited files use either.
	type doc struct {
		When Date `yaml:"when"`
	}
	var d doc
	if err := yaml.Unmarshal([]byte("when: 2024-01-15\n"), &d); err != nil {
		t.Fatalf("unquoted date: %v", err)
	}
	if d.When.String() != "2024-01-15" {
		t.Errorf("got %q, want 2024-01-15", d.When.String())
	}
}

func TestItem_JSONFlatEmbedding(t *testing.T) {
	// Frontmatter fields must serialise at the top level of an item,
	// not nested under a "Frontmatter" key.
	item := Item{
		Frontmatter: Frontmatter{
			ID:          "abc",
			Title:       "Hello",
			ContentType: "blog",
			Status:      "draft",
		},
		Path: "blog/abc.md",
		Body: "text",
	}
	out, err := json.Marshal(item)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if m["id"] != "abc" || m["title"] != "Hello" {
		t.Errorf("frontmatter fields not flat: %s", out)
	}
	if _, nested := m["Frontmatter"]; nested {
		t.Errorf("unexpected nested Frontmatter key: %s", out)
	}
	if m["path"] != "blog/abc.md" {
		t.Errorf("path missing: %s", out)
	}
}
