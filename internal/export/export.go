// Package export renders filtered content items into downloadable report
// files (markdown, HTML, CSV) under a dedicated exports directory.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cscottle7/content-tracker/internal/models"
)

// Format selects the output document type.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
)

var extensions = map[Format]string{
	FormatMarkdown: "md",
	FormatHTML:     "html",
	FormatCSV:      "csv",
}

// Options controls a single export run.
type Options struct {
	Title  string
	Format Format
}

// Result describes a generated export file.
type Result struct {
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	ItemCount int    `json:"item_count"`
}

// Exporter writes report files into dir.
type Exporter struct {
	dir string
}

// New creates an Exporter rooted at dir, creating it if needed.
func New(dir string) (*Exporter, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("export: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("export: create dir: %w", err)
	}
	return &Exporter{dir: abs}, nil
}

// renderer converts item bodies to HTML for the HTML report.
var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Export renders items into a new file and returns its metadata.
func (e *Exporter) Export(items []models.Item, opts Options) (*Result, error) {
	ext, ok := extensions[opts.Format]
	if !ok {
		return nil, fmt.Errorf("export: unsupported format %q", opts.Format)
	}
	title := opts.Title
	if title == "" {
		title = "Content Report"
	}

	var (
		data []byte
		err  error
	)
	switch opts.Format {
	case FormatMarkdown:
		data, err = renderMarkdown(title, items)
	case FormatHTML:
		data, err = renderHTML(title, items)
	case FormatCSV:
		data, err = renderCSV(items)
	}
	if err != nil {
		return nil, err
	}

	filename := uuid.NewString() + "." + ext
	if err := os.WriteFile(filepath.Join(e.dir, filename), data, 0o644); err != nil {
		return nil, fmt.Errorf("export: write file: %w", err)
	}
	return &Result{
		Filename:  filename,
		Format:    string(opts.Format),
		ItemCount: len(items),
	}, nil
}

// FilePath validates filename (plain name, known extension) and returns its
// absolute path, or an error when the file does not exist.
func (e *Exporter) FilePath(filename string) (string, error) {
	cleaned := filepath.Clean(filename)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("export: invalid filename: %s", filename)
	}
	known := false
	for _, ext := range extensions {
		if strings.HasSuffix(cleaned, "."+ext) {
			known = true
			break
		}
	}
	if !known {
		return "", fmt.Errorf("export: unknown file type: %s", filename)
	}
	abs := filepath.Join(e.dir, cleaned)
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("export: stat %s: %w", filename, err)
	}
	return abs, nil
}

// Cleanup deletes export files older than maxAge and returns the count removed.
func (e *Exporter) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return 0, fmt.Errorf("export: read dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(e.dir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

type reportData struct {
	Title     string
	Generated string
	Items     []models.Item
}

var markdownTmpl = texttemplate.Must(texttemplate.New("report").
	Funcs(texttemplate.FuncMap{"join": strings.Join}).
	Parse(`# {{.Title}}

Generated: {{.Generated}}
Items: {{len .Items}}
{{range .Items}}
---

## {{.Title}}

| Field | Value |
|---|---|
| ID | {{.ID}} |
| Type | {{.ContentType}} |
| Status | {{.Status}} |
{{- if .Author}}
| Author | {{.Author}} |
{{- end}}
{{- if .Client}}
| Client | {{.Client}} |
{{- end}}
{{- if .URL}}
| URL | {{.URL}} |
{{- end}}
| Created | {{.CreatedDate}} |
| Updated | {{.UpdatedDate}} |
{{- if .PublishDate}}
| Publish | {{.PublishDate}} |
{{- end}}
{{- if .Tags}}
| Tags | {{join .Tags ", "}} |
{{- end}}
{{- if .Categories}}
| Categories | {{join .Categories ", "}} |
{{- end}}
{{if .Description}}
{{.Description}}
{{end}}
{{- if .Body}}
{{.Body}}
{{end}}{{end}}`))

func renderMarkdown(title string, items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	err := markdownTmpl.Execute(&buf, reportData{
		Title:     title,
		Generated: time.Now().Format(time.RFC3339),
		Items:     items,
	})
	if err != nil {
		return nil, fmt.Errorf("export: render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

type htmlItem struct {
	models.Item
	BodyHTML htmltemplate.HTML
}

type htmlReportData struct {
	Title     string
	Generated string
	Items     []htmlItem
}

var htmlTmpl = htmltemplate.Must(htmltemplate.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; color: #1f2937; }
h1 { border-bottom: 2px solid #1f4e79; padding-bottom: .3rem; }
article { border-top: 1px solid #d1d5db; padding: 1rem 0; }
dl { display: grid; grid-template-columns: 8rem 1fr; gap: .2rem .6rem; font-size: .9rem; }
dt { font-weight: 600; color: #4472c4; }
.meta { color: #6b7280; font-size: .85rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated {{.Generated}} &middot; {{len .Items}} items</p>
{{range .Items}}<article>
<h2>{{.Title}}</h2>
<dl>
<dt>Type</dt><dd>{{.ContentType}}</dd>
<dt>Status</dt><dd>{{.Status}}</dd>
{{if .Author}}<dt>Author</dt><dd>{{.Author}}</dd>{{end}}
{{if .Client}}<dt>Client</dt><dd>{{.Client}}</dd>{{end}}
{{if .URL}}<dt>URL</dt><dd><a href="{{.URL}}">{{.URL}}</a></dd>{{end}}
<dt>Created</dt><dd>{{.CreatedDate}}</dd>
<dt>Updated</dt><dd>{{.UpdatedDate}}</dd>
{{if .PublishDate}}<dt>Publish</dt><dd>{{.PublishDate}}</dd>{{end}}
</dl>
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{.BodyHTML}}
</article>
{{end}}</body>
</html>
`))

func renderHTML(title string, items []models.Item) ([]byte, error) {
	data := htmlReportData{
		Title:     title,
		Generated: time.Now().Format(time.RFC3339),
		Items:     make([]htmlItem, len(items)),
	}
	for i, item := range items {
		var body bytes.Buffer
		if err := renderer.Convert([]byte(item.Body), &body); err != nil {
			return nil, fmt.Errorf("export: render body for %s: %w", item.ID, err)
		}
		data.Items[i] = htmlItem{Item: item, BodyHTML: htmltemplate.HTML(body.String())}
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("export: render html: %w", err)
	}
	return buf.Bytes(), nil
}

func renderCSV(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "title", "content_type", "status", "author", "client", "url",
		"created_date", "updated_date", "publish_date", "categories", "tags", "description"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("export: write csv header: %w", err)
	}
	for _, item := range items {
		publish := ""
		if item.PublishDate != nil {
			publish = item.PublishDate.String()
		}
		record := []string{
			item.ID, item.Title, item.ContentType, item.Status, item.Author, item.Client, item.URL,
			item.CreatedDate.String(), item.UpdatedDate.String(), publish,
			strings.Join(item.Categories, ";"), strings.Join(item.Tags, ";"), item.Description,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("export: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
