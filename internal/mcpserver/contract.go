package mcpserver

// ItemFormatContract describes the canonical content item file format that
// LLM consumers should follow when creating items.
const ItemFormatContract = `# Content Item Format Contract

Every content item is stored as ` + "`<content_type>/<id>.md`" + ` in the library and
MUST follow this structure.

## Structure

` + "```" + `markdown
---
id: 4fd1c2a7-...                    # REQUIRED - UUID, assigned by the server
title: Human-readable title         # REQUIRED
content_type: blog                  # REQUIRED - lowercase slug (blog, video, podcast, ...)
status: draft                       # draft | review | published | archived | <custom slug>
description: One-line summary       # OPTIONAL
author: Jane Doe                    # OPTIONAL
client: Acme Corp                   # OPTIONAL
url: https://example.com/post       # OPTIONAL - published location
created_date: 2026-08-31            # REQUIRED - ISO-8601 date, set by the server
updated_date: 2026-08-31            # REQUIRED - bumped on every update
publish_date: 2026-09-15            # OPTIONAL
categories:                         # OPTIONAL - YAML list
  - marketing
tags:                               # OPTIONAL - YAML list, lowercase kebab-case
  - product-launch
custom_fields:                      # OPTIONAL - free-form key/value map
  campaign: q3-launch
---

Markdown body content.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "`---`" + ` fences must be the first thing
   in the file (no leading blank lines).
2. **id, title, content_type are required.** The server generates id and the
   created/updated dates; do not invent ids when creating items.
3. **content_type and status** are lowercase slugs (letters, digits, hyphens).
   The content_type doubles as the storage directory name.
4. **Dates** are ISO-8601 calendar dates (YYYY-MM-DD), no time component.
5. **Tags** are lowercase, kebab-case (e.g. ` + "`product-launch`" + `).
6. **Encoding** is UTF-8 with a trailing newline.
7. The markdown file is the source of truth; the search index is derived from
   it and rebuilt automatically.
`
