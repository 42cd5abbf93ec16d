package mcpserver

// PostFormat describes the markdown post format that Folio reads.
const PostFormat = `# Folio Post Format

Each post is one UTF-8 file named ` + "`" + `{slug}.md` + "`" + ` directly inside the content
directory. The slug is the file name without ` + "`" + `.md` + "`" + ` and is the post's only
identifier; it is used verbatim in URLs (` + "`" + `/api/posts/{slug}` + "`" + `).

## Structure

` + "```" + `markdown
---
title: Human-readable title     # OPTIONAL - falls back to the first "# " heading, then the slug
date: 2025-01-15                # OPTIONAL - posts without a date are listed last
description: One-line summary   # OPTIONAL
tags: [go, web]                 # OPTIONAL - YAML list or "go, web"
series: building-folio          # any other key is passed through to clients unchanged
---

Body text in Markdown (CommonMark + GitHub extensions).
` + "```" + `

TOML front-matter between ` + "`" + `+++` + "`" + ` lines is accepted as well.

## Rules

1. **Front-matter is optional.** When present, the opening fence must be the first line.
2. **Dates** use one of ` + "`" + `2006-01-02` + "`" + `, ` + "`" + `2006-01-02 15:04:05` + "`" + `,
   ` + "`" + `2006-01-02T15:04:05` + "`" + ` or RFC 3339. Anything else makes the post unreadable.
3. **Slugs** are compared case-insensitively at startup; two files whose names differ only
   in case are a configuration error.
4. **Code blocks** use fenced blocks with a language tag (` + "```" + `go` + "```" + `, ` + "```" + `bash` + "```" + `).
   Unknown languages are shown as plain text.
5. **Raw HTML** is dropped unless the server enables ` + "`" + `render.unsafe` + "`" + `.
6. **Files in sub-directories** and files not ending in ` + "`" + `.md` + "`" + ` are ignored.

## Example

` + "```" + `markdown
---
title: Goroutines in practice
date: 2025-01-20
description: Patterns that survived production.
tags:
  - go
  - concurrency
---

# Goroutines in practice

` + "```" + `go
go func() { done <- work() }()
` + "```" + `
` + "```" + `
`
