// Package models defines the domain types for Folio.
package models

import (
	"encoding/json"
	"time"
)

// PostMetadata is the listing representation of a post.
//
// Extra carries every front-matter key that is not one of the typed fields.
// When encoded to JSON the extra keys are flattened into the top-level object
// next to slug, title and date; typed fields win on clashes.
type PostMetadata struct {
	Slug        string
	Title       string
	Date        time.Time
	Description string
	Tags        []string
	Extra       map[string]any
}

// PostDetail is a post with its rendered HTML body.
type PostDetail struct {
	PostMetadata
	Content string
}

// PostFile describes one markdown file in the content store.
type PostFile struct {
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

func (m PostMetadata) fields() map[string]any {
	out := make(map[string]any, len(m.Extra)+5)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["slug"] = m.Slug
	out["title"] = m.Title
	if !m.Date.IsZero() {
		out["date"] = m.Date.Format(time.RFC3339)
	} else {
		delete(out, "date")
	}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if len(m.Tags) > 0 {
		out["tags"] = m.Tags
	}
	return out
}

// MarshalJSON flattens Extra into the top-level object.
func (m PostMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.fields())
}

// MarshalJSON adds the rendered content to the flattened metadata.
func (d PostDetail) MarshalJSON() ([]byte, error) {
	out := d.PostMetadata.fields()
	out["content"] = d.Content
	return json.Marshal(out)
}
