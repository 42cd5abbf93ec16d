// Package frontmatter splits post files into typed metadata and a markdown body.
package frontmatter

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	fm "github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/apperr"
)

// Known front-matter keys lifted into typed fields.
const (
	KeyTitle       = "title"
	KeyDate        = "date"
	KeyDescription = "description"
	KeyTags        = "tags"
)

// Accepted date layouts for string dates, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var formats = []*fm.Format{
	fm.NewFormat("---", "---", yaml.Unmarshal),
	fm.NewFormat("+++", "+++", toml.Unmarshal),
}

// Meta is the typed view of a front-matter block. Extra keeps every key
// that is not a known field.
type Meta struct {
	Title       string
	Date        time.Time
	Description string
	Tags        []string
	Extra       map[string]any
}

// Document is a parsed post file.
type Document struct {
	Meta Meta
	Body []byte
}

// Parse splits data into front-matter and body. Data without a front-matter
// block yields empty metadata and the full text as body. A malformed block
// or an unusable known field returns an error wrapping apperr.ErrParse.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	body, err := fm.Parse(bytes.NewReader(data), &raw, formats...)
	if err != nil {
		return nil, fmt.Errorf("%w: front-matter: %v", apperr.ErrParse, err)
	}
	meta, err := decodeMeta(raw)
	if err != nil {
		return nil, err
	}
	return &Document{Meta: meta, Body: body}, nil
}

func decodeMeta(raw map[string]any) (Meta, error) {
	meta := Meta{Extra: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case KeyTitle:
			if v != nil {
				meta.Title = strings.TrimSpace(fmt.Sprint(v))
			}
		case KeyDescription:
			if v != nil {
				meta.Description = strings.TrimSpace(fmt.Sprint(v))
			}
		case KeyDate:
			d, err := parseDate(v)
			if err != nil {
				return Meta{}, err
			}
			meta.Date = d
		case KeyTags:
			meta.Tags = parseTags(v)
		default:
			nv, err := normalize(v)
			if err != nil {
				return Meta{}, fmt.Errorf("%w: key %q: %v", apperr.ErrParse, k, err)
			}
			meta.Extra[k] = nv
		}
	}
	return meta, nil
}

// normalize rewrites a decoded value so encoding/json can marshal it:
// maps with non-string keys get their keys formatted, and non-finite
// floats are rejected.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = ne
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = ne
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			ne, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("non-finite number %v", t)
		}
		return t, nil
	case float32:
		return normalize(float64(t))
	default:
		return v, nil
	}
}

// parseDate accepts a decoded timestamp or a string in one of dateLayouts.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return d, nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: unrecognised date %q", apperr.ErrParse, s)
	default:
		return time.Time{}, fmt.Errorf("%w: date has unsupported type %T", apperr.ErrParse, v)
	}
}

// parseTags accepts a list or a comma separated string and drops blanks and duplicates.
func parseTags(v any) []string {
	var items []string
	switch t := v.(type) {
	case string:
		items = strings.Split(t, ",")
	case []any:
		for _, item := range t {
			if item != nil {
				items = append(items, fmt.Sprint(item))
			}
		}
	case []string:
		items = t
	}

	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Title returns the front-matter title if present, otherwise the first
// top-level H1 heading of the body, otherwise fallback. Lines inside code
// blocks are never headings.
func (d *Document) Title(fallback string) string {
	if d.Meta.Title != "" {
		return d.Meta.Title
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(d.Body))
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			continue
		}
		if t := strings.TrimSpace(string(h.Text(d.Body))); t != "" {
			return t
		}
	}
	return fallback
}
