package frontmatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/folio/internal/apperr"
)

func TestParse_YAMLFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ndate: \"2024-01-01\"\ntags:\n  - go\n  - blog\nauthor: sam\n---\n# Hi\n")
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Meta.Title != "Hello" {
		t.Errorf("title = %q, want Hello", doc.Meta.Title)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !doc.Meta.Date.Equal(want) {
		t.Errorf("date = %v, want %v", doc.Meta.Date, want)
	}
	if len(doc.Meta.Tags) != 2 || doc.Meta.Tags[0] != "go" || doc.Meta.Tags[1] != "blog" {
		t.Errorf("tags = %v, want [go blog]", doc.Meta.Tags)
	}
	if doc.Meta.Extra["author"] != "sam" {
		t.Errorf("extra author = %v", doc.Meta.Extra["author"])
	}
	if _, ok := doc.Meta.Extra["title"]; ok {
		t.Error("known keys must not leak into Extra")
	}
	if strings.TrimSpace(string(doc.Body)) != "# Hi" {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestParse_UnquotedDate(t *testing.T) {
	doc, err := Parse([]byte("---\ndate: 2023-06-15T10:30:00Z\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC)
	if !doc.Meta.Date.Equal(want) {
		t.Errorf("date = %v, want %v", doc.Meta.Date, want)
	}
}

func TestParse_TOMLFrontmatter(t *testing.T) {
	input := []byte("+++\ntitle = \"Toml Post\"\ndate = \"2022-02-02\"\ndraft = true\n+++\nText\n")
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Meta.Title != "Toml Post" {
		t.Errorf("title = %q", doc.Meta.Title)
	}
	if doc.Meta.Date.Year() != 2022 {
		t.Errorf("date = %v", doc.Meta.Date)
	}
	if doc.Meta.Extra["draft"] != true {
		t.Errorf("draft = %v", doc.Meta.Extra["draft"])
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	doc, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Meta.Extra) != 0 || doc.Meta.Title != "" || !doc.Meta.Date.IsZero() {
		t.Errorf("expected empty metadata, got %+v", doc.Meta)
	}
	if string(doc.Body) != string(input) {
		t.Errorf("body = %q, want full input", doc.Body)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unclosed\n---\nBody\n"))
	if !errors.Is(err, apperr.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestParse_BadDate(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: x\ndate: next tuesday\n---\nBody\n"))
	if !errors.Is(err, apperr.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestParseTags_CommaString(t *testing.T) {
	tags := parseTags("go, web,,go ")
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "web" {
		t.Errorf("tags = %v, want [go web]", tags)
	}
}

func TestTitle_FrontmatterOverH1(t *testing.T) {
	doc := &Document{Meta: Meta{Title: "FM Title"}, Body: []byte("# H1 Title\ntext")}
	if got := doc.Title("slug"); got != "FM Title" {
		t.Errorf("title = %q, want FM Title", got)
	}
}

func TestTitle_H1Fallback(t *testing.T) {
	doc := &Document{Body: []byte("some text\n# My Heading\nmore")}
	if got := doc.Title("slug"); got != "My Heading" {
		t.Errorf("title = %q, want My Heading", got)
	}
}

func TestTitle_SlugFallback(t *testing.T) {
	doc := &Document{Body: []byte("no headings here")}
	if got := doc.Title("my-post"); got != "my-post" {
		t.Errorf("title = %q, want my-post", got)
	}
}

func TestParse_NonStringKeysAreStringified(t *testing.T) {
	doc, err := Parse([]byte("---\nversions:\n  1: first\n  2:\n    - nested: true\n---\nbody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	versions, ok := doc.Meta.Extra["versions"].(map[string]any)
	if !ok {
		t.Fatalf("versions has type %T, want map[string]any", doc.Meta.Extra["versions"])
	}
	if versions["1"] != "first" {
		t.Errorf("versions[1] = %v", versions["1"])
	}
	list, ok := versions["2"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("versions[2] = %#v", versions["2"])
	}
	if _, ok := list[0].(map[string]any); !ok {
		t.Errorf("nested map has type %T", list[0])
	}
	if _, err := json.Marshal(doc.Meta.Extra); err != nil {
		t.Errorf("extra not encodable: %v", err)
	}
}

func TestParse_NonFiniteNumberIsParseError(t *testing.T) {
	for _, input := range []string{
		"---\nscore: .nan\n---\nbody\n",
		"---\nlimits:\n  max: .inf\n---\nbody\n",
		"+++\nscore = -inf\n+++\nbody\n",
	} {
		if _, err := Parse([]byte(input)); !errors.Is(err, apperr.ErrParse) {
			t.Errorf("Parse(%q) err = %v, want ErrParse", input, err)
		}
	}
}

func TestTitle_IgnoresCodeBlocks(t *testing.T) {
	doc := &Document{Body: []byte("```bash\n# install deps\nmake\n```\n\n# Real Title\n")}
	if got := doc.Title("slug"); got != "Real Title" {
		t.Errorf("title = %q, want Real Title", got)
	}

	doc = &Document{Body: []byte("    # indented code\n\ntext\n")}
	if got := doc.Title("slug"); got != "slug" {
		t.Errorf("title = %q, want slug", got)
	}
}

func TestTitle_InlineMarkup(t *testing.T) {
	doc := &Document{Body: []byte("# Hello *world*\n")}
	if got := doc.Title("slug"); got != "Hello world" {
		t.Errorf("title = %q, want Hello world", got)
	}
}
