// Package render converts markdown post bodies to HTML.
//
// A Renderer is built once from Options and is immutable afterwards, so a
// single instance is shared by every request without locking.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/starford/folio/internal/apperr"
)

// DefaultStyle is the chroma style used when Options.Highlight.Style is empty.
const DefaultStyle = "github"

// Options configures a Renderer.
type Options struct {
	// Extensions lists goldmark extensions by name. Nil means DefaultExtensions.
	Extensions []string
	HardWraps  bool
	// Unsafe lets raw HTML in the markdown through to the output.
	Unsafe     bool
	HeadingIDs bool
	Highlight  HighlightOptions
}

// HighlightOptions configures fenced code block highlighting.
type HighlightOptions struct {
	Style        string
	LineNumbers  bool
	InlineStyles bool
	// Languages restricts highlighting to these lexer names or aliases.
	// Empty means every lexer chroma knows.
	Languages []string
}

// DefaultExtensions are enabled when Options.Extensions is nil.
var DefaultExtensions = []string{"gfm", "footnote"}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// KnownExtension reports whether name is a supported extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Renderer renders markdown to HTML with highlighted code blocks.
type Renderer struct {
	md        goldmark.Markdown
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// New builds a Renderer. Unknown extension or style names are errors.
func New(opts Options) (*Renderer, error) {
	exts, err := collectExtensions(opts.Extensions)
	if err != nil {
		return nil, err
	}

	styleName := opts.Highlight.Style
	if styleName == "" {
		styleName = DefaultStyle
	}
	style, ok := styles.Registry[strings.ToLower(styleName)]
	if !ok {
		return nil, fmt.Errorf("render: unknown highlight style %q", styleName)
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(!opts.Highlight.InlineStyles),
		chromahtml.WithLineNumbers(opts.Highlight.LineNumbers),
	)

	code := newCodeBlockRenderer(formatter, style, opts.Highlight.Languages)

	var parserOpts []parser.Option
	if opts.HeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(code, 100)),
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)

	return &Renderer{md: md, formatter: formatter, style: style}, nil
}

// Render converts a markdown body to HTML. Failures wrap apperr.ErrRender.
func (r *Renderer) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrRender, err)
	}
	return buf.String(), nil
}

// WriteCSS writes the stylesheet for class-based highlighting.
func (r *Renderer) WriteCSS(w io.Writer) error {
	return r.formatter.WriteCSS(w, r.style)
}

func collectExtensions(names []string) ([]goldmark.Extender, error) {
	if names == nil {
		names = DefaultExtensions
	}
	var out []goldmark.Extender
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			return nil, fmt.Errorf("render: unknown markdown extension %q", name)
		}
		seen[key] = struct{}{}
		out = append(out, ext)
	}
	return out, nil
}
