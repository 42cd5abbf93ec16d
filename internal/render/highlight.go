package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// codeBlockRenderer renders fenced code blocks through chroma. It replaces
// goldmark's default fenced code renderer.
type codeBlockRenderer struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
	allowed   map[string]struct{}
}

func newCodeBlockRenderer(f *chromahtml.Formatter, style *chroma.Style, languages []string) *codeBlockRenderer {
	r := &codeBlockRenderer{formatter: f, style: style}
	if len(languages) > 0 {
		r.allowed = make(map[string]struct{}, len(languages))
		for _, l := range languages {
			r.allowed[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
		}
	}
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lexer := r.lexerFor(string(n.Language(source)))
	it, err := lexer.Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, err
	}
	if err := r.formatter.Format(w, r.style, it); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

// lexerFor resolves a fence language to a lexer, falling back to plain text
// for empty, unknown or disallowed languages.
func (r *codeBlockRenderer) lexerFor(lang string) chroma.Lexer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil || !r.lexerAllowed(lexer) {
		lexer = plainText()
	}
	return chroma.Coalesce(lexer)
}

// lexerAllowed reports whether the lexer's name or one of its aliases is on
// the allow-list, so "golang" passes when "go" is listed.
func (r *codeBlockRenderer) lexerAllowed(lexer chroma.Lexer) bool {
	if r.allowed == nil {
		return true
	}
	cfg := lexer.Config()
	if cfg == nil {
		return false
	}
	if _, ok := r.allowed[strings.ToLower(cfg.Name)]; ok {
		return true
	}
	for _, alias := range cfg.Aliases {
		if _, ok := r.allowed[strings.ToLower(alias)]; ok {
			return true
		}
	}
	return false
}

func plainText() chroma.Lexer {
	if l := lexers.Get("plaintext"); l != nil {
		return l
	}
	return lexers.Fallback
}
