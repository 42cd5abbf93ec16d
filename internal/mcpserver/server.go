// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the blog's read operations as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/postservice"
	"github.com/starford/folio/internal/storage"
)

// PostFormatURI is the resource describing the post file format.
const PostFormatURI = "folio://post-format"

const defaultSearchLimit = 20

// Server wraps the MCP server with Folio tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *postservice.Service
	store storage.Provider
}

// New creates a new MCP server with all tools registered.
func New(svc *postservice.Service, store storage.Provider, version string) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List blog posts newest first as JSON metadata (slug, title, date, tags, ...)."),
		mcp.WithString("tag", mcp.Description("Optional tag; only posts carrying it are returned")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Read one post by slug. Returns metadata plus rendered HTML, "+
			"or the raw markdown file when format is \"markdown\"."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug (file name without .md)")),
		mcp.WithString("format", mcp.Description("html (default) or markdown"), mcp.Enum("html", "markdown")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles, descriptions, tags and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20, max 100)")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the post file format: front-matter fields, date formats "+
			"and rendering rules. Call this before drafting a new post."),
	), s.getPostFormat)

	s.mcp.AddResource(
		mcp.NewResource(PostFormatURI, "Post Format",
			mcp.WithResourceDescription("Markdown post format understood by Folio."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListPosts(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if tag := strings.TrimSpace(req.GetString("tag", "")); tag != "" {
		filtered := make([]models.PostMetadata, 0, len(items))
		for _, m := range items {
			if slices.ContainsFunc(m.Tags, func(t string) bool { return strings.EqualFold(t, tag) }) {
				filtered = append(filtered, m)
			}
		}
		items = filtered
	}
	return jsonResult(items)
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch format := req.GetString("format", "html"); format {
	case "markdown":
		data, err := s.store.Read(slug)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case "html", "":
		post, err := s.svc.GetPost(ctx, slug)
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(post)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q (want html or markdown)", format)), nil
	}
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query must not be empty"), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", defaultSearchLimit))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getPostFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormat), nil
}

func (s *Server) readPostFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PostFormatURI,
			MIMEType: "text/markdown",
			Text:     PostFormat,
		},
	}, nil
}
