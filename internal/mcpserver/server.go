// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the content library to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cscottle7/content-tracker/internal/apperr"
	"github.com/cscottle7/content-tracker/internal/contentservice"
	"github.com/cscottle7/content-tracker/internal/models"
)

// Server wraps the MCP server with content tracker tools.
type Server struct {
	mcp *server.MCPServer
	svc *contentservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *contentservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Content Tracker",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Full-text search across content item titles, descriptions, bodies, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("read_content",
		mcp.WithDescription("Read the full content item (frontmatter and markdown body) by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Content item UUID")),
	), s.readContent)

	s.mcp.AddTool(mcp.NewTool("create_content",
		mcp.WithDescription("Create a new content item. The server assigns the id and dates. "+
			"Read the contract first via the get_content_contract tool or the "+
			"content-tracker://item-format resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Item title")),
		mcp.WithString("content_type", mcp.Required(), mcp.Description("Content type slug (blog, video, podcast, ...)")),
		mcp.WithString("status", mcp.Description("Status slug (defaults to draft)")),
		mcp.WithString("body", mcp.Description("Markdown body content")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.createContent)

	s.mcp.AddTool(mcp.NewTool("list_content",
		mcp.WithDescription("List content items, optionally filtered by content type or status."),
		mcp.WithString("content_type", mcp.Description("Optional content type filter")),
		mcp.WithString("status", mcp.Description("Optional status filter")),
	), s.listContent)

	s.mcp.AddTool(mcp.NewTool("get_content_contract",
		mcp.WithDescription("Returns the canonical content item format contract. "+
			"Call this before creating items to ensure correct structure."),
	), s.getContentContract)

	// Resource: item format contract.
	s.mcp.AddResource(
		mcp.NewResource("content-tracker://item-format", "Item Format Contract",
			mcp.WithResourceDescription("Canonical markdown item format that all content items follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readItemFormatResource,
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

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, _, err := s.svc.Search(ctx, models.Filter{Query: query, Limit: 20})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(item, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contentType, err := req.RequireString("content_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	create := contentservice.CreateRequest{
		Title:       title,
		ContentType: contentType,
		Status:      req.GetString("status", ""),
		Body:        req.GetString("body", ""),
	}
	if tags := req.GetString("tags", ""); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				create.Tags = append(create.Tags, t)
			}
		}
	}

	item, err := s.svc.Create(ctx, create)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", item.ID, item.Path)), nil
}

func (s *Server) listContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := models.Filter{Limit: 100}
	if ct := req.GetString("content_type", ""); ct != "" {
		f.Types = []string{ct}
	}
	if st := req.GetString("status", ""); st != "" {
		f.Statuses = []string{st}
	}

	items, total, err := s.svc.List(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lines := make([]string, 0, len(items)+1)
	lines = append(lines, fmt.Sprintf("%d items", total))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s", item.ID, item.ContentType, item.Status, item.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getContentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ItemFormatContract), nil
}

func (s *Server) readItemFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "content-tracker://item-format",
			MIMEType: "text/markdown",
			Text:     ItemFormatContract,
		},
	}, nil
}
