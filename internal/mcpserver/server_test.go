package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cscottle7/content-tracker/internal/contentservice"
	"github.com/cscottle7/content-tracker/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := contentservice.NewService(store, db, logger)
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args

	ctx := context.Background()
	var (
		res *mcp.CallToolResult
		err error
	)
	switch name {
	case "search_content":
		res, err = srv.searchContent(ctx, req)
	case "read_content":
		res, err = srv.readContent(ctx, req)
	case "create_content":
		res, err = srv.createContent(ctx, req)
	case "list_content":
		res, err = srv.listContent(ctx, req)
	case "get_content_contract":
		res, err = srv.getContentContract(ctx, req)
	default:
		t.Fatalf("unknown tool %q", name)
	}
	if err != nil {
		t.Fatalf("tool %s returned error: %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestCreateContentTool(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "create_content", map[string]any{
		"title":        "MCP Made This",
		"content_type": "blog",
		"tags":         "ai, tooling",
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "created: ") || !strings.Contains(text, "blog/") {
		t.Errorf("result = %q", text)
	}
}

func TestCreateContentTool_MissingRequired(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "create_content", map[string]any{"title": "No Type"})
	if !res.IsError {
		t.Fatal("expected error for missing content_type")
	}
}

func TestCreateContentTool_ValidationError(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "create_content", map[string]any{
		"title":        "Bad Type",
		"content_type": "Not A Slug",
	})
	if !res.IsError {
		t.Fatal("expected validation error")
	}
}

func TestListContentTool(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_content", map[string]any{"title": "One", "content_type": "blog"})
	callTool(t, srv, "create_content", map[string]any{"title": "Two", "content_type": "video"})

	res := callTool(t, srv, "list_content", map[string]any{})
	text := resultText(t, res)
	if !strings.HasPrefix(text, "2 items") {
		t.Errorf("list header = %q", text)
	}
	if !strings.Contains(text, "One") || !strings.Contains(text, "Two") {
		t.Errorf("list body = %q", text)
	}

	res = callTool(t, srv, "list_content", map[string]any{"content_type": "video"})
	text = resultText(t, res)
	if !strings.HasPrefix(text, "1 items") || strings.Contains(text, "One") {
		t.Errorf("filtered list = %q", text)
	}
}

func TestSearchContentTool(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_content", map[string]any{
		"title": "Needle Article", "content_type": "blog", "body": "quite findable prose",
	})

	res := callTool(t, srv, "search_content", map[string]any{"query": "findable"})
	text := resultText(t, res)
	if !strings.Contains(text, "Needle Article") {
		t.Errorf("search result = %q", text)
	}

	res = callTool(t, srv, "search_content", map[string]any{})
	if !res.IsError {
		t.Error("missing query should be an error")
	}
}

func TestReadContentTool(t *testing.T) {
	srv := testServer(t)
	created := resultText(t, callTool(t, srv, "create_content", map[string]any{
		"title": "Readable", "content_type": "blog", "body": "the body",
	}))
	// Result is "created: <id> (<path>)".
	id := strings.TrimPrefix(created, "created: ")
	id = strings.Fields(id)[0]

	res := callTool(t, srv, "read_content", map[string]any{"id": id})
	if res.IsError {
		t.Fatalf("read failed: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, `"title": "Readable"`) || !strings.Contains(text, "the body") {
		t.Errorf("read result = %q", text)
	}

	res = callTool(t, srv, "read_content", map[string]any{"id": "no-such-id"})
	if !res.IsError {
		t.Error("reading unknown id should be an error")
	}
	if text := resultText(t, res); !strings.HasPrefix(text, "not found: ") {
		t.Errorf("unknown id message = %q", text)
	}
}

func TestReadContentTool_InternalErrorNotMaskedAsNotFound(t *testing.T) {
	_, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(contentservice.NewService(store, db, logger))

	// Break the index so the lookup fails with a real error.
	db.Close()

	res := callTool(t, srv, "read_content", map[string]any{"id": "any-id"})
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	if text := resultText(t, res); strings.HasPrefix(text, "not found") {
		t.Errorf("internal error reported as not found: %q", text)
	}
}

func TestGetContentContractTool(t *testing.T) {
	srv := testServer(t)
	res := callTool(t, srv, "get_content_contract", map[string]any{})
	text := resultText(t, res)
	if !strings.Contains(text, "content_type") || !strings.Contains(text, "---") {
		t.Errorf("contract = %q", text)
	}
}

func TestReadItemFormatResource(t *testing.T) {
	srv := testServer(t)
	var req mcp.ReadResourceRequest
	req.Params.URI = "content-tracker://item-format"
	contents, err := srv.readItemFormatResource(context.Background(), req)
	if err != nil {
		t.Fatalf("resource read: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents len = %d", len(contents))
	}
	trc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected contents type %T", contents[0])
	}
	if trc.MIMEType != "text/markdown" || trc.Text == "" {
		t.Errorf("resource = %+v", trc)
	}
}
