// Package mcptest runs in-process MCP memory services for tests.
package mcptest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Call is one tool invocation seen by a fake service.
type Call struct {
	Tool string
	Args map[string]any
}

type recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *recorder) record(tool string, input any) {
	var args map[string]any
	if data, err := json.Marshal(input); err == nil {
		_ = json.Unmarshal(data, &args)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Tool: tool, Args: args})
}

// Calls returns the invocations received so far.
func (r *recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// serve exposes server over streamable HTTP until the test ends.
func serve(t testing.TB, server *mcp.Server) *httptest.Server {
	t.Helper()
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return server
		},
		&mcp.StreamableHTTPOptions{Stateless: true},
	)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newServer(name string) *mcp.Server {
	return mcp.NewServer(&mcp.Implementation{Name: name, Version: "test"}, &mcp.ServerOptions{})
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
