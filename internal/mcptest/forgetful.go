package mcptest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Memory struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Context         string   `json:"context,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Importance      int      `json:"importance"`
	CreatedAt       string   `json:"created_at"`
	LinkedMemoryIDs []int    `json:"linked_memory_ids,omitempty"`
}

type executeInput struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Forgetful is a fake Forgetful MCP server exposing execute_forgetful_tool.
type Forgetful struct {
	recorder

	URL string

	memories []Memory
	nextID   int
}

func NewForgetful(t testing.TB) *Forgetful {
	t.Helper()
	f := &Forgetful{nextID: 1}

	server := newServer("forgetful")
	mcp.AddTool(server, &mcp.Tool{Name: "execute_forgetful_tool", Description: "run a forgetful tool"}, f.execute)

	f.URL = serve(t, server).URL
	return f
}

// AddMemories stores memories, assigning ids to those without one.
func (f *Forgetful) AddMemories(memories ...Memory) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range memories {
		if m.ID == 0 {
			m.ID = f.nextID
		}
		f.nextID = max(f.nextID, m.ID) + 1
		f.memories = append(f.memories, m)
	}
}

func (f *Forgetful) Memories() []Memory {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Memory(nil), f.memories...)
}

func (f *Forgetful) execute(_ context.Context, _ *mcp.CallToolRequest, in executeInput) (*mcp.CallToolResult, map[string]any, error) {
	f.record(in.ToolName, in.Arguments)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch in.ToolName {
	case "query_memory":
		query, _ := in.Arguments["query"].(string)
		found := []Memory{}
		for _, m := range f.memories {
			if matches(m.Title+" "+m.Content, query) {
				found = append(found, m)
			}
		}
		return nil, map[string]any{"primary_memories": found}, nil

	case "create_memory":
		m := Memory{
			ID:        f.nextID,
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		}
		m.Title, _ = in.Arguments["title"].(string)
		m.Content, _ = in.Arguments["content"].(string)
		m.Context, _ = in.Arguments["context"].(string)
		if imp, ok := in.Arguments["importance"].(float64); ok {
			m.Importance = int(imp)
		}
		m.Keywords = stringSlice(in.Arguments["keywords"])
		m.Tags = stringSlice(in.Arguments["tags"])
		f.nextID++
		f.memories = append(f.memories, m)
		return nil, map[string]any{"id": m.ID, "title": m.Title}, nil

	case "get_recent_memories":
		return nil, map[string]any{"memories": append([]Memory{}, f.memories...)}, nil
	}

	return errorResult(fmt.Sprintf("unknown tool %q", in.ToolName)), map[string]any{}, nil
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.TrimSpace(fmt.Sprint(item)))
	}
	return out
}
