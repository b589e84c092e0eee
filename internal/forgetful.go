package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var forgetfulOperations = Registry{
	{
		Name:        "query",
		Description: "Semantic search over atomic memories",
		Params:      map[string]string{"query": "str", "limit": "int"},
		Example:     `memory.query("auth patterns", limit=10)`,
	},
	{
		Name:        "search_facts",
		Description: "Follow links between memories matching a query",
		Params:      map[string]string{"query": "str", "limit": "int"},
		Example:     `memory.search_facts("authentication", limit=20)`,
	},
	{
		Name:        "save",
		Description: "Create an atomic memory",
		Params: map[string]string{
			"content":    "str",
			"title":      "str (optional)",
			"context":    "str (optional)",
			"importance": "int 1-10 (optional)",
			"keywords":   "list[str] (optional)",
			"tags":       "list[str] (optional)",
		},
		Example: `memory.save("JWT chosen for auth", title="Auth", importance=8, tags=["auth"])`,
	},
	{
		Name:        "explore",
		Description: "Memories and their links around a starting point",
		Params:      map[string]string{"starting_point": "str", "depth": "int"},
		Example:     `memory.explore("authentication", depth=2)`,
	},
	{
		Name:        "list_recent",
		Description: "List recently created memories",
		Params:      map[string]string{"limit": "int"},
		Example:     `memory.list_recent(limit=20)`,
	},
}

const (
	forgetfulExecuteTool       = "execute_forgetful_tool"
	forgetfulDefaultContext    = "context-hub"
	forgetfulDefaultImportance = 7
	forgetfulTitleLength       = 60
)

// ForgetfulBackend talks to a Forgetful MCP server through its
// execute_forgetful_tool meta-tool.
type ForgetfulBackend struct {
	caller ToolCaller
	logger *log.Logger
	now    func() time.Time
}

func NewForgetfulBackend(caller ToolCaller, logger *log.Logger) *ForgetfulBackend {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &ForgetfulBackend{caller: caller, logger: logger, now: time.Now}
}

func (b *ForgetfulBackend) Name() string { return "forgetful" }

// flexID accepts both numeric and string identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

type forgetfulMemory struct {
	ID              flexID   `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Context         string   `json:"context"`
	Keywords        []string `json:"keywords"`
	Tags            []string `json:"tags"`
	Importance      *int     `json:"importance"`
	CreatedAt       string   `json:"created_at"`
	LinkedMemoryIDs []flexID `json:"linked_memory_ids"`
}

func (b *ForgetfulBackend) execute(ctx context.Context, tool string, args map[string]any) (json.RawMessage, error) {
	return b.caller.CallTool(ctx, forgetfulExecuteTool, map[string]any{
		"tool_name": tool,
		"arguments": args,
	})
}

func (b *ForgetfulBackend) queryMemories(ctx context.Context, query string, limit int, includeLinks bool) ([]forgetfulMemory, error) {
	payload, err := b.execute(ctx, "query_memory", map[string]any{
		"query":         query,
		"query_context": forgetfulDefaultContext,
		"k":             limit,
		"include_links": includeLinks,
	})
	if err != nil {
		return nil, err
	}
	return decodeForgetfulMemories(payload, "primary_memories", "memories")
}

// Query ignores groupID: Forgetful scopes memories by project, not group.
func (b *ForgetfulBackend) Query(ctx context.Context, query, groupID string, limit int) ([]Memory, error) {
	found, err := b.queryMemories(ctx, query, limit, false)
	if err != nil {
		return nil, err
	}

	memories := make([]Memory, 0, len(found))
	for _, m := range found {
		memories = append(memories, b.toMemory(m))
	}
	return capLimit(memories, limit), nil
}

// SearchFacts yields one edge per link of every memory matching query.
func (b *ForgetfulBackend) SearchFacts(ctx context.Context, query, groupID string, limit int) ([]Relationship, error) {
	found, err := b.queryMemories(ctx, query, limit, true)
	if err != nil {
		return nil, err
	}

	var edges []Relationship
	for _, m := range found {
		for _, linked := range m.LinkedMemoryIDs {
			edges = append(edges, Relationship{
				Source:       string(m.ID),
				Target:       string(linked),
				RelationType: "linked",
				Metadata:     Metadata{"source_title": m.Title},
			})
		}
	}
	if edges == nil {
		edges = []Relationship{}
	}
	return capLimit(edges, limit), nil
}

func (b *ForgetfulBackend) Save(ctx context.Context, content, groupID string, metadata Metadata) (string, error) {
	args := map[string]any{
		"title":      stringOr(metadata["title"], titleFrom(content)),
		"content":    content,
		"context":    stringOr(metadata["context"], forgetfulDefaultContext),
		"keywords":   stringList(metadata["keywords"]),
		"tags":       stringList(metadata["tags"]),
		"importance": importanceOf(metadata["importance"]),
	}

	payload, err := b.execute(ctx, "create_memory", args)
	if err != nil {
		return "", err
	}

	var created struct {
		ID flexID `json:"id"`
	}
	if err := json.Unmarshal(payload, &created); err != nil {
		return "", fmt.Errorf("decode created memory: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create_memory returned no id", ErrToolCall)
	}
	return string(created.ID), nil
}

func (b *ForgetfulBackend) Explore(ctx context.Context, startingPoint, groupID string, depth int) (*KnowledgeGraph, error) {
	b.logger.Debug("explore", "start", startingPoint, "depth", depth)
	return explore(ctx, b, startingPoint, groupID)
}

func (b *ForgetfulBackend) ListRecent(ctx context.Context, groupID string, limit int) ([]Memory, error) {
	payload, err := b.execute(ctx, "get_recent_memories", map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}

	found, err := decodeForgetfulMemories(payload, "memories")
	if err != nil {
		return nil, err
	}

	memories := make([]Memory, 0, len(found))
	for _, m := range found {
		memories = append(memories, b.toMemory(m))
	}
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].CreatedAt.After(memories[j].CreatedAt)
	})
	return capLimit(memories, limit), nil
}

func (b *ForgetfulBackend) toMemory(m forgetfulMemory) Memory {
	created, ok := parseTimestamp(m.CreatedAt)
	if !ok {
		created = b.now()
	}

	meta := Metadata{"title": m.Title}
	if m.Context != "" {
		meta["context"] = m.Context
	}
	if len(m.Keywords) > 0 {
		meta["keywords"] = m.Keywords
	}
	if len(m.Tags) > 0 {
		meta["tags"] = m.Tags
	}

	return Memory{
		ID:         string(m.ID),
		Content:    m.Content,
		CreatedAt:  created,
		Importance: m.Importance,
		Metadata:   meta,
	}
}

// decodeForgetfulMemories reads a bare array or the first present key.
func decodeForgetfulMemories(payload json.RawMessage, keys ...string) ([]forgetfulMemory, error) {
	var list []forgetfulMemory
	if err := json.Unmarshal(payload, &list); err == nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, fmt.Errorf("decode memories: %w", err)
	}
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		return list, nil
	}
	return []forgetfulMemory{}, nil
}

func (b *ForgetfulBackend) Capabilities() []OperationInfo { return forgetfulOperations.Capabilities() }

func (b *ForgetfulBackend) Schema(operation string) (Schema, error) {
	return forgetfulOperations.Schema(operation)
}

func (b *ForgetfulBackend) Examples(operation string) ([]string, error) {
	return forgetfulOperations.Examples(operation)
}

func (b *ForgetfulBackend) Close() error {
	return b.caller.Close()
}

func titleFrom(content string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	if r := []rune(line); len(r) > forgetfulTitleLength {
		line = string(r[:forgetfulTitleLength])
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringList(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if vals == "" {
			return []string{}
		}
		parts := strings.Split(vals, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return []string{}
}

// importanceOf clamps to Forgetful's 1-10 scale, defaulting when absent
// or unparseable.
func importanceOf(v any) int {
	n := forgetfulDefaultImportance
	switch val := v.(type) {
	case int:
		n = val
	case int64:
		n = int(val)
	case float64:
		n = int(val)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			n = parsed
		}
	default:
		return forgetfulDefaultImportance
	}
	return min(max(n, 1), 10)
}
