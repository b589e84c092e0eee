package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var graphitiOperations = Registry{
	{
		Name:        "query",
		Description: "Search for memories by semantic similarity",
		Params:      map[string]string{"query": "str", "limit": "int"},
		Example:     `memory.query("auth patterns", limit=10)`,
	},
	{
		Name:        "search_facts",
		Description: "Search for relationships between entities",
		Params:      map[string]string{"query": "str", "limit": "int"},
		Example:     `memory.search_facts("authentication flow", limit=20)`,
	},
	{
		Name:        "save",
		Description: "Save new episode to knowledge graph",
		Params:      map[string]string{"content": "str", "title": "str (optional)"},
		Example:     `memory.save("Decision: Using JWT for auth", title="Auth Decision")`,
	},
	{
		Name:        "explore",
		Description: "Deep traversal from a starting memory",
		Params:      map[string]string{"starting_point": "str", "depth": "int"},
		Example:     `memory.explore("authentication", depth=2)`,
	},
	{
		Name:        "list_recent",
		Description: "List recent memories",
		Params:      map[string]string{"limit": "int"},
		Example:     `memory.list_recent(limit=20)`,
	},
}

const episodeSource = "context-hub"

// GraphitiBackend talks to a Graphiti MCP server.
type GraphitiBackend struct {
	caller ToolCaller
	logger *log.Logger
	now    func() time.Time
}

func NewGraphitiBackend(caller ToolCaller, logger *log.Logger) *GraphitiBackend {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &GraphitiBackend{caller: caller, logger: logger, now: time.Now}
}

func (b *GraphitiBackend) Name() string { return "graphiti" }

type graphitiNode struct {
	UUID      string   `json:"uuid"`
	Name      string   `json:"name"`
	Summary   string   `json:"summary"`
	Labels    []string `json:"labels"`
	CreatedAt string   `json:"created_at"`
}

type graphitiFact struct {
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	Fact           string `json:"fact"`
	SourceNodeUUID string `json:"source_node_uuid"`
	TargetNodeUUID string `json:"target_node_uuid"`
	CreatedAt      string `json:"created_at"`
}

type graphitiEpisode struct {
	UUID              string `json:"uuid"`
	Name              string `json:"name"`
	Content           string `json:"content"`
	Source            string `json:"source"`
	SourceDescription string `json:"source_description"`
	CreatedAt         string `json:"created_at"`
}

func (b *GraphitiBackend) Query(ctx context.Context, query, groupID string, limit int) ([]Memory, error) {
	payload, err := b.caller.CallTool(ctx, "search_memory_nodes", map[string]any{
		"query":     query,
		"group_ids": []string{groupID},
		"max_nodes": limit,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Nodes []graphitiNode `json:"nodes"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}

	memories := make([]Memory, 0, len(result.Nodes))
	for _, node := range result.Nodes {
		meta := Metadata{"summary": node.Summary}
		if len(node.Labels) > 0 {
			meta["labels"] = node.Labels
		}
		memories = append(memories, Memory{
			ID:        node.UUID,
			Content:   node.Name,
			CreatedAt: b.parseTime(node.CreatedAt),
			Metadata:  meta,
		})
	}
	return capLimit(memories, limit), nil
}

func (b *GraphitiBackend) SearchFacts(ctx context.Context, query, groupID string, limit int) ([]Relationship, error) {
	payload, err := b.caller.CallTool(ctx, "search_memory_facts", map[string]any{
		"query":     query,
		"group_ids": []string{groupID},
		"max_facts": limit,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Facts []graphitiFact `json:"facts"`
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode facts: %w", err)
	}

	edges := make([]Relationship, 0, len(result.Facts))
	for _, fact := range result.Facts {
		edges = append(edges, Relationship{
			Source:       fact.SourceNodeUUID,
			Target:       fact.TargetNodeUUID,
			RelationType: fact.Fact,
			Metadata: Metadata{
				"created_at": fact.CreatedAt,
				"uuid":       fact.UUID,
				"name":       fact.Name,
			},
		})
	}
	return capLimit(edges, limit), nil
}

// Save queues an episode. Graphiti ingests asynchronously, so the episode
// uuid is generated here and handed to the server.
func (b *GraphitiBackend) Save(ctx context.Context, content, groupID string, metadata Metadata) (string, error) {
	title, _ := metadata["title"].(string)
	if title == "" {
		title = "Untitled"
	}

	id := uuid.NewString()
	if _, err := b.caller.CallTool(ctx, "add_memory", map[string]any{
		"name":               title,
		"episode_body":       content,
		"group_id":           groupID,
		"source":             "text",
		"source_description": episodeSource,
		"uuid":               id,
	}); err != nil {
		return "", err
	}

	return id, nil
}

func (b *GraphitiBackend) Explore(ctx context.Context, startingPoint, groupID string, depth int) (*KnowledgeGraph, error) {
	b.logger.Debug("explore", "start", startingPoint, "depth", depth)
	return explore(ctx, b, startingPoint, groupID)
}

func (b *GraphitiBackend) ListRecent(ctx context.Context, groupID string, limit int) ([]Memory, error) {
	payload, err := b.caller.CallTool(ctx, "get_episodes", map[string]any{
		"group_id": groupID,
		"last_n":   limit,
	})
	if err != nil {
		return nil, err
	}

	episodes, err := decodeEpisodes(payload)
	if err != nil {
		return nil, err
	}

	memories := make([]Memory, 0, len(episodes))
	for _, ep := range episodes {
		memories = append(memories, Memory{
			ID:        ep.UUID,
			Content:   ep.Content,
			CreatedAt: b.parseTime(ep.CreatedAt),
			Metadata: Metadata{
				"title":              ep.Name,
				"source":             ep.Source,
				"source_description": ep.SourceDescription,
			},
		})
	}

	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].CreatedAt.After(memories[j].CreatedAt)
	})
	return capLimit(memories, limit), nil
}

// decodeEpisodes accepts both a bare array and an {"episodes": [...]} object.
func decodeEpisodes(payload json.RawMessage) ([]graphitiEpisode, error) {
	var list []graphitiEpisode
	if err := json.Unmarshal(payload, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Episodes []graphitiEpisode `json:"episodes"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("decode episodes: %w", err)
	}
	return wrapped.Episodes, nil
}

func (b *GraphitiBackend) parseTime(raw string) time.Time {
	if t, ok := parseTimestamp(raw); ok {
		return t
	}
	return b.now()
}

func (b *GraphitiBackend) Capabilities() []OperationInfo { return graphitiOperations.Capabilities() }

func (b *GraphitiBackend) Schema(operation string) (Schema, error) {
	return graphitiOperations.Schema(operation)
}

func (b *GraphitiBackend) Examples(operation string) ([]string, error) {
	return graphitiOperations.Examples(operation)
}

func (b *GraphitiBackend) Close() error {
	return b.caller.Close()
}
