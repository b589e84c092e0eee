package v1

import (
	"time"

	"github.com/4thel00z/context-hub/internal"
)

var (
	// ErrInvalidConfig marks a malformed config file or unknown backend.
	ErrInvalidConfig = internal.ErrInvalidConfig
	// ErrUnknownOperation is returned by schema and example lookups for an
	// operation the active backend does not describe.
	ErrUnknownOperation = internal.ErrUnknownOperation
)

// Memory is a stored record as exposed to callers.
type Memory struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	CreatedAt  string         `json:"created_at"`
	Importance *int           `json:"importance"`
	Metadata   map[string]any `json:"metadata"`
}

// Time parses CreatedAt.
func (m Memory) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, m.CreatedAt)
}

// Node is a memory inside an explored graph.
type Node struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	CreatedAt string         `json:"created_at"`
	Metadata  map[string]any `json:"metadata"`
}

// Edge is a relationship between two memory ids.
type Edge struct {
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata"`
}

// Graph is the result of Explore.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Operation describes one capability of the active backend.
type Operation struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Params      map[string]string `json:"params"`
	Example     string            `json:"example"`
}

// Schema describes the parameters of one operation.
type Schema struct {
	Description string            `json:"description"`
	Params      map[string]string `json:"params"`
}

// ConfigInfo reports the resolved session.
type ConfigInfo struct {
	Backend    string `json:"backend"`
	GroupID    string `json:"group_id"`
	ConfigFile string `json:"config_file"`
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func metadataOf(m internal.Metadata) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func toMemory(m internal.Memory) Memory {
	return Memory{
		ID:         m.ID,
		Content:    m.Content,
		CreatedAt:  formatTime(m.CreatedAt),
		Importance: m.Importance,
		Metadata:   metadataOf(m.Metadata),
	}
}

func toMemories(in []internal.Memory) []Memory {
	out := make([]Memory, 0, len(in))
	for _, m := range in {
		out = append(out, toMemory(m))
	}
	return out
}

func toNode(m internal.Memory) Node {
	return Node{
		ID:        m.ID,
		Content:   m.Content,
		CreatedAt: formatTime(m.CreatedAt),
		Metadata:  metadataOf(m.Metadata),
	}
}

func toEdge(r internal.Relationship) Edge {
	return Edge{
		Source:   r.Source,
		Target:   r.Target,
		Type:     r.RelationType,
		Metadata: metadataOf(r.Metadata),
	}
}

func toEdges(in []internal.Relationship) []Edge {
	out := make([]Edge, 0, len(in))
	for _, r := range in {
		out = append(out, toEdge(r))
	}
	return out
}

func toGraph(g *internal.KnowledgeGraph) Graph {
	graph := Graph{Nodes: make([]Node, 0, len(g.Nodes)), Edges: toEdges(g.Edges)}
	for _, n := range g.Nodes {
		graph.Nodes = append(graph.Nodes, toNode(n))
	}
	return graph
}
