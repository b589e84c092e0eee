package mcptest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Node struct {
	UUID      string   `json:"uuid"`
	Name      string   `json:"name"`
	Summary   string   `json:"summary"`
	Labels    []string `json:"labels,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

type Fact struct {
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	Fact           string `json:"fact"`
	SourceNodeUUID string `json:"source_node_uuid"`
	TargetNodeUUID string `json:"target_node_uuid"`
	CreatedAt      string `json:"created_at,omitempty"`
}

type Episode struct {
	UUID              string `json:"uuid"`
	Name              string `json:"name"`
	Content           string `json:"content"`
	GroupID           string `json:"group_id"`
	Source            string `json:"source"`
	SourceDescription string `json:"source_description"`
	CreatedAt         string `json:"created_at"`
}

type searchNodesInput struct {
	Query    string   `json:"query"`
	GroupIDs []string `json:"group_ids,omitempty"`
	MaxNodes int      `json:"max_nodes,omitempty"`
}

type searchNodesOutput struct {
	Message string `json:"message"`
	Nodes   []Node `json:"nodes"`
}

type searchFactsInput struct {
	Query    string   `json:"query"`
	GroupIDs []string `json:"group_ids,omitempty"`
	MaxFacts int      `json:"max_facts,omitempty"`
}

type searchFactsOutput struct {
	Message string `json:"message"`
	Facts   []Fact `json:"facts"`
}

type addMemoryInput struct {
	Name              string `json:"name"`
	EpisodeBody       string `json:"episode_body"`
	GroupID           string `json:"group_id,omitempty"`
	Source            string `json:"source,omitempty"`
	SourceDescription string `json:"source_description,omitempty"`
	UUID              string `json:"uuid,omitempty"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type getEpisodesInput struct {
	GroupID string `json:"group_id,omitempty"`
	LastN   int    `json:"last_n,omitempty"`
}

type getEpisodesOutput struct {
	Episodes []Episode `json:"episodes"`
}

// Graphiti is a fake Graphiti MCP server. Node and fact searches match on
// a case-insensitive substring of the name or fact; an empty query matches
// everything.
type Graphiti struct {
	recorder

	URL string

	nodes    []Node
	facts    []Fact
	episodes []Episode
	fail     string
}

func NewGraphiti(t testing.TB) *Graphiti {
	t.Helper()
	g := &Graphiti{}

	server := newServer("graphiti")
	mcp.AddTool(server, &mcp.Tool{Name: "search_memory_nodes", Description: "search nodes"}, g.searchNodes)
	mcp.AddTool(server, &mcp.Tool{Name: "search_memory_facts", Description: "search facts"}, g.searchFacts)
	mcp.AddTool(server, &mcp.Tool{Name: "add_memory", Description: "add episode"}, g.addMemory)
	mcp.AddTool(server, &mcp.Tool{Name: "get_episodes", Description: "recent episodes"}, g.getEpisodes)

	g.URL = serve(t, server).URL
	return g
}

func (g *Graphiti) AddNodes(nodes ...Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, nodes...)
}

func (g *Graphiti) AddFacts(facts ...Fact) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.facts = append(g.facts, facts...)
}

func (g *Graphiti) AddEpisodes(episodes ...Episode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.episodes = append(g.episodes, episodes...)
}

func (g *Graphiti) Episodes() []Episode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Episode(nil), g.episodes...)
}

// FailWith makes every tool report an error result with msg.
func (g *Graphiti) FailWith(msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = msg
}

func (g *Graphiti) failure() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fail
}

func matches(text, query string) bool {
	return query == "" || strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

func (g *Graphiti) searchNodes(_ context.Context, _ *mcp.CallToolRequest, in searchNodesInput) (*mcp.CallToolResult, searchNodesOutput, error) {
	g.record("search_memory_nodes", in)
	if msg := g.failure(); msg != "" {
		return errorResult(msg), searchNodesOutput{Nodes: []Node{}}, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out := searchNodesOutput{Message: "ok", Nodes: []Node{}}
	for _, n := range g.nodes {
		if matches(n.Name, in.Query) {
			out.Nodes = append(out.Nodes, n)
		}
	}
	return nil, out, nil
}

func (g *Graphiti) searchFacts(_ context.Context, _ *mcp.CallToolRequest, in searchFactsInput) (*mcp.CallToolResult, searchFactsOutput, error) {
	g.record("search_memory_facts", in)
	if msg := g.failure(); msg != "" {
		return errorResult(msg), searchFactsOutput{Facts: []Fact{}}, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out := searchFactsOutput{Message: "ok", Facts: []Fact{}}
	for _, f := range g.facts {
		if matches(f.Fact, in.Query) {
			out.Facts = append(out.Facts, f)
		}
	}
	return nil, out, nil
}

func (g *Graphiti) addMemory(_ context.Context, _ *mcp.CallToolRequest, in addMemoryInput) (*mcp.CallToolResult, messageOutput, error) {
	g.record("add_memory", in)
	if msg := g.failure(); msg != "" {
		return errorResult(msg), messageOutput{}, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.episodes = append(g.episodes, Episode{
		UUID:              in.UUID,
		Name:              in.Name,
		Content:           in.EpisodeBody,
		GroupID:           in.GroupID,
		Source:            in.Source,
		SourceDescription: in.SourceDescription,
		CreatedAt:         time.Now().UTC().Format(time.RFC3339Nano),
	})
	return nil, messageOutput{Message: "Episode '" + in.Name + "' queued for processing"}, nil
}

func (g *Graphiti) getEpisodes(_ context.Context, _ *mcp.CallToolRequest, in getEpisodesInput) (*mcp.CallToolResult, getEpisodesOutput, error) {
	g.record("get_episodes", in)
	if msg := g.failure(); msg != "" {
		return errorResult(msg), getEpisodesOutput{Episodes: []Episode{}}, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out := getEpisodesOutput{Episodes: []Episode{}}
	for _, ep := range g.episodes {
		if in.GroupID == "" || ep.GroupID == in.GroupID {
			out.Episodes = append(out.Episodes, ep)
		}
	}
	return nil, out, nil
}
