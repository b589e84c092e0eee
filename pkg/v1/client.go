package v1

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/4thel00z/context-hub/internal"
)

const (
	DefaultQueryLimit   = 10
	DefaultFactsLimit   = 10
	DefaultRecentLimit  = 20
	DefaultExploreDepth = 2

	// DefaultsSource is reported as the config file when none was found.
	DefaultsSource = "defaults"
)

// Client provides programmatic access to the configured memory backend.
// Create one per caller session.
type Client struct {
	adapter *internal.MemoryAdapter
}

// New resolves configuration and group id and selects the backend. It fails
// with ErrInvalidConfig for malformed config or an unknown backend.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	scopes := internal.NewScopeResolver()

	var (
		conf *internal.Config
		path string
		err  error
	)
	if cfg.configFile != "" {
		path = cfg.configFile
		conf, err = internal.LoadConfigFile(path)
	} else {
		conf, path, err = internal.NewConfigResolver(scopes).Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.backend != "" {
		conf.Memory.Backend = cfg.backend
	}
	if cfg.groupID != "" {
		conf.Memory.GroupID = cfg.groupID
	}
	if len(cfg.settings) > 0 {
		applySettings(conf, cfg.settings)
	}

	adapter, err := internal.NewMemoryAdapter(ctx, internal.AdapterOptions{
		Config:     conf,
		ConfigFile: path,
		Scopes:     scopes,
		Logger:     cfg.logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{adapter: adapter}, nil
}

func applySettings(conf *internal.Config, settings map[string]string) {
	name := strings.ToLower(strings.TrimSpace(conf.Memory.Backend))
	var target *map[string]string
	switch name {
	case "graphiti":
		target = &conf.Memory.Graphiti
	case "forgetful":
		target = &conf.Memory.Forgetful
	default:
		return
	}

	merged := maps.Clone(*target)
	if merged == nil {
		merged = make(map[string]string, len(settings))
	}
	maps.Copy(merged, settings)
	*target = merged
}

// Query searches memories by semantic similarity.
func (c *Client) Query(ctx context.Context, query string, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	memories, err := c.adapter.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return toMemories(memories), nil
}

// Save stores content and returns the new memory id. Metadata keys the
// backend does not recognise are ignored.
func (c *Client) Save(ctx context.Context, content string, metadata map[string]any) (string, error) {
	id, err := c.adapter.Save(ctx, content, internal.Metadata(metadata))
	if err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	return id, nil
}

// ListRecent returns the newest memories first.
func (c *Client) ListRecent(ctx context.Context, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	memories, err := c.adapter.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	return toMemories(memories), nil
}

// Explore returns the memories and relationships around startingPoint.
func (c *Client) Explore(ctx context.Context, startingPoint string, depth int) (Graph, error) {
	if depth <= 0 {
		depth = DefaultExploreDepth
	}
	graph, err := c.adapter.Explore(ctx, startingPoint, depth)
	if err != nil {
		return Graph{}, fmt.Errorf("explore: %w", err)
	}
	return toGraph(graph), nil
}

// SearchFacts searches relationships between entities.
func (c *Client) SearchFacts(ctx context.Context, query string, limit int) ([]Edge, error) {
	if limit <= 0 {
		limit = DefaultFactsLimit
	}
	edges, err := c.adapter.SearchFacts(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search facts: %w", err)
	}
	return toEdges(edges), nil
}

// ListOperations describes what the active backend can do.
func (c *Client) ListOperations() []Operation {
	ops := c.adapter.ListOperations()
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		out = append(out, Operation{
			Name:        op.Name,
			Description: op.Description,
			Params:      op.Params,
			Example:     op.Example,
		})
	}
	return out
}

// OperationSchema returns the parameters of operation, or ErrUnknownOperation.
func (c *Client) OperationSchema(operation string) (Schema, error) {
	s, err := c.adapter.OperationSchema(operation)
	if err != nil {
		return Schema{}, err
	}
	return Schema{Description: s.Description, Params: s.Params}, nil
}

// OperationExamples returns usage examples of operation, or ErrUnknownOperation.
func (c *Client) OperationExamples(operation string) ([]string, error) {
	return c.adapter.OperationExamples(operation)
}

// GetConfig reports the backend, group id and config file in use.
func (c *Client) GetConfig() ConfigInfo {
	file := c.adapter.ConfigFile()
	if file == "" {
		file = DefaultsSource
	}
	return ConfigInfo{
		Backend:    c.adapter.Config().Memory.Backend,
		GroupID:    c.adapter.GroupID(),
		ConfigFile: file,
	}
}

// Close releases the backend connection.
func (c *Client) Close() error {
	return c.adapter.Close()
}
