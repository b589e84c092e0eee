package internal

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

type backendConstructor func(caller ToolCaller, logger *log.Logger) Backend

var backends = map[string]backendConstructor{
	"graphiti":  func(c ToolCaller, l *log.Logger) Backend { return NewGraphitiBackend(c, l) },
	"forgetful": func(c ToolCaller, l *log.Logger) Backend { return NewForgetfulBackend(c, l) },
}

// BackendNames lists the recognised backend selectors.
func BackendNames() []string {
	return []string{"graphiti", "forgetful"}
}

// AdapterOptions carries the collaborators of a MemoryAdapter. Zero values
// are replaced with the process defaults.
type AdapterOptions struct {
	// Config skips file resolution when set.
	Config *Config
	// ConfigFile records where Config came from.
	ConfigFile string

	Scopes  *ScopeResolver
	Remote  RemoteURLReader
	Callers CallerFactory
	Logger  *log.Logger
}

// MemoryAdapter is the single entry point to the active memory backend.
// Config, group id and backend are fixed at construction.
type MemoryAdapter struct {
	config     *Config
	configFile string
	groupID    string
	backend    Backend
}

func NewMemoryAdapter(ctx context.Context, opts AdapterOptions) (*MemoryAdapter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	scopes := opts.Scopes
	if scopes == nil {
		scopes = NewScopeResolver()
	}
	callers := opts.Callers
	if callers == nil {
		callers = DefaultCallerFactory
	}

	cfg, configFile := opts.Config, opts.ConfigFile
	if cfg == nil {
		var err error
		cfg, configFile, err = NewConfigResolver(scopes).Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	cfg = cfg.Clone()

	name := strings.ToLower(strings.TrimSpace(cfg.Memory.Backend))
	construct, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Memory.Backend)
	}

	caller, err := callers(name, cfg.Memory.Settings(name), logger)
	if err != nil {
		return nil, fmt.Errorf("create %s transport: %w", name, err)
	}

	groupID := NewGroupIDResolver(scopes, opts.Remote, logger).Detect(ctx, cfg)
	logger.Debug("memory adapter ready", "backend", name, "group_id", groupID, "config", configFile)

	return &MemoryAdapter{
		config:     cfg,
		configFile: configFile,
		groupID:    groupID,
		backend:    construct(caller, logger),
	}, nil
}

func (a *MemoryAdapter) Config() *Config { return a.config.Clone() }

func (a *MemoryAdapter) ConfigFile() string { return a.configFile }

func (a *MemoryAdapter) GroupID() string { return a.groupID }

func (a *MemoryAdapter) BackendName() string { return a.backend.Name() }

func (a *MemoryAdapter) Query(ctx context.Context, query string, limit int) ([]Memory, error) {
	return a.backend.Query(ctx, query, a.groupID, limit)
}

func (a *MemoryAdapter) SearchFacts(ctx context.Context, query string, limit int) ([]Relationship, error) {
	return a.backend.SearchFacts(ctx, query, a.groupID, limit)
}

func (a *MemoryAdapter) Save(ctx context.Context, content string, metadata Metadata) (string, error) {
	return a.backend.Save(ctx, content, a.groupID, metadata)
}

func (a *MemoryAdapter) Explore(ctx context.Context, startingPoint string, depth int) (*KnowledgeGraph, error) {
	return a.backend.Explore(ctx, startingPoint, a.groupID, depth)
}

func (a *MemoryAdapter) ListRecent(ctx context.Context, limit int) ([]Memory, error) {
	return a.backend.ListRecent(ctx, a.groupID, limit)
}

func (a *MemoryAdapter) ListOperations() []OperationInfo {
	return a.backend.Capabilities()
}

func (a *MemoryAdapter) OperationSchema(operation string) (Schema, error) {
	return a.backend.Schema(operation)
}

func (a *MemoryAdapter) OperationExamples(operation string) ([]string, error) {
	return a.backend.Examples(operation)
}

func (a *MemoryAdapter) Close() error {
	return a.backend.Close()
}
