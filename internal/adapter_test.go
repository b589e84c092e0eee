package internal

import (
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4thel00z/context-hub/internal/mcptest"
)

// fakeCallers hands out one shared fakeCaller and records the settings it
// was built from.
type fakeCallers struct {
	caller   *fakeCaller
	backend  string
	settings map[string]string
	calls    int
}

func (f *fakeCallers) factory(backend string, settings map[string]string, _ *log.Logger) (ToolCaller, error) {
	f.calls++
	f.backend = backend
	f.settings = settings
	if f.caller == nil {
		f.caller = newFakeCaller(nil)
	}
	return f.caller, nil
}

func adapterOptions(cfg *Config, callers *fakeCallers) AdapterOptions {
	return AdapterOptions{
		Config:  cfg,
		Scopes:  testResolver(""),
		Remote:  &fakeRemote{url: "https://github.com/acme/widgets.git"},
		Callers: callers.factory,
		Logger:  quietLogger(),
	}
}

func TestAdapterSelectsForgetful(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.Backend = "forgetful"
	callers := &fakeCallers{}

	adapter, err := NewMemoryAdapter(context.Background(), adapterOptions(cfg, callers))
	require.NoError(t, err)

	assert.Equal(t, "forgetful", adapter.BackendName())
	assert.Equal(t, "forgetful", callers.backend)

	_, err = adapter.OperationSchema("nosuch")
	assert.ErrorIs(t, err, ErrUnknownOperation)

	schema, err := adapter.OperationSchema("save")
	require.NoError(t, err)
	assert.Contains(t, schema.Params, "importance")
}

func TestAdapterUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.Backend = "nosuchthing"
	callers := &fakeCallers{}
	remote := &fakeRemote{}

	opts := adapterOptions(cfg, callers)
	opts.Remote = remote
	adapter, err := NewMemoryAdapter(context.Background(), opts)

	assert.Nil(t, adapter)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "nosuchthing")
	assert.Zero(t, callers.calls)
	assert.Zero(t, remote.calls)
}

func TestAdapterBackendNameCaseInsensitive(t *testing.T) {
	for _, name := range []string{"Graphiti", "GRAPHITI", " graphiti "} {
		cfg := DefaultConfig()
		cfg.Memory.Backend = name

		adapter, err := NewMemoryAdapter(context.Background(), adapterOptions(cfg, &fakeCallers{}))
		require.NoError(t, err, name)
		assert.Equal(t, "graphiti", adapter.BackendName())
	}
}

func TestAdapterPassesBackendSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Memory.Graphiti = map[string]string{"endpoint": "http://custom/mcp"}
	callers := &fakeCallers{}

	_, err := NewMemoryAdapter(context.Background(), adapterOptions(cfg, callers))
	require.NoError(t, err)
	assert.Equal(t, "http://custom/mcp", callers.settings["endpoint"])
}

func TestAdapterGroupID(t *testing.T) {
	cfg := DefaultConfig()
	adapter, err := NewMemoryAdapter(context.Background(), adapterOptions(cfg, &fakeCallers{}))
	require.NoError(t, err)
	assert.Equal(t, "widgets", adapter.GroupID())

	cfg.Memory.GroupID = "pinned"
	adapter, err = NewMemoryAdapter(context.Background(), adapterOptions(cfg, &fakeCallers{}))
	require.NoError(t, err)
	assert.Equal(t, "pinned", adapter.GroupID())
}

func TestAdapterForwardsGroupID(t *testing.T) {
	callers := &fakeCallers{}
	adapter, err := NewMemoryAdapter(context.Background(), adapterOptions(DefaultConfig(), callers))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = adapter.Query(ctx, "q", 3)
	require.NoError(t, err)
	_, err = adapter.SearchFacts(ctx, "q", 3)
	require.NoError(t, err)
	_, err = adapter.Save(ctx, "content", nil)
	require.NoError(t, err)
	_, err = adapter.ListRecent(ctx, 3)
	require.NoError(t, err)

	calls := callers.caller.recorded()
	require.Len(t, calls, 4)
	assert.Equal(t, []string{"widgets"}, calls[0].Args["group_ids"])
	assert.Equal(t, []string{"widgets"}, calls[1].Args["group_ids"])
	assert.Equal(t, "widgets", calls[2].Args["group_id"])
	assert.Equal(t, "widgets", calls[3].Args["group_id"])
}

func TestAdapterConfigIsImmutable(t *testing.T) {
	cfg := DefaultConfig()
	adapter, err := NewMemoryAdapter(context.Background(), adapterOptions(cfg, &fakeCallers{}))
	require.NoError(t, err)

	cfg.Memory.Backend = "forgetful"
	cfg.Memory.Graphiti["endpoint"] = "mutated"
	got := adapter.Config()
	got.Memory.GroupID = "mutated"

	assert.Equal(t, "graphiti", adapter.Config().Memory.Backend)
	assert.Equal(t, DefaultGraphitiEndpoint, adapter.Config().Memory.Graphiti["endpoint"])
	assert.Equal(t, AutoGroupID, adapter.Config().Memory.GroupID)
}

func TestAdapterLoadsConfigFromCascade(t *testing.T) {
	cwd := chdir(t, t.TempDir())
	path := writeConfig(t, cwd, "memory:\n  backend: forgetful\n  group_id: from-file\n")

	adapter, err := NewMemoryAdapter(context.Background(), AdapterOptions{
		Scopes:  testResolver(""),
		Callers: (&fakeCallers{}).factory,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, "forgetful", adapter.BackendName())
	assert.Equal(t, "from-file", adapter.GroupID())
	assert.Equal(t, path, adapter.ConfigFile())
}

func TestAdapterMalformedConfig(t *testing.T) {
	cwd := chdir(t, t.TempDir())
	writeConfig(t, cwd, "memory: [broken\n")

	adapter, err := NewMemoryAdapter(context.Background(), AdapterOptions{
		Scopes:  testResolver(""),
		Callers: (&fakeCallers{}).factory,
		Logger:  quietLogger(),
	})
	assert.Nil(t, adapter)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAdapterListOperations(t *testing.T) {
	adapter, err := NewMemoryAdapter(context.Background(), adapterOptions(DefaultConfig(), &fakeCallers{}))
	require.NoError(t, err)

	for _, op := range adapter.ListOperations() {
		_, err := adapter.OperationSchema(op.Name)
		assert.NoError(t, err, op.Name)
		examples, err := adapter.OperationExamples(op.Name)
		assert.NoError(t, err, op.Name)
		assert.NotEmpty(t, examples)
	}

	_, err = adapter.OperationExamples("nosuch")
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestAdapterEndToEndGraphiti(t *testing.T) {
	server := mcptest.NewGraphiti(t)
	cfg := DefaultConfig()
	cfg.Memory.GroupID = "e2e"
	cfg.Memory.Graphiti = map[string]string{"endpoint": server.URL, "timeout": "5s"}

	adapter, err := NewMemoryAdapter(context.Background(), AdapterOptions{
		Config: cfg,
		Scopes: testResolver(""),
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	ctx := context.Background()

	id, err := adapter.Save(ctx, "Adapters route to one backend", Metadata{"title": "Routing"})
	require.NoError(t, err)

	recent, err := adapter.ListRecent(ctx, 20)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, id, recent[0].ID)
	assert.Equal(t, "Routing", recent[0].Metadata["title"])
}

func TestBackendNames(t *testing.T) {
	for _, name := range BackendNames() {
		assert.Contains(t, backends, name)
	}
	assert.Len(t, backends, len(BackendNames()))
}
