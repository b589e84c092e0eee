package internal

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toolCall struct {
	Name string
	Args map[string]any
}

// fakeCaller answers tool calls from canned payloads keyed by tool name.
// Forgetful calls are keyed by the inner tool_name.
type fakeCaller struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []toolCall
	closed    bool
}

func newFakeCaller(responses map[string]string) *fakeCaller {
	return &fakeCaller{responses: responses}
}

func (f *fakeCaller) CallTool(_ context.Context, name string, args map[string]any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, toolCall{Name: name, Args: args})
	if f.err != nil {
		return nil, f.err
	}

	key := name
	if inner, ok := args["tool_name"].(string); ok {
		key = inner
	}
	payload, ok := f.responses[key]
	if !ok {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(payload), nil
}

func (f *fakeCaller) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeCaller) recorded() []toolCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]toolCall(nil), f.calls...)
}

func registries() map[string]Registry {
	return map[string]Registry{
		"graphiti":  graphitiOperations,
		"forgetful": forgetfulOperations,
	}
}

func TestRegistryListsCoreOperations(t *testing.T) {
	want := []string{"query", "search_facts", "save", "explore", "list_recent"}

	for name, reg := range registries() {
		t.Run(name, func(t *testing.T) {
			var got []string
			for _, op := range reg.Capabilities() {
				got = append(got, op.Name)
				assert.NotEmpty(t, op.Description)
				assert.NotEmpty(t, op.Params)
				assert.NotEmpty(t, op.Example)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestRegistryDiscoveryForListedOperations(t *testing.T) {
	for name, reg := range registries() {
		t.Run(name, func(t *testing.T) {
			for _, op := range reg.Capabilities() {
				schema, err := reg.Schema(op.Name)
				require.NoError(t, err, op.Name)
				assert.Equal(t, op.Description, schema.Description)
				assert.Equal(t, op.Params, schema.Params)

				examples, err := reg.Examples(op.Name)
				require.NoError(t, err, op.Name)
				assert.Equal(t, []string{op.Example}, examples)
			}
		})
	}
}

func TestRegistryUnknownOperation(t *testing.T) {
	for name, reg := range registries() {
		t.Run(name, func(t *testing.T) {
			for _, op := range []string{"nosuch", "", "QUERY", "search"} {
				_, err := reg.Schema(op)
				assert.ErrorIs(t, err, ErrUnknownOperation, op)

				_, err = reg.Examples(op)
				assert.ErrorIs(t, err, ErrUnknownOperation, op)
			}
		})
	}
}

func TestRegistryCapabilitiesAreCopies(t *testing.T) {
	ops := graphitiOperations.Capabilities()
	ops[0].Params["injected"] = "x"
	ops[0].Name = "changed"

	fresh := graphitiOperations.Capabilities()
	assert.Equal(t, "query", fresh[0].Name)
	assert.NotContains(t, fresh[0].Params, "injected")

	schema, err := graphitiOperations.Schema("query")
	require.NoError(t, err)
	schema.Params["also"] = "y"
	assert.NotContains(t, graphitiOperations[0].Params, "also")
}

func TestForgetfulSaveDescribesExtraParams(t *testing.T) {
	schema, err := forgetfulOperations.Schema("save")
	require.NoError(t, err)

	for _, key := range []string{"content", "title", "context", "importance", "keywords", "tags"} {
		assert.Contains(t, schema.Params, key)
	}
}

func TestCapLimit(t *testing.T) {
	items := []int{1, 2, 3, 4}

	assert.Equal(t, []int{1, 2}, capLimit(items, 2))
	assert.Equal(t, items, capLimit(items, 10))
	assert.Equal(t, items, capLimit(items, 0))
	assert.Empty(t, capLimit([]int{}, 3))
}
