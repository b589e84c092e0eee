package internal

import (
	"context"
	"fmt"
	"maps"
)

// Backend is the contract every memory service variant satisfies.
type Backend interface {
	Name() string

	Query(ctx context.Context, query, groupID string, limit int) ([]Memory, error)
	SearchFacts(ctx context.Context, query, groupID string, limit int) ([]Relationship, error)
	Save(ctx context.Context, content, groupID string, metadata Metadata) (string, error)
	Explore(ctx context.Context, startingPoint, groupID string, depth int) (*KnowledgeGraph, error)
	ListRecent(ctx context.Context, groupID string, limit int) ([]Memory, error)

	Capabilities() []OperationInfo
	Schema(operation string) (Schema, error)
	Examples(operation string) ([]string, error)

	Close() error
}

const (
	exploreNodeLimit = 10
	exploreFactLimit = 20
)

type nodeFactSearcher interface {
	Query(ctx context.Context, query, groupID string, limit int) ([]Memory, error)
	SearchFacts(ctx context.Context, query, groupID string, limit int) ([]Relationship, error)
}

// explore unions a node query and a fact search seeded by the same text.
func explore(ctx context.Context, b nodeFactSearcher, startingPoint, groupID string) (*KnowledgeGraph, error) {
	nodes, err := b.Query(ctx, startingPoint, groupID, exploreNodeLimit)
	if err != nil {
		return nil, fmt.Errorf("explore nodes: %w", err)
	}

	edges, err := b.SearchFacts(ctx, startingPoint, groupID, exploreFactLimit)
	if err != nil {
		return nil, fmt.Errorf("explore facts: %w", err)
	}

	return &KnowledgeGraph{Nodes: nodes, Edges: edges}, nil
}

// Registry is a fixed, ordered table of the operations a backend describes.
type Registry []OperationInfo

func (r Registry) lookup(operation string) (OperationInfo, error) {
	for _, op := range r {
		if op.Name == operation {
			return op, nil
		}
	}
	return OperationInfo{}, fmt.Errorf("%w: %s", ErrUnknownOperation, operation)
}

// Capabilities returns a copy so callers cannot alter the table.
func (r Registry) Capabilities() []OperationInfo {
	out := make([]OperationInfo, 0, len(r))
	for _, op := range r {
		op.Params = maps.Clone(op.Params)
		out = append(out, op)
	}
	return out
}

func (r Registry) Schema(operation string) (Schema, error) {
	op, err := r.lookup(operation)
	if err != nil {
		return Schema{}, err
	}
	return Schema{Description: op.Description, Params: maps.Clone(op.Params)}, nil
}

func (r Registry) Examples(operation string) ([]string, error) {
	op, err := r.lookup(operation)
	if err != nil {
		return nil, err
	}
	return []string{op.Example}, nil
}

func capLimit[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
