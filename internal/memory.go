package internal

import (
	"errors"
	"time"
)

// timestampLayouts covers RFC 3339 and zone-less ISO-8601 as emitted by
// Python services.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrToolCall         = errors.New("backend tool call failed")
)

// Metadata is an open, backend-specific bag of extras.
type Metadata map[string]any

// Memory is the backend-neutral representation of a stored record.
type Memory struct {
	ID        string
	Content   string
	CreatedAt time.Time
	// Importance is nil when the backend does not supply one.
	Importance *int
	Metadata   Metadata
}

// Relationship is a directed edge between two memory identifiers. The
// relation type is free-form: a typed label or a whole fact sentence.
type Relationship struct {
	Source       string
	Target       string
	RelationType string
	Metadata     Metadata
}

// KnowledgeGraph is the result of a traversal. Nodes may repeat.
type KnowledgeGraph struct {
	Nodes []Memory
	Edges []Relationship
}

// OperationInfo describes one backend operation for discovery.
type OperationInfo struct {
	Name        string
	Description string
	Params      map[string]string
	Example     string
}

// Schema is the parameter description of a single operation.
type Schema struct {
	Description string            `json:"description"`
	Params      map[string]string `json:"params"`
}

// parseTimestamp parses an ISO-8601 timestamp. Zone-less values are UTC.
func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
