package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	DefaultCallTimeout      = 30 * time.Second
	DefaultForgetfulCommand = "uvx forgetful-ai"
)

// Version is reported to memory services as the MCP client version.
var Version = "dev"

// ToolCaller invokes a named tool on a memory service and returns the raw
// JSON payload of its result.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error)
	Close() error
}

// CallerFactory builds the transport for a backend from its settings.
type CallerFactory func(backend string, settings map[string]string, logger *log.Logger) (ToolCaller, error)

// MCPCaller is a ToolCaller over an MCP client session. The session is
// opened on the first call and reopened after a transport failure.
type MCPCaller struct {
	newTransport func() mcp.Transport
	timeout      time.Duration
	logger       *log.Logger

	mu      sync.Mutex
	client  *mcp.Client
	session *mcp.ClientSession
}

func newMCPCaller(newTransport func() mcp.Transport, timeout time.Duration, logger *log.Logger) *MCPCaller {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &MCPCaller{
		newTransport: newTransport,
		timeout:      timeout,
		logger:       logger,
		client:       mcp.NewClient(&mcp.Implementation{Name: "context-hub", Version: Version}, nil),
	}
}

// NewHTTPCaller talks to a streamable HTTP MCP endpoint.
func NewHTTPCaller(endpoint string, timeout time.Duration, logger *log.Logger) *MCPCaller {
	return newMCPCaller(func() mcp.Transport {
		return &mcp.StreamableClientTransport{Endpoint: endpoint}
	}, timeout, logger)
}

// NewCommandCaller spawns command and talks MCP over its stdio.
func NewCommandCaller(command string, timeout time.Duration, logger *log.Logger) *MCPCaller {
	fields := strings.Fields(command)
	return newMCPCaller(func() mcp.Transport {
		return &mcp.CommandTransport{Command: exec.Command(fields[0], fields[1:]...)}
	}, timeout, logger)
}

func (c *MCPCaller) connect(ctx context.Context) (*mcp.ClientSession, error) {
	if c.session != nil {
		return c.session, nil
	}

	session, err := c.client.Connect(ctx, c.newTransport(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	c.session = session
	return session, nil
}

func (c *MCPCaller) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, err := c.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrToolCall, name, err)
	}

	c.logger.Debug("calling tool", "tool", name)
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		_ = session.Close()
		c.session = nil
		return nil, fmt.Errorf("%w: %s: %w", ErrToolCall, name, err)
	}

	if res.IsError {
		return nil, fmt.Errorf("%w: %s: %s", ErrToolCall, name, resultText(res))
	}

	return resultPayload(res)
}

func (c *MCPCaller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// resultPayload prefers structured content, then the first text block that
// holds JSON. Plain text is wrapped as {"message": text}.
func resultPayload(res *mcp.CallToolResult) (json.RawMessage, error) {
	if res.StructuredContent != nil {
		data, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return nil, fmt.Errorf("encode structured content: %w", err)
		}
		return data, nil
	}

	text := strings.TrimSpace(resultText(res))
	if text == "" {
		return json.RawMessage("{}"), nil
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}

	data, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}

// DefaultCallerFactory maps backend settings onto an MCP transport:
// "endpoint" selects streamable HTTP, "command" a stdio server, and
// "timeout" bounds each call.
func DefaultCallerFactory(backend string, settings map[string]string, logger *log.Logger) (ToolCaller, error) {
	timeout := DefaultCallTimeout
	if raw := settings["timeout"]; raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.timeout: %w", ErrInvalidConfig, backend, err)
		}
		timeout = d
	}

	if endpoint := settings["endpoint"]; endpoint != "" {
		return NewHTTPCaller(endpoint, timeout, logger), nil
	}

	switch backend {
	case "graphiti":
		return NewHTTPCaller(DefaultGraphitiEndpoint, timeout, logger), nil
	case "forgetful":
		command := settings["command"]
		if strings.TrimSpace(command) == "" {
			command = DefaultForgetfulCommand
		}
		return NewCommandCaller(command, timeout, logger), nil
	}

	return nil, fmt.Errorf("%w: no transport for backend %q", ErrInvalidConfig, backend)
}
