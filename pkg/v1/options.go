package v1

import (
	"github.com/charmbracelet/log"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	configFile string
	backend    string
	groupID    string
	settings   map[string]string
	logger     *log.Logger
}

// WithConfigFile loads path instead of searching the directory hierarchy.
func WithConfigFile(path string) Option {
	return func(c *clientConfig) {
		c.configFile = path
	}
}

// WithBackend overrides the configured backend selector.
func WithBackend(name string) Option {
	return func(c *clientConfig) {
		c.backend = name
	}
}

// WithGroupID forces a group id, bypassing detection.
func WithGroupID(id string) Option {
	return func(c *clientConfig) {
		c.groupID = id
	}
}

// WithBackendSetting sets one setting (endpoint, command, timeout) of the
// active backend.
func WithBackendSetting(key, value string) Option {
	return func(c *clientConfig) {
		if c.settings == nil {
			c.settings = make(map[string]string)
		}
		c.settings[key] = value
	}
}

// WithLogger sets the logger used by the client and its backend.
func WithLogger(l *log.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
