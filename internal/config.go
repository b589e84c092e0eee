package internal

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBackend          = "graphiti"
	AutoGroupID             = "auto"
	DefaultGraphitiEndpoint = "http://localhost:8000/mcp"
)

type MemoryConfig struct {
	Backend   string            `yaml:"backend"`
	GroupID   string            `yaml:"group_id"`
	Graphiti  map[string]string `yaml:"graphiti"`
	Forgetful map[string]string `yaml:"forgetful"`
}

type Config struct {
	Memory MemoryConfig `yaml:"memory"`
}

func DefaultConfig() *Config {
	return &Config{
		Memory: MemoryConfig{
			Backend:   DefaultBackend,
			GroupID:   AutoGroupID,
			Graphiti:  map[string]string{"endpoint": DefaultGraphitiEndpoint},
			Forgetful: map[string]string{},
		},
	}
}

func (c *Config) Clone() *Config {
	out := *c
	out.Memory.Graphiti = maps.Clone(c.Memory.Graphiti)
	out.Memory.Forgetful = maps.Clone(c.Memory.Forgetful)
	return &out
}

// Settings returns the per-backend settings mapping for name, or nil.
func (c MemoryConfig) Settings(name string) map[string]string {
	switch name {
	case "graphiti":
		return c.Graphiti
	case "forgetful":
		return c.Forgetful
	}
	return nil
}

// fileConfig mirrors Config with nil-able fields so that keys missing from
// the document can be told apart from keys set to a zero value.
type fileConfig struct {
	Memory *struct {
		Backend   *string           `yaml:"backend"`
		GroupID   *string           `yaml:"group_id"`
		Graphiti  map[string]string `yaml:"graphiti"`
		Forgetful map[string]string `yaml:"forgetful"`
	} `yaml:"memory"`
}

// LoadConfigFile parses path. Missing keys fall back to defaults one by one;
// a mapping present in the file replaces the default mapping.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w: %w", path, ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if raw.Memory == nil {
		return cfg, nil
	}

	m := raw.Memory
	if m.Backend != nil {
		cfg.Memory.Backend = *m.Backend
	}
	if m.GroupID != nil {
		cfg.Memory.GroupID = *m.GroupID
	}
	if m.Graphiti != nil {
		cfg.Memory.Graphiti = m.Graphiti
	}
	if m.Forgetful != nil {
		cfg.Memory.Forgetful = m.Forgetful
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// ConfigResolver locates the config file across the scope cascade.
type ConfigResolver struct {
	scopes *ScopeResolver
}

func NewConfigResolver(scopes *ScopeResolver) *ConfigResolver {
	return &ConfigResolver{scopes: scopes}
}

// Find returns the first existing config file in the cascade, or "".
func (r *ConfigResolver) Find() string {
	for _, scope := range r.scopes.Cascade() {
		path := scope.ConfigPath()
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load returns the parsed config and the file it came from. When no file
// exists anywhere the defaults are returned with an empty path.
func (r *ConfigResolver) Load() (*Config, string, error) {
	path := r.Find()
	if path == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadConfig resolves the config from the current process context.
func LoadConfig() (*Config, error) {
	cfg, _, err := NewConfigResolver(NewScopeResolver()).Load()
	return cfg, err
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
