package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "graphiti", cfg.Memory.Backend)
	assert.Equal(t, "auto", cfg.Memory.GroupID)
	assert.Equal(t, map[string]string{"endpoint": "http://localhost:8000/mcp"}, cfg.Memory.Graphiti)
	assert.NotNil(t, cfg.Memory.Forgetful)
	assert.Empty(t, cfg.Memory.Forgetful)
}

func TestLoadConfigFilePartial(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "memory:\n  backend: forgetful\n")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "forgetful", cfg.Memory.Backend)
	assert.Equal(t, AutoGroupID, cfg.Memory.GroupID)
	assert.Equal(t, DefaultGraphitiEndpoint, cfg.Memory.Graphiti["endpoint"])
}

func TestLoadConfigFileFull(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `memory:
  backend: graphiti
  group_id: team-notes
  graphiti:
    endpoint: http://graphiti.internal:9000/mcp
    timeout: 10s
  forgetful:
    command: forgetful --stdio
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "team-notes", cfg.Memory.GroupID)
	assert.Equal(t, "http://graphiti.internal:9000/mcp", cfg.Memory.Graphiti["endpoint"])
	assert.Equal(t, "10s", cfg.Memory.Graphiti["timeout"])
	assert.Equal(t, "forgetful --stdio", cfg.Memory.Forgetful["command"])
}

func TestLoadConfigFileMappingReplacesDefault(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "memory:\n  graphiti:\n    timeout: 5s\n")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"timeout": "5s"}, cfg.Memory.Graphiti)
}

func TestLoadConfigFileEmptyDocuments(t *testing.T) {
	for name, content := range map[string]string{
		"empty":       "",
		"null memory": "memory:\n",
		"other keys":  "unrelated: true\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), content)

			cfg, err := LoadConfigFile(path)
			require.NoError(t, err)
			assert.Equal(t, DefaultConfig(), cfg)
		})
	}
}

func TestLoadConfigFileMalformed(t *testing.T) {
	for name, content := range map[string]string{
		"syntax":       "memory: [unclosed\n",
		"wrong shape":  "memory: 5\n",
		"mapping type": "memory:\n  graphiti: [a, b]\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), content)

			cfg, err := LoadConfigFile(path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.False(t, IsConfigError(err))
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFilename)

	cfg := DefaultConfig()
	cfg.Memory.Backend = "forgetful"
	cfg.Memory.GroupID = "notes"
	cfg.Memory.Forgetful = map[string]string{"timeout": "1m"}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Memory.Graphiti["endpoint"] = "http://elsewhere/mcp"
	clone.Memory.Backend = "forgetful"

	assert.Equal(t, DefaultGraphitiEndpoint, cfg.Memory.Graphiti["endpoint"])
	assert.Equal(t, DefaultBackend, cfg.Memory.Backend)
}

func TestMemoryConfigSettings(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg.Memory.Graphiti, cfg.Memory.Settings("graphiti"))
	assert.Equal(t, cfg.Memory.Forgetful, cfg.Memory.Settings("forgetful"))
	assert.Nil(t, cfg.Memory.Settings("other"))
}

func TestConfigResolverNoFile(t *testing.T) {
	chdir(t, t.TempDir())
	resolver := NewConfigResolver(testResolver(t.TempDir()))

	assert.Empty(t, resolver.Find())

	cfg, path, err := resolver.Load()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigResolverPriority(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()
	mkdirAll(t, root, ".git")
	cwd := chdir(t, mkdirAll(t, root, "sub"))
	project := filepath.Dir(cwd)

	homeFile := writeConfig(t, home, "memory:\n  group_id: from-home\n")
	resolver := NewConfigResolver(testResolver(home))

	cfg, path, err := resolver.Load()
	require.NoError(t, err)
	assert.Equal(t, homeFile, path)
	assert.Equal(t, "from-home", cfg.Memory.GroupID)

	projectFile := writeConfig(t, project, "memory:\n  group_id: from-project\n")
	cfg, path, err = resolver.Load()
	require.NoError(t, err)
	assert.Equal(t, projectFile, path)
	assert.Equal(t, "from-project", cfg.Memory.GroupID)

	workdirFile := writeConfig(t, cwd, "memory:\n  group_id: from-workdir\n")
	cfg, path, err = resolver.Load()
	require.NoError(t, err)
	assert.Equal(t, workdirFile, path)
	assert.Equal(t, "from-workdir", cfg.Memory.GroupID)
}

func TestConfigResolverIgnoresDirectoryNamedLikeConfig(t *testing.T) {
	cwd := chdir(t, t.TempDir())
	mkdirAll(t, cwd, ConfigFilename)

	assert.Empty(t, NewConfigResolver(testResolver("")).Find())
}

func TestConfigResolverMalformed(t *testing.T) {
	cwd := chdir(t, t.TempDir())
	writeConfig(t, cwd, "memory: {backend: [\n")

	_, path, err := NewConfigResolver(testResolver("")).Load()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, filepath.Join(cwd, ConfigFilename), path)
}

func TestConfigResolverIdempotent(t *testing.T) {
	cwd := chdir(t, t.TempDir())
	writeConfig(t, cwd, "memory:\n  backend: forgetful\n  group_id: same\n")
	resolver := NewConfigResolver(testResolver(""))

	first, firstPath, err := resolver.Load()
	require.NoError(t, err)
	second, secondPath, err := resolver.Load()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstPath, secondPath)
}

func TestLoadConfigFromWorkdir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	chdir(t, dir)
	writeConfig(t, dir, "memory:\n  group_id: pinned\n")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "pinned", cfg.Memory.GroupID)
	assert.Equal(t, DefaultBackend, cfg.Memory.Backend)
}
