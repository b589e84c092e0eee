package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/4thel00z/context-hub/internal/mcptest"
	v1 "github.com/4thel00z/context-hub/pkg/v1"
)

// inTempDir moves the test into an empty working and home directory.
func inTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	cwd, _ := os.Getwd()
	return cwd
}

func writeTestConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".context-hub.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runRoot(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test", a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

// graphitiApp points every command at an in-process Graphiti server.
func graphitiApp(t *testing.T) (*app, *mcptest.Graphiti) {
	t.Helper()
	server := mcptest.NewGraphiti(t)
	return newApp(v1.WithBackendSetting("endpoint", server.URL)), server
}
