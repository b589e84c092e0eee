package internal

import (
	"os"
	"path/filepath"
)

const ConfigFilename = ".context-hub.yaml"

// ProjectMarkers are the entries whose presence marks a directory as a
// project root.
var ProjectMarkers = []string{".git", "pyproject.toml", "package.json", "pom.xml", "go.mod"}

type ScopeType string

const (
	ScopeWorkdir ScopeType = "workdir"
	ScopeProject ScopeType = "project"
	ScopeGlobal  ScopeType = "global"
)

// Scope is one directory in the config search hierarchy.
type Scope struct {
	Type ScopeType
	Path string
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.Path, ConfigFilename)
}

type ScopeResolver struct {
	homeDir string
	markers []string
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	return &ScopeResolver{homeDir: home, markers: ProjectMarkers}
}

func (r *ScopeResolver) Global() Scope {
	return Scope{Type: ScopeGlobal, Path: r.homeDir}
}

func (r *ScopeResolver) Workdir() (Scope, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Scope{}, false
	}
	return Scope{Type: ScopeWorkdir, Path: cwd}, true
}

// Project walks upward from the working directory and returns the first
// directory holding any project marker.
func (r *ScopeResolver) Project() (Scope, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Scope{}, false
	}
	return r.findProjectScope(cwd)
}

func (r *ScopeResolver) findProjectScope(dir string) (Scope, bool) {
	for {
		for _, marker := range r.markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return Scope{Type: ScopeProject, Path: dir}, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Cascade returns the search hierarchy in priority order: working
// directory, project root, home.
func (r *ScopeResolver) Cascade() []Scope {
	scopes := []Scope{}
	if scope, ok := r.Workdir(); ok {
		scopes = append(scopes, scope)
	}
	if scope, ok := r.Project(); ok {
		scopes = append(scopes, scope)
	}
	if r.homeDir != "" {
		scopes = append(scopes, r.Global())
	}
	return scopes
}

// GitDir returns the .git directory at the project root, if there is one.
func (r *ScopeResolver) GitDir() (string, bool) {
	root, ok := r.Project()
	if !ok {
		return "", false
	}
	gitDir := filepath.Join(root.Path, ".git")
	if _, err := os.Stat(gitDir); err != nil {
		return "", false
	}
	return gitDir, true
}

// EnvVars describes a resolved session to external ctxhub-* commands.
func (r *ScopeResolver) EnvVars(backend, groupID, configFile, version string) map[string]string {
	bin, _ := os.Executable()
	return map[string]string{
		"CTXHUB_BACKEND":  backend,
		"CTXHUB_GROUP_ID": groupID,
		"CTXHUB_CONFIG":   configFile,
		"CTXHUB_VERSION":  version,
		"CTXHUB_BIN":      bin,
	}
}
