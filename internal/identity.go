package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const DefaultGitTimeout = 5 * time.Second

// RemoteURLReader returns the URL of the current repository's origin remote.
type RemoteURLReader interface {
	RemoteURL(ctx context.Context) (string, error)
}

// GitCLI reads the remote through the git binary. When the binary is not
// installed it defers to Fallback, if set.
type GitCLI struct {
	Timeout  time.Duration
	Fallback RemoteURLReader
}

func (g *GitCLI) RemoteURL(ctx context.Context) (string, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultGitTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "config", "--get", "remote.origin.url").Output()
	if errors.Is(err, exec.ErrNotFound) && g.Fallback != nil {
		return g.Fallback.RemoteURL(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("git config: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GroupIDResolver derives the partition key for a session.
type GroupIDResolver struct {
	scopes *ScopeResolver
	remote RemoteURLReader
	logger *log.Logger
}

func NewGroupIDResolver(scopes *ScopeResolver, remote RemoteURLReader, logger *log.Logger) *GroupIDResolver {
	if remote == nil {
		remote = &GitCLI{Fallback: NewGoGitRemote(scopes)}
	}
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &GroupIDResolver{scopes: scopes, remote: remote, logger: logger}
}

// Detect never fails: an explicit group id wins, then the origin remote's
// repository name, then the project root name when it is a git checkout,
// then the working directory name.
func (r *GroupIDResolver) Detect(ctx context.Context, cfg *Config) string {
	if cfg.Memory.GroupID != AutoGroupID {
		return cfg.Memory.GroupID
	}

	url, err := r.remote.RemoteURL(ctx)
	if err == nil {
		if name := RepoNameFromURL(url); name != "" {
			return name
		}
		r.logger.Debug("remote url has no repository name", "url", url)
		return r.workdirName()
	}

	r.logger.Debug("remote lookup failed", "error", err)
	if gitDir, ok := r.scopes.GitDir(); ok {
		return filepath.Base(filepath.Dir(gitDir))
	}
	return r.workdirName()
}

func (r *GroupIDResolver) workdirName() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Base(cwd)
}

// RepoNameFromURL extracts "repo" from remotes such as
// https://host/user/repo.git and git@host:user/repo.git.
func RepoNameFromURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimRight(url, "/")
	url = strings.TrimSuffix(url, ".git")
	if url == "" {
		return ""
	}

	parts := strings.FieldsFunc(url, func(r rune) bool {
		return r == '/' || r == ':'
	})
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// DetectGroupID resolves the group id from the current process context.
func DetectGroupID(ctx context.Context, cfg *Config) string {
	return NewGroupIDResolver(NewScopeResolver(), nil, nil).Detect(ctx, cfg)
}
