package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const DefaultRemote = "origin"

var ErrNoRemote = errors.New("no remote configured")

// GoGitRemote reads the origin remote straight from the project's .git
// directory, for hosts without a git binary.
type GoGitRemote struct {
	scopes *ScopeResolver
	remote string
}

func NewGoGitRemote(scopes *ScopeResolver) *GoGitRemote {
	return &GoGitRemote{scopes: scopes, remote: DefaultRemote}
}

func (g *GoGitRemote) RemoteURL(ctx context.Context) (string, error) {
	gitDir, ok := g.scopes.GitDir()
	if !ok {
		return "", fmt.Errorf("open repository: %w", git.ErrRepositoryNotExists)
	}

	repo, err := openRepository(gitDir)
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote(g.remote)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", ErrNoRemote
	}
	if err != nil {
		return "", fmt.Errorf("get remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", ErrNoRemote
	}
	return urls[0], nil
}

func openRepository(gitDir string) (*git.Repository, error) {
	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())

	repo, err := git.Open(storage, nil)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return repo, nil
}
