// SPDX-License-Identifier: MPL-2.0

// Package repoinfo reads the source-control state recorded in a training-run
// configuration: the active branch and the full hash of its commit.
package repoinfo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"

	"github.com/runcfg/runcfg/pkg/fspath"
	"github.com/runcfg/runcfg/pkg/types"
)

// DetectDepth makes GitProvider search upward from its base directory for
// the nearest enclosing repository instead of opening a fixed ancestor.
const DetectDepth = -1

var (
	// ErrDetachedHead is returned when HEAD does not point at a branch, so
	// there is no active branch to report.
	ErrDetachedHead = errors.New("HEAD is detached")

	// ErrRepositoryNotFound is returned when no repository exists at the
	// resolved location. It is go-git's git.ErrRepositoryNotExists.
	ErrRepositoryNotFound = git.ErrRepositoryNotExists
)

type (
	// Info is the repository state captured in a configuration record.
	Info struct {
		Branch string
		Commit string
	}

	// Provider returns the current repository state.
	Provider interface {
		Current(ctx context.Context) (Info, error)
	}

	// GitProvider reads repository state with go-git.
	//
	// With AncestorDepth >= 0 the repository must live exactly that many
	// directory levels above BaseDir. With DetectDepth the nearest repository
	// at or above BaseDir is used.
	GitProvider struct {
		BaseDir       types.FilesystemPath
		AncestorDepth int
	}
)

// NewGitProvider returns a GitProvider rooted at baseDir. An empty baseDir
// means the current working directory.
func NewGitProvider(baseDir types.FilesystemPath, ancestorDepth int) *GitProvider {
	if baseDir == "" {
		baseDir = "."
	}
	return &GitProvider{BaseDir: baseDir, AncestorDepth: ancestorDepth}
}

// Root returns the directory GitProvider opens. In detect mode this is the
// directory the upward search starts from.
func (p *GitProvider) Root() (types.FilesystemPath, error) {
	base, err := fspath.Abs(p.BaseDir)
	if err != nil {
		return "", err
	}
	if p.AncestorDepth < 0 {
		return base, nil
	}
	return fspath.Ancestor(base, p.AncestorDepth), nil
}

// Current opens the repository and reports its active branch and commit.
func (p *GitProvider) Current(ctx context.Context) (Info, error) {
	select {
	case <-ctx.Done():
		return Info{}, fmt.Errorf("read repository canceled: %w", ctx.Err())
	default:
	}

	root, err := p.Root()
	if err != nil {
		return Info{}, err
	}

	repo, err := git.PlainOpenWithOptions(string(root), &git.PlainOpenOptions{
		DetectDotGit: p.AncestorDepth < 0,
	})
	if err != nil {
		return Info{}, fmt.Errorf("open repository at %s: %w", root, err)
	}

	head, err := repo.Head()
	if err != nil {
		return Info{}, fmt.Errorf("read HEAD of %s: %w", root, err)
	}
	if !head.Name().IsBranch() {
		return Info{}, fmt.Errorf("%w at %s (commit %s)", ErrDetachedHead, root, head.Hash())
	}

	return Info{
		Branch: head.Name().Short(),
		Commit: head.Hash().String(),
	}, nil
}
