// SPDX-License-Identifier: MPL-2.0

package repoinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/runcfg/runcfg/pkg/types"
)

// initRepo creates a repository with a single commit in dir and returns the
// commit hash.
func initRepo(t *testing.T, dir string) plumbing.Hash {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "train.py"), []byte("print('fit')\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}
	if _, err := wt.Add("train.py"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "runcfg", Email: "runcfg@example.com", When: time.Unix(1700000000, 0)},
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	return hash
}

func headBranch(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	return head.Name().Short()
}

func TestGitProvider_FixedDepth(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	hash := initRepo(t, root)
	nested := filepath.Join(root, "apps", "api")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	p := NewGitProvider(types.FilesystemPath(nested), 2)
	info, err := p.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if info.Commit != hash.String() {
		t.Errorf("Commit = %q, want %q", info.Commit, hash.String())
	}
	if len(info.Commit) != 40 {
		t.Errorf("Commit should be a full 40-character hash, got %q", info.Commit)
	}
	if want := headBranch(t, root); info.Branch != want {
		t.Errorf("Branch = %q, want %q", info.Branch, want)
	}
}

func TestGitProvider_WrongDepthFails(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	initRepo(t, root)
	nested := filepath.Join(root, "apps", "api")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	_, err := NewGitProvider(types.FilesystemPath(nested), 1).Current(context.Background())
	if !errors.Is(err, ErrRepositoryNotFound) {
		t.Errorf("Current() error = %v, want ErrRepositoryNotFound", err)
	}
}

func TestGitProvider_DetectUpward(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	hash := initRepo(t, root)
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	info, err := NewGitProvider(types.FilesystemPath(nested), DetectDepth).Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if info.Commit != hash.String() {
		t.Errorf("Commit = %q, want %q", info.Commit, hash.String())
	}
}

func TestGitProvider_CustomBranch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	hash := initRepo(t, root)
	repo, err := git.PlainOpen(root)
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature/tuning"),
		Create: true,
	}); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	info, err := NewGitProvider(types.FilesystemPath(root), 0).Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if info.Branch != "feature/tuning" {
		t.Errorf("Branch = %q, want %q", info.Branch, "feature/tuning")
	}
	if info.Commit != hash.String() {
		t.Errorf("Commit = %q, want %q", info.Commit, hash.String())
	}
}

func TestGitProvider_DetachedHead(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	hash := initRepo(t, root)
	repo, err := git.PlainOpen(root)
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash}); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	_, err = NewGitProvider(types.FilesystemPath(root), 0).Current(context.Background())
	if !errors.Is(err, ErrDetachedHead) {
		t.Errorf("Current() error = %v, want ErrDetachedHead", err)
	}
}

func TestGitProvider_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGitProvider(types.FilesystemPath(t.TempDir()), 0).Current(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Current() error = %v, want context.Canceled", err)
	}
}
