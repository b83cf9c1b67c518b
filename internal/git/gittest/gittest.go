// Package gittest builds throwaway repositories for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	UserName  = "Test User"
	UserEmail = "test@example.com"
)

// Isolate points HOME and XDG_CONFIG_HOME at a temp dir and disables the
// system git config so the developer's own configuration cannot leak in.
func Isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
}

// Init creates a repository with an identity and one initial commit, and
// returns its worktree path.
func Init(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	Isolate(t)

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = UserName
	cfg.User.Email = UserEmail
	require.NoError(t, repo.SetConfig(cfg))

	WriteFile(t, dir, "README.md", "journal\n")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	sig := &object.Signature{Name: UserName, Email: UserEmail, When: time.Now()}
	_, err = wt.Commit("Initial commit", &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	return dir, repo
}

// WriteFile writes content to name inside dir.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// AddBareRemote creates a bare repository, registers it as origin and makes
// the current branch track it. It returns the bare repository.
func AddBareRemote(t *testing.T, repo *gogit.Repository) *gogit.Repository {
	t.Helper()

	remoteDir := t.TempDir()
	bare, err := gogit.PlainInit(remoteDir, true)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteDir}})
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	require.NoError(t, repo.CreateBranch(&config.Branch{
		Name:   head.Name().Short(),
		Remote: "origin",
		Merge:  head.Name(),
	}))

	return bare
}

// RequireGitBinary skips the test when the git executable is unavailable;
// pushes over the file transport shell out to git-receive-pack.
func RequireGitBinary(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("Skipping test: git not found: %v", err)
	}
}

// CommitCount returns the number of commits reachable from HEAD.
func CommitCount(t *testing.T, repo *gogit.Repository) int {
	t.Helper()
	iter, err := repo.Log(&gogit.LogOptions{})
	require.NoError(t, err)
	count := 0
	require.NoError(t, iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	}))
	return count
}

// HeadCommit returns the commit HEAD points to.
func HeadCommit(t *testing.T, repo *gogit.Repository) *object.Commit {
	t.Helper()
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	return commit
}

// RefHash returns the hash ref points to in repo.
func RefHash(t *testing.T, repo *gogit.Repository, ref plumbing.ReferenceName) plumbing.Hash {
	t.Helper()
	r, err := repo.Reference(ref, true)
	require.NoError(t, err)
	return r.Hash()
}
