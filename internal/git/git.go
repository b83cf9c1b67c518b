// Package git wraps the version-control operations gitjournal needs: a dirty
// check, staging, committing and pushing to the tracked upstream.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/gopasspw/gitconfig"

	"github.com/choplin/gitjournal/internal/journal"
)

// inProgressMarkers are files or directories in the git dir that indicate an
// unfinished merge, rebase, cherry-pick or revert.
var inProgressMarkers = []string{
	"MERGE_HEAD",
	"CHERRY_PICK_HEAD",
	"REVERT_HEAD",
	"rebase-merge",
	"rebase-apply",
}

// Gateway provides the repository operations of the add workflow.
type Gateway struct {
	repo    *gogit.Repository
	root    string
	gitDir  string
	configs *gitconfig.Configs
}

// Upstream is the remote branch the current branch tracks.
type Upstream struct {
	Branch string
	Remote string
	Merge  plumbing.ReferenceName
}

// Open opens the repository whose worktree contains path.
func Open(path string) (*Gateway, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &OpError{Op: "open", Err: fmt.Errorf("%s: %w", path, err)}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, &OpError{Op: "open", Err: err}
	}
	root := wt.Filesystem.Root()

	gitDir := filepath.Join(root, ".git")
	if fs, ok := repo.Storer.(*filesystem.Storage); ok {
		gitDir = fs.Filesystem().Root()
	}

	return &Gateway{
		repo:    repo,
		root:    root,
		gitDir:  gitDir,
		configs: gitconfig.New().LoadAll(gitDir),
	}, nil
}

// Config exposes the merged system, global and local git configuration.
func (g *Gateway) Config() *gitconfig.Configs {
	return g.configs
}

// CheckClean returns journal.ErrDirtyRepository if any tracked file has
// staged or unstaged changes, or if an operation such as a merge is in
// progress. Untracked files are ignored.
func (g *Gateway) CheckClean() error {
	for _, marker := range inProgressMarkers {
		if _, err := os.Stat(filepath.Join(g.gitDir, marker)); err == nil {
			return fmt.Errorf("%w: %s in progress", journal.ErrDirtyRepository, describeMarker(marker))
		}
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return &OpError{Op: "status", Err: err}
	}

	status, err := wt.Status()
	if err != nil {
		return &OpError{Op: "status", Err: err}
	}

	var pending []string
	for path, st := range status {
		if st.Staging == gogit.Untracked && st.Worktree == gogit.Untracked {
			continue
		}
		if st.Staging != gogit.Unmodified || st.Worktree != gogit.Unmodified {
			pending = append(pending, path)
		}
	}

	if len(pending) > 0 {
		sort.Strings(pending)
		return fmt.Errorf("%w: %s", journal.ErrDirtyRepository, strings.Join(pending, ", "))
	}
	return nil
}

func describeMarker(marker string) string {
	switch marker {
	case "MERGE_HEAD":
		return "merge"
	case "CHERRY_PICK_HEAD":
		return "cherry-pick"
	case "REVERT_HEAD":
		return "revert"
	default:
		return "rebase"
	}
}

// Stage adds the file at path to the index.
func (g *Gateway) Stage(path string) error {
	rel, err := g.relative(path)
	if err != nil {
		return &OpError{Op: "add", Err: err}
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return &OpError{Op: "add", Err: err}
	}

	if _, err := wt.Add(filepath.ToSlash(rel)); err != nil {
		return &OpError{Op: "add", Err: err}
	}
	return nil
}

func (g *Gateway) relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(g.root, abs)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return rel, nil
	}

	// the worktree root may be reported through a symlink (e.g. /tmp on macOS)
	realRoot, rootErr := filepath.EvalSymlinks(g.root)
	realPath, pathErr := filepath.EvalSymlinks(abs)
	if rootErr != nil || pathErr != nil {
		return "", fmt.Errorf("%s is outside the repository %s", path, g.root)
	}
	rel, err = filepath.Rel(realRoot, realPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the repository %s", path, g.root)
	}
	return rel, nil
}

// Identity returns user.name and user.email from the git configuration.
func (g *Gateway) Identity() (name, email string, err error) {
	name = strings.TrimSpace(g.configs.Get("user.name"))
	email = strings.TrimSpace(g.configs.Get("user.email"))
	if name == "" || email == "" {
		return "", "", journal.ErrMissingIdentity
	}
	return name, email, nil
}

// Commit records the index as a new commit authored and committed by the
// configured identity at when.
func (g *Gateway) Commit(message string, when time.Time) (plumbing.Hash, error) {
	name, email, err := g.Identity()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, &OpError{Op: "commit", Err: err}
	}

	sig := &object.Signature{Name: name, Email: email, When: when}
	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		return plumbing.ZeroHash, &OpError{Op: "commit", Err: err}
	}
	return hash, nil
}

// Upstream returns the tracking configuration of the current branch. It
// returns journal.ErrNoTrackingBranch for a detached HEAD or a branch without
// branch.<name>.remote.
func (g *Gateway) Upstream() (Upstream, error) {
	head, err := g.repo.Head()
	if err != nil {
		return Upstream{}, &OpError{Op: "upstream", Err: err}
	}
	if !head.Name().IsBranch() {
		return Upstream{}, fmt.Errorf("%w: HEAD is detached", journal.ErrNoTrackingBranch)
	}

	branch := head.Name().Short()
	cfg, err := g.repo.Branch(branch)
	if err != nil {
		if errors.Is(err, gogit.ErrBranchNotFound) {
			return Upstream{}, fmt.Errorf("%w: %s", journal.ErrNoTrackingBranch, branch)
		}
		return Upstream{}, &OpError{Op: "upstream", Err: err}
	}
	if cfg.Remote == "" {
		return Upstream{}, fmt.Errorf("%w: %s", journal.ErrNoTrackingBranch, branch)
	}

	merge := cfg.Merge
	if merge == "" {
		merge = plumbing.NewBranchReferenceName(branch)
	}

	return Upstream{Branch: branch, Remote: cfg.Remote, Merge: merge}, nil
}

// RemoteURL returns the first URL configured for the named remote.
func (g *Gateway) RemoteURL(name string) (string, error) {
	remote, err := g.repo.Remote(name)
	if err != nil {
		return "", &OpError{Op: "remote", Err: fmt.Errorf("%s: %w", name, err)}
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", &OpError{Op: "remote", Err: fmt.Errorf("remote %s has no url", name)}
	}
	return urls[0], nil
}

// Push sends the current branch to its upstream using cred for basic auth.
// An already up-to-date remote is not an error.
func (g *Gateway) Push(ctx context.Context, up Upstream, cred journal.Credential) error {
	refSpec := config.RefSpec(fmt.Sprintf("%s:%s", plumbing.NewBranchReferenceName(up.Branch), up.Merge))
	if err := refSpec.Validate(); err != nil {
		return &OpError{Op: "push", Err: err}
	}

	err := g.repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: up.Remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth: &http.BasicAuth{
			Username: cred.Username,
			Password: cred.Password,
		},
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return &OpError{Op: "push", Err: err}
	}
	return nil
}
