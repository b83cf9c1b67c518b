// Package usecase orchestrates the journal workflows behind the CLI commands.
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/choplin/gitjournal/internal/credentials"
	"github.com/choplin/gitjournal/internal/filesystem"
	"github.com/choplin/gitjournal/internal/git"
	"github.com/choplin/gitjournal/internal/journal"
)

// CredentialResolver produces push credentials for a remote URL.
type CredentialResolver interface {
	Resolve(ctx context.Context, remoteURL string) (journal.Credential, error)
}

// Entry runs the add and list workflows against the configured repository.
type Entry struct {
	settings journal.Settings
	now      func() time.Time

	// newResolver builds the credential resolver once the repository's git
	// config is known.
	newResolver func(credentials.ConfigReader) CredentialResolver
}

// NewEntry creates an Entry use case for the given settings.
func NewEntry(settings journal.Settings) *Entry {
	return &Entry{
		settings: settings,
		now:      time.Now,
		newResolver: func(cfg credentials.ConfigReader) CredentialResolver {
			return credentials.NewResolver(cfg)
		},
	}
}

// AddInput describes one add invocation. A zero Timestamp means now.
type AddInput struct {
	Message   string
	Push      bool
	Timestamp time.Time
}

// AddResult reports what an add did. It is returned alongside a push error
// so callers can tell that the commit already exists.
type AddResult struct {
	Entry  journal.LogEntry
	Commit plumbing.Hash
	Pushed bool
}

// Add writes the entry file, commits it and pushes when requested. Steps run
// in order and the first failure stops the rest; a commit that succeeded is
// never undone.
func (u *Entry) Add(ctx context.Context, input AddInput) (*AddResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, journal.ErrEmptyMessage
	}
	if u.settings.RepositoryPath == "" {
		return nil, journal.ErrRepositoryNotConfigured
	}

	gw, err := git.Open(u.settings.RepositoryPath)
	if err != nil {
		return nil, err
	}

	if err := gw.CheckClean(); err != nil {
		return nil, err
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = u.now()
	}
	ts = ts.Truncate(time.Second)

	path, err := filesystem.WriteEntry(u.settings.RepositoryPath, input.Message, ts)
	if err != nil {
		return nil, err
	}
	slog.Debug("entry written", "path", path)

	result := &AddResult{
		Entry: journal.LogEntry{Timestamp: ts, Message: input.Message, FilePath: path},
	}

	if err := gw.Stage(path); err != nil {
		return nil, err
	}

	hash, err := gw.Commit(input.Message, ts)
	if err != nil {
		return nil, err
	}
	result.Commit = hash
	slog.Debug("entry committed", "commit", hash.String())

	if !u.settings.ShouldPush(input.Push) {
		return result, nil
	}

	if err := u.push(ctx, gw); err != nil {
		return result, err
	}
	result.Pushed = true
	return result, nil
}

func (u *Entry) push(ctx context.Context, gw *git.Gateway) error {
	up, err := gw.Upstream()
	if err != nil {
		return err
	}

	remoteURL, err := gw.RemoteURL(up.Remote)
	if err != nil {
		return err
	}

	cred, err := u.newResolver(gw.Config()).Resolve(ctx, remoteURL)
	if err != nil {
		return err
	}

	slog.Debug("pushing", "remote", up.Remote, "branch", up.Branch, "user", cred.Username)
	return gw.Push(ctx, up, cred)
}

// ListOptions limits the entries returned by List. Limit <= 0 means all.
type ListOptions struct {
	Limit int
}

// ListEntry is one entry with its content.
type ListEntry struct {
	journal.LogEntry
}

// List returns the entries stored in the repository, newest first.
func (u *Entry) List(opts ListOptions) ([]ListEntry, error) {
	if u.settings.RepositoryPath == "" {
		return nil, journal.ErrRepositoryNotConfigured
	}

	files, err := filesystem.ListEntries(u.settings.RepositoryPath)
	if err != nil {
		return nil, err
	}

	if opts.Limit > 0 && len(files) > opts.Limit {
		files = files[:opts.Limit]
	}

	entries := make([]ListEntry, 0, len(files))
	for _, f := range files {
		content, err := filesystem.ReadFile(f.Path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ListEntry{LogEntry: journal.LogEntry{
			Timestamp: f.Timestamp,
			Message:   content,
			FilePath:  f.Path,
		}})
	}
	return entries, nil
}
