package journal

import "errors"

var (
	// ErrEmptyMessage indicates add was invoked with a blank message.
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrAlreadyExists indicates the entry file for this timestamp is already present.
	ErrAlreadyExists = errors.New("entry file already exists")

	// ErrDirtyRepository indicates pending changes block a new commit.
	ErrDirtyRepository = errors.New("repository has pending changes")

	// ErrNoTrackingBranch indicates push was requested but the branch has no upstream.
	ErrNoTrackingBranch = errors.New("current branch has no tracking branch")

	// ErrCredentialNotFound indicates the keyring has no entry for the remote host.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrRepositoryNotConfigured indicates no repository path has been set.
	ErrRepositoryNotConfigured = errors.New("repository path is not configured (run: gitjournal config --path <dir>)")

	// ErrMissingIdentity indicates user.name or user.email is not configured in git.
	ErrMissingIdentity = errors.New("git identity is not configured (set user.name and user.email)")
)
