// Package journal provides the data types shared by the journal components.
package journal

import "time"

// Settings is the effective user configuration for one invocation.
// An empty RepositoryPath means the path has not been configured.
type Settings struct {
	RepositoryPath string
	PushByDefault  bool
}

// ShouldPush reports whether an add should push, given the --push flag.
func (s Settings) ShouldPush(pushFlag bool) bool {
	return pushFlag || s.PushByDefault
}

// LogEntry is a single journal message persisted as one file and one commit.
type LogEntry struct {
	Timestamp time.Time
	Message   string
	FilePath  string
}

// Credential is a username/password pair read from the OS keyring.
type Credential struct {
	Username string
	Password string
}
