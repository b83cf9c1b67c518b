// Package credentials resolves push credentials for a git remote from the
// OS keyring.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/zalando/go-keyring"

	"github.com/choplin/gitjournal/internal/journal"
)

const (
	// servicePrefix namespaces keyring entries the way git credential
	// managers name them.
	servicePrefix = "git:"

	// keyringTimeout bounds a keyring lookup; some backends block on an
	// unlock prompt.
	keyringTimeout = 5 * time.Second
)

// KeyringError represents an error during keyring operations
type KeyringError struct {
	Operation string
	Service   string
	Err       error
}

func (e *KeyringError) Error() string {
	return fmt.Sprintf("keyring %s %s failed: %v", e.Operation, e.Service, e.Err)
}

func (e *KeyringError) Unwrap() error {
	return e.Err
}

// ConfigReader looks up git configuration values. *gitconfig.Configs
// satisfies it.
type ConfigReader interface {
	Get(key string) string
}

// Resolver produces credentials for a remote URL.
type Resolver struct {
	config ConfigReader
}

// NewResolver creates a Resolver that consults config for the username when
// the remote URL carries none. config may be nil.
func NewResolver(config ConfigReader) *Resolver {
	return &Resolver{config: config}
}

var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
	"ssh":   22,
}

// serviceName returns the keyring service for a remote:
// "git:<scheme>://<host>[:<port>]". Default ports are omitted.
func serviceName(ep *transport.Endpoint) string {
	return servicePrefix + hostPattern(ep)
}

func hostPattern(ep *transport.Endpoint) string {
	if ep.Port != 0 && ep.Port != defaultPorts[ep.Protocol] {
		return fmt.Sprintf("%s://%s:%d", ep.Protocol, ep.Host, ep.Port)
	}
	return fmt.Sprintf("%s://%s", ep.Protocol, ep.Host)
}

func parseRemote(remoteURL string) (*transport.Endpoint, error) {
	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote url %q: %w", remoteURL, err)
	}
	return ep, nil
}

// Resolve looks up the username and password stored for remoteURL's host.
// It returns journal.ErrCredentialNotFound when either is missing.
func (r *Resolver) Resolve(ctx context.Context, remoteURL string) (journal.Credential, error) {
	ep, err := parseRemote(remoteURL)
	if err != nil {
		return journal.Credential{}, err
	}

	pattern := hostPattern(ep)
	service := serviceName(ep)

	username := r.username(ep, pattern)
	if username == "" {
		return journal.Credential{}, fmt.Errorf("%w: no username for %s (set credential.username in git config)", journal.ErrCredentialNotFound, pattern)
	}

	password, err := getSecret(ctx, service, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return journal.Credential{}, fmt.Errorf("%w: %s for user %s", journal.ErrCredentialNotFound, service, username)
		}
		return journal.Credential{}, err
	}

	return journal.Credential{Username: username, Password: password}, nil
}

func (r *Resolver) username(ep *transport.Endpoint, pattern string) string {
	if ep.User != "" {
		return ep.User
	}
	if r.config == nil {
		return ""
	}
	if u := r.config.Get("credential." + pattern + ".username"); u != "" {
		return u
	}
	return r.config.Get("credential.username")
}

// getSecret retrieves a secret from the system keyring with timeout
func getSecret(ctx context.Context, service, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, keyringTimeout)
	defer cancel()

	type result struct {
		secret string
		err    error
	}

	resultCh := make(chan result, 1)

	go func() {
		secret, err := keyring.Get(service, user)
		resultCh <- result{secret: secret, err: err}
	}()

	select {
	case r := <-resultCh:
		if r.err != nil {
			return "", &KeyringError{Operation: "get", Service: service, Err: r.err}
		}

		return r.secret, nil
	case <-ctx.Done():
		return "", &KeyringError{Operation: "get", Service: service, Err: ctx.Err()}
	}
}
