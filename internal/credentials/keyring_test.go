package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/choplin/gitjournal/internal/journal"
)

type mapConfig map[string]string

func (m mapConfig) Get(key string) string {
	return m[key]
}

func TestServiceName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/owner/journal.git", "git:https://github.com"},
		{"https://alice@example.com:8443/journal.git", "git:https://example.com:8443"},
		{"https://example.com:443/journal.git", "git:https://example.com"},
		{"http://example.com:8080/journal.git", "git:http://example.com:8080"},
		{"git@github.com:owner/journal.git", "git:ssh://github.com"},
		{"/srv/git/journal.git", "git:file://"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			ep, err := parseRemote(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, serviceName(ep))
		})
	}
}

func TestResolveKeepsPortsApart(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("git:https://example.com", "alice", "default-port"))
	require.NoError(t, keyring.Set("git:https://example.com:8443", "alice", "custom-port"))

	cred, err := NewResolver(nil).Resolve(context.Background(), "https://alice@example.com:8443/journal.git")
	require.NoError(t, err)
	assert.Equal(t, "custom-port", cred.Password)

	cred, err = NewResolver(nil).Resolve(context.Background(), "https://alice@example.com/journal.git")
	require.NoError(t, err)
	assert.Equal(t, "default-port", cred.Password)
}

func TestResolveUsesURLUser(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("git:https://example.com", "alice", "s3cret"))

	cred, err := NewResolver(nil).Resolve(context.Background(), "https://alice@example.com/journal.git")
	require.NoError(t, err)
	assert.Equal(t, journal.Credential{Username: "alice", Password: "s3cret"}, cred)
}

func TestResolveUsesHostScopedConfigUsername(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("git:https://example.com", "bob", "pw"))

	cfg := mapConfig{
		"credential.https://example.com.username": "bob",
		"credential.username":                     "fallback",
	}

	cred, err := NewResolver(cfg).Resolve(context.Background(), "https://example.com/journal.git")
	require.NoError(t, err)
	assert.Equal(t, "bob", cred.Username)
	assert.Equal(t, "pw", cred.Password)
}

func TestResolveFallsBackToGlobalUsername(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("git:https://example.com", "carol", "pw"))

	cred, err := NewResolver(mapConfig{"credential.username": "carol"}).
		Resolve(context.Background(), "https://example.com/journal.git")
	require.NoError(t, err)
	assert.Equal(t, "carol", cred.Username)
}

func TestResolveCredentialNotFound(t *testing.T) {
	keyring.MockInit()

	_, err := NewResolver(mapConfig{"credential.username": "dave"}).
		Resolve(context.Background(), "https://example.com/journal.git")
	require.Error(t, err)
	assert.True(t, errors.Is(err, journal.ErrCredentialNotFound))
}

func TestResolveWithoutUsername(t *testing.T) {
	keyring.MockInit()

	_, err := NewResolver(mapConfig{}).Resolve(context.Background(), "https://example.com/journal.git")
	assert.ErrorIs(t, err, journal.ErrCredentialNotFound)
}

func TestResolveSurfacesKeyringFailure(t *testing.T) {
	backendErr := errors.New("dbus unavailable")
	keyring.MockInitWithError(backendErr)
	t.Cleanup(keyring.MockInit)

	_, err := NewResolver(mapConfig{"credential.username": "erin"}).
		Resolve(context.Background(), "https://example.com/journal.git")
	require.Error(t, err)
	assert.False(t, errors.Is(err, journal.ErrCredentialNotFound))

	var kerr *KeyringError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "get", kerr.Operation)
	assert.ErrorIs(t, err, backendErr)
}
