package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choplin/gitjournal/internal/config"
	"github.com/choplin/gitjournal/internal/database"
)

func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.KeyRepositoryPath, config.KeyPushByDefault} {
		t.Setenv(key, "")
	}
}

func setupServiceDB(t *testing.T) *database.Context {
	t.Helper()
	clearSettingsEnv(t)

	dbCtx, err := database.CreateDatabase(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.CloseDatabase(dbCtx)
	})
	return dbCtx
}

func TestSettingsDefaults(t *testing.T) {
	svc := NewSettingsService(setupServiceDB(t), "")
	ctx := context.Background()

	path, err := svc.RepositoryPath(ctx)
	require.NoError(t, err)
	assert.Empty(t, path)

	push, err := svc.PushByDefault(ctx)
	require.NoError(t, err)
	assert.False(t, push)
}

func TestSettingsRoundTripAcrossConnections(t *testing.T) {
	clearSettingsEnv(t)

	dbPath := filepath.Join(t.TempDir(), "settings.db")
	ctx := context.Background()

	first, err := database.CreateDatabase(dbPath)
	require.NoError(t, err)
	svc := NewSettingsService(first, "")
	require.NoError(t, svc.SetRepositoryPath(ctx, "/tmp/journal"))
	require.NoError(t, svc.SetPushByDefault(ctx, true))
	require.NoError(t, database.CloseDatabase(first))

	second, err := database.CreateDatabase(dbPath)
	require.NoError(t, err)
	defer func() {
		_ = database.CloseDatabase(second)
	}()

	settings, err := NewSettingsService(second, "").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/journal", settings.RepositoryPath)
	assert.True(t, settings.PushByDefault)
}

func TestSettingsFileOverridesStoreAndEnvOverridesFile(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	configFile := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(configFile, []byte("GITJOURNAL_REPOSITORY_PATH=/from/file\n"), 0o600))

	svc := NewSettingsService(dbCtx, configFile)
	require.NoError(t, svc.SetRepositoryPath(ctx, "/from/store"))
	require.NoError(t, svc.SetPushByDefault(ctx, true))

	eff, err := svc.Effective(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/from/file", eff.RepositoryPath)
	assert.Equal(t, config.SourceFile, eff.RepositoryPathSource)
	assert.True(t, eff.PushByDefault)
	assert.Equal(t, config.SourceStore, eff.PushByDefaultSource)

	t.Setenv(config.KeyRepositoryPath, "/from/env")
	t.Setenv(config.KeyPushByDefault, "false")

	eff, err = svc.Effective(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", eff.RepositoryPath)
	assert.Equal(t, config.SourceEnv, eff.RepositoryPathSource)
	assert.False(t, eff.PushByDefault)
}

func TestEmptyOverridesDoNotMaskStoredValues(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	configFile := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(configFile, []byte("GITJOURNAL_REPOSITORY_PATH=\n"), 0o600))

	svc := NewSettingsService(dbCtx, configFile)
	require.NoError(t, svc.SetRepositoryPath(ctx, "/from/store"))
	require.NoError(t, svc.SetPushByDefault(ctx, true))

	t.Setenv(config.KeyRepositoryPath, "")
	t.Setenv(config.KeyPushByDefault, "")

	eff, err := svc.Effective(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/from/store", eff.RepositoryPath)
	assert.Equal(t, config.SourceStore, eff.RepositoryPathSource)
	assert.True(t, eff.PushByDefault)
	assert.Equal(t, config.SourceStore, eff.PushByDefaultSource)
}

func TestPushByDefaultUnparsableReadsFalse(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	require.NoError(t, database.NewSettingsRepository(dbCtx).Set(ctx, storeKeyPushByDefault, "sometimes"))

	push, err := NewSettingsService(dbCtx, "").PushByDefault(ctx)
	require.NoError(t, err)
	assert.False(t, push)
}
