// Package services holds the settings store used by every gitjournal command.
package services

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/choplin/gitjournal/internal/config"
	"github.com/choplin/gitjournal/internal/database"
	"github.com/choplin/gitjournal/internal/journal"
)

// Row keys in the settings table.
const (
	storeKeyRepositoryPath = "repository_path"
	storeKeyPushByDefault  = "push_by_default"
)

var storeKeys = map[string]string{
	config.KeyRepositoryPath: storeKeyRepositoryPath,
	config.KeyPushByDefault:  storeKeyPushByDefault,
}

// Effective is the resolved settings view together with the layer each value
// came from. A source is empty when no layer sets the value.
type Effective struct {
	journal.Settings
	RepositoryPathSource string
	PushByDefaultSource  string
}

// SettingsService persists settings in the database and resolves them
// against the config file and environment overrides.
type SettingsService struct {
	repo       *database.SettingsRepository
	configFile string
}

// NewSettingsService creates a SettingsService. configFile may be empty to
// disable the file layer.
func NewSettingsService(dbCtx *database.Context, configFile string) *SettingsService {
	return &SettingsService{
		repo:       database.NewSettingsRepository(dbCtx),
		configFile: configFile,
	}
}

// Effective reads all layers and returns the resolved settings.
func (s *SettingsService) Effective(ctx context.Context) (Effective, error) {
	layers, err := s.layers(ctx)
	if err != nil {
		return Effective{}, err
	}

	var eff Effective
	if v, src, ok := config.Resolve(config.KeyRepositoryPath, layers...); ok {
		eff.RepositoryPath = v
		eff.RepositoryPathSource = src
	}
	if v, src, ok := config.Resolve(config.KeyPushByDefault, layers...); ok {
		eff.PushByDefault = parseBool(v, src)
		eff.PushByDefaultSource = src
	}
	return eff, nil
}

// Load returns the effective settings.
func (s *SettingsService) Load(ctx context.Context) (journal.Settings, error) {
	eff, err := s.Effective(ctx)
	if err != nil {
		return journal.Settings{}, err
	}
	return eff.Settings, nil
}

// RepositoryPath returns the effective repository path, or "" when unset.
func (s *SettingsService) RepositoryPath(ctx context.Context) (string, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return settings.RepositoryPath, nil
}

// SetRepositoryPath persists the repository path.
func (s *SettingsService) SetRepositoryPath(ctx context.Context, path string) error {
	return s.repo.Set(ctx, storeKeyRepositoryPath, path)
}

// PushByDefault returns the effective push-by-default flag. Unset or
// unparsable values read as false.
func (s *SettingsService) PushByDefault(ctx context.Context) (bool, error) {
	settings, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return settings.PushByDefault, nil
}

// SetPushByDefault persists the push-by-default flag.
func (s *SettingsService) SetPushByDefault(ctx context.Context, push bool) error {
	return s.repo.Set(ctx, storeKeyPushByDefault, strconv.FormatBool(push))
}

func (s *SettingsService) layers(ctx context.Context) ([]config.Layer, error) {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	store := config.Layer{Name: config.SourceStore, Values: map[string]string{}}
	for key, row := range storeKeys {
		if v, ok := stored[row]; ok {
			store.Values[key] = v
		}
	}

	file, err := config.ReadFileLayer(s.configFile)
	if err != nil {
		return nil, err
	}

	return []config.Layer{store, file, config.EnvLayer()}, nil
}

func parseBool(value, source string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("ignoring unparsable push-by-default value", "value", value, "source", source)
		return false
	}
	return b
}
