package database

import (
	"context"
	"fmt"
	"time"

	sqldb "github.com/choplin/gitjournal/internal/database/sqlc"
)

// SettingsRepository reads and writes key/value rows in the settings table.
type SettingsRepository struct {
	queries *sqldb.Queries
}

// NewSettingsRepository returns a repository bound to the given database.
func NewSettingsRepository(dbCtx *Context) *SettingsRepository {
	queries := dbCtx.Queries
	if queries == nil {
		queries = sqldb.New(dbCtx.DB)
	}
	return &SettingsRepository{queries: queries}
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if err := r.queries.UpsertSetting(ctx, sqldb.UpsertSettingParams{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// All returns every stored setting keyed by name.
func (r *SettingsRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.queries.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}
