package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const appName = "gitjournal"

// Environment variables recognised by gitjournal. The setting keys double as
// the keys of the dotenv config file.
const (
	EnvDataDir        = "GITJOURNAL_DIR"
	EnvConfigFile     = "GITJOURNAL_CONFIG"
	EnvLogLevel       = "GITJOURNAL_LOG_LEVEL"
	KeyRepositoryPath = "GITJOURNAL_REPOSITORY_PATH"
	KeyPushByDefault  = "GITJOURNAL_PUSH_BY_DEFAULT"
)

// GetDataDir resolves the base directory for durable user state. It checks
// GITJOURNAL_DIR first, then XDG paths, and finally falls back to the user's
// home directory.
func GetDataDir() string {
	if explicit := os.Getenv(EnvDataDir); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the absolute path to the SQLite settings database.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "settings.db")
}

// GetConfigFilePath returns the dotenv file whose values override the
// durable settings. GITJOURNAL_CONFIG takes priority over the XDG location.
func GetConfigFilePath() string {
	if explicit := os.Getenv(EnvConfigFile); explicit != "" {
		return explicit
	}

	xdg.Reload()
	return filepath.Join(xdg.ConfigHome, appName, "config.env")
}

// LogLevel maps GITJOURNAL_LOG_LEVEL to a slog level. Unknown values fall
// back to warn.
func LogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
