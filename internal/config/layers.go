// Package config resolves gitjournal's on-disk locations and the layered
// sources that settings are read from.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Layer names, from lowest to highest precedence.
const (
	SourceStore = "store"
	SourceFile  = "file"
	SourceEnv   = "env"
)

// Layer is one named source of setting values keyed by KeyRepositoryPath and
// KeyPushByDefault.
type Layer struct {
	Name   string
	Values map[string]string
}

// ReadFileLayer loads the dotenv config file at path. Keys with empty values
// are ignored and a missing file yields an empty layer.
func ReadFileLayer(path string) (Layer, error) {
	layer := Layer{Name: SourceFile, Values: map[string]string{}}
	if path == "" {
		return layer, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return layer, nil
		}
		return layer, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	for _, key := range []string{KeyRepositoryPath, KeyPushByDefault} {
		if v := values[key]; v != "" {
			layer.Values[key] = v
		}
	}
	return layer, nil
}

// EnvLayer captures the setting keys set in the process environment. A
// variable set to the empty string counts as unset.
func EnvLayer() Layer {
	layer := Layer{Name: SourceEnv, Values: map[string]string{}}
	for _, key := range []string{KeyRepositoryPath, KeyPushByDefault} {
		if v := os.Getenv(key); v != "" {
			layer.Values[key] = v
		}
	}
	return layer
}

// Resolve returns the value of key from the last layer that sets it, along
// with that layer's name. Layers must be passed lowest precedence first.
func Resolve(key string, layers ...Layer) (value, source string, ok bool) {
	for i := len(layers) - 1; i >= 0; i-- {
		if v, found := layers[i].Values[key]; found {
			return v, layers[i].Name, true
		}
	}
	return "", "", false
}
