// Package filesystem writes journal entries into month-bucketed folders and
// enumerates them.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/choplin/gitjournal/internal/journal"
)

const (
	monthLayout = "2006-01"
	fileLayout  = "2006-01-02 15-04-05"
	fileExt     = ".txt"
)

// EntryPath returns the path an entry written at timestamp is stored under:
// <root>/<yyyy-MM>/<yyyy-MM-dd HH-mm-ss>.txt.
func EntryPath(root string, timestamp time.Time) string {
	return filepath.Join(root, timestamp.Format(monthLayout), timestamp.Format(fileLayout)+fileExt)
}

// WriteEntry stores message as a new entry file and returns its path. It
// fails with journal.ErrAlreadyExists rather than replacing an existing file.
func WriteEntry(root, message string, timestamp time.Time) (string, error) {
	path := EntryPath(root, timestamp)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create month folder: %w", err)
	}

	//nolint:gosec // G304: path is derived from the configured repository root
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", journal.ErrAlreadyExists, path)
		}
		return "", err
	}

	if _, err := f.WriteString(message); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return path, nil
}

// ReadFile reads a file from disk and returns its contents as a string.
func ReadFile(path string) (string, error) {
	//nolint:gosec // G304: path comes from ListEntries
	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// EntryFile describes one entry found on disk.
type EntryFile struct {
	Path      string
	Timestamp time.Time
}

// ListEntries returns the entry files under root, newest first. Folders and
// files that do not follow the entry naming scheme are skipped.
func ListEntries(root string) ([]EntryFile, error) {
	months, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []EntryFile
	for _, month := range months {
		if !month.IsDir() {
			continue
		}
		if _, err := time.Parse(monthLayout, month.Name()); err != nil {
			continue
		}

		err := walkMonthFiles(filepath.Join(root, month.Name()), func(path string, d fs.DirEntry) error {
			if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
				return nil
			}
			ts, err := time.ParseInLocation(fileLayout, strings.TrimSuffix(d.Name(), fileExt), time.Local)
			if err != nil {
				return nil
			}
			entries = append(entries, EntryFile{Path: path, Timestamp: ts})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

type walkFunc func(path string, d fs.DirEntry) error

// walkMonthFiles calls fn for every entry directly inside a month directory.
func walkMonthFiles(dir string, fn walkFunc) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := fn(filepath.Join(dir, entry.Name()), entry); err != nil {
			return err
		}
	}

	return nil
}
