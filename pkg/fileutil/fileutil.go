// Package fileutil provides file system utility functions.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FindFileCaseInsensitive searches dir for a file named filename, ignoring
// case. Content authored on Windows often disagrees with the case used in
// references, so lookups must tolerate it.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/path/to/events", "Village.SCRIPT")
//	// Will find "village.script", "VILLAGE.SCRIPT", etc.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	if name, ok := matchEntry(entries, filename); ok {
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

// FindFileCaseInsensitiveFS is FindFileCaseInsensitive for an fs.FS. The
// returned path uses forward slashes.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	if name, ok := matchEntry(entries, filename); ok {
		return path.Join(dir, name), nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

func matchEntry(entries []fs.DirEntry, filename string) (string, bool) {
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return entry.Name(), true
		}
	}
	return "", false
}

// HasExtension reports whether name ends in one of exts, ignoring case.
// Extensions include the leading dot.
func HasExtension(name string, exts []string) bool {
	ext := path.Ext(filepath.ToSlash(name))
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
