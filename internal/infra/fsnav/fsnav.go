// Package fsnav implements the filesystem-navigation operations the RPC
// Dispatcher exposes for the project-creation flow: browsing directories,
// walking to a parent, finding the user's home, and creating a new project
// directory. Grounded on original_source/src-tauri/src/lib.rs's
// list_directory/get_parent_directory/get_home_directory/
// create_project_directory.
package fsnav

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Vg34100/agent-board/internal/domain"
)

// Entry describes one child of a listed directory.
type Entry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"is_directory"`
}

// ListDirectory returns dir's visible (non-dotfile) children, directories
// sorted ahead of files, each group alphabetical.
func ListDirectory(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %q: %w", dir, err)
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, Entry{
			Name:        e.Name(),
			Path:        filepath.Join(dir, e.Name()),
			IsDirectory: e.IsDir(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDirectory != out[j].IsDirectory {
			return out[i].IsDirectory
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// ParentDirectory returns dir's parent. Returns dir itself when it is
// already a filesystem root.
func ParentDirectory(dir string) string {
	parent := filepath.Dir(dir)
	return parent
}

// HomeDirectory returns the current user's home directory.
func HomeDirectory() (string, error) {
	return os.UserHomeDir()
}

// CreateProjectDirectory creates path, failing if it already exists rather
// than silently reusing it.
func CreateProjectDirectory(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %q", domain.ErrPathExists, path)
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return "", fmt.Errorf("create project directory: %w", err)
	}
	return path, nil
}
