// Package walker enumerates the candidate files of a directory tree.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultGlob selects every file at any depth.
const DefaultGlob = "**/*"

// ErrBadPattern is returned for an invalid glob.
var ErrBadPattern = errors.New("bad glob pattern")

type FileInfo struct {
	// Name is the slash-separated path inside the walked fs.FS.
	Name string
	// Path is the root-joined path of the file on disk.
	Path string
	// Rel is the path relative to the root, always starting with "/".
	Rel  string
	Size int64
}

type WalkResult struct {
	Root  string
	Files []FileInfo
}

// Walk creates rootPath if it is missing, then walks it on the real
// filesystem.
func Walk(rootPath, glob string) (*WalkResult, error) {
	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return WalkFS(os.DirFS(rootPath), rootPath, glob)
}

// WalkFS lists the regular files of fsys matching glob in enumeration
// order. Directories, dangling symlinks and other non-regular entries are
// skipped silently; failing to list a directory or stat an entry is an error.
func WalkFS(fsys fs.FS, rootPath, glob string) (*WalkResult, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	if !doublestar.ValidatePattern(glob) {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, glob)
	}

	matches, err := doublestar.Glob(fsys, glob, doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q: %w", glob, err)
	}

	result := &WalkResult{
		Root:  rootPath,
		Files: make([]FileInfo, 0, len(matches)),
	}

	for _, match := range matches {
		info, err := fs.Stat(fsys, match)
		if errors.Is(err, fs.ErrNotExist) {
			// dangling symlink or removed since listing
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", match, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		result.Files = append(result.Files, FileInfo{
			Name: match,
			Path: filepath.Join(rootPath, filepath.FromSlash(match)),
			Rel:  "/" + match,
			Size: info.Size(),
		})
	}

	return result, nil
}
