// Package actions provides the filesystem writers used by the mirror
// engine: a go-billy backed implementation, a logging decorator and a
// recorder that performs nothing.
package actions

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"dirdigest/internal/mirror"
)

// FS performs mirror actions against a go-billy filesystem.
type FS struct {
	fs billy.Filesystem
}

var (
	_ mirror.Actions = (*FS)(nil)
	_ mirror.Exister = (*FS)(nil)
)

func NewFS(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewOSFS writes to the real filesystem. Paths are absolute.
func NewOSFS() *FS {
	return NewFS(osfs.New("/"))
}

// NewInMemoryFS is backed by memfs, for tests and dry runs.
func NewInMemoryFS() *FS {
	return NewFS(memfs.New())
}

// Raw returns the underlying filesystem.
//
//nolint:ireturn // exposes the adapter target.
func (f *FS) Raw() billy.Filesystem {
	return f.fs
}

func (f *FS) CreateDirectory(path string) error {
	if err := f.fs.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", path, err)
	}
	return nil
}

// CopyFile streams source into destination, truncating destination.
func (f *FS) CopyFile(source, destination string) (err error) {
	in, err := f.fs.Open(source)
	if err != nil {
		return fmt.Errorf("billy: open %q: %w", source, err)
	}
	defer in.Close()

	out, err := f.fs.Create(destination)
	if err != nil {
		return fmt.Errorf("billy: create %q: %w", destination, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("billy: close %q: %w", destination, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("billy: copy %q to %q: %w", source, destination, err)
	}
	return nil
}

func (f *FS) DeleteFile(path string) error {
	if err := f.fs.Remove(path); err != nil {
		return fmt.Errorf("billy: remove %q: %w", path, err)
	}
	return nil
}

// Exists reports whether path is an existing directory.
func (f *FS) Exists(path string) (bool, error) {
	info, err := f.fs.Stat(path)
	switch {
	case err == nil:
		return info.IsDir(), nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, fmt.Errorf("billy: stat %q: %w", path, err)
	}
}
