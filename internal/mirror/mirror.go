// Package mirror converges a destination tree onto a source tree using two
// precomputed digests.
//
// The engine never re-scans. It deletes what the source lacks, copies what
// the destination lacks or holds in a different version, and stops at the
// first failing action. Actions already applied are not rolled back;
// scanning the destination again and mirroring once more converges it.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"dirdigest/internal/digest"
	"dirdigest/internal/progress"
)

// Actions is the only writer during a mirror run. Implementations must
// return an error rather than skip an action they could not perform.
type Actions interface {
	// CreateDirectory creates path and any missing parents.
	CreateDirectory(path string) error
	CopyFile(source, destination string) error
	DeleteFile(path string) error
}

// Exister may be implemented by Actions to answer directory existence
// against the same filesystem they write to. Without it the engine asks
// the operating system.
type Exister interface {
	Exists(path string) (bool, error)
}

type Op string

const (
	OpCreateDirectory Op = "create-directory"
	OpCopyFile        Op = "copy-file"
	OpDeleteFile      Op = "delete-file"
)

// ErrAction matches every *ActionError.
var ErrAction = errors.New("mirror action failed")

// ActionError records which action aborted the run.
type ActionError struct {
	Op   Op
	Path string
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ActionError) Unwrap() []error {
	return []error{ErrAction, e.Err}
}

// Result reports the run from the mirror's point of view. Copied and
// Deleted only hold actions that completed.
type Result struct {
	Copied    map[string]string
	Deleted   map[string]string
	Unchanged map[string]string
	Excluded  []string
}

func (r *Result) HasChanges() bool {
	return len(r.Copied) > 0 || len(r.Deleted) > 0
}

type Engine struct {
	Actions Actions
	// Workers bounds concurrent copy and delete actions. Values below 2 run
	// every action in order on the calling goroutine.
	Workers  int
	Progress progress.Reporter
}

func New(actions Actions) *Engine {
	return &Engine{Actions: actions}
}

// MirrorFrom runs a sequential mirror with actions.
func MirrorFrom(destination, source *digest.DirectoryDigest, actions Actions) (*Result, error) {
	return New(actions).MirrorFrom(destination, source)
}

// run holds the state of a single MirrorFrom call. An Engine may serve
// concurrent calls; they share nothing but Actions.
type run struct {
	actions Actions

	mu      sync.Mutex
	created map[string]bool
}

// MirrorFrom makes destination match source. Deletes run before copies so
// a destination file standing where the source has a directory is gone
// before the directory is created. On failure the returned result
// describes the actions applied before the error.
func (e *Engine) MirrorFrom(destination, source *digest.DirectoryDigest) (*Result, error) {
	changes := destination.ChangesRelativeTo(source)

	toCopy := make(map[string]string, len(changes.Removed)+len(changes.Changed))
	maps.Copy(toCopy, changes.Removed)
	maps.Copy(toCopy, changes.Changed)

	result := &Result{
		Copied:    make(map[string]string),
		Deleted:   make(map[string]string),
		Unchanged: changes.Unchanged,
		Excluded:  changes.Excluded,
	}

	reporter := e.Progress
	if reporter == nil {
		reporter = progress.Nop{}
	}
	reporter.Start(len(toCopy) + len(changes.Added))
	defer reporter.Finish()

	r := &run{actions: e.Actions, created: make(map[string]bool)}

	copyPaths := slices.Sorted(maps.Keys(toCopy))
	deletePaths := slices.Sorted(maps.Keys(changes.Added))

	copyOne := func(rel string) error {
		sourcePath := join(source.Directory(), rel)
		destPath := join(destination.Directory(), rel)

		if err := r.ensureDirectory(filepath.Dir(destPath)); err != nil {
			return err
		}
		if err := r.actions.CopyFile(sourcePath, destPath); err != nil {
			return &ActionError{Op: OpCopyFile, Path: destPath, Err: err}
		}

		r.mu.Lock()
		result.Copied[rel] = toCopy[rel]
		r.mu.Unlock()
		reporter.Step(rel)
		return nil
	}

	deleteOne := func(rel string) error {
		destPath := join(destination.Directory(), rel)
		if err := r.actions.DeleteFile(destPath); err != nil {
			return &ActionError{Op: OpDeleteFile, Path: destPath, Err: err}
		}

		r.mu.Lock()
		result.Deleted[rel] = changes.Added[rel]
		r.mu.Unlock()
		reporter.Step(rel)
		return nil
	}

	if e.Workers < 2 {
		for _, rel := range deletePaths {
			if err := deleteOne(rel); err != nil {
				return result, err
			}
		}
		for _, rel := range copyPaths {
			if err := copyOne(rel); err != nil {
				return result, err
			}
		}
		return result, nil
	}

	if err := runParallel(e.Workers, deletePaths, deleteOne); err != nil {
		return result, err
	}
	// Directories are created up front so concurrent copies never race to
	// create the same parent.
	for _, rel := range copyPaths {
		if err := r.ensureDirectory(filepath.Dir(join(destination.Directory(), rel))); err != nil {
			return result, err
		}
	}
	if err := runParallel(e.Workers, copyPaths, copyOne); err != nil {
		return result, err
	}

	return result, nil
}

// runParallel applies fn to every path with at most workers in flight.
// After the first failure no further paths are started.
func runParallel(workers int, paths []string, fn func(string) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for _, rel := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			return fn(rel)
		})
	}

	return g.Wait()
}

// ensureDirectory creates dir once per run when it does not already exist.
func (r *run) ensureDirectory(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.created[dir] {
		return nil
	}

	exists, err := DirectoryExists(r.actions, dir)
	if err != nil {
		return &ActionError{Op: OpCreateDirectory, Path: dir, Err: err}
	}
	if !exists {
		if err := r.actions.CreateDirectory(dir); err != nil {
			return &ActionError{Op: OpCreateDirectory, Path: dir, Err: err}
		}
	}

	r.created[dir] = true
	return nil
}

// DirectoryExists asks actions when they implement Exister and the
// operating system otherwise.
func DirectoryExists(actions Actions, dir string) (bool, error) {
	if ex, ok := actions.(Exister); ok {
		return ex.Exists(dir)
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil:
		return info.IsDir(), nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

// join resolves a relative digest path ("/dir/file") under root.
func join(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
