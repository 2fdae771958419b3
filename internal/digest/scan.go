package digest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"dirdigest/internal/filter"
	"dirdigest/internal/hash"
	"dirdigest/internal/progress"
	"dirdigest/internal/walker"
)

// ErrRead is returned when the tree cannot be listed or a file cannot be
// streamed during a scan. The scan is abandoned and no digest is returned.
var ErrRead = errors.New("read error")

type Options struct {
	// Glob selects candidate files beneath the directory. Defaults to "**/*".
	Glob string
	// Include decides which candidates are hashed. Nil includes all.
	Include filter.Predicate
	// Algorithm defaults to SHA-256.
	Algorithm hash.Algorithm
	// Progress is stepped once per candidate file.
	Progress progress.Reporter
	// FS replaces the real filesystem rooted at the directory. The
	// directory is not created when FS is set.
	FS fs.FS
}

// Scan fingerprints directory, creating it empty if it does not exist.
func Scan(directory string, opts Options) (*DirectoryDigest, error) {
	alg := opts.Algorithm.OrDefault()
	include := opts.Include
	if include == nil {
		include = filter.All
	}
	reporter := opts.Progress
	if reporter == nil {
		reporter = progress.Nop{}
	}

	directory = filepath.Clean(directory)

	fsys := opts.FS
	if fsys == nil {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		fsys = os.DirFS(directory)
	}

	walkResult, err := walker.WalkFS(fsys, directory, opts.Glob)
	if err != nil {
		if errors.Is(err, walker.ErrBadPattern) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	reporter.Start(len(walkResult.Files))
	defer reporter.Finish()

	directoryHash := alg.New()
	fileDigests := make(map[string]string, len(walkResult.Files))
	order := make([]string, 0, len(walkResult.Files))
	excluded := make([]string, 0)

	for _, file := range walkResult.Files {
		if !include(file.Rel) {
			excluded = append(excluded, file.Rel)
			reporter.Step(file.Rel)
			continue
		}

		fileHash := alg.New()
		if err := hash.StreamFS(fsys, file.Name, fileHash, directoryHash); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrRead, file.Rel, err)
		}

		fileDigests[file.Rel] = hash.Hex(fileHash)
		order = append(order, file.Rel)
		reporter.Step(file.Rel)
	}

	return &DirectoryDigest{
		directory:       directory,
		directoryDigest: hash.Hex(directoryHash),
		fileDigests:     fileDigests,
		order:           order,
		filesExcluded:   excluded,
		algorithm:       alg,
	}, nil
}

// ScanRules scans with a glob and signed filter rules ("+re" / "-re").
func ScanRules(directory, glob string, rules []string) (*DirectoryDigest, error) {
	include, err := filter.Compile(rules)
	if err != nil {
		return nil, err
	}
	return Scan(directory, Options{Glob: glob, Include: include})
}
