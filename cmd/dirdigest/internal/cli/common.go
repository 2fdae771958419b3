package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"dirdigest/internal/digest"
	"dirdigest/internal/progress"
)

func reporter(label string) progress.Reporter {
	if !globalFlags.progress {
		return progress.Nop{}
	}
	return progress.New(os.Stderr, label)
}

// scanDirectory fingerprints dir with the current settings.
func scanDirectory(dir string) (*digest.DirectoryDigest, error) {
	absDirectory, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	current.logger.Debug().Str("directory", absDirectory).Str("glob", current.cfg.Glob).
		Str("algorithm", current.algorithm.Name).Msg("scanning directory")

	d, err := digest.Scan(absDirectory, digest.Options{
		Glob:      current.cfg.Glob,
		Include:   current.include,
		Algorithm: current.algorithm,
		Progress:  reporter("hashing"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", absDirectory, err)
	}

	current.logger.Info().Str("directory", absDirectory).Int("files", d.Len()).
		Int("excluded", len(d.FilesExcluded())).Str("digest", d.DirectoryDigest()).Msg("scanned")
	return d, nil
}

// resolve loads arg as a saved record when it is a file and scans it when
// it is a directory. Missing paths are an error here; only mirror
// destinations are created on demand.
func resolve(arg string) (*digest.DirectoryDigest, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return scanDirectory(arg)
	}

	d, err := digest.Load(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	current.logger.Info().Str("record", arg).Str("directory", d.Directory()).
		Int("files", d.Len()).Msg("loaded record")
	return d, nil
}
