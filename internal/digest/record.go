package digest

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"dirdigest/internal/hash"
	"dirdigest/internal/record"
)

// ErrNotPersistable is returned when a digest built with an algorithm other
// than SHA-256 is turned into a record.
var ErrNotPersistable = errors.New("digest cannot be persisted")

// Record converts d to its persisted form.
func (d *DirectoryDigest) Record() (record.Record, error) {
	if d.algorithm.Name != hash.SHA256.Name {
		return record.Record{}, fmt.Errorf("%w: records are %s, digest is %s",
			ErrNotPersistable, hash.SHA256.Name, d.algorithm.Name)
	}

	return record.Record{
		Directory:       d.directory,
		DirectoryDigest: d.directoryDigest,
		FileDigests:     maps.Clone(d.fileDigests),
		FilesExcluded:   slices.Clone(d.filesExcluded),
	}, nil
}

// FromRecord validates r and rebuilds the digest it describes.
func FromRecord(r record.Record) (*DirectoryDigest, error) {
	if r.FileDigests == nil || r.FilesExcluded == nil {
		return nil, fmt.Errorf("%w: missing file_digests or files_excluded", record.ErrMalformedRecord)
	}
	if err := record.Validate(r); err != nil {
		return nil, err
	}
	return New(r.Directory, r.DirectoryDigest, r.FileDigests, r.FilesExcluded), nil
}

// Load reads a saved record from path.
func Load(path string) (*DirectoryDigest, error) {
	r, err := record.Load(path)
	if err != nil {
		return nil, err
	}
	return FromRecord(r)
}

// Save writes d to path as JSON, or YAML for .yaml/.yml paths.
func Save(d *DirectoryDigest, path string) error {
	r, err := d.Record()
	if err != nil {
		return err
	}
	return record.Save(r, path)
}
