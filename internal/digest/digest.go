// Package digest fingerprints a directory tree and reports how two
// fingerprints differ.
//
// A DirectoryDigest holds one aggregate hash over the bytes of every
// included file, fed in enumeration order, plus an independent hash per
// file keyed by its relative path ("/dir/file"). Two digests are equal
// when their aggregate hashes are equal. Because the aggregate depends on
// enumeration order while the per-file map does not, two trees holding the
// same files can compare unequal yet report no changes.
package digest

import (
	"encoding/hex"
	"maps"
	"slices"

	"dirdigest/internal/hash"
)

// DirectoryDigest is immutable once built. Accessors return copies.
type DirectoryDigest struct {
	directory       string
	directoryDigest string
	fileDigests     map[string]string
	order           []string
	filesExcluded   []string
	algorithm       hash.Algorithm
}

// New assembles a SHA-256 digest from its parts. Paths are ordered by
// name since a map carries no enumeration order.
func New(directory, directoryDigest string, fileDigests map[string]string, filesExcluded []string) *DirectoryDigest {
	files := maps.Clone(fileDigests)
	if files == nil {
		files = map[string]string{}
	}
	order := slices.Sorted(maps.Keys(files))

	excluded := slices.Clone(filesExcluded)
	if excluded == nil {
		excluded = []string{}
	}

	return &DirectoryDigest{
		directory:       directory,
		directoryDigest: directoryDigest,
		fileDigests:     files,
		order:           order,
		filesExcluded:   excluded,
		algorithm:       hash.SHA256,
	}
}

func (d *DirectoryDigest) Directory() string { return d.directory }

func (d *DirectoryDigest) DirectoryDigest() string { return d.directoryDigest }

func (d *DirectoryDigest) Algorithm() hash.Algorithm { return d.algorithm }

// FileDigests returns a copy of the path to digest map.
func (d *DirectoryDigest) FileDigests() map[string]string {
	return maps.Clone(d.fileDigests)
}

// FileDigest looks up a single relative path.
func (d *DirectoryDigest) FileDigest(path string) (string, bool) {
	digest, ok := d.fileDigests[path]
	return digest, ok
}

// Paths lists included paths in enumeration order.
func (d *DirectoryDigest) Paths() []string {
	return slices.Clone(d.order)
}

// FilesExcluded lists paths the filter rejected, in enumeration order.
func (d *DirectoryDigest) FilesExcluded() []string {
	return slices.Clone(d.filesExcluded)
}

// Len is the number of included files.
func (d *DirectoryDigest) Len() int { return len(d.fileDigests) }

// Equal compares aggregate digests only; directory and maps are ignored.
func (d *DirectoryDigest) Equal(other *DirectoryDigest) bool {
	return d.directoryDigest == other.directoryDigest
}

func (d *DirectoryDigest) NotEqual(other *DirectoryDigest) bool {
	return !d.Equal(other)
}

// Equal reports whether a and b have the same aggregate digest.
func Equal(a, b *DirectoryDigest) bool { return a.Equal(b) }

// Identical compares all four persisted fields.
func Identical(a, b *DirectoryDigest) bool {
	return a.directory == b.directory &&
		a.directoryDigest == b.directoryDigest &&
		maps.Equal(a.fileDigests, b.fileDigests) &&
		slices.Equal(a.filesExcluded, b.filesExcluded)
}

// MerkleRoot returns a root over the (path, digest) pairs sorted by path.
// Unlike DirectoryDigest it does not depend on enumeration order. It is
// informational and plays no part in equality.
func (d *DirectoryDigest) MerkleRoot() (string, error) {
	paths := slices.Sorted(maps.Keys(d.fileDigests))

	leaves := make([][]byte, 0, len(paths))
	for _, path := range paths {
		leaves = append(leaves, []byte(path+"\x00"+d.fileDigests[path]))
	}

	root, err := hash.MerkleRoot(d.algorithm, leaves)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(root), nil
}
