package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	stdhash "hash"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ChunkSize is the read size used when streaming file contents.
const ChunkSize = 4096

// Algorithm is a named hash constructor.
type Algorithm struct {
	Name string
	New  func() stdhash.Hash
}

var (
	// SHA256 is the algorithm persisted in records.
	SHA256 = Algorithm{Name: "sha256", New: sha256.New}

	// XXH64 trades collision resistance for speed. Digests built with it
	// are only meant to be compared in memory.
	XXH64 = Algorithm{Name: "xxh64", New: func() stdhash.Hash { return xxhash.New() }}
)

var algorithms = []Algorithm{SHA256, XXH64}

// Lookup returns the algorithm registered under name (case-insensitive).
// An empty name selects SHA256.
func Lookup(name string) (Algorithm, error) {
	if name == "" {
		return SHA256, nil
	}
	for _, alg := range algorithms {
		if strings.EqualFold(alg.Name, name) {
			return alg, nil
		}
	}
	return Algorithm{}, fmt.Errorf("unknown hash algorithm %q", name)
}

// OrDefault returns a, or SHA256 when a is the zero value.
func (a Algorithm) OrDefault() Algorithm {
	if a.New == nil {
		return SHA256
	}
	return a
}

// Sum hashes data in one shot. Its signature matches the hash function
// type expected by go-merkletree.
func (a Algorithm) Sum(data []byte) ([]byte, error) {
	h := a.OrDefault().New()
	if _, err := h.Write(data); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// Hex encodes a finished accumulator as lowercase hex.
func Hex(h stdhash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// StreamFile reads path in ChunkSize chunks and writes every chunk to each
// sink in order. The file is closed on every return path.
func StreamFile(path string, sinks ...io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return stream(file, sinks)
}

// StreamFS is StreamFile for a file named inside fsys.
func StreamFS(fsys fs.FS, name string, sinks ...io.Writer) error {
	file, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return stream(file, sinks)
}

func stream(r io.Reader, sinks []io.Writer) error {
	buf := make([]byte, ChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, sink := range sinks {
				if _, werr := sink.Write(buf[:n]); werr != nil {
					return fmt.Errorf("failed to hash chunk: %w", werr)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
	}

	return nil
}

// HashFile computes the lowercase hex digest of a single file.
func HashFile(path string, alg Algorithm) (string, error) {
	h := alg.OrDefault().New()
	if err := StreamFile(path, h); err != nil {
		return "", err
	}
	return Hex(h), nil
}
