// Package record reads and writes persisted directory digests.
//
// A record has exactly four fields: directory, directory_digest,
// file_digests and files_excluded. JSON is the default encoding; paths
// ending in .yaml or .yml use YAML with the same field names.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformedRecord is returned when a record is missing a field, holds a
// value of the wrong type, or carries a digest that is not lowercase hex.
var ErrMalformedRecord = errors.New("malformed record")

type Record struct {
	Directory       string            `json:"directory" yaml:"directory"`
	DirectoryDigest string            `json:"directory_digest" yaml:"directory_digest"`
	FileDigests     map[string]string `json:"file_digests" yaml:"file_digests"`
	FilesExcluded   []string          `json:"files_excluded" yaml:"files_excluded"`
}

// rawRecord uses pointers so absent fields can be told apart from empty ones.
type rawRecord struct {
	Directory       *string            `json:"directory" yaml:"directory"`
	DirectoryDigest *string            `json:"directory_digest" yaml:"directory_digest"`
	FileDigests     *map[string]string `json:"file_digests" yaml:"file_digests"`
	FilesExcluded   *[]string          `json:"files_excluded" yaml:"files_excluded"`
}

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFor picks the encoding from a file name.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Marshal encodes r. Nil collections are written as empty ones so the
// output always carries all four fields.
func Marshal(r Record, format Format) ([]byte, error) {
	if r.FileDigests == nil {
		r.FileDigests = map[string]string{}
	}
	if r.FilesExcluded == nil {
		r.FilesExcluded = []string{}
	}

	switch format {
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("failed to marshal record: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal record: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// Unmarshal decodes and validates a record.
func Unmarshal(data []byte, format Format) (Record, error) {
	var raw rawRecord

	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	switch {
	case raw.Directory == nil:
		return Record{}, fmt.Errorf("%w: missing directory", ErrMalformedRecord)
	case raw.DirectoryDigest == nil:
		return Record{}, fmt.Errorf("%w: missing directory_digest", ErrMalformedRecord)
	case raw.FileDigests == nil || *raw.FileDigests == nil:
		return Record{}, fmt.Errorf("%w: missing file_digests", ErrMalformedRecord)
	case raw.FilesExcluded == nil || *raw.FilesExcluded == nil:
		return Record{}, fmt.Errorf("%w: missing files_excluded", ErrMalformedRecord)
	}

	r := Record{
		Directory:       *raw.Directory,
		DirectoryDigest: *raw.DirectoryDigest,
		FileDigests:     *raw.FileDigests,
		FilesExcluded:   *raw.FilesExcluded,
	}
	if err := Validate(r); err != nil {
		return Record{}, err
	}

	return r, nil
}

// Validate checks digests are lowercase hex and paths are rooted.
func Validate(r Record) error {
	if !isLowerHex(r.DirectoryDigest) {
		return fmt.Errorf("%w: directory_digest %q is not lowercase hex", ErrMalformedRecord, r.DirectoryDigest)
	}
	for path, digest := range r.FileDigests {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%w: file path %q must start with /", ErrMalformedRecord, path)
		}
		if !isLowerHex(digest) {
			return fmt.Errorf("%w: digest of %q is not lowercase hex", ErrMalformedRecord, path)
		}
	}
	for _, path := range r.FilesExcluded {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%w: excluded path %q must start with /", ErrMalformedRecord, path)
		}
	}
	return nil
}

func isLowerHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Save writes r to path, creating parent directories as needed.
func Save(r Record, path string) error {
	data, err := Marshal(r, FormatFor(path))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read file: %w", err)
	}

	r, err := Unmarshal(data, FormatFor(path))
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
