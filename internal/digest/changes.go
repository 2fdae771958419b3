package digest

import (
	"maps"
	"slices"
)

// ChangeReport describes self relative to other. Added holds self's
// digests; Removed, Changed and Unchanged hold other's.
type ChangeReport struct {
	Added     map[string]string
	Removed   map[string]string
	Changed   map[string]string
	Unchanged map[string]string
	// Excluded is the sorted union of both digests' excluded paths.
	Excluded []string
}

func (r ChangeReport) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0 || len(r.Changed) > 0
}

// ChangesRelativeTo compares the per-file digests of d and other.
func (d *DirectoryDigest) ChangesRelativeTo(other *DirectoryDigest) ChangeReport {
	report := ChangeReport{
		Added:     make(map[string]string),
		Removed:   make(map[string]string),
		Changed:   make(map[string]string),
		Unchanged: make(map[string]string),
	}

	for path, digest := range d.fileDigests {
		if _, ok := other.fileDigests[path]; !ok {
			report.Added[path] = digest
		}
	}

	for path, otherDigest := range other.fileDigests {
		digest, ok := d.fileDigests[path]
		switch {
		case !ok:
			report.Removed[path] = otherDigest
		case digest != otherDigest:
			report.Changed[path] = otherDigest
		default:
			report.Unchanged[path] = otherDigest
		}
	}

	excluded := make(map[string]struct{}, len(d.filesExcluded)+len(other.filesExcluded))
	for _, path := range d.filesExcluded {
		excluded[path] = struct{}{}
	}
	for _, path := range other.filesExcluded {
		excluded[path] = struct{}{}
	}
	report.Excluded = slices.Sorted(maps.Keys(excluded))

	return report
}
