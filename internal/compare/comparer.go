package compare

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"dirdigest/internal/digest"
	"dirdigest/internal/mirror"
)

type ChangeType string

const (
	Added     ChangeType = "ADDED"
	Removed   ChangeType = "REMOVED"
	Changed   ChangeType = "CHANGED"
	Copied    ChangeType = "COPIED"
	Deleted   ChangeType = "DELETED"
	Unchanged ChangeType = "UNCHANGED"
)

type Change struct {
	Type   ChangeType
	Path   string
	Digest string
}

// Changes flattens a report into a list sorted by path within each type.
func Changes(report digest.ChangeReport) []Change {
	var out []Change
	out = appendChanges(out, Added, report.Added)
	out = appendChanges(out, Removed, report.Removed)
	out = appendChanges(out, Changed, report.Changed)
	return out
}

func appendChanges(out []Change, t ChangeType, set map[string]string) []Change {
	for _, path := range slices.Sorted(maps.Keys(set)) {
		out = append(out, Change{Type: t, Path: path, Digest: set[path]})
	}
	return out
}

// FormatReport renders a change report of a relative to b.
func FormatReport(report digest.ChangeReport) string {
	if !report.HasChanges() {
		return fmt.Sprintf("No changes detected (%d unchanged, %d excluded).\n",
			len(report.Unchanged), len(report.Excluded))
	}

	var sb strings.Builder
	sb.WriteString("Changes detected:\n\n")

	writeSection(&sb, Added, "+", report.Added)
	writeSection(&sb, Removed, "-", report.Removed)
	writeSection(&sb, Changed, "~", report.Changed)

	fmt.Fprintf(&sb, "Summary: %d added, %d removed, %d changed, %d unchanged, %d excluded\n",
		len(report.Added), len(report.Removed), len(report.Changed),
		len(report.Unchanged), len(report.Excluded))

	return sb.String()
}

// FormatMirror renders the outcome of a mirror run.
func FormatMirror(result *mirror.Result) string {
	var sb strings.Builder

	if !result.HasChanges() {
		sb.WriteString("Destination already up to date.\n")
	} else {
		writeSection(&sb, Copied, ">", result.Copied)
		writeSection(&sb, Deleted, "x", result.Deleted)
	}

	fmt.Fprintf(&sb, "Summary: %d copied, %d deleted, %d unchanged, %d excluded\n",
		len(result.Copied), len(result.Deleted), len(result.Unchanged), len(result.Excluded))

	return sb.String()
}

func writeSection(sb *strings.Builder, t ChangeType, marker string, set map[string]string) {
	if len(set) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s (%d files):\n", t, len(set))
	for _, path := range slices.Sorted(maps.Keys(set)) {
		fmt.Fprintf(sb, "  %s %s (%s)\n", marker, path, short(set[path]))
	}
	sb.WriteString("\n")
}

func short(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}
