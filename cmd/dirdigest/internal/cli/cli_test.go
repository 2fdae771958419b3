package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirdigest/internal/digest"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}
}

// execute runs the CLI with a config path that does not exist, so the
// built-in defaults apply.
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	cfg := filepath.Join(t.TempDir(), "absent.yaml")
	code := run(append([]string{"-c", cfg}, args...))
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, "version")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "dirdigest dev")
}

func TestScan_WritesRecord(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"test-1.txt": "a", "test-2.bin": "bb"})
	output := filepath.Join(t.TempDir(), "out", "digest.json")

	code, out, errOut := execute(t, "scan", "-r", `-\.txt$`, dir, output)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Files:       1")

	d, err := digest.Load(output)
	require.NoError(t, err)
	assert.Equal(t, []string{"/test-2.bin"}, d.Paths())
	assert.Equal(t, []string{"/test-1.txt"}, d.FilesExcluded())
}

func TestScan_PrintsJSON(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"x": "x"})

	code, out, errOut := execute(t, "scan", dir)
	require.Equal(t, exitOK, code, errOut)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "directory")
	assert.Contains(t, doc, "directory_digest")
	assert.Contains(t, doc, "file_digests")
	assert.Contains(t, doc, "files_excluded")
	assert.Len(t, doc, 4)
}

func TestScan_XXH64CannotBeSaved(t *testing.T) {
	code, _, errOut := execute(t, "scan", "--algorithm", "xxh64", t.TempDir())

	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "cannot be persisted")
}

func TestScan_InvalidRule(t *testing.T) {
	code, _, errOut := execute(t, "scan", "-r", "oops", t.TempDir())

	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "invalid filter rule")
}

func TestDiff(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeTree(t, a, map[string]string{"same": "1", "changed": "old", "only-a": "a"})
	writeTree(t, b, map[string]string{"same": "1", "changed": "new", "only-b": "b"})

	code, out, errOut := execute(t, "diff", a, b)
	require.Equal(t, exitChanges, code, errOut)
	assert.Contains(t, out, "+ /only-a")
	assert.Contains(t, out, "- /only-b")
	assert.Contains(t, out, "~ /changed")

	code, out, errOut = execute(t, "diff", a, a)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "No changes detected")
}

func TestDiff_RecordAgainstDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"f": "content"})
	saved := filepath.Join(t.TempDir(), "before.yaml")

	code, _, errOut := execute(t, "scan", dir, saved)
	require.Equal(t, exitOK, code, errOut)

	writeTree(t, dir, map[string]string{"g": "later"})

	code, out, errOut := execute(t, "diff", "--json", dir, saved)
	require.Equal(t, exitChanges, code, errOut)

	var output DiffOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	assert.False(t, output.Equal)
	assert.Contains(t, output.Added, "/g")
	assert.Contains(t, output.Unchanged, "/f")
}

func TestDiff_MissingPath(t *testing.T) {
	code, _, _ := execute(t, "diff", filepath.Join(t.TempDir(), "nope"), t.TempDir())
	assert.Equal(t, exitError, code)
}

func TestMirror_Verify(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "dest")
	writeTree(t, src, map[string]string{"x": "x", "nested/y": "y"})
	writeTree(t, dest, map[string]string{"stale": "z"})

	code, out, errOut := execute(t, "mirror", "--verify", "-w", "2", src, dest)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Summary: 2 copied, 1 deleted")
	assert.Contains(t, out, "Destination verified")
	assert.Contains(t, errOut, "copy-file")

	assert.FileExists(t, filepath.Join(dest, "nested", "y"))
	assert.NoFileExists(t, filepath.Join(dest, "stale"))

	code, out, errOut = execute(t, "mirror", src, dest)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "already up to date")
}

func TestMirror_DryRun(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"x": "x"})
	writeTree(t, dest, map[string]string{"keep": "k"})

	code, out, errOut := execute(t, "mirror", "--dry-run", src, dest)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "Summary: 1 copied, 1 deleted")

	assert.NoFileExists(t, filepath.Join(dest, "x"))
	assert.FileExists(t, filepath.Join(dest, "keep"))
}

func TestMirror_FromRecord(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeTree(t, src, map[string]string{"a.bin": "a", "b.txt": "b"})
	saved := filepath.Join(t.TempDir(), "src.json")

	code, _, errOut := execute(t, "scan", "-r", `-\.txt$`, src, saved)
	require.Equal(t, exitOK, code, errOut)

	code, _, errOut = execute(t, "mirror", "-r", `-\.txt$`, saved, dest)
	require.Equal(t, exitOK, code, errOut)

	assert.FileExists(t, filepath.Join(dest, "a.bin"))
	assert.NoFileExists(t, filepath.Join(dest, "b.txt"))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"keep.go": "package x", "drop.md": "# x"})
	cfgPath := filepath.Join(t.TempDir(), "dirdigest.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("rules = ['-\\.md$']\n"), 0644))
	output := filepath.Join(t.TempDir(), "digest.json")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	code := run([]string{"-c", cfgPath, "scan", dir, output})
	require.Equal(t, exitOK, code, stderr.String())

	d, err := digest.Load(output)
	require.NoError(t, err)
	assert.Equal(t, []string{"/keep.go"}, d.Paths())
}
