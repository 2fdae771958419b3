package actions

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirdigest/internal/mirror"
)

func TestFS_InMemory(t *testing.T) {
	fs := NewInMemoryFS()
	require.NoError(t, util.WriteFile(fs.Raw(), "/src/file.txt", []byte("payload"), 0644))

	exists, err := fs.Exists("/dst/sub")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.CreateDirectory("/dst/sub"))
	exists, err = fs.Exists("/dst/sub")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, fs.CopyFile("/src/file.txt", "/dst/sub/file.txt"))
	data, err := util.ReadFile(fs.Raw(), "/dst/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, fs.DeleteFile("/dst/sub/file.txt"))
	_, err = fs.Raw().Stat("/dst/sub/file.txt")
	assert.True(t, os.IsNotExist(err))
}

func TestFS_CopyOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("much older content"), 0644))

	require.NoError(t, NewOSFS().CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFS_FailsLoudly(t *testing.T) {
	fs := NewInMemoryFS()

	assert.Error(t, fs.CopyFile("/missing", "/dst"))
	assert.Error(t, fs.DeleteFile("/missing"))
}

func TestFS_ExistsIsFalseForFiles(t *testing.T) {
	fs := NewInMemoryFS()
	require.NoError(t, util.WriteFile(fs.Raw(), "/file", []byte("x"), 0644))

	exists, err := fs.Exists("/file")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder("/known")

	exists, _ := rec.Exists("/known")
	assert.True(t, exists)
	exists, _ = rec.Exists("/new")
	assert.False(t, exists)

	require.NoError(t, rec.CreateDirectory("/new"))
	exists, _ = rec.Exists("/new")
	assert.True(t, exists)

	require.NoError(t, rec.CopyFile("/a", "/b"))
	rec.FailOn(mirror.OpDeleteFile, "/b", os.ErrPermission)
	assert.ErrorIs(t, rec.DeleteFile("/b"), os.ErrPermission)

	assert.Equal(t, []Call{
		{Op: mirror.OpCreateDirectory, Path: "/new"},
		{Op: mirror.OpCopyFile, Source: "/a", Path: "/b"},
		{Op: mirror.OpDeleteFile, Path: "/b"},
	}, rec.Calls())
	assert.Equal(t, 1, rec.Count(mirror.OpCopyFile))
}

func TestRecorder_Base(t *testing.T) {
	fs := NewInMemoryFS()
	require.NoError(t, fs.CreateDirectory("/on/disk"))

	rec := NewRecorder()
	rec.Base = fs

	exists, err := rec.Exists("/on/disk")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Empty(t, rec.Calls())
}

func TestLogging_DelegatesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder()
	logged := NewLogging(rec, zerolog.New(&buf))

	require.NoError(t, logged.CreateDirectory("/d"))
	require.NoError(t, logged.CopyFile("/s/f", "/d/f"))

	rec.FailOn(mirror.OpDeleteFile, "/d/f", errors.New("busy"))
	assert.Error(t, logged.DeleteFile("/d/f"))

	assert.Len(t, rec.Calls(), 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "copy-file", entry["op"])
	assert.Equal(t, "/s/f", entry["source"])
	assert.Equal(t, "/d/f", entry["path"])

	require.NoError(t, json.Unmarshal([]byte(lines[3]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "busy", entry["error"])
}

func TestLogging_ExistsFollowsWrapped(t *testing.T) {
	rec := NewRecorder("/there")
	logged := NewLogging(rec, zerolog.Nop())

	exists, err := logged.Exists("/there")
	require.NoError(t, err)
	assert.True(t, exists)
}
