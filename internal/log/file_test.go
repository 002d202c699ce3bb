package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(dir)
	require.NoError(t, err)
	defer fw.Close()

	_, err = fw.Write([]byte(`{"msg":"hello"}` + "\n"))
	require.NoError(t, err)

	today := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, today+".jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestFileWriterAppends(t *testing.T) {
	dir := t.TempDir()

	fw, err := NewFileWriter(dir)
	require.NoError(t, err)
	_, err = fw.Write([]byte("first\n"))
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	fw, err = NewFileWriter(dir)
	require.NoError(t, err)
	_, err = fw.Write([]byte("second\n"))
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	today := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, today+".jsonl"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()

	old := time.Now().AddDate(0, 0, -30).Format("2006-01-02") + ".jsonl"
	recent := time.Now().Format("2006-01-02") + ".jsonl"
	unrelated := "notes.txt"
	for _, name := range []string{old, recent, unrelated} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	Cleanup(dir, 14)

	_, err := os.Stat(filepath.Join(dir, old))
	assert.True(t, os.IsNotExist(err), "old log should be removed")
	_, err = os.Stat(filepath.Join(dir, recent))
	assert.NoError(t, err, "recent log should survive")
	_, err = os.Stat(filepath.Join(dir, unrelated))
	assert.NoError(t, err, "non-log files are never touched")
}

func TestCleanupMissingDir(t *testing.T) {
	// Must not panic or create anything.
	Cleanup(filepath.Join(t.TempDir(), "does-not-exist"), 7)
}
