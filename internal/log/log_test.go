package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStderrLevels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Stderr: &buf}))
	t.Cleanup(Close)

	Debug("hidden debug")
	Warn("visible warning")

	out := buf.String()
	assert.NotContains(t, out, "hidden debug")
	assert.Contains(t, out, "visible warning")
}

func TestInitVerbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Verbose: true, Stderr: &buf}))
	t.Cleanup(Close)

	Debug("request detail", "service", "ec2")

	out := buf.String()
	assert.Contains(t, out, "request detail")
	assert.Contains(t, out, "service=ec2")
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{JSONFormat: true, Stderr: &buf}))
	t.Cleanup(Close)

	Error("boom", "code", 500)

	out := buf.String()
	assert.Contains(t, out, `"msg":"boom"`)
	assert.Contains(t, out, `"code":500`)
}

func TestInitFileHandler(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Stderr: &buf, LogDir: dir}))

	// Debug records are filtered from stderr but always hit the file.
	Debug("trace line", "k", "v")
	Close()

	assert.NotContains(t, buf.String(), "trace line")

	today := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(dir, today+".jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"trace line"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Verbose: true, Stderr: &buf}))
	t.Cleanup(Close)

	With("bucket", "my-bucket").Info("resolved")

	assert.Contains(t, buf.String(), "bucket=my-bucket")
}
