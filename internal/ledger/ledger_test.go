package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentAndRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "condarc")
	original := "channels:\n  - defaults\nssl_verify: true\n"
	require.NoError(t, os.WriteFile(cfg, []byte(original), 0o644))

	led := New(filepath.Join(dir, "ledger.yaml"))
	require.NoError(t, led.CommentOut(cfg))

	commented, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, ModificationLine+"\n#channels:\n#  - defaults\n#ssl_verify: true\n", string(commented))

	paths, err := led.Paths()
	require.NoError(t, err)
	assert.Equal(t, []string{cfg}, paths)

	require.NoError(t, led.Restore())

	restored, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, original, string(restored))

	// Ledger file is consumed by restore.
	_, err = os.Stat(led.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestRestoreNothingRecorded(t *testing.T) {
	led := New(filepath.Join(t.TempDir(), "ledger.yaml"))
	require.NoError(t, led.Restore())
}

func TestRestoreSkipsUnmarkedFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "condarc")
	require.NoError(t, os.WriteFile(cfg, []byte("untouched: true\n"), 0o644))

	led := New(filepath.Join(dir, "ledger.yaml"))
	require.NoError(t, led.Record(cfg))

	// The unmarked file is skipped with a warning, not clobbered.
	require.NoError(t, led.Restore())
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "untouched: true\n", string(data))
}

func TestRecordAppends(t *testing.T) {
	led := New(filepath.Join(t.TempDir(), "ledger.yaml"))
	require.NoError(t, led.Record("/a"))
	require.NoError(t, led.Record("/b"))

	paths, err := led.Paths()
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, paths)
}
