package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestURIPassthrough(t *testing.T) {
	for _, uri := range []string{
		"file:///media/clip.mp4",
		"https://example.com/stream.m3u8",
		"rtsp://camera.local/feed",
	} {
		got, err := NormalizeURI(uri)
		require.NoError(t, err)
		require.Equal(t, uri, got)
	}
}

func TestFilenameConversion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	got, err := NormalizeURI(path)
	require.NoError(t, err)
	require.Equal(t, "file://"+path, got)
}

func TestUnusableInputReportsBothFailures(t *testing.T) {
	_, err := NormalizeURI("not-a-valid::uri")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "file URI")
}

func TestMissingFileFails(t *testing.T) {
	_, err := NormalizeURI(filepath.Join(t.TempDir(), "missing.mp4"))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidInput)
}
