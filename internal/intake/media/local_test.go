package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestOpenLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(path, pngHeader, 0o644))

	f, err := OpenLocal(path)
	require.NoError(t, err)
	assert.Equal(t, "cover.png", f.Name())
	assert.Equal(t, int64(len(pngHeader)), f.Size())
	assert.Equal(t, "image/png", f.ContentType())
	assert.NoError(t, NewChecker(DefaultLimits(), nil).CheckStatic(RoleCover, f))

	_, err = OpenLocal(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestOpenLocalMislabelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.jpg")
	require.NoError(t, os.WriteFile(path, []byte("plain text pretending to be a photo"), 0o644))

	f, err := OpenLocal(path)
	require.NoError(t, err)
	assert.Equal(t, ReasonContentType, reason(t, NewChecker(DefaultLimits(), nil).CheckStatic(RoleCover, f)))
}

func TestPathDurationReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "film.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	f, err := OpenLocal(path)
	require.NoError(t, err)

	var probed string
	reader := PathDurationReader{Probe: func(_ context.Context, p string) (float64, error) {
		probed = p
		return 42, nil
	}}

	d, err := reader.ReadDuration(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 42.0, d)
	assert.Equal(t, path, probed)

	_, err = reader.ReadDuration(context.Background(), NewMemoryFile("film.mp4", "video/mp4", nil))
	assert.Error(t, err)
}
