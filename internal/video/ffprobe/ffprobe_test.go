package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "duration": "149.980000", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "duration": "150.010000"}
  ],
  "format": {"filename": "film.mp4", "nb_streams": 2, "format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "150.016000", "size": "1048576"}
}`

func TestParse(t *testing.T) {
	res, err := Parse([]byte(report))
	require.NoError(t, err)
	assert.Equal(t, 149.98, res.FirstStreamDuration())
	assert.Equal(t, 150.016, res.DurationSeconds())
	assert.Equal(t, 1, res.VideoStreamCount())

	_, err = Parse([]byte("not json"))
	assert.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	assert.Zero(t, Result{}.FirstStreamDuration())
	assert.Zero(t, Result{Streams: []Stream{{Duration: "N/A"}}}.FirstStreamDuration())
	assert.True(t, math.IsNaN(Result{Format: Format{Duration: "bad"}}.DurationSeconds()))
}

func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestInspect(t *testing.T) {
	bin := fakeBinary(t, "cat <<'JSON'\n"+report+"\nJSON\n")
	p := NewProber(&Config{Path: bin, Timeout: 5 * time.Second}, logger.NewNop())

	res, err := p.Inspect(context.Background(), "/tmp/film.mp4")
	require.NoError(t, err)
	assert.Len(t, res.Streams, 2)

	_, err = p.Inspect(context.Background(), " ")
	assert.Error(t, err)
}

func TestInspectFailure(t *testing.T) {
	bin := fakeBinary(t, "echo 'Invalid data found when processing input' >&2\nexit 1\n")
	p := NewProber(&Config{Path: bin}, logger.NewNop())

	_, err := p.Inspect(context.Background(), "/tmp/garbage.mp4")
	assert.Error(t, err)

	missing := NewProber(&Config{Path: filepath.Join(t.TempDir(), "nope")}, logger.NewNop())
	_, err = missing.Inspect(context.Background(), "/tmp/film.mp4")
	assert.Error(t, err)
}

func TestInspectTimeout(t *testing.T) {
	bin := fakeBinary(t, "exec sleep 5\n")
	p := NewProber(&Config{Path: bin, Timeout: 50 * time.Millisecond}, logger.NewNop())

	start := time.Now()
	_, err := p.Inspect(context.Background(), "/tmp/film.mp4")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}
