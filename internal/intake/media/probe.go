package media

import (
	"context"
	"fmt"
)

// ProbeFunc returns the duration in seconds of the media file at path.
type ProbeFunc func(ctx context.Context, path string) (float64, error)

// PathDurationReader reads durations of files that live on disk.
type PathDurationReader struct {
	Probe ProbeFunc
}

// ReadDuration implements DurationReader.
func (r PathDurationReader) ReadDuration(ctx context.Context, f File) (float64, error) {
	local, ok := f.(interface{ Path() string })
	if !ok {
		return 0, fmt.Errorf("%s: duration requires a file on disk", f.Name())
	}
	return r.Probe(ctx, local.Path())
}
