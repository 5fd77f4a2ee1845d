package media

import (
	"context"
	"io"
)

// Role identifies the slot a file is attached to.
type Role string

const (
	RoleVideo    Role = "video"
	RoleCover    Role = "cover"
	RoleStill    Role = "still"
	RoleSubtitle Role = "subtitle"
)

// File is a candidate upload. ContentType is the type declared by the
// source of the file, which may be wrong or empty.
type File interface {
	Name() string
	Size() int64
	ContentType() string
	Open() (io.ReadCloser, error)
}

// DurationReader estimates the playback duration of a video in seconds.
type DurationReader interface {
	ReadDuration(ctx context.Context, f File) (float64, error)
}

// Preview is a scoped resource created for an attached file.
type Preview interface {
	Release()
}

// PreviewFactory creates previews for attached files.
type PreviewFactory interface {
	Create(f File) (Preview, error)
}

// Result carries what the checker learned about an accepted file.
type Result struct {
	Role     Role
	Duration float64
}

// Limits bounds what the checker accepts.
type Limits struct {
	MaxVideoBytes    int64
	MaxCoverBytes    int64
	MaxStillBytes    int64
	MaxSubtitleBytes int64
	MaxDuration      float64
	MaxStills        int
}

const mib = 1 << 20

// DefaultLimits returns the festival's published ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxVideoBytes:    200 * mib,
		MaxCoverBytes:    15 * mib,
		MaxStillBytes:    7 * mib,
		MaxSubtitleBytes: 1 * mib,
		MaxDuration:      150,
		MaxStills:        3,
	}
}

// MaxBytes returns the size ceiling for role.
func (l Limits) MaxBytes(role Role) int64 {
	switch role {
	case RoleVideo:
		return l.MaxVideoBytes
	case RoleCover:
		return l.MaxCoverBytes
	case RoleStill:
		return l.MaxStillBytes
	case RoleSubtitle:
		return l.MaxSubtitleBytes
	}
	return 0
}
