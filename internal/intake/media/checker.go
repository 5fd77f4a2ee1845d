package media

import (
	"context"
	"math"
	"strings"
)

// Checker applies the per-role constraints to candidate files.
type Checker struct {
	limits    Limits
	durations DurationReader
}

// NewChecker creates a checker. A nil DurationReader skips the duration
// estimate.
func NewChecker(limits Limits, durations DurationReader) *Checker {
	return &Checker{limits: limits, durations: durations}
}

// Limits returns the checker's limits.
func (c *Checker) Limits() Limits { return c.limits }

// CheckStatic runs every constraint that does not need to read the file.
func (c *Checker) CheckStatic(role Role, f File) error {
	if _, ok := allowLists[role]; !ok {
		return ErrUnknownRole
	}

	if !AllowedExtension(role, f.Name()) {
		return reject(role, ReasonExtension, "file type not allowed, expected one of %s",
			strings.Join(Extensions(role), ", "))
	}
	if !AllowedType(role, f.ContentType()) {
		return reject(role, ReasonContentType, "content type %q not allowed", BaseType(f.ContentType()))
	}

	if f.Size() <= 0 {
		return reject(role, ReasonEmpty, "file is empty")
	}
	if max := c.limits.MaxBytes(role); max > 0 && f.Size() > max {
		return reject(role, ReasonSize, "file exceeds the %s limit", formatMiB(max))
	}
	return nil
}

// Check runs the static constraints and, for videos, the duration estimate.
func (c *Checker) Check(ctx context.Context, role Role, f File) (Result, error) {
	if err := c.CheckStatic(role, f); err != nil {
		return Result{}, err
	}

	res := Result{Role: role}
	if role != RoleVideo || c.durations == nil {
		return res, nil
	}

	duration, err := c.durations.ReadDuration(ctx, f)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		e := reject(role, ReasonUnreadable, "could not read the video duration")
		e.Cause = err
		return Result{}, e
	}
	if math.IsNaN(duration) || duration <= 0 {
		return Result{}, reject(role, ReasonUnreadable, "could not read the video duration")
	}
	if c.limits.MaxDuration > 0 && duration > c.limits.MaxDuration {
		return Result{}, reject(role, ReasonDuration, "video is %.2f seconds long, the maximum is %g seconds",
			duration, c.limits.MaxDuration)
	}

	res.Duration = duration
	return res, nil
}

// CheckStillCount rejects attaching another still when current already
// holds the maximum.
func (c *Checker) CheckStillCount(current int) error {
	if c.limits.MaxStills > 0 && current >= c.limits.MaxStills {
		return reject(RoleStill, ReasonTooMany, "at most %d stills are allowed", c.limits.MaxStills)
	}
	return nil
}
