package video

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/consensuslabs/festival/backend/internal/logger"
	"github.com/consensuslabs/festival/backend/internal/video/ffprobe"
)

// Reasons reported by DurationCheck.
const (
	ReasonFileMissing        = "file_missing"
	ReasonProbeFailed        = "probe_failed"
	ReasonNoVideoStream      = "no_video_stream"
	ReasonNoDuration         = "no_duration"
	ReasonExceedsMaxDuration = "exceeds_max_duration"
)

// DefaultMaxDuration is the festival's duration ceiling in seconds.
const DefaultMaxDuration = 150.0

// Inspector probes a media file on disk.
type Inspector interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// DurationCheck is the outcome of an authoritative duration check.
type DurationCheck struct {
	Valid       bool    `json:"valid"`
	Duration    float64 `json:"duration"`
	MaxDuration float64 `json:"maxDuration"`
	Reason      string  `json:"reason,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// DurationChecker reads the real duration of uploaded videos.
type DurationChecker struct {
	inspector   Inspector
	maxDuration float64
	logger      logger.Logger
}

// NewDurationChecker creates a checker; maxDuration <= 0 selects the default.
func NewDurationChecker(inspector Inspector, maxDuration float64, log logger.Logger) *DurationChecker {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &DurationChecker{inspector: inspector, maxDuration: maxDuration, logger: log}
}

// MaxDuration returns the configured ceiling.
func (c *DurationChecker) MaxDuration() float64 { return c.maxDuration }

// Check probes path. The duration comes from the first stream, or from the
// container when the first stream has none. A probe failure is never
// reported as valid.
func (c *DurationChecker) Check(ctx context.Context, path string) DurationCheck {
	res := DurationCheck{MaxDuration: c.maxDuration}

	if _, err := os.Stat(path); err != nil {
		res.Reason = ReasonFileMissing
		if errors.Is(err, os.ErrNotExist) {
			res.Error = "video file not found"
		} else {
			res.Error = "video file cannot be read"
		}
		return res
	}

	probed, err := c.inspect(ctx, path)
	if err != nil {
		c.logger.LogError(err, "Video duration probe failed")
		res.Reason = ReasonProbeFailed
		res.Error = "could not verify the video duration"
		return res
	}

	if probed.VideoStreamCount() == 0 {
		res.Reason = ReasonNoVideoStream
		res.Error = "the file contains no video stream"
		return res
	}

	duration := probed.FirstStreamDuration()
	if !usable(duration) {
		duration = probed.DurationSeconds()
	}
	if !usable(duration) {
		res.Reason = ReasonNoDuration
		res.Error = "the video duration could not be determined"
		return res
	}

	res.Duration = duration
	if duration > c.maxDuration {
		res.Reason = ReasonExceedsMaxDuration
		res.Error = fmt.Sprintf("video is %.2f seconds long, the maximum is %g seconds", duration, c.maxDuration)
		return res
	}

	res.Valid = true
	return res
}

func (c *DurationChecker) inspect(ctx context.Context, path string) (result ffprobe.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return c.inspector.Inspect(ctx, path)
}

func usable(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}
