package port

import "context"

// VideoInfo is container-level metadata used for progress reporting and
// the final job record. FrameCount may be 0 when the container does not
// declare it.
type VideoInfo struct {
	Duration   float64
	FrameCount int
}

type VideoProber interface {
	Probe(ctx context.Context, videoPath string) (*VideoInfo, error)
}
