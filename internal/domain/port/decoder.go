package port

import (
	"context"
	"image"
)

// Frame is a single decoded video frame. Index starts at 0 and follows
// decode order.
type Frame struct {
	Index int
	Image image.Image
}

// FrameStream yields frames sequentially until the video is exhausted,
// at which point Next returns io.EOF. No seeking, no skipping.
type FrameStream interface {
	Next() (*Frame, error)
	Close() error
}

// VideoDecoder opens a video container for sequential decoding.
type VideoDecoder interface {
	Open(ctx context.Context, videoPath string) (FrameStream, error)
}
