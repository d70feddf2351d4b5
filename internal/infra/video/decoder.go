// Package video decodes container files frame by frame through OpenCV.
package video

import (
	"context"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"github.com/asatyr/screencap/internal/domain/port"
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Open(ctx context.Context, videoPath string) (port.FrameStream, error) {
	capture, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", videoPath, err)
	}
	return &stream{ctx: ctx, capture: capture, mat: gocv.NewMat()}, nil
}

// stream reads frames sequentially until the container is exhausted.
// The single Mat is reused across reads; ToImage copies pixels out.
type stream struct {
	ctx     context.Context
	capture *gocv.VideoCapture
	mat     gocv.Mat
	index   int
}

func (s *stream) Next() (*port.Frame, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, io.EOF
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame %d: %w", s.index, err)
	}

	frame := &port.Frame{Index: s.index, Image: img}
	s.index++
	return frame, nil
}

func (s *stream) Close() error {
	s.mat.Close()
	return s.capture.Close()
}
