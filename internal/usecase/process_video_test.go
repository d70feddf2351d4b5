package usecase

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/asatyr/screencap/internal/domain/entity"
	"github.com/asatyr/screencap/internal/domain/port"
)

type fakeStream struct {
	frames []image.Image
	pos    int
}

func (s *fakeStream) Next() (*port.Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := &port.Frame{Index: s.pos, Image: s.frames[s.pos]}
	s.pos++
	return f, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeDecoder struct {
	frames  []image.Image
	openErr error
}

func (d *fakeDecoder) Open(_ context.Context, _ string) (port.FrameStream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return &fakeStream{frames: d.frames}, nil
}

// fakeDetector returns boxes[i] for the i-th call.
type fakeDetector struct {
	boxes [][]entity.Detection
	err   error
	calls int
}

func (d *fakeDetector) Detect(_ context.Context, _ image.Image) ([]entity.Detection, error) {
	if d.err != nil {
		return nil, d.err
	}
	var out []entity.Detection
	if d.calls < len(d.boxes) {
		out = d.boxes[d.calls]
	}
	d.calls++
	return out, nil
}

func (d *fakeDetector) Close() error { return nil }

type fakeProber struct {
	info *port.VideoInfo
	err  error
}

func (p *fakeProber) Probe(_ context.Context, _ string) (*port.VideoInfo, error) {
	return p.info, p.err
}

func testFrames(n int) []image.Image {
	frames := make([]image.Image, n)
	for i := range frames {
		img := image.NewRGBA(image.Rect(0, 0, 64, 48))
		img.Set(i%64, 0, color.RGBA{R: 255, A: 255})
		frames[i] = img
	}
	return frames
}

func newTestUseCase(t *testing.T, dec port.VideoDecoder, det port.Detector, prober port.VideoProber) (*ProcessVideoUseCase, string) {
	t.Helper()
	outDir := t.TempDir()
	uc := NewProcessVideoUseCase(dec, prober, det, nil, nil, zap.NewNop(), ProcessVideoConfig{
		OutputDir:   outDir,
		Mode:        entity.ModeRealistic,
		JPEGQuality: 90,
	})
	return uc, outDir
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestExecuteWritesOneScreenshotPerFrame(t *testing.T) {
	uc, outDir := newTestUseCase(t,
		&fakeDecoder{frames: testFrames(5)},
		&fakeDetector{},
		&fakeProber{info: &port.VideoInfo{Duration: 2.5, FrameCount: 5}},
	)

	job := uc.Execute(context.Background(), "/videos/clip.mp4")
	require.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 5, job.FrameCount)
	assert.Equal(t, 0, job.DetectionCount)
	assert.InDelta(t, 2.5, job.VideoDuration, 1e-9)

	names := listNames(t, filepath.Join(outDir, "clip", "screencaps"))
	assert.Equal(t, []string{
		"frame_000000.jpg", "frame_000001.jpg", "frame_000002.jpg",
		"frame_000003.jpg", "frame_000004.jpg",
	}, names)

	assert.Empty(t, listNames(t, filepath.Join(outDir, "clip", "faces")))
}

func TestExecuteWritesOneCropPerDetection(t *testing.T) {
	boxes := [][]entity.Detection{
		{{Box: image.Rect(0, 0, 10, 10)}, {Box: image.Rect(20, 20, 40, 40)}},
		{},
		{{Box: image.Rect(5, 5, 15, 15)}},
	}
	uc, outDir := newTestUseCase(t,
		&fakeDecoder{frames: testFrames(3)},
		&fakeDetector{boxes: boxes},
		&fakeProber{info: &port.VideoInfo{FrameCount: 3}},
	)

	job := uc.Execute(context.Background(), "/videos/clip.mkv")
	require.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 3, job.DetectionCount)

	names := listNames(t, filepath.Join(outDir, "clip", "faces"))
	assert.Equal(t, []string{
		"realistic_face_000000_00.jpg",
		"realistic_face_000000_01.jpg",
		"realistic_face_000002_00.jpg",
	}, names)
}

func TestExecuteClampsBoxesToFrameBounds(t *testing.T) {
	// First box pokes past the frame edge, second is fully outside.
	boxes := [][]entity.Detection{{
		{Box: image.Rect(50, 40, 200, 200)},
		{Box: image.Rect(100, 100, 200, 200)},
	}}
	uc, outDir := newTestUseCase(t,
		&fakeDecoder{frames: testFrames(1)},
		&fakeDetector{boxes: boxes},
		&fakeProber{info: &port.VideoInfo{FrameCount: 1}},
	)

	job := uc.Execute(context.Background(), "clip.mp4")
	require.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 1, job.DetectionCount)

	names := listNames(t, filepath.Join(outDir, "clip", "faces"))
	assert.Equal(t, []string{"realistic_face_000000_00.jpg"}, names)
}

func TestExecuteSameInputTwiceSameFileCount(t *testing.T) {
	boxes := [][]entity.Detection{
		{{Box: image.Rect(0, 0, 8, 8)}},
		{{Box: image.Rect(1, 1, 9, 9)}},
	}

	var counts [2]int
	for run := 0; run < 2; run++ {
		uc, outDir := newTestUseCase(t,
			&fakeDecoder{frames: testFrames(2)},
			&fakeDetector{boxes: boxes},
			&fakeProber{info: &port.VideoInfo{FrameCount: 2}},
		)
		job := uc.Execute(context.Background(), "clip.mp4")
		require.Equal(t, entity.JobStatusCompleted, job.Status)

		counts[run] = len(listNames(t, filepath.Join(outDir, "clip", "screencaps"))) +
			len(listNames(t, filepath.Join(outDir, "clip", "faces")))
	}
	assert.Equal(t, counts[0], counts[1])
}

func TestExecuteDecoderFailureMarksJobFailed(t *testing.T) {
	uc, _ := newTestUseCase(t,
		&fakeDecoder{openErr: fmt.Errorf("corrupt container")},
		&fakeDetector{},
		&fakeProber{err: fmt.Errorf("no metadata")},
	)

	job := uc.Execute(context.Background(), "broken.mp4")
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "corrupt container")
}

func TestExecuteDetectorFailureStopsVideo(t *testing.T) {
	uc, _ := newTestUseCase(t,
		&fakeDecoder{frames: testFrames(4)},
		&fakeDetector{err: fmt.Errorf("model exploded")},
		&fakeProber{info: &port.VideoInfo{FrameCount: 4}},
	)

	job := uc.Execute(context.Background(), "clip.mp4")
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "model exploded")
}

func TestExecuteProbeFailureIsNonFatal(t *testing.T) {
	uc, _ := newTestUseCase(t,
		&fakeDecoder{frames: testFrames(2)},
		&fakeDetector{},
		&fakeProber{err: fmt.Errorf("ffprobe missing")},
	)

	job := uc.Execute(context.Background(), "clip.mp4")
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 2, job.FrameCount)
}
