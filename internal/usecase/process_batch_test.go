package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/asatyr/screencap/internal/domain/entity"
	"github.com/asatyr/screencap/internal/domain/port"
)

type fakeNotifier struct {
	calls []string
}

func (n *fakeNotifier) NotifyFailure(_ context.Context, _ string, videoName string, _ string) error {
	n.calls = append(n.calls, videoName)
	return nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestListVideosFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp4"))
	touch(t, filepath.Join(dir, "a.MKV"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "c.avi"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp4"), 0755))

	videos, err := ListVideos(dir, []string{".mp4", ".avi", ".mkv"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.MKV"),
		filepath.Join(dir, "b.mp4"),
		filepath.Join(dir, "c.avi"),
	}, videos)
}

func TestListVideosMissingDir(t *testing.T) {
	_, err := ListVideos(filepath.Join(t.TempDir(), "nope"), []string{".mp4"})
	assert.Error(t, err)
}

func TestBatchEmptyInputDirCreatesNoOutput(t *testing.T) {
	inputDir := t.TempDir()
	outDir := t.TempDir()

	pv := NewProcessVideoUseCase(
		&fakeDecoder{frames: testFrames(1)},
		&fakeProber{info: &port.VideoInfo{FrameCount: 1}},
		&fakeDetector{},
		nil, nil, zap.NewNop(),
		ProcessVideoConfig{OutputDir: outDir, Mode: entity.ModeAnime, JPEGQuality: 90},
	)
	batch := NewProcessBatchUseCase(pv, nil, zap.NewNop(), inputDir, []string{".mp4"})

	report, err := batch.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.VideosCompleted)
	assert.Equal(t, 0, report.VideosFailed)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBatchContinuesPastFailedVideo(t *testing.T) {
	inputDir := t.TempDir()
	outDir := t.TempDir()
	touch(t, filepath.Join(inputDir, "bad.mp4"))
	touch(t, filepath.Join(inputDir, "good.mp4"))

	// The decoder fails on the first (alphabetically) video only.
	dec := &pathAwareDecoder{failPath: filepath.Join(inputDir, "bad.mp4")}
	notifier := &fakeNotifier{}

	pv := NewProcessVideoUseCase(
		dec,
		&fakeProber{info: &port.VideoInfo{FrameCount: 2}},
		&fakeDetector{},
		nil, nil, zap.NewNop(),
		ProcessVideoConfig{OutputDir: outDir, Mode: entity.ModeRealistic, JPEGQuality: 90},
	)
	batch := NewProcessBatchUseCase(pv, notifier, zap.NewNop(), inputDir, []string{".mp4"})

	report, err := batch.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.VideosCompleted)
	assert.Equal(t, 1, report.VideosFailed)
	assert.Equal(t, 2, report.FramesTotal)
	assert.Equal(t, []string{"bad"}, notifier.calls)
}

type pathAwareDecoder struct {
	failPath string
}

func (d *pathAwareDecoder) Open(ctx context.Context, videoPath string) (port.FrameStream, error) {
	if videoPath == d.failPath {
		return nil, fmt.Errorf("unreadable video")
	}
	return (&fakeDecoder{frames: testFrames(2)}).Open(ctx, videoPath)
}
