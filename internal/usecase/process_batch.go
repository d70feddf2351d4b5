package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/asatyr/screencap/internal/domain/entity"
	"github.com/asatyr/screencap/internal/domain/port"
)

type ProcessBatchUseCase struct {
	video    *ProcessVideoUseCase
	notifier port.FailureNotifier
	logger   *zap.Logger
	inputDir string
	exts     []string
}

// NewProcessBatchUseCase drives the whole run: enumerate input videos and
// process them one at a time. notifier may be nil.
func NewProcessBatchUseCase(
	video *ProcessVideoUseCase,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	inputDir string,
	videoExtensions []string,
) *ProcessBatchUseCase {
	return &ProcessBatchUseCase{
		video:    video,
		notifier: notifier,
		logger:   logger,
		inputDir: inputDir,
		exts:     videoExtensions,
	}
}

// Execute runs the batch. An empty input directory completes without
// creating any output subfolders. A failed video is reported and skipped;
// the batch continues with the next file.
func (uc *ProcessBatchUseCase) Execute(ctx context.Context) (*entity.Report, error) {
	videos, err := ListVideos(uc.inputDir, uc.exts)
	if err != nil {
		return nil, err
	}

	report := &entity.Report{Mode: uc.video.cfg.Mode}
	if len(videos) == 0 {
		uc.logger.Info("no videos found in input directory", zap.String("input_dir", uc.inputDir))
		return report, nil
	}

	for i, videoPath := range videos {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		uc.logger.Info("starting video",
			zap.Int("index", i+1),
			zap.Int("total", len(videos)),
			zap.String("path", videoPath),
		)

		job := uc.video.Execute(ctx, videoPath)
		report.Add(job)

		if job.Status == entity.JobStatusFailed && uc.notifier != nil {
			if err := uc.notifier.NotifyFailure(ctx, job.ID.String(), job.VideoName, job.ErrorMessage); err != nil {
				uc.logger.Warn("failure notification not sent", zap.Error(err))
			}
		}
	}

	return report, nil
}

// ListVideos returns the video files directly inside dir, sorted by name.
// Extension matching is case-insensitive.
func ListVideos(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory %s: %w", dir, err)
	}

	var videos []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range extensions {
			if ext == strings.ToLower(want) {
				videos = append(videos, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(videos)
	return videos, nil
}
