package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/asatyr/screencap/internal/domain/entity"
	"github.com/asatyr/screencap/internal/domain/port"
	"github.com/asatyr/screencap/internal/imaging"
	"github.com/asatyr/screencap/internal/infra/metrics"
)

const (
	screencapsDirName = "screencaps"
	facesDirName      = "faces"
)

type ProcessVideoUseCase struct {
	decoder  port.VideoDecoder
	prober   port.VideoProber
	detector port.Detector
	archiver port.Archiver
	storage  port.ResultStorage
	logger   *zap.Logger
	cfg      ProcessVideoConfig
}

type ProcessVideoConfig struct {
	OutputDir      string
	Mode           entity.Mode
	JPEGQuality    int
	ArchiveResults bool
	ShowProgress   bool
}

// NewProcessVideoUseCase wires the per-video pipeline. archiver and
// storage may be nil, which disables the corresponding stage.
func NewProcessVideoUseCase(
	decoder port.VideoDecoder,
	prober port.VideoProber,
	detector port.Detector,
	archiver port.Archiver,
	storage port.ResultStorage,
	logger *zap.Logger,
	cfg ProcessVideoConfig,
) *ProcessVideoUseCase {
	return &ProcessVideoUseCase{
		decoder:  decoder,
		prober:   prober,
		detector: detector,
		archiver: archiver,
		storage:  storage,
		logger:   logger,
		cfg:      cfg,
	}
}

// Execute processes one video start to finish: one screenshot per decoded
// frame, one crop per detection. The returned job is COMPLETED or FAILED;
// a failed video never stops the surrounding batch.
func (uc *ProcessVideoUseCase) Execute(ctx context.Context, videoPath string) *entity.Job {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	videoName := videoBaseName(videoPath)
	job := entity.NewJob(videoPath, videoName, uc.cfg.Mode)
	job.MarkProcessing()

	span.SetAttributes(
		attribute.String("job.id", job.ID.String()),
		attribute.String("job.video", videoName),
	)

	log := uc.logger.With(zap.String("job_id", job.ID.String()), zap.String("video", videoName))
	log.Info("processing video", zap.String("mode", string(uc.cfg.Mode)))

	if err := uc.runPipeline(ctx, job, log); err != nil {
		job.MarkFailed(err.Error())
		metrics.VideosProcessedTotal.WithLabelValues("failed").Inc()
		log.Error("video processing failed", zap.Error(err))
		return job
	}

	metrics.VideosProcessedTotal.WithLabelValues("completed").Inc()
	metrics.StageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	log.Info("video completed",
		zap.Int("frame_count", job.FrameCount),
		zap.Int("detection_count", job.DetectionCount),
		zap.Float64("duration_secs", job.VideoDuration),
	)
	return job
}

func (uc *ProcessVideoUseCase) runPipeline(ctx context.Context, job *entity.Job, log *zap.Logger) error {
	tracer := otel.Tracer("usecase")

	// Probe is best-effort: it only feeds the progress bar and the job
	// record, matching how the container may simply not declare a frame
	// count.
	probeStart := time.Now()
	ctxProbe, spanProbe := tracer.Start(ctx, "probe_video")
	totalFrames := 0
	if uc.prober != nil {
		if info, err := uc.prober.Probe(ctxProbe, job.VideoPath); err != nil {
			log.Warn("could not probe video", zap.Error(err))
		} else {
			job.VideoDuration = info.Duration
			totalFrames = info.FrameCount
		}
	}
	spanProbe.End()
	metrics.StageDuration.WithLabelValues("probe").Observe(time.Since(probeStart).Seconds())

	outDir := filepath.Join(uc.cfg.OutputDir, job.VideoName)
	screencapsDir := filepath.Join(outDir, screencapsDirName)
	facesDir := filepath.Join(outDir, facesDirName)
	for _, dir := range []string{screencapsDir, facesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	framesStart := time.Now()
	ctxFrames, spanFrames := tracer.Start(ctx, "process_frames")
	frameCount, detectionCount, err := uc.processFrames(ctxFrames, job.VideoPath, screencapsDir, facesDir, totalFrames)
	spanFrames.End()
	metrics.StageDuration.WithLabelValues("frames").Observe(time.Since(framesStart).Seconds())
	if err != nil {
		return err
	}

	if uc.cfg.ArchiveResults && uc.archiver != nil {
		if err := uc.archiveResults(ctx, job, outDir, log); err != nil {
			return err
		}
	}

	job.MarkCompleted(frameCount, detectionCount, job.VideoDuration)
	return nil
}

// processFrames is the sequential frame walker: decode, save screenshot,
// detect, save crops. One frame at a time, no skipping.
func (uc *ProcessVideoUseCase) processFrames(ctx context.Context, videoPath, screencapsDir, facesDir string, totalFrames int) (int, int, error) {
	stream, err := uc.decoder.Open(ctx, videoPath)
	if err != nil {
		return 0, 0, fmt.Errorf("open video: %w", err)
	}
	defer stream.Close()

	var bar *progressbar.ProgressBar
	if uc.cfg.ShowProgress {
		total := int64(totalFrames)
		if total == 0 {
			total = -1 // spinner when the container declares no frame count
		}
		bar = progressbar.Default(total, videoBaseName(videoPath))
		defer bar.Finish()
	}

	frameCount := 0
	detectionCount := 0

	for {
		frame, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return frameCount, detectionCount, fmt.Errorf("decode frame %d: %w", frameCount, err)
		}

		screencapPath := filepath.Join(screencapsDir, imaging.ScreencapName(frame.Index))
		if err := imaging.WriteJPEG(screencapPath, frame.Image, uc.cfg.JPEGQuality); err != nil {
			return frameCount, detectionCount, fmt.Errorf("write screenshot: %w", err)
		}

		detections, err := uc.detector.Detect(ctx, frame.Image)
		if err != nil {
			return frameCount, detectionCount, fmt.Errorf("detect frame %d: %w", frame.Index, err)
		}

		written, err := uc.writeCrops(frame, detections, facesDir)
		if err != nil {
			return frameCount, detectionCount, err
		}
		detectionCount += written

		frameCount++
		metrics.FramesProcessedTotal.Inc()
		if bar != nil {
			bar.Add(1)
		}
	}

	return frameCount, detectionCount, nil
}

func (uc *ProcessVideoUseCase) writeCrops(frame *port.Frame, detections []entity.Detection, facesDir string) (int, error) {
	written := 0
	for i, det := range detections {
		box := imaging.Clamp(det.Box, frame.Image.Bounds())
		if box.Empty() {
			continue
		}

		crop, err := imaging.Crop(frame.Image, box)
		if err != nil {
			return written, fmt.Errorf("crop frame %d box %d: %w", frame.Index, i, err)
		}

		cropPath := filepath.Join(facesDir, imaging.CropName(string(uc.cfg.Mode), frame.Index, i))
		if err := imaging.WriteJPEG(cropPath, crop, uc.cfg.JPEGQuality); err != nil {
			return written, fmt.Errorf("write crop: %w", err)
		}

		written++
		metrics.DetectionsTotal.WithLabelValues(string(uc.cfg.Mode)).Inc()
	}
	return written, nil
}

// archiveResults zips the per-video output folder and, when storage is
// configured, uploads the zip.
func (uc *ProcessVideoUseCase) archiveResults(ctx context.Context, job *entity.Job, outDir string, log *zap.Logger) error {
	tracer := otel.Tracer("usecase")

	zipStart := time.Now()
	ctxZip, spanZip := tracer.Start(ctx, "create_archive")
	zipPath := filepath.Join(uc.cfg.OutputDir, job.VideoName+".zip")
	err := uc.archiver.CreateArchive(ctxZip, outDir, zipPath)
	spanZip.End()
	metrics.StageDuration.WithLabelValues("archive").Observe(time.Since(zipStart).Seconds())
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	if uc.storage == nil {
		return nil
	}

	upStart := time.Now()
	ctxUp, spanUp := tracer.Start(ctx, "upload_archive")
	defer spanUp.End()

	zipFile, err := os.Open(zipPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zipFile.Close()

	stat, err := zipFile.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	archiveKey := fmt.Sprintf("%s/%s.zip", job.ID.String(), job.VideoName)
	if err := uc.storage.UploadArchive(ctxUp, archiveKey, zipFile, stat.Size()); err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}
	metrics.StageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	job.ArchiveKey = archiveKey
	log.Info("archive uploaded", zap.String("archive_key", archiveKey))
	return nil
}

func videoBaseName(videoPath string) string {
	base := filepath.Base(videoPath)
	return base[:len(base)-len(filepath.Ext(base))]
}
