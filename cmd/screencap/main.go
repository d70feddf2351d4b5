package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/asatyr/screencap/internal/domain/entity"
	"github.com/asatyr/screencap/internal/domain/port"
	"github.com/asatyr/screencap/internal/infra/archive"
	"github.com/asatyr/screencap/internal/infra/config"
	"github.com/asatyr/screencap/internal/infra/email"
	"github.com/asatyr/screencap/internal/infra/ffmpeg"
	"github.com/asatyr/screencap/internal/infra/goface"
	"github.com/asatyr/screencap/internal/infra/metrics"
	miniostorage "github.com/asatyr/screencap/internal/infra/minio"
	"github.com/asatyr/screencap/internal/infra/tracing"
	"github.com/asatyr/screencap/internal/infra/video"
	"github.com/asatyr/screencap/internal/infra/yolo"
	"github.com/asatyr/screencap/internal/usecase"
	"github.com/asatyr/screencap/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting screencap")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Input/output/model directories are created up front.
	for _, d := range []string{cfg.InputDir, cfg.OutputDir, cfg.ModelDir} {
		fatalOnErr(os.MkdirAll(d, 0755), "create directory "+d)
	}

	mode, err := selectMode(cfg.Mode)
	fatalOnErr(err, "select mode")

	if err := checkDependencies(cfg, mode); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Tracing (non-fatal if the collector is unavailable)
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(ctx)
		}
	}

	detector, err := newDetector(cfg, mode)
	fatalOnErr(err, "init detector")
	defer detector.Close()

	// Optional result archive upload
	var storage port.ResultStorage
	if cfg.MinIOEndpoint != "" {
		s, err := miniostorage.NewStorage(miniostorage.StorageConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			UseSSL:    cfg.MinIOUseSSL,
			Bucket:    cfg.MinIOResultBucket,
		})
		fatalOnErr(err, "create minio storage")
		fatalOnErr(s.EnsureBucket(ctx), "ensure minio bucket")
		storage = s
	}

	// Optional failure notification email
	var notifier port.FailureNotifier
	if cfg.SMTPHost != "" && cfg.NotifyTo != "" {
		notifier = email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.NotifyTo, log)
	}

	processVideo := usecase.NewProcessVideoUseCase(
		video.NewDecoder(), ffmpeg.NewProber(), detector,
		archive.NewZipper(), storage,
		log,
		usecase.ProcessVideoConfig{
			OutputDir:      cfg.OutputDir,
			Mode:           mode,
			JPEGQuality:    cfg.JPEGQuality,
			ArchiveResults: cfg.ArchiveResults,
			ShowProgress:   cfg.Progress,
		},
	)
	batch := usecase.NewProcessBatchUseCase(processVideo, notifier, log, cfg.InputDir, cfg.VideoExtensions)

	// Metrics server (only when a port is configured)
	var metricsSrv *http.Server
	if cfg.MetricsPort > 0 {
		metricsSrv = metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	fmt.Printf("Starting processing in %s mode...\n", mode)

	report, err := batch.Execute(ctx)
	if err != nil {
		log.Error("batch error", zap.Error(err))
	}

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		metricsSrv.Shutdown(shutdownCtx)
	}

	printSummary(report)
	log.Info("screencap stopped")

	if err != nil {
		os.Exit(1)
	}
}

// selectMode resolves the detection mode: from config when preset,
// otherwise via the interactive prompt.
func selectMode(preset string) (entity.Mode, error) {
	if preset != "" {
		return entity.ParseMode(preset)
	}

	fmt.Println("Select mode:")
	fmt.Println("1: Realistic (HOG/CNN)")
	fmt.Println("2: Anime (ONNX model)")
	fmt.Print("Enter mode (1 or 2): ")

	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read mode: %w", err)
	}
	return entity.ParseMode(answer)
}

// checkDependencies verifies external requirements for the chosen mode
// before any video is touched, printing install hints on failure.
func checkDependencies(cfg *config.Config, mode entity.Mode) error {
	if err := ffmpeg.Available(); err != nil {
		return fmt.Errorf("%w\n\nInstall ffmpeg (provides ffprobe):\n  apt install ffmpeg  # or: brew install ffmpeg", err)
	}

	switch mode {
	case entity.ModeRealistic:
		if err := goface.CheckModels(cfg.FaceModelsDir); err != nil {
			return fmt.Errorf("%w\n\nDownload the dlib models from https://github.com/Kagami/go-face-testdata\nand place them in %s", err, cfg.FaceModelsDir)
		}
	case entity.ModeAnime:
		if _, err := os.Stat(cfg.AnimeModelPath); err != nil {
			return fmt.Errorf("anime model file %s missing\n\nExport your YOLO weights to ONNX and place the file at %s", cfg.AnimeModelPath, cfg.AnimeModelPath)
		}
	}
	return nil
}

func newDetector(cfg *config.Config, mode entity.Mode) (port.Detector, error) {
	switch mode {
	case entity.ModeAnime:
		return yolo.NewDetector(yolo.Config{
			ModelPath:  cfg.AnimeModelPath,
			Confidence: cfg.AnimeConfidence,
			IoU:        cfg.AnimeIoU,
			InputSize:  cfg.AnimeInputSize,
		})
	default:
		return goface.NewDetector(cfg.FaceModelsDir, cfg.FaceLocator, cfg.JPEGQuality)
	}
}

func printSummary(report *entity.Report) {
	if report == nil {
		return
	}
	fmt.Printf("\nDone: %d video(s) completed, %d failed, %d frames, %d crops\n",
		report.VideosCompleted, report.VideosFailed, report.FramesTotal, report.DetectionsTotal)
	for _, job := range report.Jobs {
		if job.Status == entity.JobStatusFailed {
			fmt.Printf("  failed: %s (%s)\n", job.VideoName, job.ErrorMessage)
		}
	}
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
