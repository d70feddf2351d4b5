package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screencap_videos_processed_total",
		Help: "Total number of videos processed, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "screencap_stage_duration_seconds",
		Help:    "Duration of per-video pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "screencap_frames_processed_total",
		Help: "Total number of frames decoded and saved across all videos",
	})

	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screencap_detections_total",
		Help: "Total number of face/character crops written, by mode",
	}, []string{"mode"})
)
