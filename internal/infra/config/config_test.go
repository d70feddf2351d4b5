package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "input", cfg.InputDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "model", cfg.ModelDir)
	assert.Equal(t, "", cfg.Mode)
	assert.Equal(t, []string{".mp4", ".avi", ".mkv", ".mov", ".webm"}, cfg.VideoExtensions)
	assert.Equal(t, 90, cfg.JPEGQuality)
	assert.Equal(t, "hog", cfg.FaceLocator)
	assert.InDelta(t, 0.5, float64(cfg.AnimeConfidence), 1e-6)
	assert.Equal(t, 640, cfg.AnimeInputSize)
	assert.False(t, cfg.ArchiveResults)
	assert.Equal(t, 0, cfg.MetricsPort)

	// Model paths derive from the model dir when unset.
	assert.Equal(t, filepath.Join("model", "dlib"), cfg.FaceModelsDir)
	assert.Equal(t, filepath.Join("model", "aniref.onnx"), cfg.AnimeModelPath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCREENCAP_MODE", "anime")
	t.Setenv("SCREENCAP_MODEL_DIR", "/models")
	t.Setenv("SCREENCAP_ANIME_CONFIDENCE", "0.7")
	t.Setenv("SCREENCAP_VIDEO_EXTENSIONS", ".mp4,.webm")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anime", cfg.Mode)
	assert.InDelta(t, 0.7, float64(cfg.AnimeConfidence), 1e-6)
	assert.Equal(t, []string{".mp4", ".webm"}, cfg.VideoExtensions)
	assert.Equal(t, filepath.Join("/models", "dlib"), cfg.FaceModelsDir)
	assert.Equal(t, filepath.Join("/models", "aniref.onnx"), cfg.AnimeModelPath)
}

func TestLoadExplicitModelPathsWin(t *testing.T) {
	t.Setenv("SCREENCAP_FACE_MODELS_DIR", "/opt/dlib")
	t.Setenv("SCREENCAP_ANIME_MODEL", "/opt/aniref40000.onnx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/dlib", cfg.FaceModelsDir)
	assert.Equal(t, "/opt/aniref40000.onnx", cfg.AnimeModelPath)
}
