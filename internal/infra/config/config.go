package config

import (
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	InputDir  string `env:"SCREENCAP_INPUT_DIR"  envDefault:"input"`
	OutputDir string `env:"SCREENCAP_OUTPUT_DIR" envDefault:"output"`
	ModelDir  string `env:"SCREENCAP_MODEL_DIR"  envDefault:"model"`

	// Mode presets the detection mode and skips the interactive prompt.
	Mode string `env:"SCREENCAP_MODE" envDefault:""`

	VideoExtensions []string `env:"SCREENCAP_VIDEO_EXTENSIONS" envSeparator:"," envDefault:".mp4,.avi,.mkv,.mov,.webm"`

	JPEGQuality int `env:"SCREENCAP_JPEG_QUALITY" envDefault:"90"`

	FaceModelsDir string `env:"SCREENCAP_FACE_MODELS_DIR" envDefault:""`
	FaceLocator   string `env:"SCREENCAP_FACE_LOCATOR"    envDefault:"hog"`

	AnimeModelPath  string  `env:"SCREENCAP_ANIME_MODEL"      envDefault:""`
	AnimeConfidence float32 `env:"SCREENCAP_ANIME_CONFIDENCE" envDefault:"0.5"`
	AnimeIoU        float32 `env:"SCREENCAP_ANIME_IOU"        envDefault:"0.45"`
	AnimeInputSize  int     `env:"SCREENCAP_ANIME_INPUT_SIZE" envDefault:"640"`

	ArchiveResults bool `env:"SCREENCAP_ARCHIVE_RESULTS" envDefault:"false"`

	MinIOEndpoint     string `env:"MINIO_ENDPOINT"       envDefault:""`
	MinIOAccessKey    string `env:"MINIO_ACCESS_KEY"     envDefault:"minioadmin"`
	MinIOSecretKey    string `env:"MINIO_SECRET_KEY"     envDefault:"minioadmin"`
	MinIOUseSSL       bool   `env:"MINIO_USE_SSL"        envDefault:"false"`
	MinIOResultBucket string `env:"MINIO_RESULT_BUCKET"  envDefault:"screencaps"`

	SMTPHost string `env:"SMTP_HOST"       envDefault:""`
	SMTPPort int    `env:"SMTP_PORT"       envDefault:"25"`
	SMTPFrom string `env:"SMTP_FROM"       envDefault:"noreply@screencap.local"`
	NotifyTo string `env:"NOTIFICATION_TO" envDefault:""`

	MetricsPort  int    `env:"METRICS_PORT"  envDefault:"0"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:""`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`

	Progress bool `env:"SCREENCAP_PROGRESS" envDefault:"true"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	// Model paths default to fixed locations under the model dir.
	if cfg.FaceModelsDir == "" {
		cfg.FaceModelsDir = filepath.Join(cfg.ModelDir, "dlib")
	}
	if cfg.AnimeModelPath == "" {
		cfg.AnimeModelPath = filepath.Join(cfg.ModelDir, "aniref.onnx")
	}
	return cfg, nil
}
