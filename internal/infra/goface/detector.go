// Package goface wraps the dlib-based go-face recognizer as the
// realistic-face detection delegate. Rectangle coordinates and detection
// behavior are dlib's contract; nothing is post-processed here.
package goface

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	face "github.com/Kagami/go-face"

	"github.com/asatyr/screencap/internal/domain/entity"
	"github.com/asatyr/screencap/internal/imaging"
)

const (
	LocatorHOG = "hog"
	LocatorCNN = "cnn"
)

// Model files go-face expects in its models directory.
var modelFiles = []string{
	"shape_predictor_5_face_landmarks.dat",
	"dlib_face_recognition_resnet_model_v1.dat",
	"mmod_human_face_detector.dat",
}

// CheckModels verifies the dlib model files exist. Used by the startup
// dependency check so a missing file fails before any frame is decoded.
func CheckModels(modelsDir string) error {
	for _, name := range modelFiles {
		if _, err := os.Stat(filepath.Join(modelsDir, name)); err != nil {
			return fmt.Errorf("dlib model file %s missing in %s", name, modelsDir)
		}
	}
	return nil
}

type Detector struct {
	rec     *face.Recognizer
	locator string
	quality int
}

// NewDetector loads the dlib models. locator selects the face locator:
// "hog" (frontal detector) or "cnn" (mmod network), mirroring the
// library's two modes.
func NewDetector(modelsDir, locator string, jpegQuality int) (*Detector, error) {
	if locator != LocatorHOG && locator != LocatorCNN {
		return nil, fmt.Errorf("unknown face locator %q (expected hog or cnn)", locator)
	}
	if err := CheckModels(modelsDir); err != nil {
		return nil, err
	}

	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("init face recognizer: %w", err)
	}
	return &Detector{rec: rec, locator: locator, quality: jpegQuality}, nil
}

func (d *Detector) Detect(ctx context.Context, frame image.Image) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// go-face consumes JPEG bytes.
	var buf bytes.Buffer
	if err := imaging.EncodeJPEG(&buf, frame, d.quality); err != nil {
		return nil, fmt.Errorf("encode frame for detection: %w", err)
	}

	var faces []face.Face
	var err error
	if d.locator == LocatorCNN {
		faces, err = d.rec.RecognizeCNN(buf.Bytes())
	} else {
		faces, err = d.rec.Recognize(buf.Bytes())
	}
	if err != nil {
		return nil, fmt.Errorf("recognize faces: %w", err)
	}

	detections := make([]entity.Detection, 0, len(faces))
	for _, f := range faces {
		detections = append(detections, entity.Detection{
			Box:   f.Rectangle,
			Label: "face",
		})
	}
	return detections, nil
}

func (d *Detector) Close() error {
	d.rec.Close()
	return nil
}
