// Package yolo runs a YOLO-style ONNX model through OpenCV's DNN module
// as the anime-character detection delegate.
package yolo

import (
	"context"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/asatyr/screencap/internal/domain/entity"
)

type Config struct {
	ModelPath  string
	Confidence float32
	IoU        float32
	InputSize  int
}

type Detector struct {
	net gocv.Net
	cfg Config
}

// NewDetector loads the weights file. A missing or unreadable model fails
// here, before any frame is processed.
func NewDetector(cfg Config) (*Detector, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("anime model file %s: %w", cfg.ModelPath, err)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("load anime model %s: network is empty", cfg.ModelPath)
	}

	return &Detector{net: net, cfg: cfg}, nil
}

func (d *Detector) Detect(ctx context.Context, frame image.Image) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0,
		image.Pt(d.cfg.InputSize, d.cfg.InputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected model output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}

	bounds := frame.Bounds()
	scaleX := float64(bounds.Dx()) / float64(d.cfg.InputSize)
	scaleY := float64(bounds.Dy()) / float64(d.cfg.InputSize)

	boxes, scores := decodeCandidates(data, dims[1], dims[2], scaleX, scaleY, d.cfg.Confidence)
	if len(boxes) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(boxes, scores, d.cfg.Confidence, d.cfg.IoU)

	detections := make([]entity.Detection, 0, len(keep))
	for _, idx := range keep {
		detections = append(detections, entity.Detection{
			Box:        boxes[idx].Intersect(bounds),
			Confidence: scores[idx],
			Label:      "character",
		})
	}
	return detections, nil
}

func (d *Detector) Close() error {
	return d.net.Close()
}
