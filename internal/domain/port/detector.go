package port

import (
	"context"
	"image"

	"github.com/asatyr/screencap/internal/domain/entity"
)

// Detector is one of the two detection delegates (realistic faces or
// anime characters). Box coordinates are pixel coordinates of the given
// frame; thresholds and rectangle semantics are the underlying library's
// contract.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) ([]entity.Detection, error)
	Close() error
}
