// Package imaging holds the small amount of pixel plumbing the pipeline
// needs: clamping detector boxes to frame bounds, cutting crops, and
// JPEG encoding.
package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// Clamp restricts r to the bounds of the frame. Detectors occasionally
// report boxes that poke past the frame edge.
func Clamp(r, bounds image.Rectangle) image.Rectangle {
	return r.Intersect(bounds)
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Crop returns the region r of img. The rectangle must already be
// clamped; an empty rectangle yields an error.
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	if r.Empty() {
		return nil, fmt.Errorf("empty crop rectangle %v", r)
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(r), nil
	}
	// Decoded frames are *image.RGBA in practice; this copy path covers
	// sources without SubImage.
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(dst, image.Point{}, img, r, draw.Src, nil)
	return dst, nil
}

// EncodeJPEG writes img as JPEG with the given quality (1-100).
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

// WriteJPEG encodes img to a new file at path.
func WriteJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeJPEG(f, img, quality); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
