package yolo

import "image"

// decodeCandidates reads the raw [attrs x boxes] tensor of a YOLOv8-style
// head: rows 0-3 are cx, cy, w, h in input-image pixels, the remaining
// rows are per-class scores. Boxes below confThresh are dropped; the
// survivors still need NMS.
func decodeCandidates(data []float32, attrs, boxes int, scaleX, scaleY float64, confThresh float32) ([]image.Rectangle, []float32) {
	if attrs < 5 || len(data) < attrs*boxes {
		return nil, nil
	}

	var rects []image.Rectangle
	var scores []float32

	for j := 0; j < boxes; j++ {
		var best float32
		for c := 4; c < attrs; c++ {
			if s := data[c*boxes+j]; s > best {
				best = s
			}
		}
		if best < confThresh {
			continue
		}

		cx := float64(data[0*boxes+j])
		cy := float64(data[1*boxes+j])
		w := float64(data[2*boxes+j])
		h := float64(data[3*boxes+j])

		x0 := int((cx - w/2) * scaleX)
		y0 := int((cy - h/2) * scaleY)
		x1 := int((cx + w/2) * scaleX)
		y1 := int((cy + h/2) * scaleY)

		rects = append(rects, image.Rect(x0, y0, x1, y1))
		scores = append(scores, best)
	}
	return rects, scores
}
