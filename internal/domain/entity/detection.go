package entity

import (
	"fmt"
	"image"
	"strings"
)

// Mode selects which detection delegate runs on each frame.
type Mode string

const (
	ModeRealistic Mode = "realistic"
	ModeAnime     Mode = "anime"
)

// ParseMode accepts both the mode name and the numeric prompt answer
// (1 = realistic, 2 = anime).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", string(ModeRealistic):
		return ModeRealistic, nil
	case "2", string(ModeAnime):
		return ModeAnime, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected 1/realistic or 2/anime)", s)
	}
}

// Detection is one bounding box reported by the active detector for a
// single frame, in pixel coordinates of that frame.
type Detection struct {
	Box        image.Rectangle
	Confidence float32
	Label      string
}
