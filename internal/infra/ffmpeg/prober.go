// Package ffmpeg shells out to ffprobe for container metadata. The
// metadata only feeds progress reporting and the job record; decoding
// itself happens in the video package.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/asatyr/screencap/internal/domain/port"
)

const probeBinary = "ffprobe"

type Prober struct{}

func NewProber() *Prober {
	return &Prober{}
}

// Available reports whether ffprobe can be found on PATH. Used by the
// startup dependency check.
func Available() error {
	if _, err := exec.LookPath(probeBinary); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", probeBinary, err)
	}
	return nil
}

func (p *Prober) Probe(ctx context.Context, videoPath string) (*port.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, probeBinary,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_frames:format=duration",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeOutput(string(output))
}

// parseProbeOutput reads ffprobe's default writer output, lines of
// key=value. nb_frames is "N/A" for containers that do not declare it.
func parseProbeOutput(out string) (*port.VideoInfo, error) {
	info := &port.VideoInfo{}
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "duration":
			d, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("parse duration %q: %w", value, err)
			}
			info.Duration = d
		case "nb_frames":
			n, err := strconv.Atoi(value)
			if err != nil {
				continue // N/A or absent
			}
			info.FrameCount = n
		}
	}
	if info.Duration == 0 && info.FrameCount == 0 {
		return nil, fmt.Errorf("ffprobe returned no usable metadata")
	}
	return info, nil
}
