package imaging

import "fmt"

// ScreencapName returns the screenshot filename for a frame. Zero-padded
// so lexicographic order matches frame order.
func ScreencapName(frameIndex int) string {
	return fmt.Sprintf("frame_%06d.jpg", frameIndex)
}

// CropName returns the crop filename for detection i of a frame, prefixed
// with the active mode ("realistic" or "anime").
func CropName(mode string, frameIndex, i int) string {
	return fmt.Sprintf("%s_face_%06d_%02d.jpg", mode, frameIndex, i)
}
