package capture

import "image"

// The analysis buffers have a fixed resolution so the per-tick pixel work
// stays constant no matter what the camera delivers.
const (
	AnalysisWidth  = 160
	AnalysisHeight = 120
)

// NewAnalysisBuffer allocates one 160x120 luminance buffer. The detector
// keeps exactly two of these (previous and current) and swaps them each
// tick instead of allocating.
func NewAnalysisBuffer() *image.Gray {
	return image.NewGray(image.Rect(0, 0, AnalysisWidth, AnalysisHeight))
}

// Downsample writes a nearest-neighbour reduction of frame into dst,
// converting to luminance as the mean of the colour channels. It reports
// false without touching dst when the frame is missing or has zero
// dimensions, so a not-yet-ready camera never produces a bogus buffer.
func Downsample(frame image.Image, dst *image.Gray) bool {
	if frame == nil {
		return false
	}
	bounds := frame.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return false
	}

	for y := 0; y < AnalysisHeight; y++ {
		srcY := bounds.Min.Y + y*srcH/AnalysisHeight
		for x := 0; x < AnalysisWidth; x++ {
			srcX := bounds.Min.X + x*srcW/AnalysisWidth
			r, g, b, _ := frame.At(srcX, srcY).RGBA()
			// RGBA returns 16-bit channels, scale back to 8-bit.
			luma := (r + g + b) / 3 >> 8
			dst.Pix[y*dst.Stride+x] = uint8(luma)
		}
	}
	return true
}
