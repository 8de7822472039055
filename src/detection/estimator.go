package detection

import (
	"image"

	"github.com/camview/agent/src/models"
)

// Per-pixel noise floors. With noise reduction enabled the floor is raised
// to suppress sensor-level jitter; the floor composes with the sensitivity
// threshold via max() so neither setting can mask the other.
const (
	noiseFloorDefault = 5
	noiseFloorReduced = 15
)

// PixelThreshold maps the 0..100 sensitivity slider to the minimum
// luminance difference a pixel must exceed to count as changed.
func PixelThreshold(detection models.Detection) int {
	threshold := 255 - int(float64(detection.Sensitivity)*2.55)
	noiseFloor := noiseFloorDefault
	if detection.NoiseReduction {
		noiseFloor = noiseFloorReduced
	}
	if noiseFloor > threshold {
		return noiseFloor
	}
	return threshold
}

// Estimate compares two luminance buffers of equal size and returns the
// percentage (0..100) of pixels whose difference exceeds the pixel
// threshold.
func Estimate(current *image.Gray, previous *image.Gray, detection models.Detection) float64 {
	threshold := PixelThreshold(detection)
	changes := 0
	total := len(current.Pix)
	for i := 0; i < total; i++ {
		diff := int(current.Pix[i]) - int(previous.Pix[i])
		if diff > threshold || diff < -threshold {
			changes++
		}
	}
	return float64(changes) / float64(total) * 100
}
