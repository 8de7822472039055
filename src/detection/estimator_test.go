package detection

import (
	"image"
	"testing"

	"github.com/camview/agent/src/capture"
	"github.com/camview/agent/src/models"
)

func uniformBuffer(value uint8) *image.Gray {
	buffer := capture.NewAnalysisBuffer()
	for i := range buffer.Pix {
		buffer.Pix[i] = value
	}
	return buffer
}

func TestPixelThreshold(t *testing.T) {
	cases := []struct {
		sensitivity    int
		noiseReduction bool
		expected       int
	}{
		{0, false, 255},
		{0, true, 255},
		{50, false, 128},
		{70, true, 77},
		{100, false, 5},
		{100, true, 15},
		{95, true, 15},
	}
	for _, c := range cases {
		detection := models.Detection{Sensitivity: c.sensitivity, NoiseReduction: c.noiseReduction}
		got := PixelThreshold(detection)
		if got != c.expected {
			t.Errorf("PixelThreshold(sensitivity=%d, noiseReduction=%v) = %d, expected %d",
				c.sensitivity, c.noiseReduction, got, c.expected)
		}
	}
}

func TestEstimateIdenticalFrames(t *testing.T) {
	for _, sensitivity := range []int{0, 50, 100} {
		for _, noiseReduction := range []bool{false, true} {
			detection := models.Detection{Sensitivity: sensitivity, NoiseReduction: noiseReduction}
			score := Estimate(uniformBuffer(120), uniformBuffer(120), detection)
			if score != 0 {
				t.Errorf("identical frames should score 0, got %f (sensitivity=%d, noiseReduction=%v)",
					score, sensitivity, noiseReduction)
			}
		}
	}
}

func TestEstimateChangedFraction(t *testing.T) {
	detection := models.Detection{Sensitivity: 70, NoiseReduction: true}
	previous := uniformBuffer(50)

	// Change exactly 15% of the pixels well beyond the pixel threshold.
	current := uniformBuffer(50)
	total := len(current.Pix)
	changed := total * 15 / 100
	for i := 0; i < changed; i++ {
		current.Pix[i] = 200
	}

	score := Estimate(current, previous, detection)
	expected := float64(changed) / float64(total) * 100
	if score != expected {
		t.Fatalf("expected score %f, got %f", expected, score)
	}
}

func TestEstimateCommutativeInPixelPosition(t *testing.T) {
	detection := models.Detection{Sensitivity: 70, NoiseReduction: true}
	previous := uniformBuffer(50)

	// Same number of changed pixels, scattered instead of leading.
	front := uniformBuffer(50)
	scattered := uniformBuffer(50)
	total := len(front.Pix)
	changed := total / 10
	for i := 0; i < changed; i++ {
		front.Pix[i] = 220
		scattered.Pix[(i*7919)%total] = 220
	}

	frontScore := Estimate(front, previous, detection)
	scatteredScore := Estimate(scattered, previous, detection)
	if frontScore != scatteredScore {
		t.Fatalf("score depends on pixel position: %f != %f", frontScore, scatteredScore)
	}
}

func TestEstimateBelowThresholdIgnored(t *testing.T) {
	detection := models.Detection{Sensitivity: 70, NoiseReduction: true}
	previous := uniformBuffer(100)

	// A difference below the pixel threshold (77) should not count.
	current := uniformBuffer(150)
	score := Estimate(current, previous, detection)
	if score != 0 {
		t.Fatalf("sub-threshold differences should score 0, got %f", score)
	}
}
