package capture

import (
	"image"
	"image/color"
	"testing"
)

func TestDownsampleRejectsMissingFrame(t *testing.T) {
	dst := NewAnalysisBuffer()
	if Downsample(nil, dst) {
		t.Fatal("nil frame should not downsample")
	}
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if Downsample(empty, dst) {
		t.Fatal("zero-dimension frame should not downsample")
	}
}

func TestDownsampleUniformFrame(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for y := 0; y < 480; y++ {
		for x := 0; x < 640; x++ {
			frame.Set(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}

	dst := NewAnalysisBuffer()
	if !Downsample(frame, dst) {
		t.Fatal("expected the frame to downsample")
	}
	for i, value := range dst.Pix {
		if value != 90 {
			t.Fatalf("pixel %d: expected luminance 90, got %d", i, value)
		}
	}
}

func TestDownsampleLuminanceIsChannelMean(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 160, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			frame.Set(x, y, color.RGBA{R: 30, G: 60, B: 90, A: 255})
		}
	}

	dst := NewAnalysisBuffer()
	if !Downsample(frame, dst) {
		t.Fatal("expected the frame to downsample")
	}
	if dst.Pix[0] != 60 {
		t.Fatalf("expected mean luminance 60, got %d", dst.Pix[0])
	}
}

func TestStaticSourceRepeatsLastFrame(t *testing.T) {
	frameA := image.NewGray(image.Rect(0, 0, 10, 10))
	frameB := image.NewGray(image.Rect(0, 0, 10, 10))
	source := &StaticSource{Frames: []image.Image{frameA, frameB}}

	if !source.IsReady() {
		t.Fatal("source with frames should be ready")
	}
	if source.CurrentFrame() != frameA {
		t.Fatal("expected frame A first")
	}
	if source.CurrentFrame() != frameB {
		t.Fatal("expected frame B second")
	}
	if source.CurrentFrame() != frameB {
		t.Fatal("expected frame B to repeat")
	}

	empty := &StaticSource{}
	if empty.IsReady() {
		t.Fatal("empty source should not be ready")
	}
}
