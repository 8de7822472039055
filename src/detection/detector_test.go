package detection

import (
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/camview/agent/src/capture"
	"github.com/camview/agent/src/clock"
	"github.com/camview/agent/src/events"
)

func newTestRecorder(t *testing.T, clk clock.Clock) *events.Recorder {
	t.Helper()
	store, err := events.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("could not create file store: %v", err)
	}
	return events.NewRecorder(store, clk, "testcam", true, false)
}

// TestDetectorEndToEnd feeds a frame pair differing in 15% of the pixels
// and verifies the full pipeline: one alert with the right level, one
// persisted open event, and a finalized event after the clear delay.
func TestDetectorEndToEnd(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	recorder := newTestRecorder(t, clk)

	detected := 0
	cleared := 0
	var level float64
	detector := New(testDetection(), clk, recorder, Callbacks{
		OnMotionDetected: func(l float64) {
			detected++
			level = l
		},
		OnMotionCleared: func() {
			cleared++
		},
	}, nil)

	frameA := uniformBuffer(50)
	frameB := uniformBuffer(50)
	changed := len(frameB.Pix) * 15 / 100
	for i := 0; i < changed; i++ {
		frameB.Pix[i] = 200
	}

	detector.initRun(&capture.StaticSource{
		Frames: []image.Image{frameA, frameB},
	})

	// First tick only establishes the baseline.
	detector.tick(clk.Now())
	if detected != 0 {
		t.Fatal("baseline tick must not alert")
	}

	// Second tick sees frame B and must alert exactly once.
	clk.Advance(time.Second)
	detector.tick(clk.Now())
	if detected != 1 {
		t.Fatalf("expected exactly one alert, got %d", detected)
	}
	if level != 15 {
		t.Fatalf("expected motion level 15, got %f", level)
	}
	if recorder.EventsToday() != 1 {
		t.Fatalf("events today should be 1, got %d", recorder.EventsToday())
	}

	listed, err := recorder.ListRecent(10)
	if err != nil {
		t.Fatalf("could not list events: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one persisted event, got %d", len(listed))
	}
	if !listed[0].Open() {
		t.Fatal("the event should still be open")
	}

	// Frames stay identical to B; after 3 quiet seconds the episode clears.
	for i := 0; i < 3; i++ {
		clk.Advance(time.Second)
		detector.tick(clk.Now())
	}
	if cleared != 1 {
		t.Fatalf("expected exactly one clear, got %d", cleared)
	}
	if detected != 1 {
		t.Fatalf("no second alert expected, got %d", detected)
	}

	listed, _ = recorder.ListRecent(10)
	if listed[0].Open() {
		t.Fatal("the event should be finalized")
	}
	if *listed[0].DurationMs != 3000 {
		t.Fatalf("expected 3000ms duration, got %d", *listed[0].DurationMs)
	}
}

// TestDetectorSkipsUnreadyFrames verifies that a missing frame mid-run is
// treated as "no observation" and does not destroy the baseline.
func TestDetectorSkipsUnreadyFrames(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	recorder := newTestRecorder(t, clk)

	detected := 0
	detector := New(testDetection(), clk, recorder, Callbacks{
		OnMotionDetected: func(l float64) { detected++ },
	}, nil)

	frameA := uniformBuffer(50)
	frameB := uniformBuffer(200)

	detector.initRun(&capture.StaticSource{
		Frames: []image.Image{frameA, nil, frameB},
	})

	detector.tick(clk.Now()) // baseline
	clk.Advance(time.Second)
	detector.tick(clk.Now()) // nil frame, skipped
	if detected != 0 {
		t.Fatal("a skipped tick must not alert")
	}
	clk.Advance(time.Second)
	detector.tick(clk.Now()) // frame B scores against the kept baseline
	if detected != 1 {
		t.Fatalf("expected one alert after the gap, got %d", detected)
	}
}

// TestDetectorResumeReestablishesBaseline verifies the throwaway tick
// after a pause/resume cycle: the first frame after resuming never alerts.
func TestDetectorResumeReestablishesBaseline(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	recorder := newTestRecorder(t, clk)

	detected := 0
	detector := New(testDetection(), clk, recorder, Callbacks{
		OnMotionDetected: func(l float64) { detected++ },
	}, nil)

	frameA := uniformBuffer(50)
	frameB := uniformBuffer(200)

	detector.initRun(&capture.StaticSource{
		Frames: []image.Image{frameA, frameB, frameB},
	})

	detector.tick(clk.Now()) // baseline A

	detector.Pause()
	detector.Resume()

	clk.Advance(time.Minute)
	detector.tick(clk.Now()) // frame B, baseline re-establish only
	if detected != 0 {
		t.Fatal("the first tick after resume must not alert")
	}
	clk.Advance(time.Second)
	detector.tick(clk.Now()) // B against B, no change
	if detected != 0 {
		t.Fatalf("no alert expected, got %d", detected)
	}
}

func TestDetectorStartValidatesConfig(t *testing.T) {
	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	recorder := newTestRecorder(t, clk)

	detection := testDetection()
	detection.StartHour = 25
	detector := New(detection, clk, recorder, Callbacks{}, nil)

	err := detector.Start(&capture.StaticSource{Frames: []image.Image{uniformBuffer(50)}})
	if err == nil {
		detector.Stop()
		t.Fatal("expected a validation error for hour 25")
	}
}

func TestDetectorStopIsIdempotent(t *testing.T) {
	recorder := newTestRecorder(t, clock.NewSystem("UTC"))

	var alerts atomic.Int64
	detection := testDetection()
	detection.IntervalMillis = 5
	detector := New(detection, clock.NewSystem("UTC"), recorder, Callbacks{
		OnMotionDetected: func(l float64) { alerts.Add(1) },
	}, nil)

	err := detector.Start(&capture.StaticSource{Frames: []image.Image{uniformBuffer(50)}})
	if err != nil {
		t.Fatalf("could not start detector: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	detector.Stop()
	if detector.IsRunning() {
		t.Fatal("detector should not be running after Stop")
	}
	after := alerts.Load()

	// Second stop is a no-op, and no callback fires after teardown.
	detector.Stop()
	time.Sleep(30 * time.Millisecond)
	if alerts.Load() != after {
		t.Fatal("callback fired after Stop returned")
	}
}
