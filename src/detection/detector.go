package detection

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/camview/agent/src/capture"
	"github.com/camview/agent/src/clock"
	"github.com/camview/agent/src/conditions"
	"github.com/camview/agent/src/events"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
	"github.com/tevino/abool"
)

// DefaultInterval is the sampling cadence. One tick does a full
// downsample + diff over the analysis buffers, so the cadence bounds the
// CPU spent per camera.
const DefaultInterval = 1000 * time.Millisecond

// Callbacks are invoked synchronously on the tick goroutine. Consumers
// must not block for long as that delays the next tick.
type Callbacks struct {
	OnMotionDetected func(level float64)
	OnMotionCleared  func()
}

// Detector owns the whole sampling pipeline of a single camera: cadence,
// frame buffers, gate and recorder wiring. Each camera instance gets an
// entirely independent detector, there is no shared state between them.
type Detector struct {
	detection models.Detection
	clk       clock.Clock
	recorder  *events.Recorder
	callbacks Callbacks
	notify    chan<- models.MotionEvent
	interval  time.Duration

	running  *abool.AtomicBool
	paused   *abool.AtomicBool
	baseline *abool.AtomicBool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	source      capture.FrameSource
	gate        *Gate
	previous    *image.Gray
	current     *image.Gray
	hasPrevious bool
	openEventID string

	status atomic.Value
	ticks  atomic.Int64
}

func New(detection models.Detection, clk clock.Clock, recorder *events.Recorder, callbacks Callbacks, notify chan<- models.MotionEvent) *Detector {
	interval := DefaultInterval
	if detection.IntervalMillis > 0 {
		interval = time.Duration(detection.IntervalMillis) * time.Millisecond
	}
	return &Detector{
		detection: detection,
		clk:       clk,
		recorder:  recorder,
		callbacks: callbacks,
		notify:    notify,
		interval:  interval,
		running:   abool.New(),
		paused:    abool.New(),
		baseline:  abool.New(),
	}
}

// Start validates the configuration and fires up the tick loop. The
// configuration is immutable for the lifetime of the run; to change it the
// caller stops the detector and starts a new one.
func (d *Detector) Start(source capture.FrameSource) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := conditions.Validate(d.detection); err != nil {
		return err
	}
	if source == nil {
		return errors.New("no frame source given")
	}
	if d.running.IsSet() {
		return errors.New("detector is already running")
	}

	d.initRun(source)
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.running.Set()

	go d.loop()
	log.Log.Info("detection.detector.Start(): detector started")
	return nil
}

// initRun resets all per-run state; a fresh gate and clean buffers every
// time the detector comes up.
func (d *Detector) initRun(source capture.FrameSource) {
	d.source = source
	d.gate = NewGate(d.detection, d.clk)
	d.previous = capture.NewAnalysisBuffer()
	d.current = capture.NewAnalysisBuffer()
	d.hasPrevious = false
	d.openEventID = ""
	d.paused.UnSet()
	d.baseline.UnSet()
}

// Stop cancels the tick loop and waits for it to drain, so no callback
// fires after it returns. Safe to call from any state and more than once.
func (d *Detector) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.IsSet() {
		return
	}
	close(d.stop)
	<-d.done
	d.running.UnSet()
	d.source = nil
	log.Log.Info("detection.detector.Stop(): detector stopped")
}

// Pause suspends ticking entirely, e.g. while the dashboard tab is hidden.
func (d *Detector) Pause() {
	d.paused.Set()
	log.Log.Debug("detection.detector.Pause(): ticking suspended")
}

// Resume continues ticking. The first scored tick after a resume only
// re-establishes the previous-frame baseline, it never raises an alert.
func (d *Detector) Resume() {
	if d.paused.IsSet() {
		d.baseline.Set()
		d.paused.UnSet()
		log.Log.Debug("detection.detector.Resume(): ticking resumed")
	}
}

func (d *Detector) IsRunning() bool {
	return d.running.IsSet()
}

func (d *Detector) IsPaused() bool {
	return d.paused.IsSet()
}

// Ticks returns the number of processed ticks, used by the agent control
// loop to notice a stalled pipeline.
func (d *Detector) Ticks() int64 {
	return d.ticks.Load()
}

// Snapshot returns the status published at the end of the last tick.
func (d *Detector) Snapshot() models.Status {
	if status, ok := d.status.Load().(models.Status); ok {
		return status
	}
	return models.Status{}
}

func (d *Detector) loop() {
	defer close(d.done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			if d.paused.IsSet() {
				continue
			}
			d.tick(d.clk.Now())
		}
	}
}

// tick runs one downsample + diff + gate pass. Any internal panic abandons
// this tick only; the next scheduled tick proceeds normally.
func (d *Detector) tick(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			log.Log.Error(fmt.Sprintf("detection.detector.tick(): tick abandoned: %v", r))
		}
	}()

	d.ticks.Add(1)

	// The auto-clear deadline is checked on every tick, also on ticks
	// that end without an observation.
	if transition := d.gate.Expire(now); transition.Kind == TransitionCleared {
		d.handleCleared(transition)
	}

	if d.source == nil || !d.source.IsReady() {
		d.publishStatus()
		return
	}
	if !capture.Downsample(d.source.CurrentFrame(), d.current) {
		// No frame this tick, not an error.
		d.publishStatus()
		return
	}

	if !d.hasPrevious || d.baseline.IsSet() {
		// First frame establishes the baseline only.
		d.swapBuffers()
		d.hasPrevious = true
		d.baseline.UnSet()
		d.publishStatus()
		return
	}

	score := Estimate(d.current, d.previous, d.detection)
	if transition := d.gate.Observe(score, now); transition.Kind == TransitionStarted {
		d.handleStarted(transition)
	}
	d.swapBuffers()
	d.publishStatus()
}

func (d *Detector) swapBuffers() {
	d.previous, d.current = d.current, d.previous
}

func (d *Detector) handleStarted(transition Transition) {
	event, err := d.recorder.RecordStarted(transition.Level)
	if err != nil {
		// Persistence trouble never stops detection.
		log.Log.Error("detection.detector.handleStarted(): could not persist event: " + err.Error())
	}
	d.openEventID = event.ID
	if d.callbacks.OnMotionDetected != nil {
		d.callbacks.OnMotionDetected(transition.Level)
	}
	d.forward(event)
}

func (d *Detector) handleCleared(transition Transition) {
	event, err := d.recorder.RecordCleared(d.openEventID, transition.Duration.Milliseconds())
	if err != nil {
		log.Log.Error("detection.detector.handleCleared(): could not finalize event: " + err.Error())
	}
	d.openEventID = ""
	if d.callbacks.OnMotionCleared != nil {
		d.callbacks.OnMotionCleared()
	}
	d.forward(event)
}

func (d *Detector) forward(event models.MotionEvent) {
	if d.notify == nil || event.ID == "" {
		return
	}
	select {
	case d.notify <- event:
	default:
		log.Log.Warning("detection.detector.forward(): event channel full, dropping event " + event.ID)
	}
}

func (d *Detector) publishStatus() {
	state := d.gate.State()
	status := models.Status{
		MotionActive: state.IsActive,
		CurrentLevel: state.CurrentLevel,
		EventsToday:  d.recorder.EventsToday(),
	}
	if state.LastAlertAt != nil {
		alertAt := state.LastAlertAt.Unix()
		status.LastAlertAt = &alertAt
	}
	d.status.Store(status)
}
