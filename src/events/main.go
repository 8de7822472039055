package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/camview/agent/src/clock"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
	"github.com/dromara/carbon/v2"
	"github.com/gofrs/uuid"
)

// MaxStoredEvents bounds the persisted list; the oldest entries are
// silently dropped once the cap is reached.
const MaxStoredEvents = 100

// Store persists motion events. The backing medium is opaque to the rest
// of the agent; it only needs append, finalize and bounded newest-first
// listing.
type Store interface {
	Append(event models.MotionEvent) error
	Update(event models.MotionEvent) error
	ListRecent(limit int) ([]models.MotionEvent, error)
}

// Recorder writes one compact record per motion episode and keeps the
// rolling daily counter. It enforces the single-open-event invariant as a
// backstop; the temporal gate already guarantees it upstream.
type Recorder struct {
	store             Store
	clk               clock.Clock
	cameraKey         string
	recordingEnabled  bool
	notificationsSent bool

	mu          sync.Mutex
	eventsToday uint
	open        *models.MotionEvent
}

func NewRecorder(store Store, clk clock.Clock, cameraKey string, recordingEnabled bool, notificationsEnabled bool) *Recorder {
	return &Recorder{
		store:             store,
		clk:               clk,
		cameraKey:         cameraKey,
		recordingEnabled:  recordingEnabled,
		notificationsSent: notificationsEnabled,
	}
}

// RecordStarted creates and persists a new open event. A persistence
// failure is returned to the caller but the event is still tracked, so
// detection carries on even when the store is down.
func (r *Recorder) RecordStarted(level float64) (models.MotionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open != nil {
		return *r.open, errors.New("an event is already open")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.MotionEvent{}, err
	}
	now := r.clk.Now()
	event := models.MotionEvent{
		ID:                 id.String(),
		CameraKey:          r.cameraKey,
		MotionLevel:        level,
		DetectedAt:         now.UnixMilli(),
		DetectedAtTime:     carbon.CreateFromStdTime(now).ToDateTimeString(),
		RecordingTriggered: r.recordingEnabled,
		NotificationSent:   r.notificationsSent,
	}
	r.open = &event
	r.eventsToday++

	if err := r.store.Append(event); err != nil {
		return event, err
	}
	return event, nil
}

// RecordCleared finalizes the open event with its cleared timestamp and
// duration. Finalizing an unknown or absent id is a no-op error.
func (r *Recorder) RecordCleared(id string, durationMs int64) (models.MotionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open == nil || r.open.ID != id {
		return models.MotionEvent{}, errors.New("no open event with id " + id)
	}

	clearedAt := r.clk.Now().UnixMilli()
	r.open.ClearedAt = &clearedAt
	r.open.DurationMs = &durationMs
	event := *r.open
	r.open = nil

	if err := r.store.Update(event); err != nil {
		return event, err
	}
	return event, nil
}

// ListRecent returns up to limit events, newest first.
func (r *Recorder) ListRecent(limit int) ([]models.MotionEvent, error) {
	if limit <= 0 || limit > MaxStoredEvents {
		limit = MaxStoredEvents
	}
	return r.store.ListRecent(limit)
}

func (r *Recorder) EventsToday() uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eventsToday
}

// ResetDailyCount zeroes the daily counter; fired by the midnight
// rollover, never by the per-event cooldown.
func (r *Recorder) ResetDailyCount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventsToday = 0
}

// DurationUntilMidnight computes the delay until the next local midnight,
// used once at startup to schedule the first daily rollover.
func DurationUntilMidnight(now time.Time) time.Duration {
	next := carbon.CreateFromStdTime(now).StartOfDay().AddDay()
	return next.StdTime().Sub(now)
}

// StartRollover resets the daily counter at the next local midnight and
// every 24 hours after that, until the context is cancelled.
func (r *Recorder) StartRollover(ctx context.Context) {
	go func() {
		timer := time.NewTimer(DurationUntilMidnight(r.clk.Now()))
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				r.ResetDailyCount()
				log.Log.Info("events.main.StartRollover(): daily event counter reset")
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}
