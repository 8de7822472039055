package detection

import (
	"time"

	"github.com/camview/agent/src/clock"
	"github.com/camview/agent/src/conditions"
	"github.com/camview/agent/src/models"
)

// ClearDelay is how long a motion episode stays active after the last tick
// that still exceeded the threshold.
const ClearDelay = 3 * time.Second

type TransitionKind int

const (
	TransitionNone TransitionKind = iota
	TransitionStarted
	TransitionCleared
)

// Transition is the outcome of feeding one observation into the gate.
type Transition struct {
	Kind     TransitionKind
	Level    float64
	Duration time.Duration
}

// MotionState is the externally visible state of the gate. The gate is its
// single writer; everything runs on the tick goroutine.
type MotionState struct {
	IsActive     bool
	CurrentLevel float64
	LastAlertAt  *time.Time
}

// Gate turns a noisy per-tick motion score into discrete started/cleared
// transitions. It applies, in order: the score threshold, the schedule
// window, and the cooldown between alert emissions. Re-triggers while
// active only push the clear deadline out, which guarantees at most one
// open episode at any time.
type Gate struct {
	detection models.Detection
	clk       clock.Clock

	state         MotionState
	activeSince   time.Time
	clearDeadline time.Time
}

func NewGate(detection models.Detection, clk clock.Clock) *Gate {
	return &Gate{
		detection: detection,
		clk:       clk,
	}
}

// Observe feeds one motion score into the gate.
func (g *Gate) Observe(score float64, now time.Time) Transition {
	if g.state.IsActive {
		g.state.CurrentLevel = score
		if score > g.detection.Threshold {
			// Re-trigger: keep the episode alive, no new event.
			g.clearDeadline = now.Add(ClearDelay)
		}
		return Transition{Kind: TransitionNone}
	}

	g.state.CurrentLevel = 0
	if score <= g.detection.Threshold {
		return Transition{Kind: TransitionNone}
	}
	if !conditions.IsWithinTimeWindow(g.clk, now, g.detection) {
		return Transition{Kind: TransitionNone}
	}
	// Cooldown bounds the alert frequency, not the episode duration, so it
	// is only checked on the idle-to-active edge.
	if g.state.LastAlertAt != nil {
		cooldown := time.Duration(g.detection.CooldownPeriodSeconds) * time.Second
		if now.Sub(*g.state.LastAlertAt) < cooldown {
			return Transition{Kind: TransitionNone}
		}
	}

	alertAt := now
	g.state.IsActive = true
	g.state.CurrentLevel = score
	g.state.LastAlertAt = &alertAt
	g.activeSince = now
	g.clearDeadline = now.Add(ClearDelay)
	return Transition{Kind: TransitionStarted, Level: score}
}

// Expire fires the pending auto-clear once its deadline has passed without
// an intervening re-trigger. It runs at the start of every tick, also on
// ticks that end up without an observation.
func (g *Gate) Expire(now time.Time) Transition {
	if !g.state.IsActive || now.Before(g.clearDeadline) {
		return Transition{Kind: TransitionNone}
	}
	duration := now.Sub(g.activeSince)
	g.state.IsActive = false
	g.state.CurrentLevel = 0
	return Transition{Kind: TransitionCleared, Duration: duration}
}

// State returns a copy of the current motion state.
func (g *Gate) State() MotionState {
	state := g.state
	if g.state.LastAlertAt != nil {
		alertAt := *g.state.LastAlertAt
		state.LastAlertAt = &alertAt
	}
	return state
}
