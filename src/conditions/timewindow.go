package conditions

import (
	"time"

	"github.com/camview/agent/src/clock"
	"github.com/camview/agent/src/log"
	"github.com/camview/agent/src/models"
)

// InWindow reports whether an hour falls inside the configured alert
// window. A window with start > end wraps past midnight: 22-6 covers
// 22:00 up to 05:59 the next day.
func InWindow(startHour int, endHour int, hour int) bool {
	if startHour <= endHour {
		return hour >= startHour && hour < endHour
	}
	return hour >= startHour || hour < endHour
}

// IsWithinTimeWindow checks the wall-clock hour of the given moment
// against the schedule of the detection configuration. A disabled schedule
// is always inside the window.
func IsWithinTimeWindow(clk clock.Clock, now time.Time, detection models.Detection) (enabled bool) {
	enabled = true
	if detection.ScheduleEnabled {
		hour := clk.LocalHour(now)
		if !InWindow(detection.StartHour, detection.EndHour, hour) {
			log.Log.Debug("conditions.timewindow.IsWithinTimeWindow(): outside schedule window, suppressing alerts.")
			enabled = false
		}
	}
	return
}
