package conditions

import (
	"errors"
	"fmt"

	"github.com/camview/agent/src/models"
)

// Validate rejects a detection configuration before the detector starts,
// so a bad value is an error at startup and not a surprise mid-run.
func Validate(detection models.Detection) error {
	if detection.Sensitivity < 0 || detection.Sensitivity > 100 {
		return fmt.Errorf("sensitivity out of range: %d", detection.Sensitivity)
	}
	if detection.Threshold < 0 || detection.Threshold > 100 {
		return fmt.Errorf("threshold out of range: %f", detection.Threshold)
	}
	if detection.StartHour < 0 || detection.StartHour > 23 {
		return fmt.Errorf("start hour out of range: %d", detection.StartHour)
	}
	if detection.EndHour < 0 || detection.EndHour > 23 {
		return fmt.Errorf("end hour out of range: %d", detection.EndHour)
	}
	if detection.CooldownPeriodSeconds < 0 {
		return errors.New("cooldown period must not be negative")
	}
	if detection.IntervalMillis < 0 {
		return errors.New("interval must not be negative")
	}
	return nil
}
