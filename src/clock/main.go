package clock

import "time"

// Clock abstracts wall-clock access so the schedule window, cooldown and
// midnight rollover logic can be tested deterministically.
type Clock interface {
	Now() time.Time
	LocalHour(t time.Time) int
}

// System is the wall clock, localised to the configured timezone.
type System struct {
	Location *time.Location
}

func NewSystem(timezone string) *System {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.Local
	}
	return &System{Location: loc}
}

func (s *System) Now() time.Time {
	return time.Now().In(s.Location)
}

func (s *System) LocalHour(t time.Time) int {
	return t.In(s.Location).Hour()
}
