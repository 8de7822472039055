package clock

import "time"

// Fake is a manually advanced clock used in tests.
type Fake struct {
	Current time.Time
}

func NewFake(t time.Time) *Fake {
	return &Fake{Current: t}
}

func (f *Fake) Now() time.Time {
	return f.Current
}

func (f *Fake) LocalHour(t time.Time) int {
	return t.Hour()
}

func (f *Fake) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
