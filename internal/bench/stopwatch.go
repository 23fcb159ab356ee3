package bench

import (
	"fmt"
	"time"
)

// Clock returns the current time. Tests swap it for a fake.
type Clock func() time.Time

// Stopwatch measures one wall-clock interval.
type Stopwatch struct {
	clock Clock
	start time.Time
}

func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = time.Now
	}
	return &Stopwatch{clock: clock}
}

func (s *Stopwatch) Start() time.Time {
	s.start = s.clock()
	return s.start
}

// Elapsed never goes negative, even if the clock steps backwards.
func (s *Stopwatch) Elapsed() time.Duration {
	d := s.clock().Sub(s.start)
	if d < 0 {
		return 0
	}
	return d
}

// Time runs fn and returns how long it took.
func (s *Stopwatch) Time(fn func() error) (time.Duration, error) {
	s.Start()
	err := fn()
	return s.Elapsed(), err
}

func FmtDur(d time.Duration) string {
	us := float64(d.Microseconds())
	if us < 1000 {
		return fmt.Sprintf("%.0fµs", us)
	}
	if us < 1000*1000 {
		return fmt.Sprintf("%.2fms", us/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
