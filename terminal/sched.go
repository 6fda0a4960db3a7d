package terminal

import "time"

// deadline is a fixed-rate timer. Each expiry moves it forward by exactly
// one period, so a late check does not shift later deadlines.
type deadline struct {
	period time.Duration
	next   time.Time
}

// expired reports whether now is past the deadline, and if so
// rearms it one period later.
func (d *deadline) expired(now time.Time) bool {
	if !now.After(d.next) {
		return false
	}
	d.next = d.next.Add(d.period)
	return true
}

// Scheduler drives the display refresh and the keyboard poll at their
// own rates. A Scheduler that falls several periods behind fires once
// per Tick until it has caught up.
type Scheduler struct {
	display  deadline
	keyboard deadline
}

// NewScheduler returns a Scheduler whose first deadlines are both start.
func NewScheduler(start time.Time, displayPeriod, keyboardPeriod time.Duration) *Scheduler {
	return &Scheduler{
		display:  deadline{period: displayPeriod, next: start},
		keyboard: deadline{period: keyboardPeriod, next: start},
	}
}

// Tick calls redraw if the display deadline has passed
// and poll if the keyboard deadline has passed.
func (s *Scheduler) Tick(now time.Time, redraw, poll func()) {
	if s.display.expired(now) {
		redraw()
	}
	if s.keyboard.expired(now) {
		poll()
	}
}

// Next returns the upcoming display and keyboard deadlines.
func (s *Scheduler) Next() (display, keyboard time.Time) {
	return s.display.next, s.keyboard.next
}

// hzPeriod returns the period of a frequency given in Hz.
func hzPeriod(hz int) time.Duration {
	return time.Second / time.Duration(hz)
}
