// Package timer provides a passive elapsed time tracker for the control
// loop. Nothing fires: callers poll Elapsed.
package timer

import "time"

// Passive measures the time since it was last restarted using the
// monotonic clock.
type Passive struct {
	now   func() time.Time
	start time.Time
}

// New returns a Passive timer started now.
func New() *Passive {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Passive timer reading time from now.
func NewWithClock(now func() time.Time) *Passive {
	p := &Passive{now: now}
	p.Restart()
	return p
}

// Restart starts measuring from now.
func (p *Passive) Restart() {
	p.start = p.now()
}

// Elapsed returns the time since the last Restart.
func (p *Passive) Elapsed() time.Duration {
	return p.now().Sub(p.start)
}

// ElapsedMillis returns Elapsed in whole milliseconds, saturating at the
// largest uint32.
func (p *Passive) ElapsedMillis() uint32 {
	ms := p.Elapsed().Milliseconds()
	if ms < 0 {
		return 0
	}
	if ms > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(ms)
}
