// Package analysis accumulates current samples into the values shown on
// the summary page: average current, total charge and elapsed time.
package analysis

import "time"

const msPerHour = 60 * 60 * 1000

// Snapshot is the state of an analysis at one point in time. Values that
// do not fit in a uint16 saturate at 65535.
type Snapshot struct {
	Current   uint16 // last sample, mA
	Average   uint16 // mean current since the last reset, mA
	ChargeMAh uint16 // charge since the last reset, mAh
	Seconds   uint16 // time since the last reset
	Samples   uint32
}

// Analyzer integrates current samples over time. Each sample is held
// until the next one arrives. It is not safe for concurrent use.
type Analyzer struct {
	now func() time.Time

	start    time.Time
	last     time.Time
	current  uint16
	samples  uint32
	chargeMs uint64 // mA * ms
}

// New returns an Analyzer reading time from the monotonic clock.
func New() *Analyzer {
	return NewWithClock(time.Now)
}

// NewWithClock returns an Analyzer reading time from now.
func NewWithClock(now func() time.Time) *Analyzer {
	a := &Analyzer{now: now}
	a.Reset()
	return a
}

// Reset drops all accumulated data and restarts the elapsed time.
func (a *Analyzer) Reset() {
	t := a.now()
	a.start = t
	a.last = t
	a.current = 0
	a.samples = 0
	a.chargeMs = 0
}

// Add records a current sample taken now.
func (a *Analyzer) Add(milliamps uint16) {
	t := a.now()
	a.integrate(t)
	a.last = t
	a.current = milliamps
	a.samples++
}

// Snapshot returns the analysis up to now. The last sample is assumed to
// still hold.
func (a *Analyzer) Snapshot() Snapshot {
	t := a.now()
	charge := a.chargeMs
	if a.samples > 0 {
		charge += uint64(a.current) * uint64(millis(t.Sub(a.last)))
	}
	elapsed := millis(t.Sub(a.start))

	s := Snapshot{
		Current:   a.current,
		ChargeMAh: saturate(charge / msPerHour),
		Seconds:   saturate(elapsed / 1000),
		Samples:   a.samples,
	}
	switch {
	case elapsed > 0:
		s.Average = saturate(charge / elapsed)
	case a.samples > 0:
		s.Average = a.current
	}
	return s
}

func (a *Analyzer) integrate(t time.Time) {
	if a.samples == 0 {
		return
	}
	a.chargeMs += uint64(a.current) * uint64(millis(t.Sub(a.last)))
}

func millis(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d.Milliseconds())
}

func saturate(v uint64) uint16 {
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}
