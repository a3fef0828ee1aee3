package display

import "time"

// Timer measures the time since it was last restarted.
// It is implemented by timer.Passive.
type Timer interface {
	Restart()
	Elapsed() time.Duration
}

// Overlay tracks the display message that overrides the live pages.
//
// A message stays active for at least its minimum display time. Expiry is
// lazy: nothing happens when the time passes, the message is only retired
// by AcknowledgeExpiry or ExpireIfDue.
type Overlay struct {
	timer       Timer
	code        MessageCode
	minDuration time.Duration
}

// NewOverlay returns an overlay with no active message.
func NewOverlay(t Timer) *Overlay {
	o := &Overlay{timer: t}
	o.Reset()
	return o
}

// Reset drops the current message and restarts the timer.
func (o *Overlay) Reset() {
	o.code = MessageNone
	o.minDuration = 0
	o.timer.Restart()
}

// Activate makes code the current message for at least minDuration,
// restarting the timer even when code is already the current message.
//
// It reports whether the display needs an immediate redraw, which is the
// case when code is a real message that differs from the previous one.
func (o *Overlay) Activate(code MessageCode, minDuration time.Duration) (redraw bool) {
	previous := o.code
	o.code = code
	o.minDuration = minDuration
	o.timer.Restart()
	return code != MessageNone && code != previous
}

// Code returns the current message code, MessageNone when idle.
func (o *Overlay) Code() MessageCode {
	return o.code
}

// Expired reports whether a message is set and its minimum display time
// has passed. It does not change the overlay state.
func (o *Overlay) Expired() bool {
	return o.code != MessageNone && o.timer.Elapsed() >= o.minDuration
}

// AcknowledgeExpiry retires the current message.
func (o *Overlay) AcknowledgeExpiry() {
	o.code = MessageNone
}

// ExpireIfDue retires the current message if it expired and reports
// whether a message is still active.
func (o *Overlay) ExpireIfDue() (active bool) {
	if o.code == MessageNone {
		return false
	}
	if o.Expired() {
		o.AcknowledgeExpiry()
		return false
	}
	return true
}
