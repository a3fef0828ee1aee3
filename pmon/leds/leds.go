// Package leds drives the status LEDs of the power monitor.
package leds

import "time"

// DefaultOnTime is how long an ActionLed stays lit after Action.
const DefaultOnTime = 200 * time.Millisecond

// Pin is an output pin. machine.Pin implements it.
type Pin interface {
	High()
	Low()
}

// ActionLed lights a LED for a short time each time something happens,
// such as an error. Call Loop from the control loop to turn it off again.
type ActionLed struct {
	pin    Pin
	now    func() time.Time
	onTime time.Duration

	lit   bool
	since time.Time
}

// NewActionLed returns an ActionLed on pin, initially off.
func NewActionLed(pin Pin, onTime time.Duration) *ActionLed {
	return newActionLed(pin, onTime, time.Now)
}

func newActionLed(pin Pin, onTime time.Duration, now func() time.Time) *ActionLed {
	if onTime <= 0 {
		onTime = DefaultOnTime
	}
	l := &ActionLed{pin: pin, now: now, onTime: onTime}
	l.pin.Low()
	return l
}

// Action lights the LED, extending the on time if it is already lit.
func (l *ActionLed) Action() {
	l.since = l.now()
	if !l.lit {
		l.pin.High()
		l.lit = true
	}
}

// Loop turns the LED off once its on time passed.
func (l *ActionLed) Loop() {
	if l.lit && l.now().Sub(l.since) >= l.onTime {
		l.pin.Low()
		l.lit = false
	}
}

// Lit reports whether the LED is on.
func (l *ActionLed) Lit() bool {
	return l.lit
}

// Debug is a spare output pin toggled to trace the control loop on a
// scope or logic analyzer.
type Debug struct {
	pin  Pin
	high bool
}

// NewDebug returns a Debug pin driven low.
func NewDebug(pin Pin) *Debug {
	pin.Low()
	return &Debug{pin: pin}
}

// Toggle flips the pin level.
func (d *Debug) Toggle() {
	d.Set(!d.high)
}

// Set drives the pin high or low.
func (d *Debug) Set(high bool) {
	d.high = high
	if high {
		d.pin.High()
	} else {
		d.pin.Low()
	}
}
