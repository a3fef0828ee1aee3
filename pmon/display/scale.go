package display

import "math"

// Graph area geometry. The graph uses the bottom half of the display.
const (
	graphTop    = 32
	graphBottom = 63

	maxGraphMilliAmps = 2000
)

// Sub logarithmic curve constants, chosen so that [0..2000] mA maps to
// [0..31] rows:
//
//	b = int(32/(ln(2000+a)-ln(a)))
//	c = int(ln(a)*b)
const (
	curveA = 30
	curveB = 7
	curveC = 23
)

// CurrentToY maps a current reading to a pixel row of the graph area.
// Zero current lands near the bottom row (63) and 2000 mA near the top of
// the graph area (32). Readings above 2000 mA are clipped.
//
// The curve sits between linear and log(): it has less gain than log() at
// the low end and more at the high end.
func CurrentToY(milliamps uint16) uint8 {
	if milliamps > maxGraphMilliAmps {
		milliamps = maxGraphMilliAmps
	}
	// Truncation after adding 0.5 rounds half up; the value is never negative.
	scaled := int(0.5 + curveB*math.Log(float64(milliamps)+curveA) - curveC)
	return uint8(graphBottom - scaled)
}
