package display

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// fakeTimer is a Timer whose elapsed time is set by the test.
type fakeTimer struct {
	elapsed  time.Duration
	restarts int
}

func (f *fakeTimer) Restart() {
	f.elapsed = 0
	f.restarts++
}

func (f *fakeTimer) Elapsed() time.Duration {
	return f.elapsed
}

func TestOverlayStartsIdle(t *testing.T) {
	c := qt.New(t)

	ft := &fakeTimer{}
	o := NewOverlay(ft)
	c.Assert(o.Code(), qt.Equals, MessageNone)
	c.Assert(o.Expired(), qt.IsFalse)
	c.Assert(o.ExpireIfDue(), qt.IsFalse)
	c.Assert(ft.restarts, qt.Equals, 1)
}

func TestOverlayExpiry(t *testing.T) {
	c := qt.New(t)

	ft := &fakeTimer{}
	o := NewOverlay(ft)
	o.Activate(MessageSplash, 2*time.Second)

	c.Assert(o.ExpireIfDue(), qt.IsTrue)
	ft.elapsed = 1999 * time.Millisecond
	c.Assert(o.ExpireIfDue(), qt.IsTrue)
	c.Assert(o.Code(), qt.Equals, MessageSplash)

	ft.elapsed = 2 * time.Second
	c.Assert(o.Expired(), qt.IsTrue)
	// Expired is a pure query.
	c.Assert(o.Code(), qt.Equals, MessageSplash)

	c.Assert(o.ExpireIfDue(), qt.IsFalse)
	c.Assert(o.Code(), qt.Equals, MessageNone)

	// Stays idle without a new activation.
	ft.elapsed = 0
	c.Assert(o.ExpireIfDue(), qt.IsFalse)
	c.Assert(o.Expired(), qt.IsFalse)
}

func TestOverlayAcknowledgeExpiry(t *testing.T) {
	c := qt.New(t)

	ft := &fakeTimer{}
	o := NewOverlay(ft)
	o.Activate(MessageAnalysisReset, time.Second)
	ft.elapsed = 3 * time.Second

	c.Assert(o.Expired(), qt.IsTrue)
	o.AcknowledgeExpiry()
	c.Assert(o.Expired(), qt.IsFalse)
	c.Assert(o.Code(), qt.Equals, MessageNone)
}

func TestOverlayActivateRedraw(t *testing.T) {
	c := qt.New(t)

	ft := &fakeTimer{}
	o := NewOverlay(ft)

	c.Assert(o.Activate(MessageSplash, time.Second), qt.IsTrue)
	c.Assert(o.Activate(MessageSplash, time.Second), qt.IsFalse)
	c.Assert(o.Activate(MessageAnalysisReset, time.Second), qt.IsTrue)
	c.Assert(o.Activate(MessageNone, 0), qt.IsFalse)
	// Idle to a real message redraws again.
	c.Assert(o.Activate(MessageAnalysisReset, time.Second), qt.IsTrue)
}

func TestOverlayReactivateRestartsTimer(t *testing.T) {
	c := qt.New(t)

	ft := &fakeTimer{}
	o := NewOverlay(ft)
	o.Activate(MessageSplash, time.Second)
	ft.elapsed = 900 * time.Millisecond

	o.Activate(MessageSplash, time.Second)
	c.Assert(ft.restarts, qt.Equals, 3)
	ft.elapsed = 500 * time.Millisecond
	c.Assert(o.ExpireIfDue(), qt.IsTrue)
}

func TestMessageCodeString(t *testing.T) {
	c := qt.New(t)

	c.Assert(MessageSplash.String(), qt.Equals, "splash")
	c.Assert(MessageCode(42).String(), qt.Equals, "message(42)")
}
