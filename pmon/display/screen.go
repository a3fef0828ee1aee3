// Package display renders the power monitor pages on a 128x64 monochrome
// display: a live current graph, a numeric summary and display messages
// (splash screen, analysis reset, ...) that take priority over both.
//
// Example usage:
//
//	pages := display.NewStripeBuffer(oled, 16)
//	screen := display.NewScreen(pages, timer.New(), logger)
//	screen.Setup()
//	screen.ActivateMessage(display.MessageSplash, 2000)
//
//	for {
//		screen.AppendGraphPoint(current)
//		screen.RenderGraphPage(current, average)
//	}
//
// A Screen is not safe for concurrent use. Other goroutines hand display
// messages to the control loop with Send and Drain.
package display

import (
	"io"
	"log/slog"
	"time"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

type page uint8

const (
	pageGraph page = iota
	pageSummary
)

// Screen owns the graph history and the message overlay and renders them
// through a Graphics page loop.
type Screen struct {
	gfx     Graphics
	overlay *Overlay
	graph   Graph
	font    tinyfont.Fonter
	logger  *slog.Logger

	// Values of the page being drawn, kept across the page passes.
	current   uint16
	average   uint16
	chargeMAh uint16
	seconds   uint16

	// text is scratch space for number formatting. The digits are built
	// in place and converted to a string once per draw call.
	text [16]byte
}

// NewScreen returns a Screen drawing through gfx. t measures how long the
// current display message has been shown. Call Setup before rendering.
func NewScreen(gfx Graphics, t Timer, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}
	return &Screen{
		gfx:     gfx,
		overlay: NewOverlay(t),
		font:    &proggy.TinySZ8pt7b,
		logger:  logger,
	}
}

// SetFont replaces the font used for all text.
func (s *Screen) SetFont(f tinyfont.Fonter) {
	s.font = f
}

// Setup resets the screen state: no display message, an empty graph and
// pixels drawn "on" since the display has no gray scale.
func (s *Screen) Setup() {
	s.overlay.Reset()
	s.graph.Clear()
	s.gfx.SetColor(on)
}

// ClearGraphBuffer drops the graph history.
func (s *Screen) ClearGraphBuffer() {
	s.graph.Clear()
}

// AppendGraphPoint adds a current reading to the graph history.
func (s *Screen) AppendGraphPoint(milliamps uint16) {
	s.graph.Append(CurrentToY(milliamps))
}

// Graph returns the graph history.
func (s *Screen) Graph() *Graph {
	return &s.graph
}

// Overlay returns the display message state.
func (s *Screen) Overlay() *Overlay {
	return s.overlay
}

// RenderGraphPage draws the current and average readings over the graph
// history. It draws nothing while a display message is active.
func (s *Screen) RenderGraphPage(current, average uint16) {
	if s.overlay.ExpireIfDue() {
		return
	}
	s.current, s.average = current, average
	s.picture(pageGraph)
}

// RenderSummaryPage draws the current, average, charge and time readings.
// It draws nothing while a display message is active.
func (s *Screen) RenderSummaryPage(current, average, chargeMAh, seconds uint16) {
	if s.overlay.ExpireIfDue() {
		return
	}
	s.current, s.average = current, average
	s.chargeMAh, s.seconds = chargeMAh, seconds
	s.picture(pageSummary)
}

// ActivateMessage shows the display message code for at least
// minDisplayMillis. The message is drawn right away unless it is
// MessageNone or already the current message, in which case the next
// periodic render picks it up.
func (s *Screen) ActivateMessage(code MessageCode, minDisplayMillis uint16) {
	redraw := s.overlay.Activate(code, time.Duration(minDisplayMillis)*time.Millisecond)
	s.logger.Debug("display:message",
		slog.String("code", code.String()),
		slog.Uint64("min_ms", uint64(minDisplayMillis)),
		slog.Bool("redraw", redraw),
	)
	if !redraw {
		return
	}
	s.RenderCurrentMessage()
}

// RenderCurrentMessage draws the current display message, whether or not
// it expired.
func (s *Screen) RenderCurrentMessage() {
	code := s.overlay.Code()
	for range Passes(s.gfx) {
		s.drawMessage(code)
	}
	s.checkFlush()
}

// picture draws p once per stripe pass.
func (s *Screen) picture(p page) {
	for stripe := range Passes(s.gfx) {
		switch p {
		case pageGraph:
			s.drawGraphPage(stripe)
		case pageSummary:
			s.drawSummaryPage(stripe)
		}
	}
	s.checkFlush()
}

func (s *Screen) checkFlush() {
	flusher, ok := s.gfx.(interface{ Err() error })
	if !ok {
		return
	}
	if err := flusher.Err(); err != nil {
		s.logger.Error("display:flush-failed", slog.String("err", err.Error()))
	}
}

// drawGraphPage draws one stripe of the graph page. Drawing only what
// intersects the stripe keeps each pass short.
func (s *Screen) drawGraphPage(stripe uint8) {
	g := s.gfx

	if stripe == 0 {
		g.SetFont(s.font)
		g.DrawString(0, 10, "Current")
		g.DrawString(70, 10, s.milliamps(s.current))
	}

	if stripe == 1 {
		g.SetFont(s.font)
		g.DrawString(0, 25, "Average")
		g.DrawString(70, 25, s.milliamps(s.average))
	}

	if stripe >= 2 {
		// The graph spans stripes 2 and 3; the same lines are drawn on both
		// passes and each pass keeps its own rows.
		var lastX, lastY int16
		started := false
		for y := range s.graph.Points() {
			if !started {
				lastY = int16(y)
				started = true
				continue
			}
			x := lastX + 2
			g.DrawLine(lastX, lastY, x, int16(y))
			lastX, lastY = x, int16(y)
		}
		// Cursor just right of the newest point.
		g.DrawLine(lastX+1, graphBottom, lastX+1, graphTop)
	}

	if stripe == 3 {
		g.DrawLine(0, graphBottom, Width-1, graphBottom)
	}
}

// drawSummaryPage draws one stripe of the summary page. Each stripe holds
// one labelled value, right justified so the columns line up.
func (s *Screen) drawSummaryPage(stripe uint8) {
	g := s.gfx
	g.SetFont(s.font)

	switch stripe {
	case 0:
		const baseY = 10
		g.DrawString(0, baseY, "I")
		g.DrawString(65, baseY, s.padded(s.current, 4))
		g.DrawString(103, baseY, "ma")
	case 1:
		const baseY = 27
		g.DrawString(0, baseY, "Iavg")
		g.DrawString(65, baseY, s.padded(s.average, 4))
		g.DrawString(103, baseY, "ma")
	case 2:
		const baseY = 44
		g.DrawString(0, baseY, "Q")
		g.DrawString(65, baseY, s.padded(s.chargeMAh, 4))
		g.DrawString(103, baseY, "mah")
	case 3:
		const baseY = 61
		g.DrawString(0, baseY, "T")
		g.DrawString(49, baseY, s.padded(s.seconds, 6))
		g.DrawString(101, baseY, "sec")
	}
}

// padded formats v right justified in width characters.
func (s *Screen) padded(v uint16, width int) string {
	return string(appendPadded(s.text[:0], v, width))
}

// milliamps formats v as "%4d ma".
func (s *Screen) milliamps(v uint16) string {
	b := appendPadded(s.text[:0], v, 4)
	return string(append(b, " ma"...))
}
