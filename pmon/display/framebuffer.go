package display

import "image/color"

// Display geometry.
const (
	Width  = 128
	Height = 64
)

// Framebuffer is an in-memory 128x64 monochrome display. It implements
// drivers.Displayer and stands in for the OLED on the host: in tests and
// in the simulator.
type Framebuffer struct {
	pixels [Height][Width]bool
	frames int

	// OnDisplay, if set, is called after every Display.
	OnDisplay func(fb *Framebuffer)
}

// NewFramebuffer returns a blank framebuffer.
func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

// Size implements drivers.Displayer.
func (fb *Framebuffer) Size() (x, y int16) {
	return Width, Height
}

// SetPixel implements drivers.Displayer. Out of range coordinates are
// ignored.
func (fb *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	fb.pixels[y][x] = isOn(c)
}

// Display implements drivers.Displayer. It counts frames and calls
// OnDisplay.
func (fb *Framebuffer) Display() error {
	fb.frames++
	if fb.OnDisplay != nil {
		fb.OnDisplay(fb)
	}
	return nil
}

// Pixel reports whether the pixel at (x, y) is on. Out of range
// coordinates are off.
func (fb *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return fb.pixels[y][x]
}

// Frames returns the number of completed Display calls.
func (fb *Framebuffer) Frames() int {
	return fb.frames
}

// Clear turns every pixel off.
func (fb *Framebuffer) Clear() {
	fb.pixels = [Height][Width]bool{}
}

// Lit returns the number of pixels that are on within the rectangle
// [x0, x1) x [y0, y1).
func (fb *Framebuffer) Lit(x0, y0, x1, y1 int) int {
	n := 0
	for y := max(y0, 0); y < min(y1, Height); y++ {
		for x := max(x0, 0); x < min(x1, Width); x++ {
			if fb.pixels[y][x] {
				n++
			}
		}
	}
	return n
}
