package display

import (
	"image/color"
	"iter"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinydraw"
	"tinygo.org/x/tinyfont"
)

// Graphics is the page buffered drawing library used by Screen.
//
// A frame is drawn with the picture loop:
//
//	g.FirstPage()
//	for {
//		// draw the whole frame
//		if !g.NextPage() {
//			break
//		}
//	}
//
// Each pass only keeps the pixels of one horizontal stripe of the display;
// writes outside the active stripe are discarded.
type Graphics interface {
	FirstPage()
	NextPage() bool

	SetColor(c color.RGBA)
	SetFont(f tinyfont.Fonter)

	// DrawString draws s with its baseline at y.
	DrawString(x, y int16, s string)
	DrawLine(x0, y0, x1, y1 int16)
	DrawFrame(x, y, w, h int16)
	DrawRoundFrame(x, y, w, h, r int16)
}

// Passes runs the picture loop of g, yielding the index of every stripe
// pass. The frame is always completed, even when the caller stops early.
//
//	for stripe := range display.Passes(g) {
//		draw(stripe)
//	}
func Passes(g Graphics) iter.Seq[uint8] {
	return func(yield func(uint8) bool) {
		g.FirstPage()
		for stripe := uint8(0); ; stripe++ {
			if !yield(stripe) {
				for g.NextPage() {
				}
				return
			}
			if !g.NextPage() {
				return
			}
		}
	}
}

var (
	on  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	off = color.RGBA{A: 0xff}
)

// StripeBuffer implements Graphics with a buffer of a single stripe. After
// every pass the stripe is copied to the target display, and the target
// is flushed with Display once the last stripe is done.
//
// It also implements drivers.Displayer so that tinyfont can draw into it.
type StripeBuffer struct {
	target drivers.Displayer
	width  int16
	height int16

	stripeHeight int16
	stripe       int16
	// band holds the active stripe using the SSD1306 page layout: one byte
	// per column for every 8 rows, bit 0 on top.
	band []byte

	font  tinyfont.Fonter
	color color.RGBA
	err   error
}

// NewStripeBuffer returns a StripeBuffer for target. The stripe height is
// rounded up to a multiple of 8 rows and capped to the display height.
// A 16 row stripe on a 128x64 display takes 4 passes per frame.
func NewStripeBuffer(target drivers.Displayer, stripeHeight int16) *StripeBuffer {
	w, h := target.Size()
	if stripeHeight < 8 {
		stripeHeight = 8
	}
	stripeHeight = (stripeHeight + 7) &^ 7
	if stripeHeight > h {
		stripeHeight = h
	}
	return &StripeBuffer{
		target:       target,
		width:        w,
		height:       h,
		stripeHeight: stripeHeight,
		band:         make([]byte, int(w)*int(stripeHeight)/8),
		color:        on,
	}
}

// Stripes returns the number of passes needed for one frame.
func (b *StripeBuffer) Stripes() int {
	return int((b.height + b.stripeHeight - 1) / b.stripeHeight)
}

// Err returns the error of the last flush of the target display, if any.
func (b *StripeBuffer) Err() error {
	return b.err
}

// FirstPage starts a new frame at the top stripe.
func (b *StripeBuffer) FirstPage() {
	b.stripe = 0
	b.clearBand()
}

// NextPage copies the active stripe to the target and moves to the next
// one. It returns false, after flushing the target, when the frame is
// complete.
func (b *StripeBuffer) NextPage() bool {
	b.copyBand()
	b.stripe++
	if b.stripe*b.stripeHeight >= b.height {
		b.stripe = 0
		b.err = b.target.Display()
		return false
	}
	b.clearBand()
	return true
}

// SetColor sets the colour used by the drawing functions. Any colour with
// a non zero RGB component turns pixels on.
func (b *StripeBuffer) SetColor(c color.RGBA) {
	b.color = c
}

// SetFont sets the font used by DrawString.
func (b *StripeBuffer) SetFont(f tinyfont.Fonter) {
	b.font = f
}

func (b *StripeBuffer) DrawString(x, y int16, s string) {
	if b.font == nil {
		return
	}
	tinyfont.WriteLine(b, b.font, x, y, s, b.color)
}

func (b *StripeBuffer) DrawLine(x0, y0, x1, y1 int16) {
	tinydraw.Line(b, x0, y0, x1, y1, b.color)
}

func (b *StripeBuffer) DrawFrame(x, y, w, h int16) {
	// Empty rectangles draw nothing.
	_ = tinydraw.Rectangle(b, x, y, w, h, b.color)
}

func (b *StripeBuffer) DrawRoundFrame(x, y, w, h, r int16) {
	roundFrame(b, x, y, w, h, r, b.color)
}

// Size implements drivers.Displayer.
func (b *StripeBuffer) Size() (x, y int16) {
	return b.width, b.height
}

// SetPixel implements drivers.Displayer. Coordinates are absolute display
// coordinates; pixels outside the active stripe are dropped.
func (b *StripeBuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || x >= b.width {
		return
	}
	y -= b.stripe * b.stripeHeight
	if y < 0 || y >= b.stripeHeight {
		return
	}
	idx := int(x) + int(y/8)*int(b.width)
	if isOn(c) {
		b.band[idx] |= 1 << uint8(y%8)
	} else {
		b.band[idx] &^= 1 << uint8(y%8)
	}
}

// Display implements drivers.Displayer. The target is flushed by NextPage,
// so this is a no-op.
func (b *StripeBuffer) Display() error {
	return nil
}

func (b *StripeBuffer) clearBand() {
	for i := range b.band {
		b.band[i] = 0
	}
}

func (b *StripeBuffer) copyBand() {
	top := b.stripe * b.stripeHeight
	for ly := int16(0); ly < b.stripeHeight && top+ly < b.height; ly++ {
		row := int(ly/8) * int(b.width)
		mask := byte(1) << uint8(ly%8)
		for x := int16(0); x < b.width; x++ {
			if b.band[row+int(x)]&mask != 0 {
				b.target.SetPixel(x, top+ly, on)
			} else {
				b.target.SetPixel(x, top+ly, off)
			}
		}
	}
}

func isOn(c color.RGBA) bool {
	return c.R != 0 || c.G != 0 || c.B != 0
}
