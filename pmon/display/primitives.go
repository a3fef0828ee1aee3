package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinydraw"
)

// roundFrame draws a rectangle outline with corners of radius r.
func roundFrame(d drivers.Displayer, x, y, w, h, r int16, c color.RGBA) {
	if r <= 0 || 2*r > w || 2*r > h {
		_ = tinydraw.Rectangle(d, x, y, w, h, c)
		return
	}
	tinydraw.Line(d, x+r, y, x+w-1-r, y, c)
	tinydraw.Line(d, x+r, y+h-1, x+w-1-r, y+h-1, c)
	tinydraw.Line(d, x, y+r, x, y+h-1-r, c)
	tinydraw.Line(d, x+w-1, y+r, x+w-1, y+h-1-r, c)

	corner(d, x+r, y+r, r, topLeft, c)
	corner(d, x+w-1-r, y+r, r, topRight, c)
	corner(d, x+r, y+h-1-r, r, bottomLeft, c)
	corner(d, x+w-1-r, y+h-1-r, r, bottomRight, c)
}

type quadrant uint8

const (
	bottomRight quadrant = iota
	bottomLeft
	topLeft
	topRight
)

// corner draws a quarter circle of radius r centred on (cx, cy) with the
// midpoint circle algorithm.
func corner(d drivers.Displayer, cx, cy, r int16, q quadrant, c color.RGBA) {
	x := r
	y := int16(0)
	err := int16(0)

	for x >= y {
		switch q {
		case bottomRight:
			d.SetPixel(cx+x, cy+y, c)
			d.SetPixel(cx+y, cy+x, c)
		case bottomLeft:
			d.SetPixel(cx-x, cy+y, c)
			d.SetPixel(cx-y, cy+x, c)
		case topLeft:
			d.SetPixel(cx-x, cy-y, c)
			d.SetPixel(cx-y, cy-x, c)
		case topRight:
			d.SetPixel(cx+x, cy-y, c)
			d.SetPixel(cx+y, cy-x, c)
		}

		y++
		err += 1 + 2*y
		if 2*(err-x)+1 > 0 {
			x--
			err += 1 - 2*x
		}
	}
}
