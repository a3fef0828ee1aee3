package tui

import (
	"strings"

	"github.com/harveysanders/pmon/pmon/display"
)

// Half block glyphs: each terminal cell shows two display rows.
const (
	cellEmpty  = ' '
	cellTop    = '▀'
	cellBottom = '▄'
	cellFull   = '█'
)

// RenderFrame renders fb as display.Height/2 lines of display.Width cells.
func RenderFrame(fb *display.Framebuffer) []string {
	lines := make([]string, 0, display.Height/2)
	var sb strings.Builder
	for y := 0; y < display.Height; y += 2 {
		sb.Reset()
		for x := 0; x < display.Width; x++ {
			top, bottom := fb.Pixel(x, y), fb.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune(cellFull)
			case top:
				sb.WriteRune(cellTop)
			case bottom:
				sb.WriteRune(cellBottom)
			default:
				sb.WriteRune(cellEmpty)
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}
