package terminal

import "github.com/gdamore/tcell/v2"

// VideoCell is one word of LEM1802 video RAM.
type VideoCell uint16

// Code returns the character code in bits 0-6.
func (c VideoCell) Code() byte { return byte(c & 0x7f) }

// Blink reports whether bit 7 is set.
func (c VideoCell) Blink() bool { return c&0x80 != 0 }

// Background returns the background color index in bits 8-11.
func (c VideoCell) Background() int { return int(c>>8) & 0xf }

// Foreground returns the foreground color index in bits 12-15.
func (c VideoCell) Foreground() int { return int(c >> 12) }

// Glyph returns the character to paint for the cell.
// Code 0 is blank and paints as a space.
func (c VideoCell) Glyph() rune {
	if c.Code() == 0 {
		return ' '
	}
	return rune(c.Code())
}

// surface is a rectangular region of the host screen.
type surface struct {
	x, y, w, h int
}

// set paints a single cell at (col, row) relative to the surface.
// Cells outside the surface are clipped.
func (s surface) set(scr tcell.Screen, col, row int, r rune, style tcell.Style) {
	if col < 0 || row < 0 || col >= s.w || row >= s.h {
		return
	}
	scr.SetContent(s.x+col, s.y+row, r, nil, style)
}

// Render paints video RAM onto the video surface and, if the border
// register changed since the last paint, the frame around it.
func (t *Terminal) Render() {
	t.drawBorder()
	w, h := t.cfg.Width, t.cfg.Height
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			t.draw(VideoCell(t.vram.At(row*w+col)), col, row)
		}
	}
	t.scr.Show()
}

func (t *Terminal) draw(c VideoCell, col, row int) {
	style := t.pal.Style(t.pal.Pair(c.Foreground(), c.Background()))
	if c.Blink() {
		style = style.Blink(true)
	}
	t.video.set(t.scr, col, row, c.Glyph(), style)
}

func (t *Terminal) drawBorder() {
	b := int(t.borderReg.At(0) & 0xf)
	if b == t.border && !t.borderDirty {
		return
	}
	t.border, t.borderDirty = b, false
	t.frame.SetBackgroundColor(t.pal.background(b))
	t.frame.Draw(t.scr)
	t.borderPaints++
}
