package terminal

import "github.com/gdamore/tcell/v2"

// hostColors maps LEM1802 color indices to host palette colors.
// The guest orders its color bits blue, green, red, while the host
// palette orders them red, green, blue; the high eight are the bright
// variants.
var hostColors = [16]int{0, 4, 2, 6, 1, 5, 3, 7, 8, 12, 10, 14, 9, 13, 11, 15}

// Palette maps guest foreground/background color pairs to host styles.
// Hosts with more than 8 colors get one pair for each of the 256
// combinations; smaller hosts fold both indices modulo 8.
type Palette struct {
	high  bool
	pairs []tcell.Style // indexed by pair number; pair 0 is the host default
}

// NewPalette returns a Palette for a host that supports the given number
// of colors, with every pair initialized.
func NewPalette(colors int) *Palette {
	p := &Palette{high: colors > 8}
	n := 8
	if p.high {
		n = 16
	}
	p.pairs = make([]tcell.Style, n*n+1)
	p.pairs[0] = tcell.StyleDefault
	for fg := 0; fg < n; fg++ {
		for bg := 0; bg < n; bg++ {
			p.pairs[p.Pair(fg, bg)] = tcell.StyleDefault.
				Foreground(tcell.PaletteColor(hostColors[fg])).
				Background(tcell.PaletteColor(hostColors[bg]))
		}
	}
	return p
}

// HighColor reports whether the palette uses the full 16×16 pair space.
func (p *Palette) HighColor() bool { return p.high }

// Len returns the number of usable pairs.
func (p *Palette) Len() int { return len(p.pairs) - 1 }

// Pair returns the pair number for guest colors fg and bg,
// each in the range [0, 15].
func (p *Palette) Pair(fg, bg int) int {
	if p.high {
		return fg*16 + bg + 1
	}
	return (fg%8)*8 + bg%8 + 1
}

// Style returns the host style of the given pair.
// Unknown pairs yield the host default style.
func (p *Palette) Style(pair int) tcell.Style {
	if pair < 0 || pair >= len(p.pairs) {
		return tcell.StyleDefault
	}
	return p.pairs[pair]
}

// background returns the host background color of guest color c
// drawn over guest color 0.
func (p *Palette) background(c int) tcell.Color {
	_, bg, _ := p.Style(p.Pair(0, c)).Decompose()
	return bg
}
