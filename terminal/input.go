package terminal

import "github.com/gdamore/tcell/v2"

// screenKeys is a KeySource reading key events from a tcell screen.
// Resize events met along the way are passed to onResize.
type screenKeys struct {
	scr      tcell.Screen
	pending  []Key
	onResize func()
}

var specialKeys = map[tcell.Key]Key{
	tcell.KeyEnter:      '\n',
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyDEL,
	tcell.KeyF1:         KeyBreak,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
}

// hostKey translates a tcell key event. It reports false for keys
// the guest has no code for, including every rune outside ASCII.
func hostKey(ev *tcell.EventKey) (Key, bool) {
	k := ev.Key()
	if k == tcell.KeyRune {
		if r := ev.Rune(); r > 0 && r < 0x80 {
			return Key(r), true
		}
		return 0, false
	}
	if c, ok := specialKeys[k]; ok {
		return c, true
	}
	if k > 0 && k < 0x80 { // ASCII control keys
		return Key(k), true
	}
	return 0, false
}

func (s *screenKeys) ReadKey() (Key, bool) {
	if n := len(s.pending); n > 0 {
		k := s.pending[n-1]
		s.pending = s.pending[:n-1]
		return k, true
	}
	for s.scr.HasPendingEvent() {
		switch ev := s.scr.PollEvent().(type) {
		case *tcell.EventKey:
			if k, ok := hostKey(ev); ok {
				return k, true
			}
		case *tcell.EventResize:
			if s.onResize != nil {
				s.onResize()
			}
		case nil:
			return 0, false
		}
	}
	return 0, false
}

func (s *screenKeys) UnreadKey(k Key) {
	s.pending = append(s.pending, k)
}

// reset drops keys pushed back by UnreadKey.
func (s *screenKeys) reset() {
	s.pending = s.pending[:0]
}
