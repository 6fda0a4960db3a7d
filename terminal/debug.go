package terminal

import (
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Msg writes a message to the debug scrollback and shows it immediately.
func (t *Terminal) Msg(s string) {
	io.WriteString(t, s)
}

func (t *Terminal) drawLog() {
	t.log.ScrollToEnd()
	t.log.Draw(t.scr)
}

func (t *Terminal) drawInput() {
	t.input.Draw(t.scr)
	if t.mode == RunMode {
		t.scr.HideCursor()
	}
}

// ReadLine blocks until the user enters a line at the debug prompt and
// returns it without the trailing newline. The line is echoed to the
// scrollback. Pressing the exit key ends the session and returns io.EOF.
func (t *Terminal) ReadLine() (string, error) {
	if t.mode != DebugMode {
		return "", ErrRunMode
	}
	if t.closed {
		return "", ErrClosed
	}
	var (
		entered bool
		handle  = t.input.InputHandler()
		focus   = func(tview.Primitive) {}
	)
	t.input.SetText("")
	t.input.SetDoneFunc(func(k tcell.Key) {
		entered = k == tcell.KeyEnter
	})
	for !entered {
		t.drawInput()
		t.scr.Show()
		switch ev := t.scr.PollEvent().(type) {
		case nil:
			return "", ErrClosed
		case *tcell.EventResize:
			t.resize()
		case *tcell.EventKey:
			if ev.Key() == tcell.Key(KeyExit) {
				t.exit()
				return "", io.EOF
			}
			handle(ev, focus)
		}
	}
	line := t.input.GetText()
	t.input.SetText("")
	t.drawInput()
	t.Msg(t.input.GetLabel() + line + "\n")
	return line, nil
}
