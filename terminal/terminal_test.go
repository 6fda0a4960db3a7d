package terminal

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/lemterm/dcpu"
)

func newTestTerminal(t *testing.T, cfg Config) (*Terminal, tcell.SimulationScreen, *dcpu.Machine) {
	t.Helper()
	var (
		scr = tcell.NewSimulationScreen("UTF-8")
		m   = &dcpu.Machine{}
	)
	term, err := New(scr, m, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(term.Close)
	return term, scr, m
}

func logText(term *Terminal) string { return term.log.GetText(true) }

func TestNewRegistersDevices(t *testing.T) {
	term, _, m := newTestTerminal(t, DefaultConfig())

	if n := m.NumDevices(); n != 2 {
		t.Fatalf("NumDevices() = %d, want 2", n)
	}
	kbd, lem := term.Devices()
	for _, c := range []struct {
		name    string
		index   int
		id      uint32
		version uint16
		mfr     uint32
		msg     string
	}{
		{"keyboard", kbd, 0x30cf7406, 1, 0x01220423, "kbd hwi!"},
		{"display", lem, 0x7349f615, 0x1802, 0x1c6c8b36, "lem hwi!"},
	} {
		id, version, mfr, err := m.Query(c.index)
		if err != nil {
			t.Errorf("%s: Query: %v", c.name, err)
			continue
		}
		if id != c.id || version != c.version || mfr != c.mfr {
			t.Errorf("%s: Query = %.8x %.4x %.8x, want %.8x %.4x %.8x",
				c.name, id, version, mfr, c.id, c.version, c.mfr)
		}
		before := m.Mem
		cycles, err := m.Interrupt(c.index)
		if err != nil || cycles != 0 {
			t.Errorf("%s: Interrupt = %d, %v; want 0, nil", c.name, cycles, err)
		}
		if m.Mem != before {
			t.Errorf("%s: Interrupt changed guest memory", c.name)
		}
		if !strings.Contains(logText(term), c.msg) {
			t.Errorf("%s: log %q does not contain %q", c.name, logText(term), c.msg)
		}
	}
	if !strings.Contains(logText(term), "terminal colors: 256, pairs 256, cannot change colors") {
		t.Errorf("log %q lacks the color report", logText(term))
	}
}

func TestNewErrors(t *testing.T) {
	big := DefaultConfig()
	big.Width = 100
	_, err := New(tcell.NewSimulationScreen("UTF-8"), &dcpu.Machine{}, big)
	var ie *InitError
	if !errors.As(err, &ie) || ie.Op != "size" {
		t.Errorf("New with 104 columns on an 80 column screen: error %v, want size InitError", err)
	}

	outside := DefaultConfig()
	outside.KeyboardAddr = 0xfff8
	_, err = New(tcell.NewSimulationScreen("UTF-8"), &dcpu.Machine{}, outside)
	var re *dcpu.RangeError
	if !errors.As(err, &re) {
		t.Errorf("New with keyboard buffer past the end of memory: error %v, want RangeError", err)
	}

	noRate := DefaultConfig()
	noRate.KeyboardBaud = 0
	if _, err := New(tcell.NewSimulationScreen("UTF-8"), &dcpu.Machine{}, noRate); err == nil {
		t.Error("New with zero keyboard rate succeeded")
	}
}

func TestSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeyboardSize = 1
	term, scr, m := newTestTerminal(t, cfg)

	if !term.Palette().HighColor() {
		t.Fatal("simulation screen palette is not high color")
	}
	a, b := term.Palette().Pair(4, 0), term.Palette().Pair(4, 0)
	if a != b {
		t.Errorf("Pair(4, 0) = %d then %d", a, b)
	}

	scr.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	scr.InjectKey(tcell.KeyRune, 'a', tcell.ModNone)
	kbd := term.Keyboard()

	kbd.Poll()
	if g := m.Mem[cfg.KeyboardAddr]; g != 'a' {
		t.Fatalf("keyboard slot = %.4x, want 'a'", g)
	}

	// The slot has not been consumed: the second 'a' is queued again.
	kbd.Poll()
	if g := m.Mem[cfg.KeyboardAddr]; g != 'a' {
		t.Errorf("keyboard slot = %.4x, want 'a'", g)
	}
	if p := term.keys.pending; len(p) != 1 || p[0] != 'a' {
		t.Errorf("pending keys = %q, want \"a\"", p)
	}

	m.Mem[cfg.KeyboardAddr] = 0
	kbd.Poll()
	if g := m.Mem[cfg.KeyboardAddr]; g != 'a' {
		t.Errorf("keyboard slot = %.4x after consuming, want the retried 'a'", g)
	}
	if p := term.keys.pending; len(p) != 0 {
		t.Errorf("pending keys = %q, want none", p)
	}
}

func TestTick(t *testing.T) {
	term, scr, m := newTestTerminal(t, DefaultConfig())
	cfg := DefaultConfig()

	m.Mem[cfg.VideoAddr] = 0xf048 // 'H'
	scr.InjectKey(tcell.KeyBackspace2, 0, tcell.ModNone)

	term.Tick(time.Now().Add(time.Hour))
	if r, _, _, _ := scr.GetContent(2, 1); r != 'H' {
		t.Errorf("video cell = %q after Tick, want 'H'", r)
	}
	if g := m.Mem[cfg.KeyboardAddr]; g != 0x08 {
		t.Errorf("keyboard slot = %.4x after Tick, want 0008", g)
	}

	select {
	case <-term.Done():
		t.Fatal("Done closed without the exit key")
	default:
	}
	scr.InjectKey(tcell.KeyCtrlD, 0, tcell.ModCtrl)
	term.Tick(time.Now().Add(2 * time.Hour))
	select {
	case <-term.Done():
	default:
		t.Fatal("Done not closed after Ctrl-D")
	}
}

func TestHostKey(t *testing.T) {
	for _, c := range []struct {
		ev   *tcell.EventKey
		want Key
		ok   bool
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), 'x', true},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), '\n', true},
		{tcell.NewEventKey(tcell.KeyBackspace, 0, tcell.ModNone), KeyBackspace, true},
		{tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), KeyDEL, true},
		{tcell.NewEventKey(tcell.KeyCtrlD, 0, tcell.ModCtrl), KeyExit, true},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), '\t', true},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), KeyLeft, true},
		{tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone), KeyBreak, true},
		{tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone), 0, false},
		{tcell.NewEventKey(tcell.KeyNUL, 0, tcell.ModNone), 0, false},
		{tcell.NewEventKey(tcell.KeyRune, 'ć', tcell.ModNone), 0, false},
		{tcell.NewEventKey(tcell.KeyRune, 'ĉ', tcell.ModNone), 0, false},
		{tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone), 0, false},
		{tcell.NewEventKey(tcell.KeyRune, 0x10000, tcell.ModNone), 0, false},
	} {
		k, ok := hostKey(c.ev)
		if k != c.want || ok != c.ok {
			t.Errorf("hostKey(%v) = %#x, %v; want %#x, %v", c.ev.Name(), k, ok, c.want, c.ok)
		}
	}
}

func TestBreak(t *testing.T) {
	term, scr, _ := newTestTerminal(t, DefaultConfig())
	scr.InjectKey(tcell.KeyF1, 0, tcell.ModNone)
	scr.InjectKey(tcell.KeyF1, 0, tcell.ModNone)
	term.Keyboard().Poll()
	term.Keyboard().Poll()
	select {
	case <-term.Break():
	default:
		t.Fatal("no break after F1")
	}
	select {
	case <-term.Break():
		t.Error("second F1 queued a second break")
	default:
	}
}

func TestNonASCIIKeys(t *testing.T) {
	cfg := DefaultConfig()
	term, scr, m := newTestTerminal(t, cfg)
	for _, r := range []rune{'ĉ', 'ć', 0x10000, 'k'} {
		scr.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	for i := 0; i < 4; i++ {
		term.Keyboard().Poll()
	}
	select {
	case <-term.Break():
		t.Error("a typed letter opened the debug prompt")
	default:
	}
	if g := m.Mem[cfg.KeyboardAddr]; g != 'k' {
		t.Errorf("keyboard slot 0 = %.4x, want 'k'", g)
	}
	if g := m.Mem[cfg.KeyboardAddr+1]; g != 0 {
		t.Errorf("keyboard slot 1 = %.4x, want 0", g)
	}
	if p := term.Keyboard().Pos(); p != 1 {
		t.Errorf("Pos() = %d, want 1", p)
	}
}

func TestReset(t *testing.T) {
	cfg := DefaultConfig()
	term, scr, m := newTestTerminal(t, cfg)
	for _, r := range "abc" {
		scr.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	for i := 0; i < 3; i++ {
		term.Keyboard().Poll()
	}
	term.keys.UnreadKey('z')
	term.Render()
	paints := term.borderPaints

	if _, err := m.Load(bytes.NewReader([]byte{0x7c, 0x01})); err != nil {
		t.Fatal(err)
	}
	term.Reset()
	if p := term.Keyboard().Pos(); p != 0 {
		t.Errorf("Pos() = %d after Reset, want 0", p)
	}
	if p := term.keys.pending; len(p) != 0 {
		t.Errorf("pending keys = %q after Reset, want none", p)
	}

	scr.InjectKey(tcell.KeyRune, 'd', tcell.ModNone)
	term.Keyboard().Poll()
	if g := m.Mem[cfg.KeyboardAddr]; g != 'd' {
		t.Errorf("keyboard slot 0 = %.4x after reload, want 'd'", g)
	}
	if g := m.Mem[cfg.KeyboardAddr+3]; g != 0 {
		t.Errorf("keyboard slot 3 = %.4x after reload, want 0", g)
	}
	term.Render()
	if term.borderPaints != paints+1 {
		t.Errorf("border painted %d times after Reset, want %d", term.borderPaints, paints+1)
	}
}

func TestReadLine(t *testing.T) {
	term, scr, _ := newTestTerminal(t, DefaultConfig())

	if _, err := term.ReadLine(); err != ErrRunMode {
		t.Errorf("ReadLine in run mode: error %v, want ErrRunMode", err)
	}

	term.SetMode(DebugMode)
	if term.Mode() != DebugMode {
		t.Fatalf("Mode() = %v, want debug", term.Mode())
	}
	for _, r := range "mem 9" {
		scr.InjectKey(tcell.KeyRune, r, tcell.ModNone)
	}
	scr.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)
	line, err := term.ReadLine()
	if err != nil || line != "mem 9" {
		t.Errorf("ReadLine() = %q, %v; want \"mem 9\", nil", line, err)
	}
	if !strings.Contains(logText(term), "> mem 9\n") {
		t.Errorf("line not echoed: log %q", logText(term))
	}

	scr.InjectKey(tcell.KeyCtrlD, 0, tcell.ModCtrl)
	if _, err := term.ReadLine(); err != io.EOF {
		t.Errorf("ReadLine after Ctrl-D: error %v, want io.EOF", err)
	}
	select {
	case <-term.Done():
	default:
		t.Error("Done not closed after Ctrl-D at the prompt")
	}

	term.SetMode(RunMode)
	if term.Mode() != RunMode {
		t.Errorf("Mode() = %v, want run", term.Mode())
	}
}

func TestClose(t *testing.T) {
	term, _, _ := newTestTerminal(t, DefaultConfig())
	term.Logger().Printf("hello %d", 1)
	if !strings.Contains(logText(term), "hello 1\n") {
		t.Errorf("log %q lacks logger output", logText(term))
	}
	term.Close()
	term.Close()
	term.SetMode(DebugMode)
	if _, err := term.ReadLine(); err != ErrClosed {
		t.Errorf("ReadLine after Close: error %v, want ErrClosed", err)
	}
}
