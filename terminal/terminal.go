// Package terminal implements the LEM1802 display and generic keyboard of
// a DCPU-16 on a host text terminal.
//
// A Terminal owns the host screen for the length of a session. The
// emulator loop calls Tick with the current time on every iteration; the
// terminal repaints video RAM and polls the host keyboard at their
// configured rates. Terminal is not safe for concurrent use.
package terminal

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/lemterm/dcpu"
)

// Config describes where the devices live in guest memory
// and how often they are serviced.
type Config struct {
	Width, Height int    // display size in cells
	VideoAddr     uint16 // first word of video RAM
	BorderAddr    uint16 // border color register
	KeyboardAddr  uint16 // first word of the keyboard buffer
	KeyboardSize  int    // keyboard buffer capacity in words

	DisplayHz    int // display refreshes per second
	KeyboardBaud int // keyboard polls per second
}

// DefaultConfig returns the standard LEM1802 and keyboard layout.
func DefaultConfig() Config {
	return Config{
		Width:        32,
		Height:       12,
		VideoAddr:    0x8000,
		BorderAddr:   0x8280,
		KeyboardAddr: 0x9000,
		KeyboardSize: 16,
		DisplayHz:    30,
		KeyboardBaud: 120,
	}
}

// Mode selects how the terminal treats host input.
type Mode int

const (
	// RunMode polls the keyboard without blocking and hides the cursor.
	RunMode Mode = iota
	// DebugMode shows the cursor and reads echoed lines with ReadLine.
	DebugMode
)

func (m Mode) String() string {
	switch m {
	case RunMode:
		return "run"
	case DebugMode:
		return "debug"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// InitError reports a failure to acquire or set up the host terminal.
type InitError struct {
	Op  string
	Err error
}

func (e *InitError) Error() string { return fmt.Sprintf("terminal %s: %v", e.Op, e.Err) }
func (e *InitError) Unwrap() error { return e.Err }

var (
	// ErrRunMode is returned by ReadLine outside DebugMode.
	ErrRunMode = errors.New("terminal: line input requires debug mode")
	// ErrClosed is returned by ReadLine once the session has ended.
	ErrClosed = errors.New("terminal: closed")
)

// Terminal is a display and keyboard session on a host screen.
type Terminal struct {
	scr tcell.Screen
	cfg Config

	pal       *Palette
	vram      dcpu.Region
	borderReg dcpu.Region
	kbd       *Keyboard
	keys      *screenKeys
	sched     *Scheduler

	kbdDev, lemDev int

	frame *tview.Box      // border around the video surface
	video surface         // video RAM
	log   *tview.TextView // debug scrollback
	input *tview.InputField

	border       int  // last painted border color
	borderDirty  bool // repaint the border regardless of the register
	borderPaints int

	mode      Mode
	done      chan struct{}
	doneOnce  sync.Once
	brk       chan bool
	closeOnce sync.Once
	closed    bool
}

// Open opens the host terminal and starts a session on it; see New.
func Open(m *dcpu.Machine, cfg Config) (*Terminal, error) {
	scr, err := tcell.NewScreen()
	if err != nil {
		return nil, &InitError{Op: "open", Err: err}
	}
	return New(scr, m, cfg)
}

// New registers the keyboard and display with m, initializes scr, and
// returns a Terminal in RunMode. The caller must Close the Terminal
// before exiting.
func New(scr tcell.Screen, m *dcpu.Machine, cfg Config) (*Terminal, error) {
	if cfg.DisplayHz <= 0 || cfg.KeyboardBaud <= 0 {
		return nil, fmt.Errorf("invalid rates: display %d Hz, keyboard %d baud", cfg.DisplayHz, cfg.KeyboardBaud)
	}
	t := &Terminal{
		scr:         scr,
		cfg:         cfg,
		borderDirty: true,
		done:        make(chan struct{}),
		brk:         make(chan bool, 1),
	}
	var err error
	if t.vram, err = m.Region(cfg.VideoAddr, cfg.Width*cfg.Height); err != nil {
		return nil, fmt.Errorf("video RAM: %w", err)
	}
	if t.borderReg, err = m.Region(cfg.BorderAddr, 1); err != nil {
		return nil, fmt.Errorf("border register: %w", err)
	}
	kbuf, err := m.Region(cfg.KeyboardAddr, cfg.KeyboardSize)
	if err != nil {
		return nil, fmt.Errorf("keyboard buffer: %w", err)
	}

	t.register(m)

	if err := scr.Init(); err != nil {
		return nil, &InitError{Op: "init", Err: err}
	}
	minW, minH := cfg.Width+4, cfg.Height+4
	if w, h := scr.Size(); w < minW || h < minH {
		scr.Fini()
		return nil, &InitError{Op: "size", Err: fmt.Errorf("%dx%d is smaller than %dx%d", w, h, minW, minH)}
	}

	t.pal = NewPalette(scr.Colors())
	t.keys = &screenKeys{scr: scr, onResize: t.resize}
	t.kbd = NewKeyboard(kbuf, t.keys, t.exit, t.breakIn)
	t.sched = NewScheduler(time.Now(), hzPeriod(cfg.DisplayHz), hzPeriod(cfg.KeyboardBaud))

	t.frame = tview.NewBox()
	t.video = surface{x: 2, y: 1, w: cfg.Width, h: cfg.Height}
	t.log = tview.NewTextView().
		SetMaxLines(1000).
		SetScrollable(true)
	t.log.SetBackgroundColor(tcell.ColorDefault)
	t.input = tview.NewInputField().
		SetFieldBackgroundColor(tcell.ColorDefault)
	t.input.SetBackgroundColor(tcell.ColorDefault)
	t.layout()

	t.SetMode(RunMode)
	can := "cannot"
	if scr.Colors() >= 1<<24 {
		can = "can"
	}
	t.Msg(fmt.Sprintf("terminal colors: %d, pairs %d, %s change colors\n", scr.Colors(), t.pal.Len(), can))
	return t, nil
}

// layout positions the surfaces for the current screen size.
func (t *Terminal) layout() {
	w, h := t.scr.Size()
	top := t.cfg.Height + 2
	t.frame.SetRect(0, 0, t.cfg.Width+4, top)
	t.log.SetRect(0, top, w, h-top-1)
	t.input.SetRect(0, h-1, w, 1)
}

func (t *Terminal) resize() {
	t.scr.Sync()
	t.layout()
	t.borderDirty = true
	t.drawLog()
}

// Tick services the display and keyboard if their deadlines have passed.
func (t *Terminal) Tick(now time.Time) {
	t.sched.Tick(now, t.Render, t.kbd.Poll)
}

// Reset restarts the keyboard at the first buffer slot, drops keys
// waiting to be retried, and repaints the border on the next Render.
// Call it after reloading guest memory.
func (t *Terminal) Reset() {
	t.kbd.Reset()
	t.keys.reset()
	t.borderDirty = true
}

// Keyboard returns the keyboard pipeline of the session.
func (t *Terminal) Keyboard() *Keyboard { return t.kbd }

// Palette returns the color palette negotiated with the host.
func (t *Terminal) Palette() *Palette { return t.pal }

// Devices returns the device indexes of the keyboard and the display.
func (t *Terminal) Devices() (keyboard, display int) { return t.kbdDev, t.lemDev }

// Done returns a channel that is closed when the user presses the exit key.
func (t *Terminal) Done() <-chan struct{} { return t.done }

// Break returns a channel that receives when the user presses the break key.
func (t *Terminal) Break() <-chan bool { return t.brk }

func (t *Terminal) exit() {
	t.doneOnce.Do(func() { close(t.done) })
}

func (t *Terminal) breakIn() {
	select {
	case t.brk <- true:
	default:
	}
}

// Mode returns the current input mode.
func (t *Terminal) Mode() Mode { return t.mode }

// SetMode switches between RunMode and DebugMode.
func (t *Terminal) SetMode(m Mode) {
	t.mode = m
	if t.closed {
		return
	}
	switch m {
	case RunMode:
		t.input.Blur()
		t.input.SetLabel("")
		t.scr.HideCursor()
	case DebugMode:
		t.input.SetLabel("> ")
		t.input.Focus(func(tview.Primitive) {})
	}
	t.drawInput()
	t.scr.Show()
}

// Close restores the host terminal. Calls after the first do nothing.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		t.closed = true
		t.scr.Fini()
	})
}

// Logger returns a logger writing to the debug scrollback.
func (t *Terminal) Logger() *log.Logger {
	return log.New(t, "", 0)
}

// Write implements io.Writer on the debug scrollback.
// Once the Terminal is closed, writes go to standard error.
func (t *Terminal) Write(p []byte) (int, error) {
	if t.closed {
		return os.Stderr.Write(p)
	}
	n, err := t.log.Write(p)
	t.drawLog()
	t.scr.Show()
	return n, err
}
