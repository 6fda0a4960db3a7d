package terminal

import "github.com/nf/lemterm/dcpu"

// Key is a keystroke read from the host. Printable keys and ASCII control
// keys use their character code; keys the guest has no code for use
// values above 0xff.
type Key int

const (
	KeyExit      Key = 0x04 // Ctrl-D: ends the session
	KeyBS        Key = 0x08 // the guest's backspace
	KeyDEL       Key = 0x7f
	KeyBackspace Key = 0x107 // host backspace key
	KeyBreak     Key = 0x109 // F1: enter the debug prompt

	KeyUp    Key = 0x80
	KeyDown  Key = 0x81
	KeyLeft  Key = 0x82
	KeyRight Key = 0x83
)

// guest reports whether k has a code in the guest's keyboard buffer.
// Zero marks an empty slot and so is never a key.
func (k Key) guest() bool { return k > 0 && k <= 0xff }

// KeySource supplies host keystrokes without blocking.
type KeySource interface {
	// ReadKey returns the next pending keystroke, if any.
	ReadKey() (k Key, ok bool)
	// UnreadKey pushes k back so that the next ReadKey returns it.
	UnreadKey(k Key)
}

// Keyboard moves host keystrokes into the guest's circular keyboard
// buffer. The guest consumes a key by writing zero back to its slot;
// Keyboard never overwrites a slot that still holds a key.
type Keyboard struct {
	buf dcpu.Region
	pos int // next slot to write, in [0, buf.Len())
	src KeySource

	exit  func()
	brk   func()
	remap map[Key]Key
}

// NewKeyboard returns a Keyboard writing keys from src into buf.
// exit is called when the exit key is read and brk, which may be nil,
// when the break key is read.
func NewKeyboard(buf dcpu.Region, src KeySource, exit, brk func()) *Keyboard {
	return &Keyboard{
		buf:  buf,
		src:  src,
		exit: exit,
		brk:  brk,
		remap: map[Key]Key{
			KeyBackspace: KeyBS,
			KeyDEL:       KeyBS,
		},
	}
}

// Pos returns the index of the next slot to be written.
func (k *Keyboard) Pos() int { return k.pos }

// Reset moves the write position back to the first slot, for use after
// guest memory has been reloaded.
func (k *Keyboard) Reset() { k.pos = 0 }

// Poll reads at most one host keystroke and stores it in the buffer.
// When the next slot is still occupied the keystroke is pushed back to
// the source and retried on the following Poll. Keys with no guest code
// are discarded.
func (k *Keyboard) Poll() {
	c, ok := k.src.ReadKey()
	if !ok {
		return
	}
	// The exit and break keys work even when the buffer is full.
	switch c {
	case KeyExit:
		k.exit()
		return
	case KeyBreak:
		if k.brk != nil {
			k.brk()
		}
		return
	}
	if r, ok := k.remap[c]; ok {
		c = r
	}
	if !c.guest() {
		return
	}
	if k.buf.At(k.pos) != 0 {
		k.src.UnreadKey(c)
		return
	}
	k.buf.Set(k.pos, uint16(c))
	k.pos = (k.pos + 1) % k.buf.Len()
}
