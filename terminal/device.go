package terminal

import "github.com/nf/lemterm/dcpu"

// Hardware identification reported to the guest.
const (
	KeyboardID      uint32 = 0x30cf7406
	KeyboardVersion uint16 = 0x0001
	KeyboardMfr     uint32 = 0x01220423

	DisplayID      uint32 = 0x7349f615 // LEM1802
	DisplayVersion uint16 = 0x1802
	DisplayMfr     uint32 = 0x1c6c8b36 // NYA_ELEKTRISKA
)

// The interrupt handlers only log for now; the keyboard is polled.

type keyboardDevice struct{ t *Terminal }

func (keyboardDevice) Details() (uint32, uint16, uint32) {
	return KeyboardID, KeyboardVersion, KeyboardMfr
}

func (d keyboardDevice) Interrupt(*dcpu.Machine) uint16 {
	d.t.Msg("kbd hwi!\n")
	return 0
}

type displayDevice struct{ t *Terminal }

func (displayDevice) Details() (uint32, uint16, uint32) {
	return DisplayID, DisplayVersion, DisplayMfr
}

func (d displayDevice) Interrupt(*dcpu.Machine) uint16 {
	d.t.Msg("lem hwi!\n")
	return 0
}

// register attaches the keyboard and display to m.
func (t *Terminal) register(m *dcpu.Machine) {
	t.kbdDev = m.AddDevice(keyboardDevice{t})
	t.lemDev = m.AddDevice(displayDevice{t})
}
