// Package dcpu provides the parts of a DCPU-16 machine that attached
// hardware needs: guest memory, the hardware device table, and
// hardware interrupt dispatch. Instruction execution lives elsewhere.
package dcpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MemSize is the number of 16-bit words addressable by a DCPU-16.
const MemSize = 0x10000

// Machine holds the guest memory and the hardware attached to a DCPU-16.
type Machine struct {
	Mem [MemSize]uint16

	devices []Device
}

// Device is a piece of hardware attached to the machine.
type Device interface {
	// Details returns the hardware id, version and manufacturer, as
	// reported to the guest by HWQ.
	Details() (id uint32, version uint16, mfr uint32)

	// Interrupt is invoked when the guest issues HWI for this device.
	// It returns the number of extra cycles the interrupt took.
	Interrupt(m *Machine) uint16
}

// ErrNoDevice is returned by Query and Interrupt for an index that has
// no device attached.
var ErrNoDevice = errors.New("no such device")

// AddDevice attaches d to the machine and returns its device index.
func (m *Machine) AddDevice(d Device) int {
	m.devices = append(m.devices, d)
	return len(m.devices) - 1
}

// NumDevices returns the number of attached devices, as reported by HWN.
func (m *Machine) NumDevices() int { return len(m.devices) }

// Device returns the device with index i, or nil.
func (m *Machine) Device(i int) Device {
	if i < 0 || i >= len(m.devices) {
		return nil
	}
	return m.devices[i]
}

// Query returns the details of device i (HWQ).
func (m *Machine) Query(i int) (id uint32, version uint16, mfr uint32, err error) {
	d := m.Device(i)
	if d == nil {
		return 0, 0, 0, fmt.Errorf("hwq %d: %w", i, ErrNoDevice)
	}
	id, version, mfr = d.Details()
	return id, version, mfr, nil
}

// Interrupt sends a hardware interrupt to device i (HWI) and returns the
// extra cycles it consumed.
func (m *Machine) Interrupt(i int) (uint16, error) {
	d := m.Device(i)
	if d == nil {
		return 0, fmt.Errorf("hwi %d: %w", i, ErrNoDevice)
	}
	return d.Interrupt(m), nil
}

// Load reads big-endian words from r into memory starting at address 0,
// clearing whatever remains above the loaded image. It returns the number
// of words read. An odd trailing byte is ignored.
func (m *Machine) Load(r io.Reader) (int, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	n := len(b) / 2
	if n > MemSize {
		return 0, fmt.Errorf("image too large: %d words", n)
	}
	for i := 0; i < n; i++ {
		m.Mem[i] = binary.BigEndian.Uint16(b[2*i:])
	}
	for i := n; i < MemSize; i++ {
		m.Mem[i] = 0
	}
	return n, nil
}
