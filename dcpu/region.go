package dcpu

import "fmt"

// Region is a bounds-checked view of a contiguous run of guest memory,
// such as video RAM or a keyboard buffer. The zero Region is empty.
type Region struct {
	base  uint16
	words []uint16
}

// RangeError is returned by NewRegion when the requested region does not
// fit in memory.
type RangeError struct {
	Base uint16
	Len  int
	Size int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("region %.4x+%d outside memory of %d words", e.Base, e.Len, e.Size)
}

// NewRegion returns a view of n words of mem starting at base.
func NewRegion(mem []uint16, base uint16, n int) (Region, error) {
	if n <= 0 || int(base)+n > len(mem) {
		return Region{}, &RangeError{Base: base, Len: n, Size: len(mem)}
	}
	return Region{base: base, words: mem[base : int(base)+n : int(base)+n]}, nil
}

// Region returns a view of n words of m's memory starting at base.
func (m *Machine) Region(base uint16, n int) (Region, error) {
	return NewRegion(m.Mem[:], base, n)
}

// Base returns the guest address of the first word.
func (r Region) Base() uint16 { return r.base }

// Len returns the number of words in the region.
func (r Region) Len() int { return len(r.words) }

// At returns the word at offset i. It panics if i is out of range.
func (r Region) At(i int) uint16 { return r.words[i] }

// Set stores v at offset i. It panics if i is out of range.
func (r Region) Set(i int, v uint16) { r.words[i] = v }

// String returns the half-open address range of the region, in hex.
func (r Region) String() string {
	return fmt.Sprintf("[%.4x:%.4x]", r.base, int(r.base)+len(r.words))
}
