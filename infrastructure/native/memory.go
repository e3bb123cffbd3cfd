package native

import (
	"encoding/binary"
	"unsafe"

	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// maxCString bounds the terminator scan so a corrupt pointer cannot walk
// the whole address space.
const maxCString = 1 << 16

// Memory is the process address space viewed through ports.Memory.
type Memory struct{}

var _ ports.Memory = Memory{}

// WordSize implements ports.Memory.
func (Memory) WordSize() uintptr { return unsafe.Sizeof(uintptr(0)) }

// ReadWord implements ports.Memory.
func (m Memory) ReadWord(addr uintptr) (uintptr, bool) {
	b, ok := m.Slice(addr, m.WordSize())
	if !ok {
		return 0, false
	}
	if len(b) == 8 {
		return uintptr(binary.LittleEndian.Uint64(b)), true
	}
	return uintptr(binary.LittleEndian.Uint32(b)), true
}

// WriteWord implements ports.Memory.
func (m Memory) WriteWord(addr uintptr, v uintptr) bool {
	b, ok := m.Slice(addr, m.WordSize())
	if !ok {
		return false
	}
	if len(b) == 8 {
		binary.LittleEndian.PutUint64(b, uint64(v))
	} else {
		binary.LittleEndian.PutUint32(b, uint32(v)) //nolint:gosec // G115: 32-bit word
	}
	return true
}

// Slice implements ports.Memory.
func (Memory) Slice(addr, n uintptr) ([]byte, bool) {
	if addr == 0 || addr > ^uintptr(0)-n {
		return nil, false
	}
	if n == 0 {
		return []byte{}, true
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), true //nolint:govet // host address
}

// CString implements ports.Memory.
func (Memory) CString(addr uintptr) ([]byte, bool) {
	if addr == 0 {
		return nil, false
	}
	for n := uintptr(0); n < maxCString; n++ {
		if *(*byte)(unsafe.Pointer(addr + n)) == 0 { //nolint:govet // host address
			return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), true //nolint:govet // host address
		}
	}
	return nil, false
}
