package testutil

import (
	"encoding/binary"

	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// ByteMemory is a little-endian 32-bit address space over a byte slice.
type ByteMemory struct {
	Buf []byte
}

// NewByteMemory returns a zeroed address space of size bytes.
func NewByteMemory(size int) *ByteMemory {
	return &ByteMemory{Buf: make([]byte, size)}
}

func (m *ByteMemory) WordSize() uintptr { return 4 }

func (m *ByteMemory) in(addr, n uintptr) bool {
	return addr != 0 && addr+n >= addr && addr+n <= uintptr(len(m.Buf))
}

func (m *ByteMemory) ReadWord(addr uintptr) (uintptr, bool) {
	if !m.in(addr, 4) {
		return 0, false
	}
	return uintptr(binary.LittleEndian.Uint32(m.Buf[addr:])), true
}

func (m *ByteMemory) WriteWord(addr uintptr, v uintptr) bool {
	if !m.in(addr, 4) {
		return false
	}
	binary.LittleEndian.PutUint32(m.Buf[addr:], uint32(v))
	return true
}

func (m *ByteMemory) Slice(addr, n uintptr) ([]byte, bool) {
	if !m.in(addr, n) {
		return nil, false
	}
	return m.Buf[addr : addr+n : addr+n], true
}

func (m *ByteMemory) CString(addr uintptr) ([]byte, bool) {
	if !m.in(addr, 1) {
		return nil, false
	}
	for end := addr; end < uintptr(len(m.Buf)); end++ {
		if m.Buf[end] == 0 {
			return m.Buf[addr:end:end], true
		}
	}
	return nil, false
}

// Block is one raw allocation observed by FakeHeap.
type Block struct {
	Base uintptr
	Size uintptr
}

// FakeHeap is an instrumented raw allocator. It bumps through a ByteMemory,
// handing out addresses that are 4-byte aligned but deliberately alternate
// between 8-byte aligned and not, and records every malloc and free.
type FakeHeap struct {
	Mem      *ByteMemory
	Mallocs  []Block
	Frees    []uintptr
	BadFrees []uintptr
	Live     map[uintptr]uintptr
	Limit    uintptr
	next     uintptr
	used     uintptr
}

// NewFakeHeap returns a heap over size bytes of memory.
func NewFakeHeap(size int) *FakeHeap {
	return &FakeHeap{
		Mem:  NewByteMemory(size),
		Live: make(map[uintptr]uintptr),
		next: 20,
	}
}

var _ ports.Heap = (*FakeHeap)(nil)

func (h *FakeHeap) Memory() ports.Memory { return h.Mem }

func (h *FakeHeap) Malloc(size uintptr) uintptr {
	if size == 0 {
		return 0
	}
	if h.Limit > 0 && h.used+size > h.Limit {
		return 0
	}
	rounded := (size + 3) &^ 3
	end := h.next + rounded
	if end > uintptr(len(h.Mem.Buf)) {
		return 0
	}
	base := h.next
	// a 4-byte gap flips the 8-byte phase of the next block
	h.next = end + 4
	h.used += size
	h.Live[base] = size
	h.Mallocs = append(h.Mallocs, Block{Base: base, Size: size})
	return base
}

func (h *FakeHeap) Calloc(n, size uintptr) uintptr {
	total := n * size
	if n != 0 && total/n != size {
		return 0
	}
	base := h.Malloc(total)
	if base != 0 {
		clear(h.Mem.Buf[base : base+total])
	}
	return base
}

func (h *FakeHeap) Realloc(addr, size uintptr) uintptr {
	if addr == 0 {
		return h.Malloc(size)
	}
	old, ok := h.Live[addr]
	if !ok {
		return 0
	}
	next := h.Malloc(size)
	if next == 0 {
		return 0
	}
	copy(h.Mem.Buf[next:next+size], h.Mem.Buf[addr:addr+min(old, size)])
	h.Free(addr)
	return next
}

func (h *FakeHeap) Free(addr uintptr) {
	if addr == 0 {
		return
	}
	size, ok := h.Live[addr]
	if !ok {
		h.BadFrees = append(h.BadFrees, addr)
		return
	}
	delete(h.Live, addr)
	h.used -= size
	h.Frees = append(h.Frees, addr)
}
