package sim

import (
	"slices"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
	"github.com/magnolia-os/magnolia-go/infrastructure/wazero"
)

// HeapOp names a raw heap event.
type HeapOp string

const (
	HeapMalloc  HeapOp = "malloc"
	HeapFree    HeapOp = "free"
	HeapGrow    HeapOp = "grow"
	HeapBadFree HeapOp = "bad_free"
)

// HeapEvent is one raw heap operation as seen by a HeapTrace hook.
type HeapEvent struct {
	Op   HeapOp
	Addr uintptr
	Size uintptr
}

// HeapStats are the raw heap counters.
type HeapStats struct {
	Mallocs    uint64
	Frees      uint64
	Failures   uint64
	BadFrees   uint64
	LiveBlocks int
	LiveBytes  uintptr
	PeakBytes  uintptr
	Pages      uint32
}

const (
	// heapBase is the first address handed out. It is 4-aligned but not
	// 8-aligned, so callers cannot come to rely on more than the device
	// guarantees.
	heapBase uintptr = 12

	// heapGranule is the allocation granularity and alignment guarantee.
	heapGranule uintptr = 4
)

type span struct {
	addr uintptr
	size uintptr
}

// heap is a first-fit allocator over linear memory with coalescing frees.
type heap struct {
	mem   *wazero.Memory
	trace func(HeapEvent)
	live  map[uintptr]uintptr
	free  []span
	stats HeapStats
}

func newHeap(mem *wazero.Memory, trace func(HeapEvent)) *heap {
	h := &heap{
		mem:   mem,
		trace: trace,
		live:  make(map[uintptr]uintptr),
		free:  []span{{addr: heapBase, size: uintptr(mem.Size()) - heapBase}},
	}
	h.stats.Pages = mem.Pages()
	return h
}

func (h *heap) emit(op HeapOp, addr, size uintptr) {
	if h.trace != nil {
		h.trace(HeapEvent{Op: op, Addr: addr, Size: size})
	}
}

func (h *heap) malloc(size uintptr) uintptr {
	if size == 0 || size > ^uintptr(0)-heapGranule {
		return 0
	}
	n := (size + heapGranule - 1) &^ (heapGranule - 1)

	addr, ok := h.take(n)
	if !ok && h.grow(n) {
		addr, ok = h.take(n)
	}
	if !ok {
		h.stats.Failures++
		return 0
	}

	h.live[addr] = n
	h.stats.Mallocs++
	h.stats.LiveBlocks++
	h.stats.LiveBytes += n
	h.stats.PeakBytes = max(h.stats.PeakBytes, h.stats.LiveBytes)
	h.emit(HeapMalloc, addr, n)
	return addr
}

func (h *heap) take(n uintptr) (uintptr, bool) {
	for i, sp := range h.free {
		if sp.size < n {
			continue
		}
		if sp.size == n {
			h.free = slices.Delete(h.free, i, i+1)
		} else {
			h.free[i] = span{addr: sp.addr + n, size: sp.size - n}
		}
		return sp.addr, true
	}
	return 0, false
}

// grow extends memory so that a block of n bytes fits at the end.
func (h *heap) grow(n uintptr) bool {
	end := uintptr(h.mem.Size())
	tail := uintptr(0)
	if last := len(h.free) - 1; last >= 0 && h.free[last].addr+h.free[last].size == end {
		tail = h.free[last].size
	}
	need := n - tail
	pages := (need + wazero.PageSize - 1) / wazero.PageSize
	if pages > uintptr(h.mem.MaxPages()) {
		return false
	}
	if _, ok := h.mem.Grow(uint32(pages)); !ok { //nolint:gosec // G115: bounded by MaxPages
		return false
	}
	h.stats.Pages = h.mem.Pages()
	h.emit(HeapGrow, end, pages*wazero.PageSize)
	h.release(span{addr: end, size: pages * wazero.PageSize})
	return true
}

func (h *heap) freeBlock(addr uintptr) bool {
	if addr == 0 {
		return true
	}
	n, ok := h.live[addr]
	if !ok {
		h.stats.BadFrees++
		h.emit(HeapBadFree, addr, 0)
		return false
	}
	delete(h.live, addr)
	h.stats.Frees++
	h.stats.LiveBlocks--
	h.stats.LiveBytes -= n
	h.emit(HeapFree, addr, n)
	h.release(span{addr: addr, size: n})
	return true
}

// release returns sp to the free list, merging with adjacent spans.
func (h *heap) release(sp span) {
	i, _ := slices.BinarySearchFunc(h.free, sp.addr, func(s span, addr uintptr) int {
		switch {
		case s.addr < addr:
			return -1
		case s.addr > addr:
			return 1
		}
		return 0
	})
	h.free = slices.Insert(h.free, i, sp)
	if i+1 < len(h.free) && h.free[i].addr+h.free[i].size == h.free[i+1].addr {
		h.free[i].size += h.free[i+1].size
		h.free = slices.Delete(h.free, i+1, i+2)
	}
	if i > 0 && h.free[i-1].addr+h.free[i-1].size == h.free[i].addr {
		h.free[i-1].size += h.free[i].size
		h.free = slices.Delete(h.free, i, i+1)
	}
}

// Memory implements ports.Heap.
func (s *Sim) Memory() ports.Memory { return s.mem }

// Malloc implements ports.Heap. A zero-size request returns null without
// touching the register.
func (s *Sim) Malloc(size uintptr) uintptr {
	p := s.heap.malloc(size)
	if p == 0 && size != 0 {
		s.fail(entities.ENOMEM)
	}
	return p
}

// Calloc implements ports.Heap.
func (s *Sim) Calloc(n, size uintptr) uintptr {
	total := n * size
	if n != 0 && total/n != size {
		s.heap.stats.Failures++
		s.fail(entities.ENOMEM)
		return 0
	}
	p := s.Malloc(total)
	if p != 0 {
		b, _ := s.mem.Slice(p, total)
		clear(b)
	}
	return p
}

// Realloc implements ports.Heap.
func (s *Sim) Realloc(addr, size uintptr) uintptr {
	if addr == 0 {
		return s.Malloc(size)
	}
	old, ok := s.heap.live[addr]
	if !ok {
		s.log.Warn("sim: realloc of unknown address", "addr", addr)
		s.fail(entities.EINVAL)
		return 0
	}
	if size == 0 {
		s.heap.freeBlock(addr)
		return 0
	}
	p := s.Malloc(size)
	if p == 0 {
		return 0
	}
	src, _ := s.mem.Slice(addr, min(old, size))
	dst, _ := s.mem.Slice(p, min(old, size))
	copy(dst, src)
	s.heap.freeBlock(addr)
	return p
}

// Free implements ports.Heap. Freeing an address the heap never handed
// out is logged and ignored.
func (s *Sim) Free(addr uintptr) {
	if !s.heap.freeBlock(addr) {
		s.log.Warn("sim: free of unknown address", "addr", addr)
	}
}
