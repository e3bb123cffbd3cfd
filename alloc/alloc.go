// Package alloc adapts the host's raw allocation primitive, which only
// guarantees word alignment, into an allocator that serves any power-of-two
// alignment.
//
// Every block handed out carries one header word immediately before the
// returned address holding the address the raw primitive returned. Release
// reads it back and hands that base, not the user address, to the raw free.
// No side table is kept.
//
// Allocation failure is always reported as a zero address. Only the
// intolerant entry points (MustAllocate and Buffer growth) escalate to the
// configured OOM handler.
package alloc

import (
	"fmt"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
	"github.com/magnolia-os/magnolia-go/internal/abi"
)

// OOMHandler is told about allocation exhaustion in contexts that cannot
// tolerate a null result. It must not return.
type OOMHandler interface {
	AllocError(layout entities.Layout)
}

// Stats counts allocator activity. LiveBytes sums caller-visible sizes.
type Stats struct {
	Allocations uint64
	Releases    uint64
	Failures    uint64
	LiveBlocks  int
	LiveBytes   uintptr
}

// Allocator is the aligned allocation frontend over a raw host heap.
type Allocator struct {
	heap  ports.Heap
	mem   ports.Memory
	oom   OOMHandler
	stats Stats
	word  uintptr
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithOOMHandler sets the handler used by MustAllocate and Buffer growth.
func WithOOMHandler(h OOMHandler) Option {
	return func(a *Allocator) {
		a.oom = h
	}
}

// New creates an allocator over heap.
func New(heap ports.Heap, opts ...Option) *Allocator {
	mem := heap.Memory()
	a := &Allocator{heap: heap, mem: mem, word: mem.WordSize()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate returns the address of size bytes aligned to align, or 0. A zero
// size returns align itself as a non-null sentinel that must never be
// dereferenced, without touching the raw heap.
func (a *Allocator) Allocate(size, align uintptr) uintptr {
	return a.allocate(size, align, false)
}

// AllocateZeroed is Allocate with the block cleared.
func (a *Allocator) AllocateZeroed(size, align uintptr) uintptr {
	return a.allocate(size, align, true)
}

func (a *Allocator) allocate(size, align uintptr, zeroed bool) uintptr {
	if !abi.IsPowerOfTwo(align) {
		a.stats.Failures++
		return 0
	}
	if size == 0 {
		return align
	}

	total, ok := abi.RawSize(size, align, a.word)
	if !ok {
		a.stats.Failures++
		return 0
	}

	var base uintptr
	if zeroed {
		base = a.heap.Calloc(1, total)
	} else {
		base = a.heap.Malloc(total)
	}
	if base == 0 {
		a.stats.Failures++
		return 0
	}

	user, ok := abi.Place(base, align, a.word)
	if !ok || !abi.StoreHeader(a.mem, user, base) {
		a.heap.Free(base)
		a.stats.Failures++
		return 0
	}

	a.stats.Allocations++
	a.stats.LiveBlocks++
	a.stats.LiveBytes += size
	return user
}

// Deallocate releases a block returned by Allocate with the same size and
// alignment. Zero-size blocks and the null address are ignored. Releasing a
// block twice or a foreign address is outside the contract.
func (a *Allocator) Deallocate(ptr, size, align uintptr) {
	if size == 0 || ptr == 0 {
		return
	}
	base, ok := abi.LoadHeader(a.mem, ptr)
	if !ok {
		return
	}
	a.heap.Free(base)

	a.stats.Releases++
	a.stats.LiveBlocks--
	a.stats.LiveBytes -= size
}

// Reallocate moves a block to a new size, keeping min(oldSize, newSize)
// bytes. On failure it returns 0 and the old block stays valid.
func (a *Allocator) Reallocate(ptr, oldSize, align, newSize uintptr) uintptr {
	if oldSize == 0 || ptr == 0 {
		return a.Allocate(newSize, align)
	}
	if newSize == 0 {
		a.Deallocate(ptr, oldSize, align)
		return a.Allocate(0, align)
	}

	next := a.Allocate(newSize, align)
	if next == 0 {
		return 0
	}
	keep := min(oldSize, newSize)
	src, okSrc := a.mem.Slice(ptr, keep)
	dst, okDst := a.mem.Slice(next, keep)
	if !okSrc || !okDst {
		a.Deallocate(next, newSize, align)
		return 0
	}
	copy(dst, src)
	a.Deallocate(ptr, oldSize, align)
	return next
}

// MustAllocate is Allocate for callers with no null fallback: exhaustion is
// escalated to the OOM handler and never returns.
func (a *Allocator) MustAllocate(size, align uintptr) uintptr {
	p := a.Allocate(size, align)
	if p == 0 {
		a.exhausted(size, align)
	}
	return p
}

// Bytes returns a borrowed view of a live block.
func (a *Allocator) Bytes(ptr, size uintptr) []byte {
	if size == 0 || ptr == 0 {
		return nil
	}
	b, ok := a.mem.Slice(ptr, size)
	if !ok {
		return nil
	}
	return b
}

// Stats returns a snapshot of the counters.
func (a *Allocator) Stats() Stats {
	return a.stats
}

func (a *Allocator) exhausted(size, align uintptr) {
	layout := entities.Layout{Size: size, Align: align}
	if a.oom != nil {
		a.oom.AllocError(layout)
	}
	panic(fmt.Sprintf("alloc: memory allocation of %s failed", layout))
}
