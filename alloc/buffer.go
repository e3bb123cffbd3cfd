package alloc

// Buffer is a growable byte container living in job memory. Growth has no
// null fallback: when the heap is exhausted the allocator's OOM handler
// terminates the job.
type Buffer struct {
	a   *Allocator
	ptr uintptr
	len uintptr
	cap uintptr
}

const minBufferCap = 16

// NewBuffer returns an empty buffer with room for capacity bytes.
func NewBuffer(a *Allocator, capacity int) *Buffer {
	b := &Buffer{a: a}
	if capacity > 0 {
		b.grow(uintptr(capacity))
	}
	return b
}

// Write appends p. It never fails short of terminating the job.
func (b *Buffer) Write(p []byte) (int, error) {
	b.Append(p...)
	return len(p), nil
}

// WriteString appends s.
func (b *Buffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

// Append adds bytes at the end of the buffer.
func (b *Buffer) Append(p ...byte) {
	if len(p) == 0 {
		return
	}
	need := b.len + uintptr(len(p))
	if need > b.cap {
		b.grow(need)
	}
	copy(b.a.Bytes(b.ptr, b.cap)[b.len:], p)
	b.len = need
}

// Bytes returns a borrowed view of the contents, valid until the next
// mutation.
func (b *Buffer) Bytes() []byte {
	if b.len == 0 {
		return nil
	}
	return b.a.Bytes(b.ptr, b.len)
}

// Len returns the number of bytes stored.
func (b *Buffer) Len() int { return int(b.len) }

// Cap returns the current capacity.
func (b *Buffer) Cap() int { return int(b.cap) }

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() { b.len = 0 }

// Release returns the storage to the heap. The buffer is empty afterwards
// and may be reused.
func (b *Buffer) Release() {
	b.a.Deallocate(b.ptr, b.cap, 1)
	b.ptr, b.len, b.cap = 0, 0, 0
}

func (b *Buffer) grow(need uintptr) {
	newCap := max(b.cap*2, minBufferCap)
	for newCap < need {
		newCap *= 2
	}
	next := b.a.Reallocate(b.ptr, b.cap, 1, newCap)
	if next == 0 {
		b.a.exhausted(newCap, 1)
	}
	b.ptr, b.cap = next, newCap
}
