package hostfuncs

import (
	"bytes"
)

// DefaultMaxOutputSize is the default limit for captured job stdout/stderr (1MB).
// A job stuck in a print loop must not exhaust host memory.
const DefaultMaxOutputSize = 1 * 1024 * 1024

// BoundedBuffer is a bytes.Buffer wrapper that limits the size of written data.
// It implements io.Writer and serves as a simulated job's stdout/stderr.
type BoundedBuffer struct {
	buffer bytes.Buffer
	limit  int
	// Dropped counts bytes discarded after the limit was reached.
	Dropped   int
	Truncated bool
}

// NewBoundedBuffer creates a new BoundedBuffer with the specified limit.
func NewBoundedBuffer(limit int) *BoundedBuffer {
	return &BoundedBuffer{
		limit: limit,
	}
}

// Write implements io.Writer.
// It keeps data up to the limit and silently discards the rest, so the job
// sees every write succeed in full, as it would on a console.
func (b *BoundedBuffer) Write(p []byte) (n int, err error) {
	remaining := b.limit - b.buffer.Len()
	if len(p) <= remaining {
		return b.buffer.Write(p)
	}

	b.Truncated = true
	b.Dropped += len(p) - max(remaining, 0)
	if remaining > 0 {
		if _, err := b.buffer.Write(p[:remaining]); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// String returns the buffer contents as a string.
func (b *BoundedBuffer) String() string {
	return b.buffer.String()
}

// Bytes returns the buffer contents as a byte slice.
func (b *BoundedBuffer) Bytes() []byte {
	return b.buffer.Bytes()
}

// Len returns the current length of the buffer.
func (b *BoundedBuffer) Len() int {
	return b.buffer.Len()
}

// Reset resets the buffer and clears the truncation state.
func (b *BoundedBuffer) Reset() {
	b.buffer.Reset()
	b.Truncated = false
	b.Dropped = 0
}
