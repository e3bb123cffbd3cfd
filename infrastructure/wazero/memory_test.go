package wazero

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory(t *testing.T, opts ...MemoryOption) *Memory {
	t.Helper()
	ctx := context.Background()
	m, err := NewMemory(ctx, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close(ctx) })
	return m
}

func TestAppendULEB(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{65536, []byte{0x80, 0x80, 0x04}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, appendULEB(nil, tt.v), "value %d", tt.v)
	}
}

func TestMemoryModule_Header(t *testing.T) {
	bin := memoryModule(1, 2)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, bin[:8])
	assert.Equal(t, []byte{0x05, 0x04, 0x01, 0x01, 0x01, 0x02}, bin[8:14])
}

func TestNewMemory_Defaults(t *testing.T) {
	m := newMemory(t)

	assert.Equal(t, uint32(PageSize), m.Size())
	assert.Equal(t, uint32(1), m.Pages())
	assert.Equal(t, uint32(16), m.MaxPages())
	assert.Equal(t, uintptr(4), m.WordSize())
}

func TestNewMemory_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []MemoryOption
	}{
		{name: "word size", opts: []MemoryOption{WithWordSize(2)}},
		{name: "zero initial", opts: []MemoryOption{WithInitialPages(0)}},
		{name: "max below initial", opts: []MemoryOption{WithInitialPages(4), WithMaxPages(2)}},
		{name: "max above 4GiB", opts: []MemoryOption{WithMaxPages(65537)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMemory(context.Background(), tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestMemory_Words(t *testing.T) {
	m := newMemory(t)

	require.True(t, m.WriteWord(1021, 0xdeadbeef), "unaligned store")
	v, ok := m.ReadWord(1021)
	require.True(t, ok)
	assert.Equal(t, uintptr(0xdeadbeef), v)

	b, ok := m.Slice(1021, 4)
	require.True(t, ok)
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, b)

	_, ok = m.ReadWord(0)
	assert.False(t, ok, "null")
	_, ok = m.ReadWord(PageSize - 2)
	assert.False(t, ok, "straddles end")
	assert.False(t, m.WriteWord(PageSize, 1))
}

func TestMemory_WideWords(t *testing.T) {
	m := newMemory(t, WithWordSize(8))

	require.True(t, m.WriteWord(64, 0x1122334455667788))
	v, ok := m.ReadWord(64)
	require.True(t, ok)
	assert.Equal(t, uintptr(0x1122334455667788), v)
}

func TestMemory_CString(t *testing.T) {
	m := newMemory(t)
	require.True(t, m.Write(200, []byte("magnolia\x00tail")))

	s, ok := m.CString(200)
	require.True(t, ok)
	assert.Equal(t, "magnolia", string(s))

	s, ok = m.CString(208)
	require.True(t, ok)
	assert.Empty(t, s)

	require.True(t, m.Write(PageSize-3, []byte("abc")))
	_, ok = m.CString(PageSize - 3)
	assert.False(t, ok, "unterminated at end of memory")
	_, ok = m.CString(0)
	assert.False(t, ok)
}

func TestMemory_Grow(t *testing.T) {
	m := newMemory(t, WithInitialPages(1), WithMaxPages(3))

	prev, ok := m.Grow(2)
	require.True(t, ok)
	assert.Equal(t, uint32(1), prev)
	assert.Equal(t, uint32(3*PageSize), m.Size())

	_, ok = m.Grow(1)
	assert.False(t, ok, "limit reached")

	assert.True(t, m.WriteWord(3*PageSize-4, 7))
}
