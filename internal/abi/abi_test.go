package abi

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPowerOfTwo(t *testing.T) {
	for _, x := range []uintptr{1, 2, 4, 8, 16, 4096, 1 << 20} {
		assert.True(t, IsPowerOfTwo(x), "%d", x)
	}
	for _, x := range []uintptr{0, 3, 6, 12, 4095} {
		assert.False(t, IsPowerOfTwo(x), "%d", x)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		name  string
		addr  uintptr
		align uintptr
		want  uintptr
	}{
		{name: "already aligned", addr: 64, align: 16, want: 64},
		{name: "rounds up", addr: 65, align: 16, want: 80},
		{name: "word", addr: 13, align: 4, want: 16},
		{name: "page", addr: 4097, align: 4096, want: 8192},
		{name: "align one", addr: 7, align: 1, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AlignUp(tt.addr, tt.align)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlignUp_Rejects(t *testing.T) {
	_, ok := AlignUp(10, 3)
	assert.False(t, ok, "non power of two")

	_, ok = AlignUp(maxAddr-2, 16)
	assert.False(t, ok, "overflow")
}

func TestRawSize(t *testing.T) {
	total, ok := RawSize(100, 16, 4)
	require.True(t, ok)
	assert.Equal(t, uintptr(100+16+4), total)

	total, ok = RawSize(100, 1, 4)
	require.True(t, ok)
	assert.Equal(t, uintptr(100+4+4), total, "alignment below word size is raised to the word")

	_, ok = RawSize(maxAddr-8, 16, 4)
	assert.False(t, ok, "size + align overflows")

	_, ok = RawSize(maxAddr-17, 16, 4)
	assert.False(t, ok, "size + align + header overflows")

	_, ok = RawSize(8, 24, 4)
	assert.False(t, ok)
}

func TestPlace_StaysInsideBlock(t *testing.T) {
	const word = 4
	for _, align := range []uintptr{1, 2, 4, 8, 16, 64, 512, 4096} {
		for base := uintptr(4); base < 64; base += 4 {
			size := uintptr(24)
			total, ok := RawSize(size, align, word)
			require.True(t, ok)

			user, ok := Place(base, align, word)
			require.True(t, ok)

			eff := EffectiveAlign(align, word)
			assert.Zero(t, user%eff, "base=%d align=%d", base, align)
			assert.GreaterOrEqual(t, user-word, base, "header before block start")
			assert.LessOrEqual(t, user+size, base+total, "user region past block end")
		}
	}
}

func TestHeaderAddr(t *testing.T) {
	_, ok := HeaderAddr(2, 4)
	assert.False(t, ok)

	at, ok := HeaderAddr(16, 4)
	require.True(t, ok)
	assert.Equal(t, uintptr(12), at)
}

type byteMemory struct {
	buf []byte
}

func (m *byteMemory) WordSize() uintptr { return 4 }

func (m *byteMemory) ReadWord(addr uintptr) (uintptr, bool) {
	if addr+4 > uintptr(len(m.buf)) {
		return 0, false
	}
	return uintptr(binary.LittleEndian.Uint32(m.buf[addr:])), true
}

func (m *byteMemory) WriteWord(addr uintptr, v uintptr) bool {
	if addr+4 > uintptr(len(m.buf)) {
		return false
	}
	binary.LittleEndian.PutUint32(m.buf[addr:], uint32(v))
	return true
}

func (m *byteMemory) Slice(addr, n uintptr) ([]byte, bool) {
	if addr+n > uintptr(len(m.buf)) {
		return nil, false
	}
	return m.buf[addr : addr+n], true
}

func (m *byteMemory) CString(addr uintptr) ([]byte, bool) {
	return nil, false
}

func TestHeaderRoundTrip_Unaligned(t *testing.T) {
	mem := &byteMemory{buf: make([]byte, 64)}

	// header slot at 13 is not word aligned
	require.True(t, StoreHeader(mem, 17, 0xCAFE))
	base, ok := LoadHeader(mem, 17)
	require.True(t, ok)
	assert.Equal(t, uintptr(0xCAFE), base)

	assert.False(t, StoreHeader(mem, 2, 1))
	_, ok = LoadHeader(mem, 64+8)
	assert.False(t, ok)
}
