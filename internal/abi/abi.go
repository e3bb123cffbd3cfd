// Package abi holds every piece of address arithmetic behind the aligned
// allocator. Each step is overflow-checked; callers treat a false result as
// an allocation failure.
package abi

import "github.com/magnolia-os/magnolia-go/domain/ports"

const maxAddr = ^uintptr(0)

// IsPowerOfTwo reports whether x is a non-zero power of two.
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}

// CheckedAdd returns a+b, or false if the sum wraps.
func CheckedAdd(a, b uintptr) (uintptr, bool) {
	if a > maxAddr-b {
		return 0, false
	}
	return a + b, true
}

// AlignUp rounds addr up to the next multiple of align, which must be a
// power of two.
func AlignUp(addr, align uintptr) (uintptr, bool) {
	if !IsPowerOfTwo(align) {
		return 0, false
	}
	bumped, ok := CheckedAdd(addr, align-1)
	if !ok {
		return 0, false
	}
	return bumped &^ (align - 1), true
}

// EffectiveAlign is the alignment actually applied: never below the word
// size so the header slot in front of the user pointer always fits.
func EffectiveAlign(align, word uintptr) uintptr {
	if align < word {
		return word
	}
	return align
}

// RawSize returns the number of bytes to request from the raw primitive for
// a size/align request: size + effective alignment + one header word.
func RawSize(size, align, word uintptr) (uintptr, bool) {
	if !IsPowerOfTwo(align) || !IsPowerOfTwo(word) {
		return 0, false
	}
	total, ok := CheckedAdd(size, EffectiveAlign(align, word))
	if !ok {
		return 0, false
	}
	return CheckedAdd(total, word)
}

// Place computes the user pointer inside a raw block starting at base: the
// first address after one reserved header word that is aligned to the
// effective alignment.
func Place(base, align, word uintptr) (uintptr, bool) {
	start, ok := CheckedAdd(base, word)
	if !ok {
		return 0, false
	}
	return AlignUp(start, EffectiveAlign(align, word))
}

// HeaderAddr is the address of the header word belonging to user.
func HeaderAddr(user, word uintptr) (uintptr, bool) {
	if user < word {
		return 0, false
	}
	return user - word, true
}

// StoreHeader records base in the word immediately preceding user. The slot
// is only word aligned relative to the raw block, so the write goes through
// the byte-wise Memory accessor.
func StoreHeader(mem ports.Memory, user, base uintptr) bool {
	at, ok := HeaderAddr(user, mem.WordSize())
	if !ok {
		return false
	}
	return mem.WriteWord(at, base)
}

// LoadHeader recovers the raw base address stored in front of user.
func LoadHeader(mem ports.Memory, user uintptr) (uintptr, bool) {
	at, ok := HeaderAddr(user, mem.WordSize())
	if !ok {
		return 0, false
	}
	return mem.ReadWord(at)
}
