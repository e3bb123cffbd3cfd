// Package args is a read-only view over the argument vector the host hands
// to a job at start: a count plus an array of NUL-terminated byte strings in
// job memory. The view borrows host memory and must not be retained past the
// return of the job's entry function.
package args

import (
	stdErrors "errors"
	"iter"
	"unicode/utf8"

	"github.com/magnolia-os/magnolia-go/domain/errors"
	"github.com/magnolia-os/magnolia-go/domain/ports"
	"github.com/magnolia-os/magnolia-go/internal/abi"
)

// ErrAbsent is returned by String for an index with no argument.
var ErrAbsent = stdErrors.New("argument absent")

// Vector is the job's argument vector.
type Vector struct {
	mem  ports.Memory
	argv uintptr
	argc int
}

// FromRaw wraps the raw count and array address supplied by the host.
//
// The caller guarantees that argv addresses at least argc word-sized
// pointers, each null or pointing at a NUL-terminated string. A
// non-positive count, a null array, or an array that does not fit in memory
// yields an empty vector.
func FromRaw(mem ports.Memory, argc int32, argv uintptr) *Vector {
	v := &Vector{mem: mem, argv: argv}
	if argc <= 0 || argv == 0 || mem == nil {
		return v
	}
	span := uintptr(argc) * mem.WordSize()
	if span/mem.WordSize() != uintptr(argc) {
		return v
	}
	if _, ok := abi.CheckedAdd(argv, span); !ok {
		return v
	}
	if _, ok := mem.Slice(argv, span); !ok {
		return v
	}
	v.argc = int(argc)
	return v
}

// Len returns the argument count.
func (v *Vector) Len() int {
	return v.argc
}

// IsEmpty reports whether there are no arguments.
func (v *Vector) IsEmpty() bool {
	return v.argc == 0
}

// Get returns the bytes of argument i without the terminator. It reports
// false when i is out of range, the array is null, or slot i is null.
func (v *Vector) Get(i int) ([]byte, bool) {
	if i < 0 || i >= v.argc || v.argv == 0 {
		return nil, false
	}
	ptr, ok := v.mem.ReadWord(v.argv + uintptr(i)*v.mem.WordSize())
	if !ok || ptr == 0 {
		return nil, false
	}
	return v.mem.CString(ptr)
}

// String decodes argument i as UTF-8 text.
func (v *Vector) String(i int) (string, error) {
	b, ok := v.Get(i)
	if !ok {
		return "", ErrAbsent
	}
	return decode(i, b)
}

// All yields the arguments in index order, stopping at the first absent
// one. The sequence can be ranged over any number of times.
func (v *Vector) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for i := 0; ; i++ {
			b, ok := v.Get(i)
			if !ok || !yield(i, b) {
				return
			}
		}
	}
}

// Strings yields each argument decoded as text. An argument that is not
// valid UTF-8 yields a *errors.DecodeError and iteration continues.
func (v *Vector) Strings() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for i, b := range v.All() {
			if !yield(decode(i, b)) {
				return
			}
		}
	}
}

// Collect copies the arguments out of host memory, stopping at the first
// absent slot. Bytes are copied as-is, valid text or not.
func (v *Vector) Collect() []string {
	out := make([]string, 0, v.argc)
	for _, b := range v.All() {
		out = append(out, string(b))
	}
	return out
}

func decode(i int, b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", &errors.DecodeError{Index: i, Value: append([]byte(nil), b...), Err: errors.ErrInvalidUTF8}
	}
	return string(b), nil
}
