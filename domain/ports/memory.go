package ports

// Memory gives byte-level access to the job address space that host
// allocations and the argument vector live in. Address 0 is null.
type Memory interface {
	// WordSize returns the size of a machine word (a stored address).
	WordSize() uintptr

	// ReadWord reads one little-endian machine word at addr. addr need not
	// be word aligned.
	ReadWord(addr uintptr) (uintptr, bool)

	// WriteWord stores one machine word at addr. addr need not be word aligned.
	WriteWord(addr uintptr, v uintptr) bool

	// Slice returns a borrowed view of n bytes at addr. The view is only
	// valid until the memory is released or grown.
	Slice(addr uintptr, n uintptr) ([]byte, bool)

	// CString returns a borrowed view of the NUL-terminated string at addr,
	// without the terminator.
	CString(addr uintptr) ([]byte, bool)
}
