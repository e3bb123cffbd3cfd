package ports

// Heap is the host's raw allocator. It guarantees no alignment beyond a
// machine word and signals exhaustion by returning 0.
type Heap interface {
	Malloc(size uintptr) uintptr
	Calloc(n, size uintptr) uintptr
	Realloc(addr, size uintptr) uintptr
	Free(addr uintptr)
	Memory() Memory
}

// Files is the host's descriptor-based file surface. Every call returns a
// negative value on failure and leaves the reason in the error register.
// Paths are NUL-terminated byte strings.
type Files interface {
	Open(path []byte, flags int32, mode uint32) int32
	Close(fd int32) int32
	Read(fd int32, p []byte) int32
	Write(fd int32, p []byte) int32
	Lseek(fd int32, offset int64, whence int32) int64
	Unlink(path []byte) int32
	Mkdir(path []byte, mode uint32) int32
	Chdir(path []byte) int32
	// Getcwd fills buf with the NUL-terminated working directory and
	// returns 0, or -1 on failure.
	Getcwd(buf []byte) int32
}

// Process covers the job-local error register, termination and time.
type Process interface {
	// Errno reads the job-local error register.
	Errno() int32

	// Exit runs the host's exit handlers and terminates the job. It does
	// not return.
	Exit(status int32)

	// ExitImmediate terminates the job without exit handlers (_exit). It
	// does not return.
	ExitImmediate(status int32)

	// Abort terminates the job abruptly. It does not return.
	Abort()

	Sleep(seconds uint32) uint32
	Usleep(usec uint32) int32
	Strerror(code int32) string
}

// Syscalls is the complete host surface consumed by the runtime.
type Syscalls interface {
	Heap
	Files
	Process
}

// Termination is implemented by the values a hosted backend panics with to
// unwind a job out of Exit, ExitImmediate or Abort. Recovery code in the
// runtime must re-panic them untouched.
type Termination interface {
	ExitStatus() int32
}
