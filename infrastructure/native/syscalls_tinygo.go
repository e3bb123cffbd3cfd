//go:build tinygo

package native

/*
typedef unsigned int size_t;
typedef int ssize_t;
typedef long off_t;

extern void *malloc(size_t size);
extern void *calloc(size_t n, size_t size);
extern void *realloc(void *ptr, size_t size);
extern void free(void *ptr);

extern int open(const char *path, int flags, int mode);
extern int close(int fd);
extern ssize_t read(int fd, void *buf, size_t count);
extern ssize_t write(int fd, const void *buf, size_t count);
extern off_t lseek(int fd, off_t offset, int whence);
extern int unlink(const char *path);
extern int mkdir(const char *path, int mode);
extern int chdir(const char *path);
extern char *getcwd(char *buf, size_t size);

extern int *__errno(void);
extern char *strerror(int errnum);

extern void exit(int status);
extern void _exit(int status);
extern void abort(void);
extern unsigned int sleep(unsigned int seconds);
extern int usleep(unsigned int usec);
*/
import "C"

import (
	"unsafe"

	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// Syscalls calls the Magnolia exports directly.
type Syscalls struct {
	mem Memory
}

var _ ports.Syscalls = (*Syscalls)(nil)

// New returns the host binding.
func New() *Syscalls { return &Syscalls{} }

// Available reports whether this build talks to a real host.
func Available() bool { return true }

func ptr(p []byte) unsafe.Pointer {
	if len(p) == 0 {
		return nil
	}
	return unsafe.Pointer(&p[0])
}

func cchar(p []byte) *C.char { return (*C.char)(ptr(p)) }

func (s *Syscalls) Memory() ports.Memory { return s.mem }

func (s *Syscalls) Malloc(size uintptr) uintptr {
	return uintptr(C.malloc(C.size_t(size)))
}

func (s *Syscalls) Calloc(n, size uintptr) uintptr {
	return uintptr(C.calloc(C.size_t(n), C.size_t(size)))
}

func (s *Syscalls) Realloc(addr, size uintptr) uintptr {
	return uintptr(C.realloc(unsafe.Pointer(addr), C.size_t(size))) //nolint:govet // host address
}

func (s *Syscalls) Free(addr uintptr) {
	C.free(unsafe.Pointer(addr)) //nolint:govet // host address
}

func (s *Syscalls) Open(path []byte, flags int32, mode uint32) int32 {
	return int32(C.open(cchar(path), C.int(flags), C.int(mode)))
}

func (s *Syscalls) Close(fd int32) int32 {
	return int32(C.close(C.int(fd)))
}

func (s *Syscalls) Read(fd int32, p []byte) int32 {
	if len(p) == 0 {
		return 0
	}
	return int32(C.read(C.int(fd), ptr(p), C.size_t(len(p))))
}

func (s *Syscalls) Write(fd int32, p []byte) int32 {
	if len(p) == 0 {
		return 0
	}
	return int32(C.write(C.int(fd), ptr(p), C.size_t(len(p))))
}

func (s *Syscalls) Lseek(fd int32, offset int64, whence int32) int64 {
	return int64(C.lseek(C.int(fd), C.off_t(offset), C.int(whence)))
}

func (s *Syscalls) Unlink(path []byte) int32 {
	return int32(C.unlink(cchar(path)))
}

func (s *Syscalls) Mkdir(path []byte, mode uint32) int32 {
	return int32(C.mkdir(cchar(path), C.int(mode)))
}

func (s *Syscalls) Chdir(path []byte) int32 {
	return int32(C.chdir(cchar(path)))
}

func (s *Syscalls) Getcwd(buf []byte) int32 {
	if len(buf) == 0 || C.getcwd(cchar(buf), C.size_t(len(buf))) == nil {
		return -1
	}
	return 0
}

func (s *Syscalls) Errno() int32 {
	p := C.__errno()
	if p == nil {
		return 0
	}
	return int32(*p)
}

func (s *Syscalls) Exit(status int32) { C.exit(C.int(status)) }

func (s *Syscalls) ExitImmediate(status int32) { C._exit(C.int(status)) }

func (s *Syscalls) Abort() { C.abort() }

func (s *Syscalls) Sleep(seconds uint32) uint32 {
	return uint32(C.sleep(C.uint(seconds)))
}

func (s *Syscalls) Usleep(usec uint32) int32 {
	return int32(C.usleep(C.uint(usec)))
}

func (s *Syscalls) Strerror(code int32) string {
	msg := C.strerror(C.int(code))
	if msg == nil {
		return ""
	}
	b, _ := s.mem.CString(uintptr(unsafe.Pointer(msg)))
	return string(b)
}
