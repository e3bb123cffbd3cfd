package hostfuncs

import (
	"time"

	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// Syscall names reported in Call.Name.
const (
	CallMalloc   = "malloc"
	CallCalloc   = "calloc"
	CallRealloc  = "realloc"
	CallFree     = "free"
	CallOpen     = "open"
	CallClose    = "close"
	CallRead     = "read"
	CallWrite    = "write"
	CallLseek    = "lseek"
	CallUnlink   = "unlink"
	CallMkdir    = "mkdir"
	CallChdir    = "chdir"
	CallGetcwd   = "getcwd"
	CallExit     = "exit"
	CallExitNow  = "_exit"
	CallAbort    = "abort"
	CallSleep    = "sleep"
	CallUsleep   = "usleep"
	CallStrerror = "strerror"
)

// Observed is a ports.Syscalls that reports every call to observers.
type Observed struct {
	next      ports.Syscalls
	observers []Observer
	now       func() time.Time
}

var _ ports.Syscalls = (*Observed)(nil)

// Wrap decorates sys. Observers run in the order given.
func Wrap(sys ports.Syscalls, observers ...Observer) *Observed {
	return &Observed{next: sys, observers: observers, now: time.Now}
}

// Unwrap returns the decorated surface.
func (o *Observed) Unwrap() ports.Syscalls { return o.next }

func (o *Observed) report(name string, start time.Time, result int64, failed bool, n int) {
	c := Call{
		Name:     name,
		Result:   result,
		Bytes:    n,
		Duration: o.now().Sub(start),
		Failed:   failed,
	}
	if failed {
		// reading the register has no side effects on it
		c.Errno = o.next.Errno()
	}
	for _, obs := range o.observers {
		obs.Observe(c)
	}
}

func (o *Observed) Memory() ports.Memory { return o.next.Memory() }

func (o *Observed) Malloc(size uintptr) uintptr {
	start := o.now()
	p := o.next.Malloc(size)
	o.report(CallMalloc, start, int64(p), p == 0 && size != 0, int(size))
	return p
}

func (o *Observed) Calloc(n, size uintptr) uintptr {
	start := o.now()
	p := o.next.Calloc(n, size)
	o.report(CallCalloc, start, int64(p), p == 0 && n*size != 0, int(n*size))
	return p
}

func (o *Observed) Realloc(addr, size uintptr) uintptr {
	start := o.now()
	p := o.next.Realloc(addr, size)
	o.report(CallRealloc, start, int64(p), p == 0 && size != 0, int(size))
	return p
}

func (o *Observed) Free(addr uintptr) {
	start := o.now()
	o.next.Free(addr)
	o.report(CallFree, start, 0, false, 0)
}

func (o *Observed) Open(path []byte, flags int32, mode uint32) int32 {
	start := o.now()
	fd := o.next.Open(path, flags, mode)
	o.report(CallOpen, start, int64(fd), fd < 0, 0)
	return fd
}

func (o *Observed) Close(fd int32) int32 {
	start := o.now()
	r := o.next.Close(fd)
	o.report(CallClose, start, int64(r), r < 0, 0)
	return r
}

func (o *Observed) Read(fd int32, p []byte) int32 {
	start := o.now()
	n := o.next.Read(fd, p)
	o.report(CallRead, start, int64(n), n < 0, max(int(n), 0))
	return n
}

func (o *Observed) Write(fd int32, p []byte) int32 {
	start := o.now()
	n := o.next.Write(fd, p)
	o.report(CallWrite, start, int64(n), n < 0, max(int(n), 0))
	return n
}

func (o *Observed) Lseek(fd int32, offset int64, whence int32) int64 {
	start := o.now()
	pos := o.next.Lseek(fd, offset, whence)
	o.report(CallLseek, start, pos, pos < 0, 0)
	return pos
}

func (o *Observed) Unlink(path []byte) int32 {
	start := o.now()
	r := o.next.Unlink(path)
	o.report(CallUnlink, start, int64(r), r < 0, 0)
	return r
}

func (o *Observed) Mkdir(path []byte, mode uint32) int32 {
	start := o.now()
	r := o.next.Mkdir(path, mode)
	o.report(CallMkdir, start, int64(r), r < 0, 0)
	return r
}

func (o *Observed) Chdir(path []byte) int32 {
	start := o.now()
	r := o.next.Chdir(path)
	o.report(CallChdir, start, int64(r), r < 0, 0)
	return r
}

func (o *Observed) Getcwd(buf []byte) int32 {
	start := o.now()
	r := o.next.Getcwd(buf)
	o.report(CallGetcwd, start, int64(r), r < 0, 0)
	return r
}

func (o *Observed) Errno() int32 { return o.next.Errno() }

// Exit reports before delegating; the call does not return.
func (o *Observed) Exit(status int32) {
	o.report(CallExit, o.now(), int64(status), false, 0)
	o.next.Exit(status)
}

func (o *Observed) ExitImmediate(status int32) {
	o.report(CallExitNow, o.now(), int64(status), false, 0)
	o.next.ExitImmediate(status)
}

func (o *Observed) Abort() {
	o.report(CallAbort, o.now(), 0, false, 0)
	o.next.Abort()
}

func (o *Observed) Sleep(seconds uint32) uint32 {
	start := o.now()
	rem := o.next.Sleep(seconds)
	o.report(CallSleep, start, int64(rem), false, 0)
	return rem
}

func (o *Observed) Usleep(usec uint32) int32 {
	start := o.now()
	r := o.next.Usleep(usec)
	o.report(CallUsleep, start, int64(r), r < 0, 0)
	return r
}

func (o *Observed) Strerror(code int32) string {
	start := o.now()
	s := o.next.Strerror(code)
	o.report(CallStrerror, start, int64(code), false, 0)
	return s
}
