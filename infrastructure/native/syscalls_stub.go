//go:build !tinygo

package native

import (
	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// enosys is the newlib ENOSYS number the stub reports.
const enosys = 88

// Unsupported is the termination a stub exit, _exit or abort unwinds with.
type Unsupported struct {
	Status int32
}

// ExitStatus implements ports.Termination.
func (u Unsupported) ExitStatus() int32 { return u.Status }

// Syscalls stub for native builds. Every call fails with ENOSYS and
// allocation always returns null.
type Syscalls struct {
	mem Memory
}

var _ ports.Syscalls = (*Syscalls)(nil)

func New() *Syscalls { return &Syscalls{} }

// Available reports whether this build talks to a real host.
func Available() bool { return false }

func (s *Syscalls) Memory() ports.Memory             { return s.mem }
func (s *Syscalls) Malloc(uintptr) uintptr           { return 0 }
func (s *Syscalls) Calloc(uintptr, uintptr) uintptr  { return 0 }
func (s *Syscalls) Realloc(uintptr, uintptr) uintptr { return 0 }
func (s *Syscalls) Free(uintptr)                     {}

func (s *Syscalls) Open([]byte, int32, uint32) int32 { return -1 }
func (s *Syscalls) Close(int32) int32                { return -1 }
func (s *Syscalls) Read(int32, []byte) int32         { return -1 }
func (s *Syscalls) Write(int32, []byte) int32        { return -1 }
func (s *Syscalls) Lseek(int32, int64, int32) int64  { return -1 }
func (s *Syscalls) Unlink([]byte) int32              { return -1 }
func (s *Syscalls) Mkdir([]byte, uint32) int32       { return -1 }
func (s *Syscalls) Chdir([]byte) int32               { return -1 }
func (s *Syscalls) Getcwd([]byte) int32              { return -1 }

func (s *Syscalls) Errno() int32 { return enosys }

func (s *Syscalls) Exit(status int32)          { panic(Unsupported{Status: status}) }
func (s *Syscalls) ExitImmediate(status int32) { panic(Unsupported{Status: status}) }
func (s *Syscalls) Abort()                     { panic(Unsupported{Status: entities.DefaultAbortStatus}) }

func (s *Syscalls) Sleep(seconds uint32) uint32 { return seconds }
func (s *Syscalls) Usleep(uint32) int32         { return -1 }

func (s *Syscalls) Strerror(code int32) string {
	return entities.DefaultErrnoTable().Message(entities.Errno(code))
}
