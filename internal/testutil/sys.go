package testutil

import (
	"strconv"

	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// Exit is the termination FakeSys unwinds with.
type Exit struct {
	Status int32
	// Immediate is set for _exit.
	Immediate bool
}

// ExitStatus implements ports.Termination.
func (e Exit) ExitStatus() int32 { return e.Status }

// FakeSys is a complete host surface over FakeHeap and FakeFiles. Exit and
// Abort panic with an Exit value.
type FakeSys struct {
	*FakeHeap
	*FakeFiles
	Slept  []uint32
	Aborts int
}

// NewFakeSys returns a host with heapSize bytes of job memory.
func NewFakeSys(heapSize int) *FakeSys {
	return &FakeSys{FakeHeap: NewFakeHeap(heapSize), FakeFiles: NewFakeFiles()}
}

var _ ports.Syscalls = (*FakeSys)(nil)

func (s *FakeSys) Errno() int32 { return s.FakeFiles.Err }

func (s *FakeSys) Exit(status int32) { panic(Exit{Status: status}) }

func (s *FakeSys) ExitImmediate(status int32) { panic(Exit{Status: status, Immediate: true}) }

func (s *FakeSys) Abort() {
	s.Aborts++
	panic(Exit{Status: 134})
}

func (s *FakeSys) Sleep(seconds uint32) uint32 {
	s.Slept = append(s.Slept, seconds)
	return 0
}

func (s *FakeSys) Usleep(uint32) int32 { return 0 }

func (s *FakeSys) Strerror(code int32) string { return "error " + strconv.Itoa(int(code)) }
