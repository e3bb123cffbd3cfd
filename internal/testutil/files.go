package testutil

import (
	"bytes"

	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// Error codes FakeFiles reports, in the default newlib numbering.
const (
	codeENOENT int32 = 2
	codeEBADF  int32 = 9
	codeEEXIST int32 = 17
	codeEINVAL int32 = 22
	codeESPIPE int32 = 29
	codeERANGE int32 = 34
)

type fakeFD struct {
	path string
	off  int
}

// FakeFiles is an in-memory host file surface with an error register. It
// honours O_CREAT, O_TRUNC and O_APPEND in the default assignment and
// counts every call by name.
type FakeFiles struct {
	Files map[string][]byte
	Dirs  map[string]bool
	Calls map[string]int
	// Stdout collects writes to descriptors 1 and 2.
	Stdout bytes.Buffer
	// WriteChunk caps how many bytes one write accepts, when positive.
	WriteChunk int
	// StallWrites makes writes accept zero bytes.
	StallWrites bool
	// SilentFail makes every call fail without setting the register.
	SilentFail bool
	Cwd        string
	Err        int32
	fds        map[int32]*fakeFD
	next       int32
}

// NewFakeFiles returns an empty file surface rooted at "/".
func NewFakeFiles() *FakeFiles {
	return &FakeFiles{
		Files: make(map[string][]byte),
		Dirs:  map[string]bool{"/": true},
		Calls: make(map[string]int),
		Cwd:   "/",
		fds:   make(map[int32]*fakeFD),
		next:  3,
	}
}

var _ ports.Files = (*FakeFiles)(nil)

// Errno reads the error register.
func (f *FakeFiles) Errno() int32 { return f.Err }

// OpenCount returns the number of descriptors currently open.
func (f *FakeFiles) OpenCount() int { return len(f.fds) }

func (f *FakeFiles) fail(code int32) int32 {
	if !f.SilentFail {
		f.Err = code
	}
	return -1
}

func cpath(p []byte) string {
	if i := bytes.IndexByte(p, 0); i >= 0 {
		p = p[:i]
	}
	return string(p)
}

func (f *FakeFiles) Open(path []byte, flags int32, _ uint32) int32 {
	f.Calls["open"]++
	if f.SilentFail {
		return -1
	}
	name := cpath(path)
	data, ok := f.Files[name]
	switch {
	case !ok && flags&0x200 == 0:
		return f.fail(codeENOENT)
	case ok && flags&0x200 != 0 && flags&0x800 != 0:
		return f.fail(codeEEXIST)
	case !ok || flags&0x400 != 0:
		data = nil
	}
	f.Files[name] = data
	fd := f.next
	f.next++
	f.fds[fd] = &fakeFD{path: name}
	if flags&0x8 != 0 {
		f.fds[fd].off = len(data)
	}
	return fd
}

func (f *FakeFiles) Close(fd int32) int32 {
	f.Calls["close"]++
	if fd >= 0 && fd <= 2 {
		return 0
	}
	if _, ok := f.fds[fd]; !ok {
		return f.fail(codeEBADF)
	}
	delete(f.fds, fd)
	return 0
}

func (f *FakeFiles) Read(fd int32, p []byte) int32 {
	f.Calls["read"]++
	d, ok := f.fds[fd]
	if !ok {
		return f.fail(codeEBADF)
	}
	data := f.Files[d.path]
	if d.off >= len(data) {
		return 0
	}
	n := copy(p, data[d.off:])
	d.off += n
	return int32(n)
}

func (f *FakeFiles) Write(fd int32, p []byte) int32 {
	f.Calls["write"]++
	if f.SilentFail {
		return -1
	}
	if f.StallWrites {
		return 0
	}
	if f.WriteChunk > 0 && len(p) > f.WriteChunk {
		p = p[:f.WriteChunk]
	}
	if fd == 1 || fd == 2 {
		f.Stdout.Write(p)
		return int32(len(p))
	}
	d, ok := f.fds[fd]
	if !ok {
		return f.fail(codeEBADF)
	}
	data := f.Files[d.path]
	if end := d.off + len(p); end > len(data) {
		data = append(data, make([]byte, end-len(data))...)
	}
	copy(data[d.off:], p)
	d.off += len(p)
	f.Files[d.path] = data
	return int32(len(p))
}

func (f *FakeFiles) Lseek(fd int32, offset int64, whence int32) int64 {
	f.Calls["lseek"]++
	if fd >= 0 && fd <= 2 {
		return int64(f.fail(codeESPIPE))
	}
	d, ok := f.fds[fd]
	if !ok {
		return int64(f.fail(codeEBADF))
	}
	var base int64
	switch whence {
	case 0:
	case 1:
		base = int64(d.off)
	case 2:
		base = int64(len(f.Files[d.path]))
	default:
		return int64(f.fail(codeEINVAL))
	}
	pos := base + offset
	if pos < 0 {
		return int64(f.fail(codeEINVAL))
	}
	d.off = int(pos)
	return pos
}

func (f *FakeFiles) Unlink(path []byte) int32 {
	f.Calls["unlink"]++
	name := cpath(path)
	if _, ok := f.Files[name]; !ok {
		return f.fail(codeENOENT)
	}
	delete(f.Files, name)
	return 0
}

func (f *FakeFiles) Mkdir(path []byte, _ uint32) int32 {
	f.Calls["mkdir"]++
	name := cpath(path)
	if f.Dirs[name] {
		return f.fail(codeEEXIST)
	}
	f.Dirs[name] = true
	return 0
}

func (f *FakeFiles) Chdir(path []byte) int32 {
	f.Calls["chdir"]++
	name := cpath(path)
	if !f.Dirs[name] {
		return f.fail(codeENOENT)
	}
	f.Cwd = name
	return 0
}

func (f *FakeFiles) Getcwd(buf []byte) int32 {
	f.Calls["getcwd"]++
	if len(f.Cwd)+1 > len(buf) {
		return f.fail(codeERANGE)
	}
	copy(buf, f.Cwd)
	buf[len(f.Cwd)] = 0
	return 0
}
