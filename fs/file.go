package fs

import (
	"io"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/errors"
)

// File is an open descriptor. It is owned by exactly one File value; Close
// and Release end that ownership.
type File struct {
	fs     *FS
	name   string
	fd     int32
	closed bool
}

var (
	_ io.ReadWriteCloser = (*File)(nil)
	_ io.Seeker          = (*File)(nil)
)

// Name returns the path the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Fd returns the descriptor, or -1 once closed or released.
func (f *File) Fd() int32 {
	if f.closed {
		return -1
	}
	return f.fd
}

// Read reads up to len(p) bytes. At end of data it returns 0, io.EOF.
func (f *File) Read(p []byte) (int, error) {
	if err := f.check("read"); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := f.fs.host.Read(f.fd, p)
	if n < 0 {
		return 0, f.fs.fail("read", f.name)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

// WriteSome issues a single host write and returns how much it accepted,
// which may be less than len(p).
func (f *File) WriteSome(p []byte) (int, error) {
	if err := f.check("write"); err != nil {
		return 0, err
	}
	n := f.fs.host.Write(f.fd, p)
	if n < 0 {
		return 0, f.fs.fail("write", f.name)
	}
	return int(n), nil
}

// Write writes all of p, see WriteAll.
func (f *File) Write(p []byte) (int, error) {
	return writeAll(f.fs, "write", f.name, f.fd, p, f.check)
}

// WriteAll repeats host writes until p is consumed. A write that accepts
// zero bytes fails with EIO wrapping errors.ErrShortWrite.
func (f *File) WriteAll(p []byte) error {
	_, err := f.Write(p)
	return err
}

// Seek repositions the file offset. whence takes io.SeekStart,
// io.SeekCurrent or io.SeekEnd, which equal the host's SEEK_* values.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if err := f.check("lseek"); err != nil {
		return 0, err
	}
	pos := f.fs.host.Lseek(f.fd, offset, int32(entities.Whence(whence)))
	if pos < 0 {
		return 0, f.fs.fail("lseek", f.name)
	}
	return pos, nil
}

// ReadAll reads from the current offset to end of data.
func (f *File) ReadAll() ([]byte, error) {
	return io.ReadAll(f)
}

// Close releases the descriptor. Only the first call reaches the host;
// later calls return nil.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.fs.host.Close(f.fd) < 0 {
		return f.fs.fail("close", f.name)
	}
	return nil
}

// Release gives up ownership of the descriptor without closing it and
// returns it. The caller becomes responsible for closing it.
func (f *File) Release() int32 {
	if f.closed {
		return -1
	}
	f.closed = true
	return f.fd
}

func (f *File) check(op string) error {
	if !f.closed {
		return nil
	}
	err := f.fs.synthesize(op, f.name, entities.EBADF)
	err.Err = errors.ErrClosed
	return err
}

func writeAll(f *FS, op, name string, fd int32, p []byte, check func(string) error) (int, error) {
	if err := check(op); err != nil {
		return 0, err
	}
	written := 0
	for written < len(p) {
		n := f.host.Write(fd, p[written:])
		if n < 0 {
			return written, f.fail(op, name)
		}
		if n == 0 || int(n) > len(p)-written {
			err := f.synthesize(op, name, entities.EIO)
			err.Err = errors.ErrShortWrite
			return written, err
		}
		written += int(n)
	}
	return written, nil
}
