// Package fs provides descriptor-based file access on the Magnolia host.
//
// Every failing call returns a *errors.SysError holding the error register
// as it stood immediately after the host call that failed. A *File owns its
// descriptor and closes it at most once; WithFile scopes a handle to a
// function so the descriptor is released on every exit path.
//
// File.WriteSome is the single host write and may accept fewer bytes than
// offered. File.Write follows io.Writer and loops until everything is
// written, as does WriteAll.
package fs

import (
	"bytes"
	"strings"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/errors"
	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// Host is the part of the host surface the file layer calls.
type Host interface {
	ports.Files
	Errno() int32
}

// Standard descriptors.
const (
	Stdin  int32 = 0
	Stdout int32 = 1
	Stderr int32 = 2
)

// maxPath bounds the buffer Cwd will grow to.
const maxPath = 4096

// FS issues file operations against a host.
type FS struct {
	host  Host
	table entities.ErrnoTable
	flags entities.OpenFlags
}

// Option configures an FS.
type Option func(*FS)

// WithErrnoTable sets the table used to name and synthesize error codes.
func WithErrnoTable(table entities.ErrnoTable) Option {
	return func(f *FS) {
		f.table = table
	}
}

// WithOpenFlags sets the host's open-flag assignment.
func WithOpenFlags(flags entities.OpenFlags) Option {
	return func(f *FS) {
		f.flags = flags
	}
}

// New returns an FS over host using the default newlib numbering unless
// overridden.
func New(host Host, opts ...Option) *FS {
	f := &FS{
		host:  host,
		table: entities.DefaultErrnoTable(),
		flags: entities.DefaultOpenFlags(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Flags returns the open-flag assignment in use.
func (f *FS) Flags() entities.OpenFlags {
	return f.flags
}

// Table returns the errno table in use.
func (f *FS) Table() entities.ErrnoTable {
	return f.table
}

// Open opens path with host flags and mode.
func (f *FS) Open(path string, flags int32, mode uint32) (*File, error) {
	cpath, err := f.cstring("open", path)
	if err != nil {
		return nil, err
	}
	fd := f.host.Open(cpath, flags, mode)
	if fd < 0 {
		return nil, f.fail("open", path)
	}
	return &File{fs: f, fd: fd, name: path}, nil
}

// Create opens path for writing, creating or truncating it.
func (f *FS) Create(path string) (*File, error) {
	return f.Open(path, f.flags.WriteOnly|f.flags.Create|f.flags.Truncate, 0o644)
}

// WithFile opens path, calls fn with the handle and closes it exactly once
// whether fn returns normally, returns an error or panics. fn's error takes
// precedence over a close error.
func (f *FS) WithFile(path string, flags int32, mode uint32, fn func(*File) error) (err error) {
	file, err := f.Open(path, flags, mode)
	if err != nil {
		return err
	}
	defer func() {
		cerr := file.Close()
		if err == nil {
			err = cerr
		}
	}()
	return fn(file)
}

// ReadFile returns the full contents of path.
func (f *FS) ReadFile(path string) ([]byte, error) {
	var data []byte
	err := f.WithFile(path, f.flags.ReadOnly, 0, func(file *File) error {
		var err error
		data, err = file.ReadAll()
		return err
	})
	return data, err
}

// WriteFile replaces the contents of path with data.
func (f *FS) WriteFile(path string, data []byte, mode uint32) error {
	flags := f.flags.WriteOnly | f.flags.Create | f.flags.Truncate
	return f.WithFile(path, flags, mode, func(file *File) error {
		return file.WriteAll(data)
	})
}

// Unlink removes path.
func (f *FS) Unlink(path string) error {
	cpath, err := f.cstring("unlink", path)
	if err != nil {
		return err
	}
	if f.host.Unlink(cpath) < 0 {
		return f.fail("unlink", path)
	}
	return nil
}

// Mkdir creates the directory path.
func (f *FS) Mkdir(path string, mode uint32) error {
	cpath, err := f.cstring("mkdir", path)
	if err != nil {
		return err
	}
	if f.host.Mkdir(cpath, mode) < 0 {
		return f.fail("mkdir", path)
	}
	return nil
}

// Chdir changes the job's working directory.
func (f *FS) Chdir(path string) error {
	cpath, err := f.cstring("chdir", path)
	if err != nil {
		return err
	}
	if f.host.Chdir(cpath) < 0 {
		return f.fail("chdir", path)
	}
	return nil
}

// Getcwd writes the working directory into buf and returns the filled
// prefix, without terminator. A buffer that is too small fails with the
// host's ERANGE.
func (f *FS) Getcwd(buf []byte) ([]byte, error) {
	if f.host.Getcwd(buf) < 0 {
		return nil, f.fail("getcwd", "")
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return buf[:i], nil
	}
	return buf, nil
}

// Cwd returns the working directory, growing its buffer as needed.
func (f *FS) Cwd() (string, error) {
	erange, _ := f.table.Code(entities.ERANGE)
	for size := 64; ; size *= 2 {
		dir, err := f.Getcwd(make([]byte, size))
		if err == nil {
			return string(dir), nil
		}
		if erange == 0 || !errors.IsErrno(err, erange) || size >= maxPath {
			return "", err
		}
	}
}

// Stdout returns a stream over the job's standard output.
func (f *FS) Stdout() *Stream {
	return f.Stream(Stdout)
}

// Stderr returns a stream over the job's standard error.
func (f *FS) Stderr() *Stream {
	return f.Stream(Stderr)
}

// Stream returns an unowned stream over fd.
func (f *FS) Stream(fd int32) *Stream {
	return &Stream{fs: f, fd: fd}
}

// fail builds the error for a host call that just reported failure. It
// must run before any other host call.
func (f *FS) fail(op, path string) error {
	code := entities.Errno(f.host.Errno())
	if !code.Reported() {
		err := f.synthesize(op, path, entities.EIO)
		err.Err = errors.ErrUnreported
		return err
	}
	return errors.NewSysError(op, path, code, f.table)
}

func (f *FS) synthesize(op, path, name string) *errors.SysError {
	code, _ := f.table.Code(name)
	return errors.NewSysError(op, path, code, f.table)
}

// cstring converts path to the host's NUL-terminated form. A path with an
// interior NUL would be silently truncated, so it fails with EINVAL.
func (f *FS) cstring(op, path string) ([]byte, error) {
	if strings.IndexByte(path, 0) >= 0 {
		err := f.synthesize(op, path, entities.EINVAL)
		err.Err = errors.ErrEmbeddedNul
		return nil, err
	}
	b := make([]byte, len(path)+1)
	copy(b, path)
	return b, nil
}
