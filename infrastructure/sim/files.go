package sim

import (
	"bytes"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/magnolia-os/magnolia-go/domain/entities"
)

// files is the descriptor table and the job's view of the filesystem.
type files struct {
	open map[int32]*os.File
	root string
	cwd  string
	max  int
}

func newFiles(root string, maxFiles int) *files {
	return &files{open: make(map[int32]*os.File), root: root, cwd: "/", max: maxFiles}
}

// lowest returns the lowest free descriptor, or -1 when the table is full.
func (f *files) lowest() int32 {
	for fd := int32(3); int(fd) < f.max; fd++ {
		if _, used := f.open[fd]; !used {
			return fd
		}
	}
	return -1
}

// resolve maps a job path to a host path. Cleaning an absolute path cannot
// climb above "/", so the result always stays under root.
func (f *files) resolve(p string) (jobPath, hostPath string) {
	if !path.IsAbs(p) {
		p = path.Join(f.cwd, p)
	}
	jobPath = path.Clean(p)
	return jobPath, filepath.Join(f.root, filepath.FromSlash(jobPath))
}

func (f *files) closeAll() int {
	n := len(f.open)
	for fd, file := range f.open {
		_ = file.Close()
		delete(f.open, fd)
	}
	return n
}

func cpath(p []byte) (string, bool) {
	i := bytes.IndexByte(p, 0)
	if i < 0 {
		return "", false
	}
	return string(p[:i]), true
}

// path decodes a NUL-terminated path argument. An unterminated or empty
// path fails with EINVAL or ENOENT.
func (s *Sim) path(p []byte) (jobPath, hostPath string, ok bool) {
	raw, ok := cpath(p)
	if !ok {
		s.fail(entities.EINVAL)
		return "", "", false
	}
	if raw == "" {
		s.fail(entities.ENOENT)
		return "", "", false
	}
	if s.cfg.Root == "" {
		s.fail(entities.ENOENT)
		return "", "", false
	}
	jobPath, hostPath = s.files.resolve(raw)
	return jobPath, hostPath, true
}

// osFlags translates host open flags through the profile's bit assignment.
func (s *Sim) osFlags(flags int32) (int, bool) {
	fl := s.cfg.Profile.Flags
	var out int
	switch fl.Access(flags) {
	case fl.ReadOnly:
		out = os.O_RDONLY
	case fl.WriteOnly:
		out = os.O_WRONLY
	case fl.ReadWrite:
		out = os.O_RDWR
	default:
		return 0, false
	}
	if fl.Has(flags, fl.Append) {
		out |= os.O_APPEND
	}
	if fl.Has(flags, fl.Create) {
		out |= os.O_CREATE
	}
	if fl.Has(flags, fl.Truncate) {
		out |= os.O_TRUNC
	}
	if fl.Has(flags, fl.Exclusive) {
		out |= os.O_EXCL
	}
	return out, true
}

// Open implements ports.Files.
func (s *Sim) Open(p []byte, flags int32, mode uint32) int32 {
	jobPath, hostPath, ok := s.path(p)
	if !ok {
		return -1
	}
	osFlags, ok := s.osFlags(flags)
	if !ok {
		return s.fail(entities.EINVAL)
	}
	fd := s.files.lowest()
	if fd < 0 {
		return s.fail(entities.EMFILE)
	}

	perm := iofs.FileMode(mode & 0o777)
	if perm == 0 {
		perm = 0o644
	}
	file, err := os.OpenFile(hostPath, osFlags, perm)
	if err != nil {
		s.log.Debug("sim: open failed", "path", jobPath, "error", err)
		return s.failErr(err)
	}
	s.files.open[fd] = file
	s.log.Debug("sim: open", "path", jobPath, "fd", fd)
	return fd
}

// Close implements ports.Files. Standard descriptors report success and
// stay usable.
func (s *Sim) Close(fd int32) int32 {
	if fd >= 0 && fd <= 2 {
		return 0
	}
	file, ok := s.files.open[fd]
	if !ok {
		return s.fail(entities.EBADF)
	}
	delete(s.files.open, fd)
	if err := file.Close(); err != nil {
		return s.failErr(err)
	}
	return 0
}

// Read implements ports.Files.
func (s *Sim) Read(fd int32, p []byte) int32 {
	switch fd {
	case 0:
		if s.cfg.Stdin == nil {
			return 0
		}
		return s.readFrom(s.cfg.Stdin, p)
	case 1, 2:
		return s.fail(entities.EBADF)
	}
	file, ok := s.files.open[fd]
	if !ok {
		return s.fail(entities.EBADF)
	}
	return s.readFrom(file, p)
}

func (s *Sim) readFrom(r io.Reader, p []byte) int32 {
	p = p[:min(len(p), maxIO)]
	n, err := r.Read(p)
	if n > 0 || errors.Is(err, io.EOF) || err == nil {
		return int32(n) //nolint:gosec // G115: bounded by maxIO
	}
	return s.failErr(err)
}

// maxIO keeps transfer counts representable in the int32 result.
const maxIO = 1 << 30

// Write implements ports.Files.
func (s *Sim) Write(fd int32, p []byte) int32 {
	p = p[:min(len(p), maxIO)]
	var w io.Writer
	switch fd {
	case 0:
		return s.fail(entities.EBADF)
	case 1:
		w = s.cfg.Stdout
	case 2:
		w = s.cfg.Stderr
	default:
		file, ok := s.files.open[fd]
		if !ok {
			return s.fail(entities.EBADF)
		}
		w = file
	}
	n, err := w.Write(p)
	if err != nil && n == 0 {
		return s.failErr(err)
	}
	return int32(n) //nolint:gosec // G115: bounded by maxIO
}

// Lseek implements ports.Files.
func (s *Sim) Lseek(fd int32, offset int64, whence int32) int64 {
	if fd >= 0 && fd <= 2 {
		return int64(s.fail(entities.ESPIPE))
	}
	file, ok := s.files.open[fd]
	if !ok {
		return int64(s.fail(entities.EBADF))
	}
	switch entities.Whence(whence) {
	case entities.SeekSet:
		if offset < 0 {
			return int64(s.fail(entities.EINVAL))
		}
	case entities.SeekCur, entities.SeekEnd:
	default:
		return int64(s.fail(entities.EINVAL))
	}
	pos, err := file.Seek(offset, int(whence))
	if err != nil {
		return int64(s.failErr(err))
	}
	return pos
}

// Unlink implements ports.Files. Directories are refused with EISDIR.
func (s *Sim) Unlink(p []byte) int32 {
	_, hostPath, ok := s.path(p)
	if !ok {
		return -1
	}
	info, err := os.Lstat(hostPath)
	if err != nil {
		return s.failErr(err)
	}
	if info.IsDir() {
		return s.fail(entities.EISDIR)
	}
	if err := os.Remove(hostPath); err != nil {
		return s.failErr(err)
	}
	return 0
}

// Mkdir implements ports.Files.
func (s *Sim) Mkdir(p []byte, mode uint32) int32 {
	_, hostPath, ok := s.path(p)
	if !ok {
		return -1
	}
	perm := iofs.FileMode(mode & 0o777)
	if perm == 0 {
		perm = 0o755
	}
	if err := os.Mkdir(hostPath, perm); err != nil {
		return s.failErr(err)
	}
	return 0
}

// Chdir implements ports.Files.
func (s *Sim) Chdir(p []byte) int32 {
	jobPath, hostPath, ok := s.path(p)
	if !ok {
		return -1
	}
	info, err := os.Stat(hostPath)
	if err != nil {
		return s.failErr(err)
	}
	if !info.IsDir() {
		return s.fail(entities.ENOTDIR)
	}
	s.files.cwd = jobPath
	return 0
}

// Getcwd implements ports.Files.
func (s *Sim) Getcwd(buf []byte) int32 {
	if len(s.files.cwd)+1 > len(buf) {
		return s.fail(entities.ERANGE)
	}
	n := copy(buf, s.files.cwd)
	buf[n] = 0
	return 0
}

// failErr sets the register from a host OS error.
func (s *Sim) failErr(err error) int32 {
	return s.fail(errnoName(err))
}

// errnoName classifies err by symbolic name, falling back to EIO.
func errnoName(err error) string {
	if name := osErrnoName(err); name != "" {
		return name
	}
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return entities.ENOENT
	case errors.Is(err, iofs.ErrExist):
		return entities.EEXIST
	case errors.Is(err, iofs.ErrPermission):
		return entities.EACCES
	case errors.Is(err, iofs.ErrClosed):
		return entities.EBADF
	}
	return entities.EIO
}
