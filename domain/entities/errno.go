package entities

import "strconv"

// Errno is a snapshot of the job-local error register taken right after a
// failing host call. The zero value never denotes a reported failure.
type Errno int32

// Error implements the error interface.
func (e Errno) Error() string {
	return "errno " + strconv.Itoa(int(e))
}

// Reported reports whether the register held a failure code.
func (e Errno) Reported() bool {
	return e != 0
}

// Symbolic errno names the SDK and the simulator refer to. The numeric value
// behind each name comes from the host profile.
const (
	EPERM        = "EPERM"
	ENOENT       = "ENOENT"
	EINTR        = "EINTR"
	EIO          = "EIO"
	EBADF        = "EBADF"
	EAGAIN       = "EAGAIN"
	ENOMEM       = "ENOMEM"
	EACCES       = "EACCES"
	EFAULT       = "EFAULT"
	EBUSY        = "EBUSY"
	EEXIST       = "EEXIST"
	EXDEV        = "EXDEV"
	ENOTDIR      = "ENOTDIR"
	EISDIR       = "EISDIR"
	EINVAL       = "EINVAL"
	ENFILE       = "ENFILE"
	EMFILE       = "EMFILE"
	EFBIG        = "EFBIG"
	ENOSPC       = "ENOSPC"
	ESPIPE       = "ESPIPE"
	EROFS        = "EROFS"
	ERANGE       = "ERANGE"
	ENOSYS       = "ENOSYS"
	ENOTEMPTY    = "ENOTEMPTY"
	ENAMETOOLONG = "ENAMETOOLONG"
	ELOOP        = "ELOOP"
)

// RequiredErrnoNames lists the codes the runtime synthesizes or the
// simulator reports on its own; every host profile must define them.
var RequiredErrnoNames = []string{EINVAL, EIO, ENOMEM, ENOSYS, ENOENT, EBADF, ESPIPE}

// ErrnoEntry maps one symbolic error name to the host's number for it.
type ErrnoEntry struct {
	Name    string `yaml:"name" json:"name" validate:"required,startswith=E,uppercase" jsonschema:"pattern=^E[A-Z0-9]+$"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
	Code    int32  `yaml:"code" json:"code" validate:"gt=0" jsonschema:"minimum=1"`
}

// ErrnoTable is the host's error numbering. Lookups are linear; tables are
// a few dozen entries long.
type ErrnoTable []ErrnoEntry

// Code returns the host number for name.
func (t ErrnoTable) Code(name string) (Errno, bool) {
	for _, e := range t {
		if e.Name == name {
			return Errno(e.Code), true
		}
	}
	return 0, false
}

// MustCode returns the host number for name and panics if the table does
// not define it. Profiles are validated for RequiredErrnoNames up front.
func (t ErrnoTable) MustCode(name string) Errno {
	code, ok := t.Code(name)
	if !ok {
		panic("entities: errno table has no entry for " + name)
	}
	return code
}

// Name returns the symbolic name for code, or "" if unknown.
func (t ErrnoTable) Name(code Errno) string {
	for _, e := range t {
		if Errno(e.Code) == code {
			return e.Name
		}
	}
	return ""
}

// Message returns the human readable text for code.
func (t ErrnoTable) Message(code Errno) string {
	for _, e := range t {
		if Errno(e.Code) == code {
			if e.Message != "" {
				return e.Message
			}
			return e.Name
		}
	}
	if code == 0 {
		return "Success"
	}
	return "Unknown error " + strconv.Itoa(int(code))
}

// DefaultErrnoTable returns the newlib numbering used by ESP-IDF, which is
// what Magnolia's exported __errno reports.
func DefaultErrnoTable() ErrnoTable {
	return ErrnoTable{
		{Name: EPERM, Code: 1, Message: "Not owner"},
		{Name: ENOENT, Code: 2, Message: "No such file or directory"},
		{Name: EINTR, Code: 4, Message: "Interrupted system call"},
		{Name: EIO, Code: 5, Message: "I/O error"},
		{Name: EBADF, Code: 9, Message: "Bad file number"},
		{Name: EAGAIN, Code: 11, Message: "No more processes"},
		{Name: ENOMEM, Code: 12, Message: "Not enough space"},
		{Name: EACCES, Code: 13, Message: "Permission denied"},
		{Name: EFAULT, Code: 14, Message: "Bad address"},
		{Name: EBUSY, Code: 16, Message: "Device or resource busy"},
		{Name: EEXIST, Code: 17, Message: "File exists"},
		{Name: EXDEV, Code: 18, Message: "Cross-device link"},
		{Name: ENOTDIR, Code: 20, Message: "Not a directory"},
		{Name: EISDIR, Code: 21, Message: "Is a directory"},
		{Name: EINVAL, Code: 22, Message: "Invalid argument"},
		{Name: ENFILE, Code: 23, Message: "Too many open files in system"},
		{Name: EMFILE, Code: 24, Message: "File descriptor value too large"},
		{Name: EFBIG, Code: 27, Message: "File too large"},
		{Name: ENOSPC, Code: 28, Message: "No space left on device"},
		{Name: ESPIPE, Code: 29, Message: "Illegal seek"},
		{Name: EROFS, Code: 30, Message: "Read-only file system"},
		{Name: ERANGE, Code: 34, Message: "Result too large"},
		{Name: ENOSYS, Code: 88, Message: "Function not implemented"},
		{Name: ENOTEMPTY, Code: 90, Message: "Directory not empty"},
		{Name: ENAMETOOLONG, Code: 91, Message: "File or path name too long"},
		{Name: ELOOP, Code: 92, Message: "Too many symbolic links"},
	}
}
