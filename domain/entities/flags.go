package entities

// Open flag values as ESP-IDF's newlib for Xtensa defines them. They are
// the numbers Magnolia's exported open() decodes and are not POSIX-portable.
const (
	O_RDONLY   int32 = 0
	O_WRONLY   int32 = 1
	O_RDWR     int32 = 2
	O_APPEND   int32 = 0x0008
	O_CREAT    int32 = 0x0200
	O_TRUNC    int32 = 0x0400
	O_EXCL     int32 = 0x0800
	O_NONBLOCK int32 = 0x4000
	O_CLOEXEC  int32 = 0x40000
)

// Whence selects the base for a seek.
type Whence int32

const (
	SeekSet Whence = 0
	SeekCur Whence = 1
	SeekEnd Whence = 2
)

// OpenFlags is the host's open-flag bit assignment.
type OpenFlags struct {
	ReadOnly    int32 `yaml:"rdonly" json:"rdonly"`
	WriteOnly   int32 `yaml:"wronly" json:"wronly" validate:"gt=0"`
	ReadWrite   int32 `yaml:"rdwr" json:"rdwr" validate:"gt=0"`
	AccessMask  int32 `yaml:"accmode" json:"accmode" validate:"gt=0"`
	Append      int32 `yaml:"append" json:"append" validate:"gt=0"`
	Create      int32 `yaml:"creat" json:"creat" validate:"gt=0"`
	Truncate    int32 `yaml:"trunc" json:"trunc" validate:"gt=0"`
	Exclusive   int32 `yaml:"excl" json:"excl" validate:"gt=0"`
	NonBlock    int32 `yaml:"nonblock" json:"nonblock"`
	CloseOnExec int32 `yaml:"cloexec" json:"cloexec"`
}

// DefaultOpenFlags returns the newlib/Xtensa assignment.
func DefaultOpenFlags() OpenFlags {
	return OpenFlags{
		ReadOnly:    O_RDONLY,
		WriteOnly:   O_WRONLY,
		ReadWrite:   O_RDWR,
		AccessMask:  0x3,
		Append:      O_APPEND,
		Create:      O_CREAT,
		Truncate:    O_TRUNC,
		Exclusive:   O_EXCL,
		NonBlock:    O_NONBLOCK,
		CloseOnExec: O_CLOEXEC,
	}
}

// Access returns the access-mode bits of flags.
func (f OpenFlags) Access(flags int32) int32 {
	return flags & f.AccessMask
}

// Readable reports whether flags open a descriptor for reading.
func (f OpenFlags) Readable(flags int32) bool {
	acc := f.Access(flags)
	return acc == f.ReadOnly || acc == f.ReadWrite
}

// Writable reports whether flags open a descriptor for writing.
func (f OpenFlags) Writable(flags int32) bool {
	acc := f.Access(flags)
	return acc == f.WriteOnly || acc == f.ReadWrite
}

// Has reports whether every bit of bit is set in flags. A zero bit (a flag
// the host does not support) is never set.
func (f OpenFlags) Has(flags, bit int32) bool {
	return bit != 0 && flags&bit == bit
}
