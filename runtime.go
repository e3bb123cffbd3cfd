package magnolia

import (
	"log/slog"

	"github.com/magnolia-os/magnolia-go/alloc"
	"github.com/magnolia-os/magnolia-go/args"
	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/errors"
	"github.com/magnolia-os/magnolia-go/domain/ports"
	"github.com/magnolia-os/magnolia-go/fault"
	"github.com/magnolia-os/magnolia-go/fs"
	"github.com/magnolia-os/magnolia-go/log"
)

// Job is a program body. It receives the runtime and the argument vector,
// which is only valid until the job returns, and returns the exit status.
type Job func(rt *Runtime, argv *args.Vector) int32

// EntryFunc has the host's entry signature: argc and the address of argv.
type EntryFunc func(argc int32, argv uintptr) int32

// Runtime wires a job to one host.
type Runtime struct {
	sys     ports.Syscalls
	alloc   *alloc.Allocator
	fault   *fault.Handler
	fs      *fs.FS
	logger  *slog.Logger
	errno   entities.ErrnoTable
	flags   entities.OpenFlags
	atExit  []func()
	faultFn []func(entities.Fault)
	logOpts []log.HandlerOption
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithProfile applies the error numbering and open flags of a host profile.
func WithProfile(p *entities.HostProfile) Option {
	return func(rt *Runtime) {
		if p == nil {
			return
		}
		rt.errno = p.Errno
		rt.flags = p.Flags
	}
}

// WithLogger replaces the default logger, which writes to the job's stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithLogOptions configures the default logger.
func WithLogOptions(opts ...log.HandlerOption) Option {
	return func(rt *Runtime) {
		rt.logOpts = append(rt.logOpts, opts...)
	}
}

// WithFaultObserver registers fn to see a fault before the job aborts.
func WithFaultObserver(fn func(entities.Fault)) Option {
	return func(rt *Runtime) {
		rt.faultFn = append(rt.faultFn, fn)
	}
}

// NewRuntime builds a runtime over sys.
func NewRuntime(sys ports.Syscalls, opts ...Option) *Runtime {
	rt := &Runtime{
		sys:   sys,
		errno: entities.DefaultErrnoTable(),
		flags: entities.DefaultOpenFlags(),
	}
	for _, opt := range opts {
		opt(rt)
	}

	faultOpts := make([]fault.Option, 0, len(rt.faultFn))
	for _, fn := range rt.faultFn {
		faultOpts = append(faultOpts, fault.WithObserver(fn))
	}
	rt.fault = fault.New(sys, faultOpts...)
	rt.alloc = alloc.New(sys, alloc.WithOOMHandler(rt.fault))
	rt.fs = fs.New(sys, fs.WithErrnoTable(rt.errno), fs.WithOpenFlags(rt.flags))
	if rt.logger == nil {
		rt.logger = log.New(rt.fs.Stderr(), rt.logOpts...)
	}
	return rt
}

// Alloc returns the aligned allocator.
func (rt *Runtime) Alloc() *alloc.Allocator { return rt.alloc }

// Fault returns the fault handler.
func (rt *Runtime) Fault() *fault.Handler { return rt.fault }

// FS returns the file layer.
func (rt *Runtime) FS() *fs.FS { return rt.fs }

// Logger returns the job logger.
func (rt *Runtime) Logger() *slog.Logger { return rt.logger }

// Syscalls returns the host surface.
func (rt *Runtime) Syscalls() ports.Syscalls { return rt.sys }

// ErrnoTable returns the error numbering in use.
func (rt *Runtime) ErrnoTable() entities.ErrnoTable { return rt.errno }

// LastError reads the error register.
func (rt *Runtime) LastError() entities.Errno { return LastError(rt.sys) }

// Strerror returns the host's text for code.
func (rt *Runtime) Strerror(code entities.Errno) string {
	return rt.sys.Strerror(int32(code))
}

// Entry returns the trampoline the host calls. It builds the argument
// vector from the raw pair, runs job and returns its status unchanged. A
// panic escaping job becomes a fault.
func (rt *Runtime) Entry(job Job) EntryFunc {
	return func(argc int32, argv uintptr) int32 {
		defer rt.fault.Recover()
		return job(rt, args.FromRaw(rt.sys.Memory(), argc, argv))
	}
}

// AtExit registers fn to run when the job calls Exit. Hooks run in reverse
// order of registration.
func (rt *Runtime) AtExit(fn func()) {
	rt.atExit = append(rt.atExit, fn)
}

// Exit runs the exit hooks and terminates the job with status. It does
// not return.
func (rt *Runtime) Exit(status int32) {
	for len(rt.atExit) > 0 {
		last := len(rt.atExit) - 1
		fn := rt.atExit[last]
		rt.atExit = rt.atExit[:last]
		fn()
	}
	rt.sys.Exit(status)
	rt.fault.Invariant("host exit(%d) returned", status)
}

// ExitImmediate terminates the job with status without running hooks.
func (rt *Runtime) ExitImmediate(status int32) {
	rt.sys.ExitImmediate(status)
	rt.fault.Invariant("host _exit(%d) returned", status)
}

// Abort terminates the job abruptly. It does not return.
func (rt *Runtime) Abort() {
	rt.sys.Abort()
	panic("magnolia: host abort returned")
}

var installed *Runtime

// Install registers rt as the process-wide runtime. It can be called once.
func Install(rt *Runtime) error {
	if installed != nil {
		return errors.ErrAlreadyInstalled
	}
	installed = rt
	return nil
}

// Current returns the installed runtime.
func Current() (*Runtime, error) {
	if installed == nil {
		return nil, errors.ErrNotInstalled
	}
	return installed, nil
}
