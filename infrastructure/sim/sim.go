// Package sim is a hosted Magnolia: it implements the full host syscall
// surface on a development machine so jobs can run and be tested without a
// device.
//
// Job memory is a wazero linear memory with a first-fit heap that, like the
// device allocator, only guarantees 4-byte alignment. Files live under a
// root directory on the host. Descriptor, error and termination semantics
// follow the device: closing 0..2 succeeds without effect, writing to 0 is
// EBADF, seeking 0..2 is ESPIPE, and exit/abort unwind the job with an Exit
// value instead of returning.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
	"github.com/magnolia-os/magnolia-go/infrastructure/wazero"
)

// DefaultMaxFiles is the default descriptor table size, 0..2 included.
const DefaultMaxFiles = 16

// Exit is the value a job unwinds with when it calls exit, _exit or abort.
type Exit struct {
	Status    int32
	Immediate bool
	Aborted   bool
}

var _ ports.Termination = Exit{}

// ExitStatus implements ports.Termination.
func (e Exit) ExitStatus() int32 { return e.Status }

func (e Exit) Error() string {
	if e.Aborted {
		return fmt.Sprintf("job aborted (status %d)", e.Status)
	}
	return fmt.Sprintf("job exited with status %d", e.Status)
}

// Config holds the simulator configuration.
type Config struct {
	Profile   *entities.HostProfile
	Logger    *slog.Logger
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	HeapTrace func(HeapEvent)
	Sleep     func(time.Duration)
	Root      string
	MaxFiles  int
}

// Option configures a Sim.
type Option func(*Config)

// WithProfile sets the host profile. It must be valid.
func WithProfile(p *entities.HostProfile) Option {
	return func(c *Config) { c.Profile = p }
}

// WithRoot sets the host directory job paths resolve under.
func WithRoot(dir string) Option {
	return func(c *Config) { c.Root = dir }
}

// WithStdin sets what the job reads from descriptor 0.
func WithStdin(r io.Reader) Option {
	return func(c *Config) { c.Stdin = r }
}

// WithStdout sets where descriptor 1 goes.
func WithStdout(w io.Writer) Option {
	return func(c *Config) { c.Stdout = w }
}

// WithStderr sets where descriptor 2 goes.
func WithStderr(w io.Writer) Option {
	return func(c *Config) { c.Stderr = w }
}

// WithLogger sets the host-side logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithHeapTrace registers fn to see every raw heap event.
func WithHeapTrace(fn func(HeapEvent)) Option {
	return func(c *Config) { c.HeapTrace = fn }
}

// WithSleep replaces the function sleep and usleep block with.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Config) { c.Sleep = fn }
}

// WithMaxFiles sets the descriptor table size.
func WithMaxFiles(n int) Option {
	return func(c *Config) { c.MaxFiles = n }
}

// Sim is one simulated job environment. It is single-threaded.
type Sim struct {
	cfg   Config
	mem   *wazero.Memory
	heap  *heap
	files *files
	log   *slog.Logger
	errno int32
}

var _ ports.Syscalls = (*Sim)(nil)

// New creates a simulator. Without a root directory the job has no
// filesystem beyond its standard streams.
func New(ctx context.Context, opts ...Option) (*Sim, error) {
	cfg := Config{
		Stdout:   io.Discard,
		Stderr:   io.Discard,
		Sleep:    time.Sleep,
		MaxFiles: DefaultMaxFiles,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Profile == nil {
		return nil, fmt.Errorf("sim: host profile required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxFiles < 3 {
		return nil, fmt.Errorf("sim: max files %d leaves no room past stdio", cfg.MaxFiles)
	}

	mem, err := wazero.NewMemory(ctx,
		wazero.WithModuleName("magnolia_job"),
		wazero.WithInitialPages(cfg.Profile.Heap.InitialPages),
		wazero.WithMaxPages(cfg.Profile.Heap.MaxPages),
		wazero.WithWordSize(uintptr(cfg.Profile.WordSize)),
	)
	if err != nil {
		return nil, err
	}

	s := &Sim{cfg: cfg, mem: mem, log: cfg.Logger}
	s.heap = newHeap(mem, cfg.HeapTrace)
	s.files = newFiles(cfg.Root, cfg.MaxFiles)
	return s, nil
}

// Shutdown releases open files and the job memory.
func (s *Sim) Shutdown(ctx context.Context) error {
	if n := s.files.closeAll(); n > 0 {
		s.log.Warn("sim: job left descriptors open", "count", n)
	}
	return s.mem.Close(ctx)
}

// Profile returns the host profile in use.
func (s *Sim) Profile() *entities.HostProfile { return s.cfg.Profile }

// LinearMemory returns the backing memory.
func (s *Sim) LinearMemory() *wazero.Memory { return s.mem }

// HeapStats returns the raw heap counters.
func (s *Sim) HeapStats() HeapStats { return s.heap.stats }

// OpenFiles returns the number of open descriptors beyond stdio.
func (s *Sim) OpenFiles() int { return len(s.files.open) }

// Cwd returns the job's working directory.
func (s *Sim) Cwd() string { return s.files.cwd }

// Errno implements ports.Process.
func (s *Sim) Errno() int32 { return s.errno }

// SetErrno overwrites the error register.
func (s *Sim) SetErrno(code int32) { s.errno = code }

// fail sets the register to the profile's code for name and returns -1.
// Profiles always define EIO, so an unknown name degrades to it.
func (s *Sim) fail(name string) int32 {
	code, ok := s.cfg.Profile.Errno.Code(name)
	if !ok {
		code = s.cfg.Profile.Errno.MustCode(entities.EIO)
	}
	s.errno = int32(code)
	return -1
}

// Exit implements ports.Process. Magnolia runs no host-side handlers; the
// job unwinds with status.
func (s *Sim) Exit(status int32) {
	s.log.Debug("sim: exit", "status", status)
	panic(Exit{Status: status})
}

// ExitImmediate implements ports.Process.
func (s *Sim) ExitImmediate(status int32) {
	s.log.Debug("sim: _exit", "status", status)
	panic(Exit{Status: status, Immediate: true})
}

// Abort implements ports.Process.
func (s *Sim) Abort() {
	s.log.Debug("sim: abort")
	panic(Exit{Status: s.cfg.Profile.AbortStatus, Aborted: true})
}

// Sleep implements ports.Process. The simulator never cuts a sleep short.
func (s *Sim) Sleep(seconds uint32) uint32 {
	s.cfg.Sleep(time.Duration(seconds) * time.Second)
	return 0
}

// Usleep implements ports.Process. Requests of a second or more fail with
// EINVAL.
func (s *Sim) Usleep(usec uint32) int32 {
	if usec >= 1_000_000 {
		return s.fail(entities.EINVAL)
	}
	s.cfg.Sleep(time.Duration(usec) * time.Microsecond)
	return 0
}

// Strerror implements ports.Process.
func (s *Sim) Strerror(code int32) string {
	return s.cfg.Profile.Errno.Message(entities.Errno(code))
}
