// Package fault is the single termination path for unrecoverable job
// conditions: allocation exhaustion where a null result cannot be tolerated,
// internal invariant violations, and Go panics escaping the job entry.
//
// A fault writes one diagnostic line to the job's error stream (best effort)
// and calls the host's abort primitive. It never returns and never retries.
package fault

import (
	"fmt"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// StderrFD is the job's error output stream.
const StderrFD int32 = 2

// Host is the part of the host surface a fault needs.
type Host interface {
	Write(fd int32, p []byte) int32
	Abort()
}

// Handler terminates the job on unrecoverable conditions.
type Handler struct {
	host      Host
	observers []func(entities.Fault)
	fd        int32
	faulting  bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithObserver registers fn to be told about a fault before the diagnostic
// is written. Observers must not fault themselves.
func WithObserver(fn func(entities.Fault)) Option {
	return func(h *Handler) {
		h.observers = append(h.observers, fn)
	}
}

// WithDiagnosticFD redirects diagnostics to another descriptor.
func WithDiagnosticFD(fd int32) Option {
	return func(h *Handler) {
		h.fd = fd
	}
}

// New creates a fault handler bound to host.
func New(host Host, opts ...Option) *Handler {
	h := &Handler{host: host, fd: StderrFD}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Raise terminates the job with f. It does not return.
func (h *Handler) Raise(f entities.Fault) {
	if h.faulting {
		// A fault while faulting: skip observers and the diagnostic.
		h.host.Abort()
		panic("fault: host abort returned")
	}
	h.faulting = true

	for _, fn := range h.observers {
		fn(f)
	}
	h.writeDiagnostic([]byte(f.Diagnostic()))
	h.host.Abort()
	panic("fault: host abort returned")
}

// AllocError terminates the job after an allocation that could not be
// satisfied in a context that has no null fallback.
func (h *Handler) AllocError(layout entities.Layout) {
	h.Raise(entities.Fault{Kind: entities.FaultAllocError, Layout: &layout})
}

// Invariant terminates the job after an internal invariant violation.
func (h *Handler) Invariant(format string, args ...any) {
	h.Raise(entities.Fault{Kind: entities.FaultInvariant, Message: fmt.Sprintf(format, args...)})
}

// Assert raises an invariant fault when cond is false.
func (h *Handler) Assert(cond bool, msg string) {
	if !cond {
		h.Invariant("%s", msg)
	}
}

// Recover turns a panic escaping the job into a fault. Use it deferred.
// Host terminations unwinding through the job are passed on untouched.
func (h *Handler) Recover() {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(ports.Termination); ok || h.faulting {
		panic(r)
	}
	h.Raise(entities.Fault{Kind: entities.FaultPanic, Message: fmt.Sprint(r)})
}

// Faulting reports whether a fault is in progress.
func (h *Handler) Faulting() bool {
	return h.faulting
}

func (h *Handler) writeDiagnostic(p []byte) {
	for len(p) > 0 {
		n := h.host.Write(h.fd, p)
		if n <= 0 || int(n) > len(p) {
			return
		}
		p = p[n:]
	}
}
