// Package hostfuncs observes the host syscall surface a job runs against.
//
// Wrap decorates any ports.Syscalls so every call is reported to a chain of
// observers after it returns: Prometheus metrics, slog debug logging and a
// plain per-call counter for tests. Observers see the call name, the raw
// result, whether it failed and the error register right after it. The
// wrapper never changes results or the register.
//
// BoundedBuffer caps captured job output.
package hostfuncs
