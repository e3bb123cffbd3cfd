package entities

import "fmt"

// FaultKind classifies an unrecoverable condition.
type FaultKind string

const (
	// FaultAllocError is allocation exhaustion in a context that cannot
	// tolerate a null result.
	FaultAllocError FaultKind = "alloc_error"

	// FaultInvariant is an internal invariant violation.
	FaultInvariant FaultKind = "invariant"

	// FaultPanic is a Go panic that escaped the job's entry function.
	FaultPanic FaultKind = "panic"
)

// Fault describes why a job is being terminated.
type Fault struct {
	Layout  *Layout
	Kind    FaultKind
	Message string
}

// Diagnostic renders the single line written to the job's error stream.
func (f Fault) Diagnostic() string {
	switch {
	case f.Kind == FaultAllocError && f.Layout != nil:
		return fmt.Sprintf("fatal %s: memory allocation of %s failed\n", f.Kind, f.Layout)
	case f.Message != "":
		return fmt.Sprintf("fatal %s: %s\n", f.Kind, f.Message)
	default:
		return fmt.Sprintf("fatal %s\n", f.Kind)
	}
}
