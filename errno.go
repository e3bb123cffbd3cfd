package magnolia

import (
	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// LastError reads the job-local error register. It has no side effects.
// The value is only meaningful right after a host call reported failure.
func LastError(p ports.Process) entities.Errno {
	return entities.Errno(p.Errno())
}

// ErrnoValue returns the raw number in the error register.
func ErrnoValue(p ports.Process) int32 {
	return p.Errno()
}
