// Package profile loads and validates host profiles: the numeric contract
// (word size, open flags, error numbering, abort status) of one Magnolia
// build.
package profile

import (
	"github.com/magnolia-os/magnolia-go/domain/entities"
)

// DefaultName names the built-in profile.
const DefaultName = "esp32s3-newlib"

// Default returns the ESP32-S3 profile: 32-bit words, ESP-IDF newlib
// numbering and flags, abort status 134. The simulator heap starts at
// 256 KiB and may grow to 4 MiB.
func Default() *entities.HostProfile {
	return &entities.HostProfile{
		Name:        DefaultName,
		Errno:       entities.DefaultErrnoTable(),
		Flags:       entities.DefaultOpenFlags(),
		Heap:        entities.HeapLimits{InitialPages: 4, MaxPages: 64},
		WordSize:    4,
		AbortStatus: entities.DefaultAbortStatus,
	}
}
