// Package clock wraps the host's blocking sleep calls.
package clock

import "time"

// Host is the host surface clock needs.
type Host interface {
	Sleep(seconds uint32) uint32
	Usleep(usec uint32) int32
}

// maxUsleep is the longest single usleep the host accepts.
const maxUsleep = 999_999

// Sleep blocks for seconds and returns the unslept remainder, which is
// non-zero only when the host cut the sleep short.
func Sleep(h Host, seconds uint32) uint32 {
	return h.Sleep(seconds)
}

// Usleep blocks for usec microseconds. It reports false if the host
// rejected the request.
func Usleep(h Host, usec uint32) bool {
	return h.Usleep(usec) == 0
}

// SleepFor blocks for d, split into whole seconds and a microsecond
// remainder. Durations below one microsecond return immediately.
func SleepFor(h Host, d time.Duration) bool {
	if d < time.Microsecond {
		return true
	}
	for secs := d / time.Second; secs > 0; {
		chunk := uint32(min(secs, time.Duration(^uint32(0))))
		if h.Sleep(chunk) != 0 {
			return false
		}
		secs -= time.Duration(chunk)
	}
	usec := uint32((d % time.Second) / time.Microsecond)
	if usec == 0 {
		return true
	}
	return h.Usleep(min(usec, maxUsleep)) == 0
}
