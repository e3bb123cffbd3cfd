// Package sleep pauses for the sum of its arguments, each a number with
// an optional s, m, h or d suffix.
package sleep

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/magnolia-os/magnolia-go"
	"github.com/magnolia-os/magnolia-go/args"
	"github.com/magnolia-os/magnolia-go/clock"
)

// Name is the job name.
const Name = "sleep"

const usage = "usage: sleep NUMBER[SUFFIX]...\n" +
	"Pause for the time specified by the sum of the arguments.\n" +
	"SUFFIX may be 's' for seconds (default), 'm' for minutes,\n" +
	"'h' for hours, or 'd' for days.\n"

var units = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// Run is the job entry.
func Run(rt *magnolia.Runtime, argv *args.Vector) int32 {
	stderr := rt.FS().Stderr()
	if argv.Len() < 2 {
		fmt.Fprintf(stderr, "%s: missing operand\n", Name)
		return magnolia.ExitFailure
	}

	var total time.Duration
	for i := 1; i < argv.Len(); i++ {
		arg, err := argv.String(i)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", Name, err)
			return magnolia.ExitFailure
		}
		if arg == "--help" {
			_, _ = rt.FS().Stdout().WriteString(usage)
			return magnolia.ExitSuccess
		}
		d, ok := ParseInterval(arg)
		if !ok {
			fmt.Fprintf(stderr, "%s: invalid time interval '%s'\n", Name, arg)
			return magnolia.ExitFailure
		}
		total += d
	}

	if !clock.SleepFor(rt.Syscalls(), total) {
		fmt.Fprintf(stderr, "%s: interrupted: %v\n", Name, rt.LastError())
		return magnolia.ExitFailure
	}
	return magnolia.ExitSuccess
}

// ParseInterval parses NUMBER[SUFFIX]. Negative, non-finite and
// overflowing values are rejected.
func ParseInterval(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	unit := time.Second
	if u, ok := units[s[len(s)-1]]; ok {
		unit = u
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	d := v * float64(unit)
	if d > math.MaxInt64 {
		return 0, false
	}
	return time.Duration(d), true
}
