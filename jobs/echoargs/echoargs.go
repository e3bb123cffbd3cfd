// Package echoargs prints its argument vector, one numbered line per
// argument. Arguments that are not valid UTF-8 are printed as raw bytes
// and reported on stderr.
package echoargs

import (
	"fmt"

	"github.com/magnolia-os/magnolia-go"
	"github.com/magnolia-os/magnolia-go/args"
)

// Name is the job name.
const Name = "goargs"

// Run is the job entry.
func Run(rt *magnolia.Runtime, argv *args.Vector) int32 {
	out := rt.FS().Stdout()
	fmt.Fprintf(out, "%s: argv\n", Name)

	status := magnolia.ExitSuccess
	for i := range argv.Len() {
		b, ok := argv.Get(i)
		if !ok {
			fmt.Fprintf(out, "%d: (null)\n", i)
			continue
		}
		if _, err := argv.String(i); err != nil {
			rt.Logger().Warn("argument is not valid UTF-8", "index", i, "error", err)
			status = magnolia.ExitFailure
		}
		fmt.Fprintf(out, "%d: %s\n", i, b)
	}
	return status
}
