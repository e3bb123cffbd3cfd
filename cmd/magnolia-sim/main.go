// Command magnolia-sim runs Magnolia jobs on the hosted simulator and
// inspects host profiles.
//
//	magnolia-sim run selftest
//	magnolia-sim run --root ./card goargs one two
//	magnolia-sim profile show --profile esp32c3.yaml
//	magnolia-sim profile validate esp32c3.yaml
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(int(exit.status))
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
