// Package jobs is the table of built-in jobs the simulator can run by name.
package jobs

import (
	"maps"
	"slices"

	"github.com/magnolia-os/magnolia-go"
	"github.com/magnolia-os/magnolia-go/jobs/echoargs"
	"github.com/magnolia-os/magnolia-go/jobs/selftest"
	"github.com/magnolia-os/magnolia-go/jobs/sleep"
)

var builtin = map[string]magnolia.Job{
	echoargs.Name: echoargs.Run,
	selftest.Name: selftest.Run,
	sleep.Name:    sleep.Run,
}

// Lookup returns the job registered under name.
func Lookup(name string) (magnolia.Job, bool) {
	job, ok := builtin[name]
	return job, ok
}

// Names returns the registered job names in order.
func Names() []string {
	return slices.Sorted(maps.Keys(builtin))
}
