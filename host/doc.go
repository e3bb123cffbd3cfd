// Package host runs jobs on the hosted Magnolia simulator.
//
// An Executor owns the run configuration: host profile, filesystem root,
// heap limit, observers. Every Run gets a fresh simulated machine, places
// the argument vector in its memory the way the firmware loader does, calls
// the job through the runtime's entry trampoline and reports how it ended
// along with its captured output and heap balance.
package host
