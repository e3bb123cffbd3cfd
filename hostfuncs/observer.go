package hostfuncs

import "time"

// Call describes one completed host call.
type Call struct {
	Name     string
	Result   int64
	Bytes    int
	Duration time.Duration
	Errno    int32
	Failed   bool
}

// Observer is notified of every call that passes through a wrapper.
// Observers run in registration order, synchronously.
type Observer interface {
	Observe(c Call)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Call)

// Observe implements Observer.
func (f ObserverFunc) Observe(c Call) { f(c) }

// Counter counts calls per syscall name. It is not safe for concurrent use,
// matching the single-threaded job model.
type Counter struct {
	calls    map[string]int
	failures map[string]int
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{calls: make(map[string]int), failures: make(map[string]int)}
}

// Observe implements Observer.
func (c *Counter) Observe(call Call) {
	c.calls[call.Name]++
	if call.Failed {
		c.failures[call.Name]++
	}
}

// Count returns how many times name was called.
func (c *Counter) Count(name string) int { return c.calls[name] }

// Failures returns how many calls to name failed.
func (c *Counter) Failures(name string) int { return c.failures[name] }

// Total returns the number of calls across all names.
func (c *Counter) Total() int {
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}
