package host

import (
	"io"
	"log/slog"
	"time"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/hostfuncs"
)

// executorConfig holds configuration for the Executor.
type executorConfig struct {
	profile   *entities.HostProfile
	logger    *slog.Logger
	stdin     io.Reader
	sleep     func(time.Duration)
	metrics   *hostfuncs.MetricsObserver
	root      string
	observers []hostfuncs.Observer
	maxOutput int
	heapPages uint32
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		maxOutput: hostfuncs.DefaultMaxOutputSize,
	}
}

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

// WithProfile sets the host profile jobs run against. The default is the
// built-in ESP32-S3 profile.
func WithProfile(p *entities.HostProfile) Option {
	return func(c *executorConfig) {
		c.profile = p
	}
}

// WithRoot sets the host directory job paths resolve under. Without one,
// jobs see no filesystem.
func WithRoot(dir string) Option {
	return func(c *executorConfig) {
		c.root = dir
	}
}

// WithHeapLimit caps the simulated heap at pages 64 KiB pages, overriding
// the profile.
func WithHeapLimit(pages uint32) Option {
	return func(c *executorConfig) {
		c.heapPages = pages
	}
}

// WithStdin sets what jobs read from descriptor 0.
func WithStdin(r io.Reader) Option {
	return func(c *executorConfig) {
		c.stdin = r
	}
}

// WithSleep replaces the function job sleeps block with.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *executorConfig) {
		c.sleep = fn
	}
}

// WithObservers adds syscall observers to every run.
func WithObservers(obs ...hostfuncs.Observer) Option {
	return func(c *executorConfig) {
		c.observers = append(c.observers, obs...)
	}
}

// WithLogger sets the host-side logger. Syscalls are logged at debug
// level and failures at info.
func WithLogger(l *slog.Logger) Option {
	return func(c *executorConfig) {
		c.logger = l
	}
}

// WithMetrics exports syscall and run metrics through m.
func WithMetrics(m *hostfuncs.MetricsObserver) Option {
	return func(c *executorConfig) {
		c.metrics = m
	}
}

// WithMaxOutput caps the captured stdout and stderr of a run.
func WithMaxOutput(n int) Option {
	return func(c *executorConfig) {
		c.maxOutput = n
	}
}
