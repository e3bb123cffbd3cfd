package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magnolia-os/magnolia-go"
	"github.com/magnolia-os/magnolia-go/application/profile"
	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
	"github.com/magnolia-os/magnolia-go/hostfuncs"
	"github.com/magnolia-os/magnolia-go/infrastructure/sim"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeFaulted Outcome = "faulted"
)

// RunResult describes one finished job.
type RunResult struct {
	Fault       *entities.Fault
	Stdout      string
	Stderr      string
	Duration    time.Duration
	Heap        sim.HeapStats
	LeakedBytes uintptr
	LeakedFiles int
	JobID       uuid.UUID
	Status      int32
	// Exited is set when the job left through exit or _exit rather than
	// by returning.
	Exited bool
	// Aborted is set when the job called abort, directly or through a fault.
	Aborted   bool
	Truncated bool
}

// Outcome returns the run's classification.
func (r *RunResult) Outcome() Outcome {
	switch {
	case r.Fault != nil:
		return OutcomeFaulted
	case r.Status != magnolia.ExitSuccess:
		return OutcomeFailed
	}
	return OutcomeOK
}

// Faulted reports whether the job died of a fault.
func (r *RunResult) Faulted() bool { return r.Fault != nil }

// Executor runs jobs on fresh simulated hosts. Runs may proceed
// concurrently as long as the configured observers allow it.
type Executor struct {
	config executorConfig
}

// NewExecutor creates a new executor with the given options. The profile
// is validated up front.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.profile == nil {
		cfg.profile = profile.Default()
	}
	if cfg.heapPages > 0 {
		p := *cfg.profile
		p.Heap.MaxPages = cfg.heapPages
		p.Heap.InitialPages = min(p.Heap.InitialPages, cfg.heapPages)
		cfg.profile = &p
	}
	if err := profile.Validate(cfg.profile); err != nil {
		return nil, fmt.Errorf("invalid host profile: %w", err)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.metrics != nil {
		cfg.observers = append(cfg.observers, cfg.metrics)
	}
	cfg.observers = append(cfg.observers, hostfuncs.NewLoggingObserver(cfg.logger, cfg.profile.Errno))

	cfg.logger.DebugContext(ctx, "executor ready", "profile", cfg.profile.Name, "root", cfg.root)
	return &Executor{config: cfg}, nil
}

// Profile returns the profile jobs run against.
func (e *Executor) Profile() *entities.HostProfile { return e.config.profile }

// Close releases resources held by the executor.
func (e *Executor) Close(context.Context) error { return nil }

// Run runs job with argv as its argument vector.
func (e *Executor) Run(ctx context.Context, job magnolia.Job, argv ...string) (*RunResult, error) {
	raw := make([][]byte, len(argv))
	for i, a := range argv {
		raw[i] = []byte(a)
	}
	return e.RunRaw(ctx, job, raw...)
}

// RunRaw runs job with an argument vector of raw byte strings. A nil entry
// becomes a null slot in the pointer array.
func (e *Executor) RunRaw(ctx context.Context, job magnolia.Job, argv ...[]byte) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := e.config
	stdout := hostfuncs.NewBoundedBuffer(cfg.maxOutput)
	stderr := hostfuncs.NewBoundedBuffer(cfg.maxOutput)
	id := uuid.New()
	logger := cfg.logger.With("job_id", id.String())

	simOpts := []sim.Option{
		sim.WithProfile(cfg.profile),
		sim.WithRoot(cfg.root),
		sim.WithStdin(cfg.stdin),
		sim.WithStdout(stdout),
		sim.WithStderr(stderr),
		sim.WithLogger(logger),
	}
	if cfg.sleep != nil {
		simOpts = append(simOpts, sim.WithSleep(cfg.sleep))
	}
	s, err := sim.New(ctx, simOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create simulated host: %w", err)
	}
	defer func() {
		if err := s.Shutdown(ctx); err != nil {
			logger.WarnContext(ctx, "failed to release simulated host", "error", err)
		}
	}()

	placed, err := placeArgs(s, argv)
	if err != nil {
		return nil, err
	}

	result := &RunResult{JobID: id}
	rt := magnolia.NewRuntime(
		hostfuncs.Wrap(s, cfg.observers...),
		magnolia.WithProfile(cfg.profile),
		magnolia.WithFaultObserver(func(f entities.Fault) { result.Fault = &f }),
	)

	start := time.Now()
	status, term, err := call(rt.Entry(job), placed.argc, placed.argv)
	result.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}
	result.Status = status
	if term != nil {
		result.Exited = true
		result.Aborted = term.Aborted
	}

	placed.release(s)
	result.Heap = s.HeapStats()
	result.LeakedBytes = result.Heap.LiveBytes
	result.LeakedFiles = s.OpenFiles()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Truncated = stdout.Truncated || stderr.Truncated

	if cfg.metrics != nil {
		cfg.metrics.Runs.WithLabelValues(string(result.Outcome())).Inc()
		cfg.metrics.HeapLive.Set(float64(result.LeakedBytes))
	}
	logger.InfoContext(ctx, "job finished",
		"status", result.Status,
		"outcome", result.Outcome(),
		"leaked_bytes", result.LeakedBytes,
		"duration", result.Duration,
	)
	return result, nil
}

// call invokes entry and turns a simulator termination into a status.
func call(entry magnolia.EntryFunc, argc int32, argv uintptr) (status int32, term *sim.Exit, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch v := r.(type) {
		case sim.Exit:
			status, term = v.Status, &v
		case ports.Termination:
			status = v.ExitStatus()
			term = &sim.Exit{Status: status}
		default:
			err = fmt.Errorf("job escaped the entry trampoline: %v", r)
		}
	}()
	return entry(argc, argv), nil, nil
}

// ErrArgsTooLarge is returned when the argument vector does not fit in the
// simulated heap.
var ErrArgsTooLarge = errors.New("argument vector does not fit in job memory")
