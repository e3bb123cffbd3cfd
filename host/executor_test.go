package host

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnolia-os/magnolia-go"
	"github.com/magnolia-os/magnolia-go/application/profile"
	"github.com/magnolia-os/magnolia-go/args"
	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/hostfuncs"
)

func newExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()
	e, err := NewExecutor(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func printArgs(rt *magnolia.Runtime, argv *args.Vector) int32 {
	out := rt.FS().Stdout()
	for _, a := range argv.Collect() {
		_, _ = out.WriteString(a + "\n")
	}
	return int32(argv.Len())
}

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx)
	require.NoError(t, err)
	assert.Equal(t, profile.DefaultName, e.Profile().Name)
	assert.NoError(t, e.Close(ctx))
}

func TestNewExecutor_InvalidProfile(t *testing.T) {
	p := profile.Default()
	p.WordSize = 3
	_, err := NewExecutor(context.Background(), WithProfile(p))
	assert.Error(t, err)
}

func TestNewExecutor_HeapLimitLeavesProfileAlone(t *testing.T) {
	p := profile.Default()
	e := newExecutor(t, WithProfile(p), WithHeapLimit(2))
	assert.Equal(t, uint32(2), e.Profile().Heap.MaxPages)
	assert.Equal(t, uint32(64), p.Heap.MaxPages)
}

func TestRun_ArgumentsAndStatus(t *testing.T) {
	e := newExecutor(t)

	res, err := e.Run(context.Background(), printArgs, "goargs", "a", "", "héllo")
	require.NoError(t, err)
	assert.Equal(t, int32(4), res.Status)
	assert.Equal(t, "goargs\na\n\nhéllo\n", res.Stdout)
	assert.Equal(t, OutcomeFailed, res.Outcome())
	assert.False(t, res.Exited)
	assert.NotEqual(t, uuid.Nil, res.JobID)
	assert.Zero(t, res.LeakedBytes, "the argument vector is not a leak")
}

func TestRun_NoArguments(t *testing.T) {
	e := newExecutor(t)
	res, err := e.Run(context.Background(), func(_ *magnolia.Runtime, argv *args.Vector) int32 {
		if !argv.IsEmpty() {
			return 1
		}
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, res.Outcome())
}

func TestRunRaw_NullSlot(t *testing.T) {
	e := newExecutor(t)
	var seen []bool
	res, err := e.RunRaw(context.Background(), func(_ *magnolia.Runtime, argv *args.Vector) int32 {
		for i := range argv.Len() {
			_, ok := argv.Get(i)
			seen = append(seen, ok)
		}
		n := 0
		for range argv.All() {
			n++
		}
		return int32(n)
	}, []byte("a"), nil, []byte("c"))
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, seen)
	assert.Equal(t, int32(1), res.Status, "iteration stops at the null slot")
}

func TestRun_Exit(t *testing.T) {
	e := newExecutor(t)
	var hooks []string
	res, err := e.Run(context.Background(), func(rt *magnolia.Runtime, _ *args.Vector) int32 {
		rt.AtExit(func() { hooks = append(hooks, "first") })
		rt.AtExit(func() { hooks = append(hooks, "second") })
		rt.Exit(3)
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), res.Status)
	assert.True(t, res.Exited)
	assert.False(t, res.Aborted)
	assert.Equal(t, []string{"second", "first"}, hooks)
}

func TestRun_PanicBecomesFault(t *testing.T) {
	e := newExecutor(t)
	res, err := e.Run(context.Background(), func(*magnolia.Runtime, *args.Vector) int32 {
		panic("boom")
	})
	require.NoError(t, err)
	assert.Equal(t, magnolia.ExitAbort, res.Status)
	assert.True(t, res.Aborted)
	require.NotNil(t, res.Fault)
	assert.Equal(t, entities.FaultPanic, res.Fault.Kind)
	assert.Equal(t, "fatal panic: boom\n", res.Stderr)
	assert.Equal(t, OutcomeFaulted, res.Outcome())
}

func TestRun_AllocationExhaustion(t *testing.T) {
	e := newExecutor(t, WithHeapLimit(1))
	res, err := e.Run(context.Background(), func(rt *magnolia.Runtime, _ *args.Vector) int32 {
		rt.Alloc().MustAllocate(1<<20, 16)
		return 0
	})
	require.NoError(t, err)
	require.True(t, res.Faulted())
	assert.Equal(t, entities.FaultAllocError, res.Fault.Kind)
	assert.Equal(t, "fatal alloc_error: memory allocation of 1048576 bytes (align 16) failed\n", res.Stderr)
	assert.Equal(t, uint64(1), res.Heap.Failures)
}

func TestRun_ReportsLeaks(t *testing.T) {
	e := newExecutor(t)
	res, err := e.Run(context.Background(), func(rt *magnolia.Runtime, _ *args.Vector) int32 {
		a := rt.Alloc()
		kept := a.Allocate(100, 8)
		freed := a.Allocate(50, 64)
		a.Deallocate(freed, 50, 64)
		if kept == 0 {
			return 1
		}
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Heap.LiveBlocks)
	assert.Positive(t, res.LeakedBytes)
}

func TestRun_Filesystem(t *testing.T) {
	root := t.TempDir()
	e := newExecutor(t, WithRoot(root))

	res, err := e.Run(context.Background(), func(rt *magnolia.Runtime, _ *args.Vector) int32 {
		fsys := rt.FS()
		if err := fsys.Mkdir("/flash", 0o755); err != nil {
			return 1
		}
		if err := fsys.WriteFile("/flash/out.txt", []byte("magnolia"), 0o644); err != nil {
			return 2
		}
		_, err := fsys.Open("/flash/no_such_file", entities.O_RDONLY, 0)
		if err == nil {
			return 3
		}
		rt.Logger().Info("expected failure", "error", err)
		return 0
	})
	require.NoError(t, err)
	require.Equal(t, int32(0), res.Status, res.Stderr)

	data, err := os.ReadFile(filepath.Join(root, "flash", "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "magnolia", string(data))
	assert.Contains(t, res.Stderr, "open /flash/no_such_file: ENOENT")
	assert.Zero(t, res.LeakedFiles)
}

func TestRun_Stdin(t *testing.T) {
	e := newExecutor(t, WithStdin(strings.NewReader("ping")))
	res, err := e.Run(context.Background(), func(rt *magnolia.Runtime, _ *args.Vector) int32 {
		buf := make([]byte, 8)
		n, _ := rt.FS().Stream(0).Read(buf)
		_, _ = rt.FS().Stdout().Write(buf[:n])
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, "ping", res.Stdout)
}

func TestRun_OutputIsBounded(t *testing.T) {
	e := newExecutor(t, WithMaxOutput(4))
	res, err := e.Run(context.Background(), func(rt *magnolia.Runtime, _ *args.Vector) int32 {
		_, _ = rt.FS().Stdout().WriteString("magnolia")
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, "magn", res.Stdout)
	assert.True(t, res.Truncated)
}

func TestRun_ObserversAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := hostfuncs.NewMetricsObserver(reg)
	require.NoError(t, err)
	counter := hostfuncs.NewCounter()
	e := newExecutor(t, WithMetrics(m), WithObservers(counter))

	_, err = e.Run(context.Background(), func(rt *magnolia.Runtime, _ *args.Vector) int32 {
		_, _ = rt.FS().Stdout().WriteString("hi")
		return 0
	})
	require.NoError(t, err)
	_, err = e.Run(context.Background(), func(*magnolia.Runtime, *args.Vector) int32 { panic("x") })
	require.NoError(t, err)

	assert.Equal(t, 2, counter.Count(hostfuncs.CallWrite), "job output and fault diagnostic")
	assert.Equal(t, 1, counter.Count(hostfuncs.CallAbort))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.Runs.WithLabelValues(string(OutcomeOK))))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.Runs.WithLabelValues(string(OutcomeFaulted))))
}

func TestRun_CancelledContext(t *testing.T) {
	e := newExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Run(ctx, printArgs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ArgumentsTooLarge(t *testing.T) {
	e := newExecutor(t, WithHeapLimit(1))
	_, err := e.Run(context.Background(), printArgs, strings.Repeat("x", 70_000))
	assert.ErrorIs(t, err, ErrArgsTooLarge)
}
