package sleep_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnolia-os/magnolia-go/host"
	"github.com/magnolia-os/magnolia-go/jobs/sleep"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{in: "2", want: 2 * time.Second, ok: true},
		{in: "1.5s", want: 1500 * time.Millisecond, ok: true},
		{in: "0.25m", want: 15 * time.Second, ok: true},
		{in: "1h", want: time.Hour, ok: true},
		{in: "1d", want: 24 * time.Hour, ok: true},
		{in: "", ok: false},
		{in: "s", ok: false},
		{in: "-1", ok: false},
		{in: "1x", ok: false},
		{in: "inf", ok: false},
		{in: "1e300d", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := sleep.ParseInterval(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRun(t *testing.T) {
	var slept []time.Duration
	e, err := host.NewExecutor(context.Background(),
		host.WithSleep(func(d time.Duration) { slept = append(slept, d) }))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), sleep.Run, "sleep", "1", "0.5s", "1m")
	require.NoError(t, err)
	assert.Equal(t, int32(0), res.Status, res.Stderr)
	assert.Equal(t, []time.Duration{61 * time.Second, 500 * time.Millisecond}, slept)
}

func TestRun_Errors(t *testing.T) {
	e, err := host.NewExecutor(context.Background(), host.WithSleep(func(time.Duration) {}))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), sleep.Run, "sleep")
	require.NoError(t, err)
	assert.Equal(t, int32(1), res.Status)
	assert.Equal(t, "sleep: missing operand\n", res.Stderr)

	res, err = e.Run(context.Background(), sleep.Run, "sleep", "soon")
	require.NoError(t, err)
	assert.Equal(t, int32(1), res.Status)
	assert.Equal(t, "sleep: invalid time interval 'soon'\n", res.Stderr)

	res, err = e.Run(context.Background(), sleep.Run, "sleep", "--help")
	require.NoError(t, err)
	assert.Equal(t, int32(0), res.Status)
	assert.Contains(t, res.Stdout, "usage: sleep")
}
