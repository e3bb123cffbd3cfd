package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	sleeps  []uint32
	usleeps []uint32
	cutAt   uint32
}

func (r *recorder) Sleep(seconds uint32) uint32 {
	r.sleeps = append(r.sleeps, seconds)
	return r.cutAt
}

func (r *recorder) Usleep(usec uint32) int32 {
	r.usleeps = append(r.usleeps, usec)
	if usec > maxUsleep {
		return -1
	}
	return 0
}

func TestSleepFor(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		sleeps  []uint32
		usleeps []uint32
	}{
		{name: "sub-microsecond", d: 500 * time.Nanosecond},
		{name: "microseconds only", d: 1500 * time.Microsecond, usleeps: []uint32{1500}},
		{name: "whole seconds", d: 3 * time.Second, sleeps: []uint32{3}},
		{name: "mixed", d: 2*time.Second + 250*time.Millisecond, sleeps: []uint32{2}, usleeps: []uint32{250000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			assert.True(t, SleepFor(r, tt.d))
			assert.Equal(t, tt.sleeps, r.sleeps)
			assert.Equal(t, tt.usleeps, r.usleeps)
		})
	}
}

func TestSleepFor_Interrupted(t *testing.T) {
	r := &recorder{cutAt: 1}
	assert.False(t, SleepFor(r, 5*time.Second+time.Millisecond))
	assert.Empty(t, r.usleeps)
}

func TestSleepAndUsleep(t *testing.T) {
	r := &recorder{}
	assert.Zero(t, Sleep(r, 1))
	assert.True(t, Usleep(r, 10))
	assert.False(t, Usleep(r, 2_000_000))
}
