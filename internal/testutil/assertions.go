// Package testutil provides test doubles and assertions shared by the
// runtime's package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/errors"
	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// AssertAligned asserts that addr is a non-null multiple of align.
func AssertAligned(t *testing.T, addr, align uintptr, msgAndArgs ...interface{}) {
	t.Helper()
	assert.NotZero(t, addr, msgAndArgs...)
	assert.Zero(t, addr%align, msgAndArgs...)
}

// RequireErrno requires err to carry the named error code of table.
func RequireErrno(t *testing.T, err error, table entities.ErrnoTable, name string) {
	t.Helper()
	require.Error(t, err)
	code, ok := errors.ErrnoOf(err)
	require.True(t, ok, "error %v carries no errno", err)
	require.Equal(t, table.MustCode(name), code, "expected %s, got %v", name, err)
}

// RequireTerminates runs fn and requires it to unwind with a host
// termination; the exit status is returned.
func RequireTerminates(t *testing.T, fn func()) (status int32) {
	t.Helper()
	defer func() {
		r := recover()
		term, ok := r.(ports.Termination)
		require.True(t, ok, "expected host termination, got %v", r)
		status = term.ExitStatus()
	}()
	fn()
	t.Fatal("function returned instead of terminating")
	return 0
}
