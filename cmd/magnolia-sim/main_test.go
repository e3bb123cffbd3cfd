package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnolia-os/magnolia-go/application/profile"
)

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRun_Selftest(t *testing.T) {
	out, _, err := execute(t, "", "run", "selftest")
	require.NoError(t, err)
	assert.Contains(t, out, "selftest finished fails=0\n")
}

func TestRun_PassesJobFlags(t *testing.T) {
	out, _, err := execute(t, "", "run", "goargs", "-n", "--root", "x")
	require.NoError(t, err)
	assert.Equal(t, "goargs: argv\n0: goargs\n1: -n\n2: --root\n3: x\n", out)
}

func TestRun_ExitStatus(t *testing.T) {
	root := t.TempDir()
	_, stderr, err := execute(t, "", "run", "--root", root, "selftest")

	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, int32(1), exit.status)
	assert.Contains(t, stderr, "vfs test failed")
}

func TestRun_ReportAndMetrics(t *testing.T) {
	out, _, err := execute(t, "", "run", "--report", "--metrics", "goargs")
	require.NoError(t, err)
	assert.Contains(t, out, "status=0 outcome=ok")
	assert.Contains(t, out, `magnolia_syscalls_total{syscall="write"}`)
	assert.Contains(t, out, `magnolia_job_runs_total{outcome="ok"} 1`)
}

func TestRun_UnknownJob(t *testing.T) {
	_, _, err := execute(t, "", "run", "ls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: goargs, selftest, sleep")
}

func TestRun_BadLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "--log-level", "loud", "run", "goargs")
	assert.ErrorContains(t, err, "invalid --log-level")
}

func TestJobs(t *testing.T) {
	out, _, err := execute(t, "", "jobs")
	require.NoError(t, err)
	assert.Equal(t, "goargs\nselftest\nsleep\n", out)
}

func TestProfile(t *testing.T) {
	out, _, err := execute(t, "", "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "name: "+profile.DefaultName)

	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))

	out, _, err = execute(t, "", "profile", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, ": ok ("+profile.DefaultName+", word size 4,")

	out, _, err = execute(t, "", "--profile", path, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "abort_status: 134")

	out, _, err = execute(t, "", "profile", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"word_size"`)
}

func TestProfile_ValidateRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nword_size: 3\n"), 0o600))

	_, _, err := execute(t, "", "profile", "validate", path)
	assert.Error(t, err)
}
