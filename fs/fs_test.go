package fs

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	sdkerrors "github.com/magnolia-os/magnolia-go/domain/errors"
	"github.com/magnolia-os/magnolia-go/internal/testutil"
)

const rdwrCreat = entities.O_RDWR | entities.O_CREAT | entities.O_TRUNC

func newFS(t *testing.T) (*FS, *testutil.FakeFiles) {
	t.Helper()
	host := testutil.NewFakeFiles()
	return New(host), host
}

func TestRoundTrip(t *testing.T) {
	fsys, host := newFS(t)

	f, err := fsys.Open("/flash/test.txt", rdwrCreat, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.WriteAll([]byte("magnolia")))

	pos, err := f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.Zero(t, pos)

	buf := make([]byte, 16)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "magnolia", string(buf[:n]))

	n, err = f.Read(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, f.Close())
	assert.Zero(t, host.OpenCount())
}

func TestOpen_Missing(t *testing.T) {
	fsys, _ := newFS(t)

	f, err := fsys.Open("/flash/no_such_file", entities.O_RDONLY, 0)
	assert.Nil(t, f)
	require.Error(t, err)

	code, ok := sdkerrors.ErrnoOf(err)
	require.True(t, ok)
	assert.True(t, code.Reported())
	testutil.RequireErrno(t, err, fsys.Table(), entities.ENOENT)
	assert.Equal(t, "open /flash/no_such_file: ENOENT (errno 2)", err.Error())
}

func TestOpen_EmbeddedNul(t *testing.T) {
	fsys, host := newFS(t)

	_, err := fsys.Open("/flash/a\x00b", entities.O_RDONLY, 0)
	testutil.RequireErrno(t, err, fsys.Table(), entities.EINVAL)
	assert.ErrorIs(t, err, sdkerrors.ErrEmbeddedNul)
	assert.Zero(t, host.Calls["open"], "host must not be called")

	for name, call := range map[string]func() error{
		"unlink": func() error { return fsys.Unlink("x\x00") },
		"mkdir":  func() error { return fsys.Mkdir("x\x00", 0o755) },
		"chdir":  func() error { return fsys.Chdir("x\x00") },
	} {
		t.Run(name, func(t *testing.T) {
			testutil.RequireErrno(t, call(), fsys.Table(), entities.EINVAL)
			assert.Zero(t, host.Calls[name])
		})
	}
}

func TestFail_UnreportedErrno(t *testing.T) {
	fsys, host := newFS(t)
	host.SilentFail = true

	_, err := fsys.Open("/flash/x", entities.O_RDONLY, 0)
	testutil.RequireErrno(t, err, fsys.Table(), entities.EIO)
	assert.ErrorIs(t, err, sdkerrors.ErrUnreported)
}

func TestFail_CapturesRegisterImmediately(t *testing.T) {
	fsys, host := newFS(t)

	_, err := fsys.Open("/missing", entities.O_RDONLY, 0)
	require.Error(t, err)
	// a later failure must not rewrite an error already returned
	host.Err = 22
	testutil.RequireErrno(t, err, fsys.Table(), entities.ENOENT)
}

func TestClose_Idempotent(t *testing.T) {
	fsys, host := newFS(t)

	f, err := fsys.Open("/a", rdwrCreat, 0o644)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Equal(t, 1, host.Calls["close"])
	assert.Equal(t, int32(-1), f.Fd())

	_, err = f.Read(make([]byte, 4))
	testutil.RequireErrno(t, err, fsys.Table(), entities.EBADF)
	assert.ErrorIs(t, err, sdkerrors.ErrClosed)
	assert.Zero(t, host.Calls["read"])
}

func TestRelease(t *testing.T) {
	fsys, host := newFS(t)

	f, err := fsys.Open("/a", rdwrCreat, 0o644)
	require.NoError(t, err)
	fd := f.Release()
	assert.GreaterOrEqual(t, fd, int32(3))

	require.NoError(t, f.Close())
	assert.Zero(t, host.Calls["close"], "released handle must not close")
	assert.Equal(t, 1, host.OpenCount())
	assert.Equal(t, int32(-1), f.Release())
}

func TestWithFile_ExactlyOneClose(t *testing.T) {
	errJob := errors.New("job failed")

	tests := []struct {
		name    string
		fn      func(*File) error
		wantErr error
		panics  bool
	}{
		{name: "normal return", fn: func(f *File) error { return f.WriteAll([]byte("ok")) }},
		{name: "error return", fn: func(*File) error { return errJob }, wantErr: errJob},
		{name: "panic", fn: func(*File) error { panic("boom") }, panics: true},
		{name: "explicit close inside", fn: func(f *File) error { return f.Close() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys, host := newFS(t)
			call := func() error {
				return fsys.WithFile("/scoped", rdwrCreat, 0o644, tt.fn)
			}

			if tt.panics {
				assert.PanicsWithValue(t, "boom", func() { _ = call() })
			} else {
				err := call()
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.NoError(t, err)
				}
			}
			assert.Equal(t, 1, host.Calls["close"])
			assert.Zero(t, host.OpenCount())
		})
	}
}

func TestWithFile_OpenFailureSkipsClose(t *testing.T) {
	fsys, host := newFS(t)

	called := false
	err := fsys.WithFile("/missing", entities.O_RDONLY, 0, func(*File) error {
		called = true
		return nil
	})
	testutil.RequireErrno(t, err, fsys.Table(), entities.ENOENT)
	assert.False(t, called)
	assert.Zero(t, host.Calls["close"])
}

func TestWriteAll_ShortWrites(t *testing.T) {
	fsys, host := newFS(t)
	host.WriteChunk = 3

	f, err := fsys.Open("/chunked", rdwrCreat, 0o644)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, f.WriteAll([]byte("magnolia job")))
	assert.Equal(t, "magnolia job", string(host.Files["/chunked"]))
	assert.Equal(t, 4, host.Calls["write"])

	n, err := f.WriteSome([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWriteSome_SingleHostWrite(t *testing.T) {
	fsys, host := newFS(t)
	host.WriteChunk = 4

	f, err := fsys.Open("/once", rdwrCreat, 0o644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.WriteSome([]byte("magnolia"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 1, host.Calls["write"])
	assert.Equal(t, "magn", string(host.Files["/once"]))

	host.StallWrites = true
	n, err = f.WriteSome([]byte("x"))
	require.NoError(t, err, "zero progress is reported, not retried")
	assert.Zero(t, n)
	assert.Equal(t, 2, host.Calls["write"])
}

func TestWriteAll_ZeroProgress(t *testing.T) {
	fsys, host := newFS(t)

	f, err := fsys.Open("/stall", rdwrCreat, 0o644)
	require.NoError(t, err)
	defer f.Close()

	host.StallWrites = true
	err = f.WriteAll([]byte("x"))
	testutil.RequireErrno(t, err, fsys.Table(), entities.EIO)
	assert.ErrorIs(t, err, sdkerrors.ErrShortWrite)

	require.NoError(t, f.WriteAll(nil), "empty write makes no host call")
	assert.Equal(t, 1, host.Calls["write"])
}

func TestSeek_Errors(t *testing.T) {
	fsys, _ := newFS(t)

	f, err := fsys.Open("/s", rdwrCreat, 0o644)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, f.WriteAll([]byte("0123456789")))

	_, err = f.Seek(-1, io.SeekStart)
	testutil.RequireErrno(t, err, fsys.Table(), entities.EINVAL)

	pos, err := f.Seek(-4, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	rest, err := f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "6789", string(rest))
}

func TestReadWriteFile(t *testing.T) {
	fsys, host := newFS(t)

	require.NoError(t, fsys.WriteFile("/flash/cfg", []byte("v=1"), 0o644))
	data, err := fsys.ReadFile("/flash/cfg")
	require.NoError(t, err)
	assert.Equal(t, "v=1", string(data))
	assert.Zero(t, host.OpenCount())

	_, err = fsys.ReadFile("/flash/none")
	testutil.RequireErrno(t, err, fsys.Table(), entities.ENOENT)
}

func TestUnlink(t *testing.T) {
	fsys, host := newFS(t)
	require.NoError(t, fsys.WriteFile("/tmp1", []byte("x"), 0o644))

	require.NoError(t, fsys.Unlink("/tmp1"))
	assert.NotContains(t, host.Files, "/tmp1")
	testutil.RequireErrno(t, fsys.Unlink("/tmp1"), fsys.Table(), entities.ENOENT)
}

func TestDirectories(t *testing.T) {
	fsys, _ := newFS(t)

	require.NoError(t, fsys.Mkdir("/flash", 0o755))
	testutil.RequireErrno(t, fsys.Mkdir("/flash", 0o755), fsys.Table(), entities.EEXIST)
	require.NoError(t, fsys.Chdir("/flash"))
	testutil.RequireErrno(t, fsys.Chdir("/nowhere"), fsys.Table(), entities.ENOENT)

	cwd, err := fsys.Cwd()
	require.NoError(t, err)
	assert.Equal(t, "/flash", cwd)

	_, err = fsys.Getcwd(make([]byte, 3))
	testutil.RequireErrno(t, err, fsys.Table(), entities.ERANGE)

	dir, err := fsys.Getcwd(make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, "/flash", string(dir))
}

func TestCwd_GrowsBuffer(t *testing.T) {
	fsys, host := newFS(t)
	long := "/" + strings.Repeat("d", 200)
	host.Dirs[long] = true
	require.NoError(t, fsys.Chdir(long))

	cwd, err := fsys.Cwd()
	require.NoError(t, err)
	assert.Equal(t, long, cwd)
	assert.Equal(t, 3, host.Calls["getcwd"])
}

func TestStream(t *testing.T) {
	fsys, host := newFS(t)
	host.WriteChunk = 2

	n, err := fsys.Stdout().WriteString("hello\n")
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "hello\n", host.Stdout.String())
	assert.Equal(t, Stderr, fsys.Stderr().Fd())
}

func TestWithOptions(t *testing.T) {
	table := entities.ErrnoTable{
		{Name: entities.EINVAL, Code: 1022},
		{Name: entities.EIO, Code: 1005},
	}
	fsys := New(testutil.NewFakeFiles(), WithErrnoTable(table), WithOpenFlags(entities.DefaultOpenFlags()))

	_, err := fsys.Open("bad\x00", 0, 0)
	assert.True(t, sdkerrors.IsErrno(err, 1022))
	assert.Contains(t, err.Error(), "EINVAL (errno 1022)")
}
