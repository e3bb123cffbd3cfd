// Package selftest is the on-device self test: it exercises the
// allocator, a file round trip and the error path, printing one line per
// check.
package selftest

import (
	"errors"
	"fmt"
	"io"

	"github.com/magnolia-os/magnolia-go"
	"github.com/magnolia-os/magnolia-go/alloc"
	"github.com/magnolia-os/magnolia-go/args"
	"github.com/magnolia-os/magnolia-go/fs"
)

// Name is the job name.
const Name = "selftest"

// DefaultDir is where the scratch file goes unless argv[1] names another
// directory.
const DefaultDir = "/flash"

var errMismatch = errors.New("content mismatch")

type check struct {
	name string
	run  func(rt *magnolia.Runtime, dir string) error
}

var checks = []check{
	{name: "allocator", run: checkAllocator},
	{name: "vfs", run: checkFileRoundTrip},
	{name: "error-path", run: checkErrorPath},
}

// Run is the job entry. It returns 0 when every check passes.
func Run(rt *magnolia.Runtime, argv *args.Vector) int32 {
	out := rt.FS().Stdout()
	dir := DefaultDir
	if d, err := argv.String(1); err == nil && d != "" {
		dir = d
	}

	fmt.Fprintf(out, "%s start\n", Name)
	fails := 0
	for _, c := range checks {
		if err := c.run(rt, dir); err != nil {
			fails++
			fmt.Fprintf(rt.FS().Stderr(), "%s test failed: %v\n", c.name, err)
			continue
		}
		if c.name == "error-path" {
			fmt.Fprintf(out, "%s test ok errno=%d\n", c.name, rt.LastError())
			continue
		}
		fmt.Fprintf(out, "%s test ok\n", c.name)
	}
	fmt.Fprintf(out, "%s finished fails=%d\n", Name, fails)

	if fails > 0 {
		return magnolia.ExitFailure
	}
	return magnolia.ExitSuccess
}

// checkAllocator grows a buffer in job memory byte by byte.
func checkAllocator(rt *magnolia.Runtime, _ string) error {
	buf := alloc.NewBuffer(rt.Alloc(), 0)
	defer buf.Release()

	for i := range 64 {
		buf.Append(byte(i))
	}
	b := buf.Bytes()
	if len(b) != 64 || b[0] != 0 || b[63] != 63 {
		return errMismatch
	}

	p := rt.Alloc().Allocate(32, 64)
	if p == 0 || p%64 != 0 {
		return fmt.Errorf("aligned allocation returned %#x", p)
	}
	rt.Alloc().Deallocate(p, 32, 64)
	return nil
}

// checkFileRoundTrip writes, rewinds and reads back a scratch file.
func checkFileRoundTrip(rt *magnolia.Runtime, dir string) error {
	fsys := rt.FS()
	fl := fsys.Flags()
	path := dir + "/selftest_tmp"

	err := fsys.WithFile(path, fl.Create|fl.Truncate|fl.ReadWrite, 0o666, func(f *fs.File) error {
		if err := f.WriteAll([]byte("magnolia")); err != nil {
			return err
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		buf := make([]byte, 16)
		n, err := f.Read(buf)
		if err != nil {
			return err
		}
		if string(buf[:n]) != "magnolia" {
			return errMismatch
		}
		return nil
	})
	if err != nil {
		return err
	}
	return fsys.Unlink(path)
}

// checkErrorPath requires opening a missing file to fail and leave a
// non-zero error code behind.
func checkErrorPath(rt *magnolia.Runtime, dir string) error {
	f, err := rt.FS().Open(dir+"/no_such_file", rt.FS().Flags().ReadOnly, 0)
	if err == nil {
		_ = f.Close()
		return errors.New("open of a missing file succeeded")
	}
	if rt.LastError() == 0 {
		return errors.New("error code not set")
	}
	return nil
}
