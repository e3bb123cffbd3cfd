// Package magnolia is the job-side runtime for programs running on the
// Magnolia host.
//
// A Runtime binds the host's syscall surface to the pieces a job uses: the
// aligned allocator, file handles, the error register and the fault path.
// The host calls the function returned by Entry with the raw argument
// vector; the job's status is passed back verbatim.
//
//	rt := magnolia.NewRuntime(native.New())
//	entry := rt.Entry(func(rt *magnolia.Runtime, argv *args.Vector) int32 {
//		fmt.Fprintln(rt.FS().Stdout(), "hello")
//		return magnolia.ExitSuccess
//	})
package magnolia
