// Package native binds the runtime to the real Magnolia host. Under TinyGo
// it calls the C symbols the firmware exports to loaded jobs; every other
// build gets a stub whose calls fail with ENOSYS, so packages that import
// it still compile and test on a development machine.
//
// Job memory is the process address space: Memory reads and writes raw
// addresses directly.
package native
