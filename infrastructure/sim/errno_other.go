//go:build !unix

package sim

// osErrnoName has no OS errno names to offer off unix; errnoName falls
// back to the io/fs classification.
func osErrnoName(error) string {
	return ""
}
