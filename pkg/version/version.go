// Package version carries build metadata stamped in at link time.
package version

import "fmt"

// Set via -ldflags at build time.
var (
	// Version is the release tag of the running binary.
	Version = "dev"

	// Commit is the Git hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the version line shown by the version command.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
