// Package version carries build metadata, set with
// -ldflags "-X github.com/kailas-cloud/helpdesk/internal/version.Version=...".
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build for the version command and startup log.
func String() string {
	return fmt.Sprintf("helpdesk %s (commit %s, built %s)", Version, Commit, Date)
}
