package version

import "fmt"

var (
	// GitVersion is the git version of the build. It is set by the linker.
	GitVersion = "unknown"
	// GitCommit is the git commit hash of the build. It is set by the linker.
	GitCommit = "unknown"
)

// String renders the build info for --version output and startup logs.
func String() string {
	return fmt.Sprintf("%s (commit %s)", GitVersion, GitCommit)
}
