// Package version holds build metadata injected with -ldflags, e.g.
//
//	-X github.com/bdobrica/karsb/common/version.Version=v1.2.0
package version

import "fmt"

var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info formats the build metadata for logs and the /karsb version command.
func Info() string {
	return fmt.Sprintf("kARsb %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
