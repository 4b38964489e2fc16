// Package version holds build-time version information.
// Values are overridden via ldflags:
//
//	-X github.com/tacogips/cpre/internal/version.Version=x.y.z
package version

var (
	// Version is the release version of cpre.
	Version = "dev"
	// GitCommit is the commit the binary was built from.
	GitCommit = "unknown"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)
