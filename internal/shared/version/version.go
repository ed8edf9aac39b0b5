// Package version reports the build of the running binary.
package version

import "strings"

// Set at build time with -ldflags "-X ...version.Version=1.2.3".
var (
	Version = "dev"
	Commit  = "unknown"
)

// Normalize ensures version string has "v" prefix.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" || version == "dev" {
		return version
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// String renders the build for logs and the health endpoint.
func String() string {
	return Normalize(Version) + " (" + Commit + ")"
}
